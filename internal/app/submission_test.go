package app

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"enrollment-assessment/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSubmissionPayload(t *testing.T) {
	catalog := domain.CanonicalCatalog()
	answers := domain.AnswerSet{0: 3, 1: 2}
	results := ComputeResults(catalog, answers)
	lead := domain.LeadInfo{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "555", BusinessName: "Studio"}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("EST", -5*3600))

	payload := BuildSubmission(catalog, answers, lead, results, now)
	assert.Equal(t, "2026-01-02T08:04:05.000Z", payload.SubmittedAt)
	assert.Equal(t, "Clarify: 83%, Invite: 0%, Review: 0%, Convert: 0%, Loopback: 0%, Excite: 0%", payload.ScoresSummary)
	assert.Equal(t, 14, payload.OverallScore)
	assert.Equal(t, domain.LevelFoundation, payload.Level)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	var flat map[string]any
	require.NoError(t, json.Unmarshal(raw, &flat))
	for _, key := range []string{"firstName", "lastName", "email", "phone", "businessName", "overallScore", "level", "categoryScores", "scoresSummary", "answers", "submittedAt"} {
		assert.Contains(t, flat, key)
	}
	assert.Equal(t, "Ada", flat["firstName"])
	assert.Equal(t, float64(83), flat["categoryScores"].(map[string]any)["Clarify"])
}

func TestFormatAnswersTranscript(t *testing.T) {
	catalog := domain.CanonicalCatalog()
	transcript := FormatAnswers(catalog, domain.AnswerSet{0: 3, 11: 0})

	blocks := strings.Split(transcript, "\n\n")
	require.Len(t, blocks, 12)
	assert.Equal(t,
		"1. [Clarify] Do you have a clearly defined ideal student/client profile and brand messaging that speaks directly to them?\n"+
			"   Answer: Yes, we have detailed personas and consistent messaging across all channels (Score: 3)",
		blocks[0])
	assert.True(t, strings.HasSuffix(blocks[1], "Answer: Skipped (Score: 0)"))
	assert.True(t, strings.HasPrefix(blocks[11], "12. [Excite] "))
	assert.True(t, strings.HasSuffix(blocks[11], "Answer: Less than 10% or I don't track this (Score: 0)"))
}
