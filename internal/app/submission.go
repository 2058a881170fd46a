package app

import (
	"fmt"
	"strings"
	"time"

	"enrollment-assessment/internal/domain"
)

// BuildSubmission formats the CRM webhook payload for a lead.
func BuildSubmission(catalog domain.Catalog, answers domain.AnswerSet, lead domain.LeadInfo, results domain.QuizResults, now time.Time) domain.Submission {
	categoryScores := make(map[domain.Category]int, len(results.CategoryPercentages))
	for cat, pct := range results.CategoryPercentages {
		categoryScores[cat] = pct
	}
	return domain.Submission{
		LeadInfo:       lead,
		OverallScore:   results.OverallPercentage,
		Level:          results.Level,
		CategoryScores: categoryScores,
		ScoresSummary:  ScoresSummary(results),
		Answers:        FormatAnswers(catalog, answers),
		SubmittedAt:    now.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}

// ScoresSummary renders "Clarify: 67%, Invite: 50%, ..." in category order.
func ScoresSummary(results domain.QuizResults) string {
	parts := make([]string, 0, len(results.Categories))
	for _, cs := range results.Categories {
		parts = append(parts, fmt.Sprintf("%s: %d%%", cs.Category, cs.Percentage))
	}
	return strings.Join(parts, ", ")
}

// FormatAnswers renders a human-readable transcript of every question and the
// option chosen for it.
func FormatAnswers(catalog domain.Catalog, answers domain.AnswerSet) string {
	blocks := make([]string, 0, catalog.Len())
	for i, q := range catalog.Questions {
		score, answered := answers[i]
		text := "Skipped"
		if answered {
			if opt, ok := q.OptionForScore(score); ok {
				text = opt.Text
			}
		}
		blocks = append(blocks, fmt.Sprintf("%d. [%s] %s\n   Answer: %s (Score: %d)", i+1, q.Category, q.Prompt, text, score))
	}
	return strings.Join(blocks, "\n\n")
}
