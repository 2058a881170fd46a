package app

import (
	"fmt"
	"sort"

	"enrollment-assessment/internal/domain"
)

// maxRecommendations bounds the action plan shown on the results page.
const maxRecommendations = 4

// ComputeResults scores answers against the catalog. Missing answers count as 0.
// It is a pure function: the submission step and the results view both call it.
func ComputeResults(catalog domain.Catalog, answers domain.AnswerSet) domain.QuizResults {
	categories := catalog.Categories()
	scores := make(map[domain.Category]*domain.CategoryScore, len(categories))
	for _, cat := range categories {
		scores[cat] = &domain.CategoryScore{Category: cat}
	}

	total, totalMax := 0, 0
	for i, q := range catalog.Questions {
		score := answers[i]
		best := q.MaxScore()
		cs := scores[q.Category]
		cs.Score += score
		cs.Max += best
		total += score
		totalMax += best
	}

	results := domain.QuizResults{
		CategoryPercentages: make(map[domain.Category]int, len(categories)),
		Categories:          make([]domain.CategoryScore, 0, len(categories)),
	}
	for _, cat := range categories {
		cs := scores[cat]
		cs.Percentage = percentage(cs.Score, cs.Max)
		results.CategoryPercentages[cat] = cs.Percentage
		results.Categories = append(results.Categories, *cs)
	}
	results.OverallPercentage = percentage(total, totalMax)
	results.Level = domain.LevelFor(results.OverallPercentage)

	ranked := make([]domain.CategoryScore, len(results.Categories))
	copy(ranked, results.Categories)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Percentage < ranked[j].Percentage
	})
	n := 3
	if len(ranked) < n {
		n = len(ranked)
	}
	results.WeakestAreas = make([]domain.Category, 0, n)
	for _, cs := range ranked[:n] {
		results.WeakestAreas = append(results.WeakestAreas, cs.Category)
	}
	return results
}

// percentage rounds 100*score/maxScore half-up and clamps into [0,100].
// A zero maxScore yields 0.
func percentage(score, maxScore int) int {
	if maxScore <= 0 || score <= 0 {
		return 0
	}
	p := (200*score + maxScore) / (2 * maxScore)
	if p > 100 {
		return 100
	}
	return p
}

type recommendationTemplate struct {
	title       string
	description string
}

var categoryRecommendations = map[domain.Category]recommendationTemplate{
	domain.CategoryClarify: {
		title:       "Define Your Ideal Student Avatar & Brand Message",
		description: "Without clarity on who you serve and what you stand for, all marketing efforts scatter. We'll help you document your ideal client profile and craft messaging that resonates with them specifically.",
	},
	domain.CategoryInvite: {
		title:       "Build High-Converting Landing Pages & Offers",
		description: "Your website homepage isn't enough. We'll create dedicated landing pages with compelling offers (free trials, workshops, auditions) that turn traffic into qualified leads.",
	},
	domain.CategoryReview: {
		title:       "Implement Lead Pre-Qualification & Nurture Sequences",
		description: "Stop wasting time with poor-fit prospects. We'll set up automated qualification and nurture systems that educate leads before they arrive, increasing show-up and conversion rates.",
	},
	domain.CategoryConvert: {
		title:       "Optimize Your Trial-to-Enrollment Process",
		description: "The trial experience and enrollment conversation are where revenue is won or lost. We'll build systems to track and improve your conversion rates with proven enrollment frameworks.",
	},
	domain.CategoryLoopback: {
		title:       "Activate Automated Follow-Up Systems",
		description: "When prospects say \"I need to think about it,\" most businesses lose them forever. We'll create multi-touch follow-up sequences that recover 20-30% more enrollments.",
	},
	domain.CategoryExcite: {
		title:       "Build Retention & Referral Programs",
		description: "Your best source of new students is current families. We'll implement retention systems and referral programs that turn happy clients into your sales team.",
	},
}

var centralizeRecommendation = domain.Recommendation{
	Title:       "Centralize Everything in One Complete System",
	Description: "Spreadsheets, paper forms, and scattered tools are killing your growth. We'll build your entire enrollment system - from lead capture to payment processing - all in one place.",
	Stat:        "Most local businesses waste 10+ hours/week on manual tasks",
}

// ComputeRecommendations derives the action plan from results: one entry per
// weak area, plus the centralize recommendation below the Optimized threshold.
func ComputeRecommendations(results domain.QuizResults) []domain.Recommendation {
	recs := make([]domain.Recommendation, 0, maxRecommendations)
	for _, area := range results.WeakestAreas {
		tmpl, ok := categoryRecommendations[area]
		if !ok {
			continue
		}
		recs = append(recs, domain.Recommendation{
			Title:       tmpl.title,
			Description: tmpl.description,
			Stat:        fmt.Sprintf("Your %s score: %d%%", area, results.CategoryPercentages[area]),
		})
	}
	if results.OverallPercentage < 70 {
		recs = append(recs, centralizeRecommendation)
	}
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}
