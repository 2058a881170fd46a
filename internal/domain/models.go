package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Category is one of the CIRCLE funnel stages a question belongs to.
type Category string

const (
	CategoryClarify  Category = "Clarify"
	CategoryInvite   Category = "Invite"
	CategoryReview   Category = "Review"
	CategoryConvert  Category = "Convert"
	CategoryLoopback Category = "Loopback"
	CategoryExcite   Category = "Excite"
)

// Categories lists the fixed categories in declaration order.
var Categories = []Category{
	CategoryClarify,
	CategoryInvite,
	CategoryReview,
	CategoryConvert,
	CategoryLoopback,
	CategoryExcite,
}

// Option is a possible answer for a question.
type Option struct {
	Text  string `json:"text" yaml:"text"`
	Score int    `json:"score" yaml:"score"`
}

// Question models a multiple-choice question scored per option.
type Question struct {
	Category Category `json:"category" yaml:"category"`
	Prompt   string   `json:"prompt" yaml:"prompt"`
	Options  []Option `json:"options" yaml:"options"`
}

// MaxScore is the highest score any option of the question awards.
func (q Question) MaxScore() int {
	best := 0
	for _, opt := range q.Options {
		if opt.Score > best {
			best = opt.Score
		}
	}
	return best
}

// OptionForScore returns the first option awarding score.
func (q Question) OptionForScore(score int) (Option, bool) {
	for _, opt := range q.Options {
		if opt.Score == score {
			return opt, true
		}
	}
	return Option{}, false
}

// Catalog is the ordered, immutable list of quiz questions.
type Catalog struct {
	Questions []Question `json:"questions" yaml:"questions"`
}

// Len returns the number of questions.
func (c Catalog) Len() int {
	return len(c.Questions)
}

// Categories returns the fixed categories followed by any other category
// used by the catalog, in order of first appearance.
func (c Catalog) Categories() []Category {
	seen := make(map[Category]bool, len(Categories))
	out := make([]Category, 0, len(Categories))
	for _, cat := range Categories {
		seen[cat] = true
		out = append(out, cat)
	}
	for _, q := range c.Questions {
		if !seen[q.Category] {
			seen[q.Category] = true
			out = append(out, q.Category)
		}
	}
	return out
}

// Validate checks that the catalog can drive a quiz.
func (c Catalog) Validate() error {
	if len(c.Questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrCatalogInvalid)
	}
	for i, q := range c.Questions {
		if q.Category == "" {
			return fmt.Errorf("%w: question %d has no category", ErrCatalogInvalid, i+1)
		}
		if len(q.Options) == 0 {
			return fmt.Errorf("%w: question %d has no options", ErrCatalogInvalid, i+1)
		}
		for _, opt := range q.Options {
			if opt.Score < 0 || opt.Score > 3 {
				return fmt.Errorf("%w: question %d option %q scores %d", ErrCatalogInvalid, i+1, opt.Text, opt.Score)
			}
		}
	}
	return nil
}

// AnswerSet maps a 0-based question index to the chosen score.
type AnswerSet map[int]int

// Clone returns an independent copy.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the set with stringified indexes, e.g. {"0":3,"1":2}.
func (a AnswerSet) MarshalJSON() ([]byte, error) {
	raw := make(map[string]int, len(a))
	for k, v := range a {
		raw[strconv.Itoa(k)] = v
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes stringified indexes; non-numeric keys are an error.
func (a *AnswerSet) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(AnswerSet, len(raw))
	for k, v := range raw {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("answer index %q: %w", k, err)
		}
		out[idx] = v
	}
	*a = out
	return nil
}

// LeadInfo is the prospect's contact details.
type LeadInfo struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	BusinessName string `json:"businessName"`
}

// CategoryScore accumulates the raw score and maximum for one category.
type CategoryScore struct {
	Category   Category `json:"category"`
	Score      int      `json:"score"`
	Max        int      `json:"max"`
	Percentage int      `json:"percentage"`
}

// Level is the coarse maturity tier derived from the overall percentage.
type Level string

const (
	LevelFoundation Level = "Foundation"
	LevelDeveloping Level = "Developing"
	LevelOptimized  Level = "Optimized"
)

// LevelFor maps an overall percentage to its level.
func LevelFor(overall int) Level {
	switch {
	case overall >= 70:
		return LevelOptimized
	case overall >= 40:
		return LevelDeveloping
	default:
		return LevelFoundation
	}
}

// Description is the headline shown with the level on the results page.
func (l Level) Description() string {
	switch l {
	case LevelOptimized:
		return "Your enrollment system is strong! Focus on optimization and scaling."
	case LevelDeveloping:
		return "You have some systems in place, but significant opportunities for improvement exist."
	default:
		return "Your enrollment process needs systematic improvement to drive consistent growth."
	}
}

// QuizResults is derived from an AnswerSet on demand and never stored.
type QuizResults struct {
	OverallPercentage   int              `json:"overallPercentage"`
	Level               Level            `json:"level"`
	CategoryPercentages map[Category]int `json:"categoryPercentages"`
	Categories          []CategoryScore  `json:"categories"`
	WeakestAreas        []Category       `json:"weakestAreas"`
}

// Recommendation is an action item shown on the results page.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Stat        string `json:"stat,omitempty"`
}

// Submission is the payload posted to the CRM webhook.
type Submission struct {
	LeadInfo
	OverallScore   int              `json:"overallScore"`
	Level          Level            `json:"level"`
	CategoryScores map[Category]int `json:"categoryScores"`
	ScoresSummary  string           `json:"scoresSummary"`
	Answers        string           `json:"answers"`
	SubmittedAt    string           `json:"submittedAt"`
}

// Step is a stage of the visitor flow.
type Step string

const (
	StepWelcome     Step = "welcome"
	StepQuiz        Step = "quiz"
	StepLeadCapture Step = "leadCapture"
	StepResults     Step = "results"
)

// FlowSnapshot is a read-only view of a visitor's flow, pushed to clients.
type FlowSnapshot struct {
	VisitorID        string           `json:"visitorId"`
	Step             Step             `json:"step"`
	QuestionIndex    int              `json:"questionIndex"`
	TotalQuestions   int              `json:"totalQuestions"`
	Progress         int              `json:"progress"`
	Question         *Question        `json:"question,omitempty"`
	SelectedScore    *int             `json:"selectedScore,omitempty"`
	CanGoBack        bool             `json:"canGoBack"`
	CanFinish        bool             `json:"canFinish"`
	Answers          AnswerSet        `json:"answers"`
	Lead             LeadInfo         `json:"lead"`
	Submitting       bool             `json:"submitting"`
	Error            string           `json:"error,omitempty"`
	Results          *QuizResults     `json:"results,omitempty"`
	LevelDescription string           `json:"levelDescription,omitempty"`
	Recommendations  []Recommendation `json:"recommendations,omitempty"`
	CalendarURL      string           `json:"calendarUrl,omitempty"`
	Address          string           `json:"address"`
	ReplaceAddress   bool             `json:"replaceAddress"`
}
