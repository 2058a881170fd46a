package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"enrollment-assessment/internal/booking"
	"enrollment-assessment/internal/domain"
)

// DefaultFeedbackDelay is how long a selected option stays highlighted before
// the quiz advances.
const DefaultFeedbackDelay = 300 * time.Millisecond

// Submitter delivers a lead submission to the CRM.
type Submitter interface {
	Submit(ctx context.Context, submission domain.Submission) error
}

// SessionConfig holds the collaborators shared by every visitor session.
type SessionConfig struct {
	Catalog       domain.Catalog
	Submitter     Submitter
	Persistence   *Persistence
	BookingURL    string
	FeedbackDelay time.Duration
	Now           func() time.Time
	// AfterFunc schedules the auto-advance; defaults to time.AfterFunc.
	AfterFunc     func(d time.Duration, f func())
}

// Session is the flow controller for one visitor:
// welcome -> quiz -> leadCapture -> results.
type Session struct {
	id          string
	catalog     domain.Catalog
	submitter   Submitter
	persistence *Persistence
	bookingURL  string
	delay       time.Duration
	now         func() time.Time
	afterFunc   func(time.Duration, func())

	mu          sync.Mutex
	step        domain.Step
	index       int
	answers     domain.AnswerSet
	lead        domain.LeadInfo
	submitting  bool
	submitErr   string
	persisted   bool
	address     string
	replace     bool
	subscribers map[chan domain.FlowSnapshot]struct{}
}

// NewSession creates a session at the welcome step seeded with the visitor's
// saved answers and lead. Saved answers unlock direct entry to the results.
func NewSession(id string, cfg SessionConfig, answers domain.AnswerSet, lead domain.LeadInfo) *Session {
	if answers == nil {
		answers = domain.AnswerSet{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	afterFunc := cfg.AfterFunc
	if afterFunc == nil {
		afterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	return &Session{
		id:          id,
		catalog:     cfg.Catalog,
		submitter:   cfg.Submitter,
		persistence: cfg.Persistence,
		bookingURL:  cfg.BookingURL,
		delay:       cfg.FeedbackDelay,
		now:         now,
		afterFunc:   afterFunc,
		step:        domain.StepWelcome,
		answers:     answers.Clone(),
		lead:        lead,
		persisted:   len(answers) > 0,
		address:     "/",
		subscribers: make(map[chan domain.FlowSnapshot]struct{}),
	}
}

// ID returns the visitor ID.
func (s *Session) ID() string {
	return s.id
}

// Start moves from the welcome step into the quiz.
func (s *Session) Start() (domain.FlowSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != domain.StepWelcome {
		return s.snapshotLocked(), domain.ErrInvalidTransition
	}
	s.step = domain.StepQuiz
	return s.broadcastLocked(), nil
}

// SelectAnswer records the score of the chosen option for the current question
// and schedules the advance to the next question (or to lead capture).
func (s *Session) SelectAnswer(option int) (domain.FlowSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != domain.StepQuiz {
		return s.snapshotLocked(), domain.ErrInvalidTransition
	}
	if s.index < 0 || s.index >= s.catalog.Len() {
		return s.snapshotLocked(), domain.ErrQuestionNotFound
	}
	question := s.catalog.Questions[s.index]
	if option < 0 || option >= len(question.Options) {
		return s.snapshotLocked(), domain.ErrOptionNotFound
	}
	s.answers[s.index] = question.Options[option].Score

	answered := s.index
	if s.delay <= 0 {
		s.advanceLocked(answered)
		return s.broadcastLocked(), nil
	}
	snapshot := s.broadcastLocked()
	s.afterFunc(s.delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.step != domain.StepQuiz || s.index != answered {
			return
		}
		s.advanceLocked(answered)
		s.broadcastLocked()
	})
	return snapshot, nil
}

func (s *Session) advanceLocked(answered int) {
	if answered < s.catalog.Len()-1 {
		s.index = answered + 1
		return
	}
	s.step = domain.StepLeadCapture
}

// Previous goes back one question, stopping at the first.
func (s *Session) Previous() (domain.FlowSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != domain.StepQuiz {
		return s.snapshotLocked(), domain.ErrInvalidTransition
	}
	if s.index > 0 {
		s.index--
	}
	return s.broadcastLocked(), nil
}

// NextStep jumps to lead capture once the last question has an answer.
func (s *Session) NextStep() (domain.FlowSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != domain.StepQuiz || !s.canFinishLocked() {
		return s.snapshotLocked(), domain.ErrInvalidTransition
	}
	s.step = domain.StepLeadCapture
	return s.broadcastLocked(), nil
}

func (s *Session) canFinishLocked() bool {
	last := s.catalog.Len() - 1
	if s.index != last {
		return false
	}
	_, ok := s.answers[last]
	return ok
}

// UpdateLead replaces the lead details while on the lead capture step.
func (s *Session) UpdateLead(lead domain.LeadInfo) (domain.FlowSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != domain.StepLeadCapture {
		return s.snapshotLocked(), domain.ErrInvalidTransition
	}
	if s.submitting {
		return s.snapshotLocked(), domain.ErrSubmissionInProgress
	}
	s.lead = lead
	return s.broadcastLocked(), nil
}

// SubmitLead computes results, sends them to the CRM, persists the visitor's
// state and moves to the results step. Only one submission runs at a time; on
// failure the session stays on lead capture with a user-facing error.
func (s *Session) SubmitLead(ctx context.Context) (domain.FlowSnapshot, error) {
	s.mu.Lock()
	if s.step != domain.StepLeadCapture || s.submitting {
		err := domain.ErrInvalidTransition
		if s.submitting {
			err = domain.ErrSubmissionInProgress
		}
		snapshot := s.snapshotLocked()
		s.mu.Unlock()
		return snapshot, err
	}
	s.submitting = true
	s.submitErr = ""
	answers := s.answers.Clone()
	lead := s.lead
	s.broadcastLocked()
	s.mu.Unlock()

	err := s.submit(ctx, answers, lead)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if err != nil {
		log.Printf("submission error for visitor %s: %v", s.id, err)
		s.submitErr = domain.SubmitErrorMessage
		return s.broadcastLocked(), fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}
	s.step = domain.StepResults
	s.persisted = true
	s.address = booking.ResultsPath(lead)
	s.replace = false
	return s.broadcastLocked(), nil
}

func (s *Session) submit(ctx context.Context, answers domain.AnswerSet, lead domain.LeadInfo) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	results := ComputeResults(s.catalog, answers)
	payload := BuildSubmission(s.catalog, answers, lead, results, s.now())

	if s.submitter != nil {
		if err := s.submitter.Submit(ctx, payload); err != nil {
			return fmt.Errorf("send webhook: %w", err)
		}
	}
	if s.persistence != nil {
		if err := s.persistence.Save(ctx, s.id, answers, lead); err != nil {
			return err
		}
	}
	return nil
}

// EnterResults handles direct entry to the results address. Only a visitor on
// the welcome step whose answers were saved by a completed submission sees the
// results; other visitors on the welcome step are sent back to the root
// address. Entry from the middle of the flow is rejected and the address is
// rewritten to the current step.
func (s *Session) EnterResults() (domain.FlowSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.step == domain.StepResults:
		return s.snapshotLocked(), nil
	case s.step != domain.StepWelcome:
		s.replace = true
		return s.snapshotLocked(), domain.ErrInvalidTransition
	case !s.persisted:
		s.index = 0
		s.address = "/"
		s.replace = true
		return s.broadcastLocked(), nil
	}
	s.step = domain.StepResults
	s.address = booking.ResultsPath(s.lead)
	s.replace = true
	return s.broadcastLocked(), nil
}

// Snapshot returns the current view of the flow.
func (s *Session) Snapshot() domain.FlowSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// IsEmpty reports whether no client is attached to the session.
func (s *Session) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers) == 0
}

// Subscribe returns a channel of snapshots, primed with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.FlowSnapshot, func()) {
	ch := make(chan domain.FlowSnapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() domain.FlowSnapshot {
	snapshot := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
			// slow reader: replace its oldest pending snapshot
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
	return snapshot
}

func (s *Session) snapshotLocked() domain.FlowSnapshot {
	total := s.catalog.Len()
	snapshot := domain.FlowSnapshot{
		VisitorID:      s.id,
		Step:           s.step,
		QuestionIndex:  s.index,
		TotalQuestions: total,
		Answers:        s.answers.Clone(),
		Lead:           s.lead,
		Submitting:     s.submitting,
		Error:          s.submitErr,
		Address:        s.address,
		ReplaceAddress: s.replace,
	}

	switch s.step {
	case domain.StepQuiz:
		if s.index >= 0 && s.index < total {
			question := s.catalog.Questions[s.index]
			snapshot.Question = &question
			if score, ok := s.answers[s.index]; ok {
				snapshot.SelectedScore = &score
			}
			snapshot.Progress = percentage(s.index+1, total)
		}
		snapshot.CanGoBack = s.index > 0
		snapshot.CanFinish = s.canFinishLocked()
	case domain.StepResults:
		results := ComputeResults(s.catalog, s.answers)
		snapshot.Results = &results
		snapshot.LevelDescription = results.Level.Description()
		snapshot.Recommendations = ComputeRecommendations(results)
		snapshot.CalendarURL = booking.CalendarURL(s.bookingURL, s.lead)
	}
	return snapshot
}
