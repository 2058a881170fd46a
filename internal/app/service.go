package app

import (
	"context"
	"net/url"

	"enrollment-assessment/internal/booking"
	"enrollment-assessment/internal/domain"
)

// SessionRepository abstracts where live visitor sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	// GetOrCreate returns the visitor's session, calling create at most once
	// per visitor when none exists.
	GetOrCreate(ctx context.Context, visitorID string, create func(ctx context.Context) (*Session, error)) (*Session, error)
	Get(visitorID string) (*Session, bool)
	// Attach subscribes to session only while it is still the visitor's
	// stored session, so DeleteIfEmpty cannot drop it in between.
	Attach(visitorID string, session *Session) (<-chan domain.FlowSnapshot, func(), bool)
	DeleteIfEmpty(visitorID string)
}

// openAttempts bounds retries when another connection drops the session
// between lookup and subscription.
const openAttempts = 3

// AssessmentService contains the visitor-facing use cases.
type AssessmentService struct {
	sessions SessionRepository
	cfg      SessionConfig
}

func NewAssessmentService(store SessionRepository, cfg SessionConfig) *AssessmentService {
	return &AssessmentService{sessions: store, cfg: cfg}
}

// Catalog returns the question catalog served to visitors.
func (s *AssessmentService) Catalog() domain.Catalog {
	return s.cfg.Catalog
}

// Open attaches to a visitor's session, restoring persisted answers and lead
// for new sessions, and subscribes to its snapshots. Opening the results
// address runs the results guard. The caller must invoke the returned cancel
// function and then Leave.
func (s *AssessmentService) Open(ctx context.Context, visitorID, path string) (*Session, <-chan domain.FlowSnapshot, func(), error) {
	for attempt := 0; attempt < openAttempts; attempt++ {
		session, err := s.sessions.GetOrCreate(ctx, visitorID, func(ctx context.Context) (*Session, error) {
			return s.restore(ctx, visitorID), nil
		})
		if err != nil {
			return nil, nil, nil, err
		}
		if isResultsPath(path) {
			// a rejected mid-flow entry leaves the step alone; the snapshot
			// still carries the address to send the client back to
			_, _ = session.EnterResults()
		}
		if ch, cancel, ok := s.sessions.Attach(visitorID, session); ok {
			return session, ch, cancel, nil
		}
	}
	return nil, nil, nil, domain.ErrSessionNotFound
}

func (s *AssessmentService) restore(ctx context.Context, visitorID string) *Session {
	answers := domain.AnswerSet{}
	lead := domain.LeadInfo{}
	if s.cfg.Persistence != nil {
		answers = s.cfg.Persistence.LoadAnswers(ctx, visitorID)
		lead = s.cfg.Persistence.LoadLead(ctx, visitorID)
	}
	return NewSession(visitorID, s.cfg, answers, lead)
}

// Leave drops the visitor's session once no client is attached to it.
func (s *AssessmentService) Leave(_ context.Context, visitorID string) {
	if _, ok := s.sessions.Get(visitorID); !ok {
		return
	}
	s.sessions.DeleteIfEmpty(visitorID)
}

// Score evaluates answers without touching any session.
func (s *AssessmentService) Score(answers domain.AnswerSet) (domain.QuizResults, []domain.Recommendation) {
	results := ComputeResults(s.cfg.Catalog, answers)
	return results, ComputeRecommendations(results)
}

func isResultsPath(path string) bool {
	u, err := url.Parse(path)
	if err != nil {
		return false
	}
	return u.Path == booking.ResultsBasePath
}
