package memory

import (
	"context"
	"sync"

	"enrollment-assessment/internal/app"
	"enrollment-assessment/internal/domain"
	"golang.org/x/sync/singleflight"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	sf       singleflight.Group
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) GetOrCreate(ctx context.Context, visitorID string, create func(ctx context.Context) (*app.Session, error)) (*app.Session, error) {
	if session, ok := s.Get(visitorID); ok {
		return session, nil
	}

	// Concurrent first connections of one visitor share a single restore.
	result, err, _ := s.sf.Do(visitorID, func() (interface{}, error) {
		if session, ok := s.Get(visitorID); ok {
			return session, nil
		}
		session, err := create(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.sessions[visitorID] = session
		s.mu.Unlock()
		return session, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*app.Session), nil
}

func (s *SessionStore) Get(visitorID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[visitorID]
	return session, ok
}

func (s *SessionStore) Attach(visitorID string, session *app.Session) (<-chan domain.FlowSnapshot, func(), bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sessions[visitorID] != session {
		return nil, nil, false
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, true
}

func (s *SessionStore) DeleteIfEmpty(visitorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[visitorID]
	if !ok {
		return
	}
	if session.IsEmpty() {
		delete(s.sessions, visitorID)
	}
}
