package redis

import (
	"context"
	"sync"
	"time"

	"enrollment-assessment/internal/app"
	"enrollment-assessment/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Live sessions stay in a local map; the flow controller and its
//     subscribers are in-process.
//   - Redis marks which instance-local visitor sessions are live, so a load
//     balancer or operator can see active visitors across instances.
//   - Visitor answers and lead are persisted separately through KVStore.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	sf       singleflight.Group
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) GetOrCreate(ctx context.Context, visitorID string, create func(ctx context.Context) (*app.Session, error)) (*app.Session, error) {
	if session, ok := s.Get(visitorID); ok {
		return session, nil
	}

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
		// best-effort liveness marker
		_ = s.client.Set(ctx, s.key(visitorID), "1", s.ttl).Err()
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
		_ = s.client.Del(context.Background(), s.key(visitorID)).Err()
	}
}

func (s *SessionStore) key(visitorID string) string {
	return "assessment:session:" + visitorID
}
