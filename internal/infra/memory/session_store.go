package memory

import (
	"context"
	"sync"
	"time"

	"iq-report-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore,
// used for tests and single-instance demo deployments.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	seq      map[string]uint64
	nextSeq  uint64
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.Session),
		seq:      make(map[string]uint64),
		now:      time.Now,
	}
}

// NewSessionStoreWithClock is test-only for deterministic timestamps.
func NewSessionStoreWithClock(now func() time.Time) *SessionStore {
	s := NewSessionStore()
	s.now = now
	return s
}

func (s *SessionStore) Create(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.SessionID]; ok {
		return domain.ErrDuplicateSession
	}
	s.nextSeq++
	s.seq[session.SessionID] = s.nextSeq
	s.sessions[session.SessionID] = session
	return nil
}

func (s *SessionStore) GetByID(_ context.Context, sessionID string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) LatestByEmail(_ context.Context, email string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestLocked(func(session domain.Session) bool {
		return session.Email == email
	})
}

func (s *SessionStore) LatestPendingByEmail(_ context.Context, email string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestLocked(func(session domain.Session) bool {
		return session.Email == email && session.PaymentStatus == domain.StatusPending
	})
}

func (s *SessionStore) LatestPending(_ context.Context) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestLocked(func(session domain.Session) bool {
		return session.PaymentStatus == domain.StatusPending
	})
}

func (s *SessionStore) GetByOrderID(_ context.Context, orderID string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestLocked(func(session domain.Session) bool {
		return session.ExternalOrderID != "" && session.ExternalOrderID == orderID
	})
}

func (s *SessionStore) UpdateStatus(_ context.Context, sessionID string, status domain.PaymentStatus, orderID string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	session.PaymentStatus = status
	if orderID != "" {
		session.ExternalOrderID = orderID
	}
	session.UpdatedAt = s.now()
	s.sessions[sessionID] = session
	return session, nil
}

// latestLocked scans for the newest session matching the predicate,
// ordering by createdAt and falling back to insertion order on ties.
func (s *SessionStore) latestLocked(match func(domain.Session) bool) (domain.Session, error) {
	var (
		best    domain.Session
		bestSeq uint64
		found   bool
	)
	for id, session := range s.sessions {
		if !match(session) {
			continue
		}
		seq := s.seq[id]
		if !found || session.CreatedAt.After(best.CreatedAt) ||
			(session.CreatedAt.Equal(best.CreatedAt) && seq > bestSeq) {
			best, bestSeq, found = session, seq, true
		}
	}
	if !found {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return best, nil
}
