package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/errors"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
)

// DefaultSweepInterval is how often idle sessions are looked for.
const DefaultSweepInterval = time.Minute

// SessionStore implements repository.SessionRepository in process memory.
// Sessions idle for longer than the TTL are dropped by Run, except while a
// sale is being submitted.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session

	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewSessionStore creates an empty store. A ttl of zero disables expiry.
func NewSessionStore(ttl time.Duration, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*domain.Session),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Save registers sess.
func (s *SessionStore) Save(_ context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

// Get returns the session and refreshes its idle timer.
func (s *SessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("session", id)
	}
	sess.Touch(s.now())
	return sess, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Run sweeps idle sessions every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.InfoContext(ctx, "expired idle sessions", slog.Int("count", n))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Sweep drops every session idle for longer than the TTL and returns how
// many were dropped.
func (s *SessionStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for id, sess := range s.sessions {
		if !sess.LastActive().Before(cutoff) {
			continue
		}
		sess.Lock()
		busy := sess.State.Busy()
		sess.Unlock()
		if busy {
			continue
		}
		delete(s.sessions, id)
		expired++
	}
	return expired
}
