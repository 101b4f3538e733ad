package sessions

import (
	"context"
	"fmt"
	"kr-eta-service/internal/domain"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

type memorySession struct {
	data      []byte
	expiresAt time.Time
}

// MemorySessionStore is the single-process SessionStore used when Redis is
// disabled. Expired sessions are dropped lazily on access and by Sweep.
type MemorySessionStore struct {
	sessions *xsync.MapOf[string, memorySession]
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: xsync.NewMapOf[string, memorySession](),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Put(_ context.Context, id string, data []byte, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}
	s.sessions.Store(id, memorySession{
		data:      append([]byte(nil), data...),
		expiresAt: expiresAt,
	})
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) ([]byte, error) {
	sess, ok := s.sessions.Load(id)
	if !ok || s.expired(sess) {
		if ok {
			s.sessions.Delete(id)
		}
		return nil, fmt.Errorf("get session %q: %w", id, domain.ErrSessionNotFound)
	}
	return append([]byte(nil), sess.data...), nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.sessions.Delete(id)
	return nil
}

// Sweep removes every expired session and returns how many were dropped.
func (s *MemorySessionStore) Sweep() int {
	dropped := 0
	s.sessions.Range(func(id string, sess memorySession) bool {
		if s.expired(sess) {
			s.sessions.Delete(id)
			dropped++
		}
		return true
	})
	return dropped
}

// Len reports the number of stored sessions, expired ones included.
func (s *MemorySessionStore) Len() int {
	return s.sessions.Size()
}

func (s *MemorySessionStore) expired(sess memorySession) bool {
	return !sess.expiresAt.IsZero() && !s.now().Before(sess.expiresAt)
}
