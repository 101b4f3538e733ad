package ports

import (
	"context"
	"time"
)

// Port: storage for serialized wizard sessions between host-dispatched steps.
type SessionStore interface {
	Put(ctx context.Context, id string, data []byte, ttl time.Duration) error
	// Returns domain.ErrSessionNotFound when the session is absent or expired.
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}
