package ports

import (
	"context"
	"kr-eta-service/internal/domain"
)

// Port: persistence of configured entries and their route lists.
// Route lists are always read and written as a whole.
type RouteStore interface {
	ListEntries(ctx context.Context) ([]*domain.Entry, error)
	// Returns domain.ErrEntryNotFound when no entry has the id.
	GetEntry(ctx context.Context, id string) (*domain.Entry, error)
	// Insert or replace the entry including its full route list.
	SaveEntry(ctx context.Context, entry *domain.Entry) error
}
