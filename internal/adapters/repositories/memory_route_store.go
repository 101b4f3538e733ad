package repositories

import (
	"context"
	"errors"
	"fmt"
	"kr-eta-service/internal/domain"
	"sync"
)

// MemoryRouteStore keeps entries in process, in insertion order.
// Entries are copied on the way in and out.
type MemoryRouteStore struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]domain.Entry
}

func NewMemoryRouteStore(entries ...*domain.Entry) *MemoryRouteStore {
	s := &MemoryRouteStore{entries: make(map[string]domain.Entry, len(entries))}
	for _, e := range entries {
		_ = s.SaveEntry(context.Background(), e)
	}
	return s
}

func (s *MemoryRouteStore) ListEntries(ctx context.Context) ([]*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Entry, 0, len(s.order))
	for _, id := range s.order {
		e := cloneEntry(s.entries[id])
		out = append(out, &e)
	}
	return out, nil
}

func (s *MemoryRouteStore) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("get entry %q: %w", id, domain.ErrEntryNotFound)
	}
	out := cloneEntry(e)
	return &out, nil
}

func (s *MemoryRouteStore) SaveEntry(ctx context.Context, entry *domain.Entry) error {
	if entry == nil || entry.ID == "" {
		return errors.New("save entry: entry id must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entry.ID]; !ok {
		s.order = append(s.order, entry.ID)
	}
	e := cloneEntry(*entry)
	if e.Title == "" {
		e.Title = domain.DefaultEntryTitle
	}
	s.entries[entry.ID] = e
	return nil
}

func cloneEntry(e domain.Entry) domain.Entry {
	routes := make([]domain.Route, len(e.Routes))
	for i, r := range e.Routes {
		r.Waypoints = append([]domain.Location{}, r.Waypoints...)
		routes[i] = r
	}
	e.Routes = routes
	return e
}
