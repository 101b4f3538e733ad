package directions

import (
	"context"
	"kr-eta-service/internal/domain"
	"sync"
)

// MockDirections returns a canned summary and records the last request.
type MockDirections struct {
	mu        sync.Mutex
	Summary   domain.RouteSummary
	Err       error
	start     *domain.Location
	end       *domain.Location
	waypoints []domain.Location
	calls     int
}

func NewMockDirections(summary domain.RouteSummary) *MockDirections {
	return &MockDirections{Summary: summary}
}

func (m *MockDirections) SetStart(loc domain.Location) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.start = &loc
}

func (m *MockDirections) SetEnd(loc domain.Location) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.end = &loc
}

func (m *MockDirections) SetWaypoints(locs []domain.Location) error {
	if len(locs) > domain.MaxWaypoints {
		return &domain.TooManyWaypointsError{Count: len(locs), Max: domain.MaxWaypoints}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waypoints = append([]domain.Location(nil), locs...)
	return nil
}

func (m *MockDirections) FetchSummary(ctx context.Context) (domain.RouteSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.start == nil || m.end == nil {
		return domain.RouteSummary{}, domain.ErrMissingEndpoints
	}
	if m.Err != nil {
		return domain.RouteSummary{}, m.Err
	}
	return m.Summary, nil
}

// Request returns the endpoints and waypoints of the last configured request.
func (m *MockDirections) Request() (start, end *domain.Location, waypoints []domain.Location) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.start, m.end, append([]domain.Location(nil), m.waypoints...)
}

func (m *MockDirections) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
