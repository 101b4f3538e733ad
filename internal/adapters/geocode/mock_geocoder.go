package geocode

import (
	"context"
	"kr-eta-service/internal/domain"
	"sync"
)

type MockPoint struct {
	Address string
	X, Y    domain.Degree
}

// MockGeocoder resolves a fixed set of addresses and reports every other
// address as not found. Calls are recorded in order.
type MockGeocoder struct {
	mu     sync.Mutex
	points map[string]MockPoint
	errs   map[string]error
	calls  []string
}

func NewMockGeocoder(points []MockPoint) *MockGeocoder {
	m := make(map[string]MockPoint, len(points))
	for _, p := range points {
		m[p.Address] = p
	}
	return &MockGeocoder{points: m, errs: map[string]error{}}
}

// FailWith makes Resolve return err for address.
func (g *MockGeocoder) FailWith(address string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errs[address] = err
}

func (g *MockGeocoder) Resolve(ctx context.Context, address string) (domain.Degree, domain.Degree, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, address)

	if err, ok := g.errs[address]; ok {
		return "", "", err
	}
	p, ok := g.points[address]
	if !ok {
		return "", "", &domain.AddressNotFoundError{Address: address}
	}
	return p.X, p.Y, nil
}

func (g *MockGeocoder) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}
