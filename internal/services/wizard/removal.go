package wizard

import (
	"context"
	"fmt"
	"kr-eta-service/internal/domain"
	"kr-eta-service/internal/ports"
	"strconv"
)

type RemovalOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// RemovalOptions lists one option per route, keyed by its index.
func RemovalOptions(routes []domain.Route) []RemovalOption {
	opts := make([]RemovalOption, 0, len(routes))
	for i, r := range routes {
		opts = append(opts, RemovalOption{
			Value: strconv.Itoa(i),
			Label: fmt.Sprintf("%s → %s (%d waypoints)",
				placeLabel(r.Start, domain.DefaultStartName),
				placeLabel(r.End, domain.DefaultEndName),
				len(r.Waypoints),
			),
		})
	}
	return opts
}

func placeLabel(loc domain.Location, fallback string) string {
	if loc.Name != nil && *loc.Name != "" {
		return *loc.Name
	}
	if loc.Address != "" {
		return loc.Address
	}
	return fallback
}

// ParseIndices converts selected option values to route indices, skipping
// anything that is not a non-negative integer.
func ParseIndices(selected []string) []int {
	out := make([]int, 0, len(selected))
	for _, s := range selected {
		i, err := strconv.Atoi(s)
		if err != nil || i < 0 {
			continue
		}
		out = append(out, i)
	}
	return out
}

// RemoveRoutes drops the selected routes from an entry and writes the
// remaining list back as a whole.
func RemoveRoutes(ctx context.Context, store ports.RouteStore, entryID string, selected []string) (*domain.Entry, error) {
	entry, err := store.GetEntry(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("remove routes: %w", err)
	}

	entry.Routes = domain.RemoveRoutes(entry.Routes, ParseIndices(selected))
	if err := store.SaveEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("remove routes: %w", err)
	}

	return entry, nil
}
