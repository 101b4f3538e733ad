package ports

import (
	"context"
	"kr-eta-service/internal/domain"
)

// Contract for a stateful directions request builder.
type DirectionsClient interface {
	SetStart(loc domain.Location)
	SetEnd(loc domain.Location)
	// Replace the waypoint list wholesale.
	SetWaypoints(locs []domain.Location) error
	FetchSummary(ctx context.Context) (domain.RouteSummary, error)
}

// Binds a directions API key to a fresh DirectionsClient.
type DirectionsFactory func(apiKey string) (DirectionsClient, error)
