package ports

import (
	"context"
	"kr-eta-service/internal/domain"
)

// Contract for resolving a free-form address to a coordinate pair.
type Geocoder interface {
	// Resolve the address as given; callers decode it beforehand if needed.
	Resolve(ctx context.Context, address string) (x, y domain.Degree, err error)
}

// Binds a geocoding API key to a Geocoder.
type GeocoderFactory func(apiKey string) (Geocoder, error)
