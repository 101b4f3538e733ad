package domain

// Waypoint cap shared by the wizard and the directions request.
const MaxWaypoints = 5

// Title given to entries created by the setup flow.
const DefaultEntryTitle = "KR ETA"

// Default labels applied where a location has no name.
const (
	DefaultStartName    = "Start"
	DefaultEndName      = "End"
	DefaultWaypointName = "Waypoint"
)

// A start, an end, and up to MaxWaypoints intermediate stops, polled for ETA.
type Route struct {
	ID        string     `json:"id"`
	Start     Location   `json:"start"`
	End       Location   `json:"end"`
	Waypoints []Location `json:"waypoints"`
}

// Fare breakdown as reported by the directions provider.
type Fare struct {
	Taxi *int64 `json:"taxi,omitempty"`
	Toll *int64 `json:"toll,omitempty"`
}

// RouteSummary is one directions result. Fields the provider omitted stay nil.
// It is never persisted.
type RouteSummary struct {
	Duration *int64   `json:"duration,omitempty"`
	Distance *int64   `json:"distance,omitempty"`
	Fare     *Fare    `json:"fare,omitempty"`
	TaxiFare *float64 `json:"taxi_fare,omitempty"`
}

// API keys shared by every route of one configured instance.
type Credentials struct {
	GeocodingAPIKey  string `json:"geocoding_api_key"`
	DirectionsAPIKey string `json:"directions_api_key"`
}

func (c Credentials) Complete() bool {
	return c.GeocodingAPIKey != "" && c.DirectionsAPIKey != ""
}

// Entry is one configured instance: its credentials and persisted routes.
type Entry struct {
	ID          string
	Title       string
	Credentials Credentials
	Routes      []Route
}

// RemoveRoutes returns routes without the given indices, keeping the original
// relative order. Out-of-range indices are ignored.
func RemoveRoutes(routes []Route, indices []int) []Route {
	drop := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		drop[i] = struct{}{}
	}

	out := make([]Route, 0, len(routes))
	for i, r := range routes {
		if _, ok := drop[i]; ok {
			continue
		}
		out = append(out, r)
	}
	return out
}
