package eta

import (
	"context"
	"errors"
	"fmt"
	"kr-eta-service/internal/domain"
	"kr-eta-service/internal/platform/obs"
	"kr-eta-service/internal/ports"
	"math"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
)

const (
	Unit = "min"
	Icon = "mdi:car"
)

var errNoDuration = errors.New("summary has no duration")

// Sensor describes the value a route is exposed as.
type Sensor struct {
	UniqueID string `json:"unique_id"`
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	Icon     string `json:"icon"`
}

type Attributes struct {
	Distance       *int64       `json:"distance"`
	Fare           *domain.Fare `json:"fare"`
	TaxiFare       *float64     `json:"taxi_fare"`
	Origin         string       `json:"origin"`
	Destination    string       `json:"destination"`
	WaypointsCount int          `json:"waypoints_count"`
}

// Reading is one poll result. Value is nil when the poll failed.
type Reading struct {
	Sensor     Sensor     `json:"sensor"`
	RouteID    string     `json:"route_id"`
	Value      *int64     `json:"value"`
	Attributes Attributes `json:"attributes"`
}

func SensorFor(entryID string, route domain.Route) Sensor {
	return Sensor{
		UniqueID: fmt.Sprintf("%s_%s_eta", entryID, route.ID),
		Name: fmt.Sprintf("ETA %s -> %s",
			route.Start.NameOr(domain.DefaultStartName),
			route.End.NameOr(domain.DefaultEndName),
		),
		Unit: Unit,
		Icon: Icon,
	}
}

// Minutes converts a duration in seconds to whole minutes, rounding halves to even.
func Minutes(seconds int64) int64 {
	return int64(math.RoundToEven(float64(seconds) / 60))
}

type Options struct {
	Logger  *zap.Logger
	Metrics *obs.Metrics
}

// Poller fetches the current ETA of stored routes. Scheduling belongs to the
// caller; each Poll is a single directions request. Attributes of the last
// successful poll are kept per sensor and reported again when a poll fails.
type Poller struct {
	directions ports.DirectionsFactory
	logger     *zap.Logger
	metrics    *obs.Metrics
	last       *xsync.MapOf[string, Attributes]
}

func NewPoller(directions ports.DirectionsFactory, opts Options) *Poller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		directions: directions,
		logger:     logger,
		metrics:    opts.Metrics,
		last:       xsync.NewMapOf[string, Attributes](),
	}
}

// Poll never fails: errors are logged and reported as an absent value.
func (p *Poller) Poll(ctx context.Context, entry *domain.Entry, route domain.Route) Reading {
	sensor := SensorFor(entry.ID, route)
	reading := Reading{Sensor: sensor, RouteID: route.ID}

	summary, err := p.fetch(ctx, entry.Credentials.DirectionsAPIKey, route)
	if err != nil {
		p.logger.Error("failed to update eta",
			zap.String("sensor", sensor.UniqueID),
			zap.Error(err),
		)
		p.metrics.Poll("error")

		if attrs, ok := p.last.Load(sensor.UniqueID); ok {
			reading.Attributes = attrs
		} else {
			reading.Attributes = baseAttributes(route)
		}
		return reading
	}

	minutes := Minutes(*summary.Duration)
	attrs := baseAttributes(route)
	attrs.Distance = summary.Distance
	attrs.Fare = summary.Fare
	attrs.TaxiFare = summary.TaxiFare

	p.last.Store(sensor.UniqueID, attrs)
	p.metrics.Poll("ok")

	reading.Value = &minutes
	reading.Attributes = attrs
	return reading
}

// PollEntry polls every route of the entry in order.
func (p *Poller) PollEntry(ctx context.Context, entry *domain.Entry) []Reading {
	out := make([]Reading, 0, len(entry.Routes))
	for _, r := range entry.Routes {
		out = append(out, p.Poll(ctx, entry, r))
	}
	return out
}

func (p *Poller) fetch(ctx context.Context, apiKey string, route domain.Route) (_ domain.RouteSummary, err error) {
	defer obs.Time(ctx, p.logger, "eta.fetch")(&err)

	navi, err := p.directions(apiKey)
	if err != nil {
		return domain.RouteSummary{}, fmt.Errorf("build directions client: %w", err)
	}

	navi.SetStart(route.Start.WithDefaultName(domain.DefaultStartName))
	navi.SetEnd(route.End.WithDefaultName(domain.DefaultEndName))

	waypoints := make([]domain.Location, 0, len(route.Waypoints))
	for _, wp := range route.Waypoints {
		waypoints = append(waypoints, wp.WithDefaultName(domain.DefaultWaypointName))
	}
	if err := navi.SetWaypoints(waypoints); err != nil {
		return domain.RouteSummary{}, err
	}

	summary, err := navi.FetchSummary(ctx)
	if err != nil {
		return domain.RouteSummary{}, err
	}
	if summary.Duration == nil {
		return domain.RouteSummary{}, errNoDuration
	}
	return summary, nil
}

func baseAttributes(route domain.Route) Attributes {
	return Attributes{
		Origin:         route.Start.NameOr(domain.DefaultStartName),
		Destination:    route.End.NameOr(domain.DefaultEndName),
		WaypointsCount: len(route.Waypoints),
	}
}
