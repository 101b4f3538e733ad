package directions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"kr-eta-service/internal/domain"
	"kr-eta-service/internal/platform/obs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://apis-navi.kakaomobility.com/v1/directions"
	DefaultTimeout = 10 * time.Second

	providerName = "kakaomobility"
)

type Options struct {
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
	Metrics *obs.Metrics
}

// KakaoNavi builds and sends a single driving-directions request.
//
// It carries mutable route state (start, end, waypoints) and is not safe for
// concurrent use; build one per route.
type KakaoNavi struct {
	session *http.Client
	header  http.Header
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
	metrics *obs.Metrics

	start     *domain.Location
	end       *domain.Location
	waypoints []domain.Location
}

func NewKakaoNavi(apiKey string, session *http.Client, opts Options) (*KakaoNavi, error) {
	if apiKey == "" {
		return nil, errors.New("kakao mobility api key is empty")
	}
	if session == nil {
		session = &http.Client{}
	}

	header := http.Header{}
	header.Set("Authorization", "KakaoAK "+apiKey)
	header.Set("Accept", "application/json")

	n := &KakaoNavi{
		session:   session,
		header:    header,
		baseURL:   DefaultBaseURL,
		timeout:   DefaultTimeout,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		waypoints: []domain.Location{},
	}
	if opts.BaseURL != "" {
		n.baseURL = opts.BaseURL
	}
	if opts.Timeout > 0 {
		n.timeout = opts.Timeout
	}
	if n.logger == nil {
		n.logger = zap.NewNop()
	}

	return n, nil
}

func (n *KakaoNavi) SetStart(loc domain.Location) { n.start = &loc }

func (n *KakaoNavi) SetEnd(loc domain.Location) { n.end = &loc }

func (n *KakaoNavi) SetWaypoints(locs []domain.Location) error {
	if len(locs) > domain.MaxWaypoints {
		return &domain.TooManyWaypointsError{Count: len(locs), Max: domain.MaxWaypoints}
	}
	n.waypoints = append([]domain.Location{}, locs...)
	return nil
}

// EncodePoint renders a location as "{x},{y}" with ",name={name}" appended
// when the location is named.
func EncodePoint(loc domain.Location) string {
	s := loc.X.String() + "," + loc.Y.String()
	if loc.Name != nil {
		s += ",name=" + *loc.Name
	}
	return s
}

// Params returns the query parameters for the current route state.
func (n *KakaoNavi) Params() (url.Values, error) {
	if n.start == nil || n.end == nil {
		return nil, domain.ErrMissingEndpoints
	}

	q := url.Values{}
	q.Set("origin", EncodePoint(*n.start))
	q.Set("destination", EncodePoint(*n.end))
	q.Set("priority", "RECOMMEND")
	q.Set("summary", "true")

	if len(n.waypoints) > 0 {
		pts := make([]string, 0, len(n.waypoints))
		for _, w := range n.waypoints {
			pts = append(pts, EncodePoint(w))
		}
		q.Set("waypoints", strings.Join(pts, "|"))
	}

	return q, nil
}

type directionsResponse struct {
	Routes []struct {
		ResultCode *int                 `json:"result_code"`
		ResultMsg  string               `json:"result_msg"`
		Summary    *domain.RouteSummary `json:"summary"`
	} `json:"routes"`
}

// FetchSummary requests the recommended route and returns its summary as the
// provider reported it. One request per call, no retries.
func (n *KakaoNavi) FetchSummary(ctx context.Context) (_ domain.RouteSummary, err error) {
	q, err := n.Params()
	if err != nil {
		return domain.RouteSummary{}, err
	}

	defer obs.Time(ctx, n.logger, "kakao.FetchSummary")(&err)
	defer func() { n.metrics.ProviderRequest(providerName, outcome(err)) }()

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL, nil)
	if err != nil {
		return domain.RouteSummary{}, fmt.Errorf("create directions request: %w", err)
	}
	for k, v := range n.header {
		req.Header[k] = v
	}
	req.URL.RawQuery = q.Encode()

	resp, err := n.session.Do(req)
	if err != nil {
		return domain.RouteSummary{}, &domain.TransportError{Op: "get eta", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.RouteSummary{}, &domain.TransportError{Op: "get eta", StatusCode: resp.StatusCode}
	}

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.RouteSummary{}, &domain.TransportError{Op: "decode directions response", Err: err}
	}

	if len(decoded.Routes) == 0 {
		return domain.RouteSummary{}, &domain.ProviderError{Provider: providerName, Code: -1, Message: "response has no routes"}
	}

	first := decoded.Routes[0]
	if first.ResultCode == nil {
		return domain.RouteSummary{}, &domain.ProviderError{Provider: providerName, Code: -1, Message: "response has no result_code"}
	}
	if *first.ResultCode != 0 {
		return domain.RouteSummary{}, &domain.ProviderError{
			Provider: providerName,
			Code:     *first.ResultCode,
			Message:  first.ResultMsg,
		}
	}
	if first.Summary == nil {
		return domain.RouteSummary{}, nil
	}

	return *first.Summary, nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}

	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		return "provider_error"
	}
	return "transport_error"
}
