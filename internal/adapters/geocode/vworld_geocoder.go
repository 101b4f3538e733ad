package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"kr-eta-service/internal/domain"
	"kr-eta-service/internal/platform/obs"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.vworld.kr/req/address"
	DefaultTimeout = 10 * time.Second

	providerName = "vworld"
)

type Options struct {
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
	Metrics *obs.Metrics
}

// VWorldGeocoder resolves road addresses through the VWorld address API.
// It holds no per-request state and is safe for concurrent use.
type VWorldGeocoder struct {
	session *http.Client
	apiKey  string
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
	metrics *obs.Metrics
}

func NewVWorldGeocoder(apiKey string, session *http.Client, opts Options) (*VWorldGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("vworld api key is empty")
	}
	if session == nil {
		session = &http.Client{}
	}

	g := &VWorldGeocoder{
		session: session,
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	if opts.BaseURL != "" {
		g.baseURL = opts.BaseURL
	}
	if opts.Timeout > 0 {
		g.timeout = opts.Timeout
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}

	return g, nil
}

type vworldResponse struct {
	Response struct {
		Status string `json:"status"`
		Result *struct {
			Point *struct {
				X domain.Degree `json:"x"`
				Y domain.Degree `json:"y"`
			} `json:"point"`
		} `json:"result"`
		Error *struct {
			Text string `json:"text"`
		} `json:"error"`
	} `json:"response"`
}

// Resolve looks up the coordinates of a road address in EPSG:4326.
// The coordinate text is returned exactly as the provider sent it.
func (g *VWorldGeocoder) Resolve(ctx context.Context, address string) (x, y domain.Degree, err error) {
	defer obs.Time(ctx, g.logger, "vworld.Resolve")(&err)
	defer func() { g.metrics.ProviderRequest(providerName, outcome(err)) }()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("create geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	q := url.Values{}
	q.Set("service", "address")
	q.Set("request", "getCoord")
	q.Set("key", g.apiKey)
	q.Set("crs", "epsg:4326")
	q.Set("address", address)
	q.Set("format", "json")
	q.Set("type", "road")
	req.URL.RawQuery = q.Encode()

	resp, err := g.session.Do(req)
	if err != nil {
		return "", "", &domain.TransportError{Op: "get coordinate", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", &domain.TransportError{Op: "get coordinate", StatusCode: resp.StatusCode}
	}

	var decoded vworldResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", "", &domain.TransportError{Op: "decode geocode response", Err: err}
	}

	r := decoded.Response
	switch r.Status {
	case "OK":
		if r.Result == nil || r.Result.Point == nil {
			return "", "", &domain.ProviderError{Provider: providerName, Status: r.Status, Message: "response has no point"}
		}
		return r.Result.Point.X, r.Result.Point.Y, nil
	case "ERROR":
		msg := ""
		if r.Error != nil {
			msg = r.Error.Text
		}
		return "", "", &domain.ProviderError{Provider: providerName, Status: r.Status, Message: msg}
	case "NOT_FOUND":
		return "", "", &domain.AddressNotFoundError{Address: address}
	default:
		return "", "", &domain.ProviderError{
			Provider: providerName,
			Status:   r.Status,
			Message:  fmt.Sprintf("unknown status: %s", r.Status),
		}
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}

	var nf *domain.AddressNotFoundError
	var pe *domain.ProviderError
	switch {
	case errors.As(err, &nf):
		return "not_found"
	case errors.As(err, &pe):
		return "provider_error"
	default:
		return "transport_error"
	}
}
