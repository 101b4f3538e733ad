package directions

import (
	"context"
	"kr-eta-service/internal/domain"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	query  url.Values
	header http.Header
	calls  int
}

func newTestNavi(t *testing.T, body string, status int) (*KakaoNavi, *captured) {
	t.Helper()

	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.calls++
		c.query = r.URL.Query()
		c.header = r.Header.Clone()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	n, err := NewKakaoNavi("test_api_key", srv.Client(), Options{BaseURL: srv.URL})
	require.NoError(t, err)
	return n, c
}

var (
	start = domain.NewLocation("Start", "127.0", "37.0")
	end   = domain.NewLocation("End", "127.1", "37.1")
)

func TestEncodePoint(t *testing.T) {
	assert.Equal(t, "127.0,37.0,name=Start", EncodePoint(start))
	assert.Equal(t, "127.0,37.0", EncodePoint(domain.Location{X: "127.0", Y: "37.0"}))
}

func TestSetWaypointsLimit(t *testing.T) {
	n, err := NewKakaoNavi("k", nil, Options{})
	require.NoError(t, err)

	five := []domain.Location{start, start, start, start, start}
	require.NoError(t, n.SetWaypoints(five))
	assert.Len(t, n.waypoints, 5)

	err = n.SetWaypoints(append(five, start))
	var tm *domain.TooManyWaypointsError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, 6, tm.Count)
	assert.Len(t, n.waypoints, 5)
}

func TestSetWaypointsReplaces(t *testing.T) {
	n, err := NewKakaoNavi("k", nil, Options{})
	require.NoError(t, err)

	require.NoError(t, n.SetWaypoints([]domain.Location{start, end}))
	require.NoError(t, n.SetWaypoints([]domain.Location{end}))
	assert.Equal(t, []domain.Location{end}, n.waypoints)
}

func TestFetchSummaryMissingEndpoints(t *testing.T) {
	n, c := newTestNavi(t, `{}`, http.StatusOK)

	_, err := n.FetchSummary(context.Background())
	require.ErrorIs(t, err, domain.ErrMissingEndpoints)

	n.SetStart(start)
	_, err = n.FetchSummary(context.Background())
	require.ErrorIs(t, err, domain.ErrMissingEndpoints)
	assert.Zero(t, c.calls)
}

func TestFetchSummarySuccess(t *testing.T) {
	n, c := newTestNavi(t, `{"routes":[{"result_code":0,"summary":{"duration":1234}}]}`, http.StatusOK)
	n.SetStart(start)
	n.SetEnd(end)

	summary, err := n.FetchSummary(context.Background())
	require.NoError(t, err)
	require.NotNil(t, summary.Duration)
	assert.Equal(t, int64(1234), *summary.Duration)
	assert.Nil(t, summary.Distance)
	assert.Nil(t, summary.Fare)
	assert.Nil(t, summary.TaxiFare)

	assert.Equal(t, 1, c.calls)
	assert.Equal(t, "KakaoAK test_api_key", c.header.Get("Authorization"))
	assert.Equal(t, "127.0,37.0,name=Start", c.query.Get("origin"))
	assert.Equal(t, "127.1,37.1,name=End", c.query.Get("destination"))
	assert.Equal(t, "RECOMMEND", c.query.Get("priority"))
	assert.Equal(t, "true", c.query.Get("summary"))
	_, hasWaypoints := c.query["waypoints"]
	assert.False(t, hasWaypoints)
}

func TestFetchSummaryWithWaypoints(t *testing.T) {
	n, c := newTestNavi(t, `{"routes":[{"result_code":0,"summary":{"duration":1234}}]}`, http.StatusOK)
	n.SetStart(start)
	n.SetEnd(end)
	require.NoError(t, n.SetWaypoints([]domain.Location{start, end}))

	_, err := n.FetchSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "127.0,37.0,name=Start|127.1,37.1,name=End", c.query.Get("waypoints"))
}

func TestFetchSummaryFullSummary(t *testing.T) {
	body := `{"routes":[{"result_code":0,"summary":{"duration":3600,"distance":10000,"fare":{"taxi":15000,"toll":2000},"taxi_fare":15000}}]}`
	n, _ := newTestNavi(t, body, http.StatusOK)
	n.SetStart(start)
	n.SetEnd(end)

	summary, err := n.FetchSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3600), *summary.Duration)
	assert.Equal(t, int64(10000), *summary.Distance)
	require.NotNil(t, summary.Fare)
	assert.Equal(t, int64(15000), *summary.Fare.Taxi)
	assert.Equal(t, int64(2000), *summary.Fare.Toll)
	assert.Equal(t, 15000.0, *summary.TaxiFare)
}

func TestFetchSummaryHTTPError(t *testing.T) {
	n, _ := newTestNavi(t, ``, http.StatusInternalServerError)
	n.SetStart(start)
	n.SetEnd(end)

	_, err := n.FetchSummary(context.Background())

	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
	assert.Contains(t, err.Error(), "get eta: unexpected status: 500")
}

func TestFetchSummaryAPIError(t *testing.T) {
	n, _ := newTestNavi(t, `{"routes":[{"result_code":101,"result_msg":"Some error","summary":{}}]}`, http.StatusOK)
	n.SetStart(start)
	n.SetEnd(end)

	_, err := n.FetchSummary(context.Background())

	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 101, pe.Code)
	assert.Equal(t, "Some error", pe.Message)
	assert.Contains(t, err.Error(), "result_code=101, result_msg=Some error")
}

func TestFetchSummaryNoRoutes(t *testing.T) {
	n, _ := newTestNavi(t, `{"routes":[]}`, http.StatusOK)
	n.SetStart(start)
	n.SetEnd(end)

	_, err := n.FetchSummary(context.Background())

	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
}
