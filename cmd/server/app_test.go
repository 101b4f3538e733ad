package main

import (
	"context"
	"kr-eta-service/internal/adapters/sessions"
	"kr-eta-service/internal/config"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		HTTP: config.HTTP{Port: 0, Metrics: config.Metrics{Enabled: true}},
		Persistence: config.Persistence{
			Driver:   config.DatabaseDriverSQLite,
			Database: filepath.Join(t.TempDir(), "app.db"),
		},
		Redis:      config.Redis{SessionTTL: time.Minute},
		Geocoding:  config.Provider{BaseURL: "http://127.0.0.1:1", Timeout: time.Second},
		Directions: config.Provider{BaseURL: "http://127.0.0.1:1", Timeout: time.Second},
	}
}

func serve(t *testing.T, a *app, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	a.server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestBuildAppWithSQLiteAndMemorySessions(t *testing.T) {
	a, err := buildApp(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.close)

	require.NotNil(t, a.sweeper)
	assert.Nil(t, a.redis)

	rec := serve(t, a, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, a, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	rec = serve(t, a, http.MethodPost, "/flows", `{"geocoding_api_key":"g","directions_api_key":"d"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, a.sweeper.Len())
}

func TestBuildAppWithRedisSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Address = mr.Addr()
	cfg.HTTP.Metrics.Enabled = false

	a, err := buildApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.close)

	rec := serve(t, a, http.MethodPost, "/flows", `{"geocoding_api_key":"g","directions_api_key":"d"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], sessions.DefaultKeyPrefix))

	rec = serve(t, a, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBuildAppFailsWithoutRedis(t *testing.T) {
	cfg := testConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Address = "127.0.0.1:1"

	_, err := buildApp(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestSweepSessionsStopsWithContext(t *testing.T) {
	a := &app{sweeper: sessions.NewMemorySessionStore(), logger: zap.NewNop()}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		a.sweepSessions(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
