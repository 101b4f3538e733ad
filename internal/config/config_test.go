package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	cmd := &cobra.Command{Use: "testing"}
	RegisterFlags(cmd)
	cmd.SetContext(context.Background())
	require.NoError(t, cmd.ParseFlags(append([]string{"--config", ""}, args...)))
	return cmd
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadConfig(newTestCommand(t))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, uint16(DefaultHTTPPort), cfg.HTTP.Port)
	assert.Equal(t, DatabaseDriverSQLite, cfg.Persistence.Driver)
	assert.Equal(t, DefaultPersistenceDatabase, cfg.Persistence.Database)
	assert.Equal(t, DefaultProviderTimeout, cfg.Geocoding.Timeout)
	assert.Equal(t, DefaultProviderTimeout, cfg.Directions.Timeout)
	assert.Equal(t, DefaultRedisSessionTTL, cfg.Redis.SessionTTL)
	assert.False(t, cfg.Redis.Enabled)
}

func TestFlagsOverride(t *testing.T) {
	cfg, err := LoadConfig(newTestCommand(t,
		"--http.port", "9090",
		"--persistence.driver", "POSTGRES",
		"--persistence.database", "postgres://localhost/kr_eta",
		"--directions.timeout", "30s",
		"--http.cors_hosts", "http://a.test,http://b.test",
	))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, uint16(9090), cfg.HTTP.Port)
	assert.Equal(t, DatabaseDriverPostgres, cfg.Persistence.Driver)
	assert.Equal(t, 30*time.Second, cfg.Directions.Timeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.CORSHosts)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("REDIS__ENABLED", "true")
	t.Setenv("REDIS__ADDRESS", "localhost:6379")
	t.Setenv("REDIS__SESSION_TTL", "5m")

	cfg, err := LoadConfig(newTestCommand(t))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 5*time.Minute, cfg.Redis.SessionTTL)
}

func TestInvalidEnvValue(t *testing.T) {
	t.Setenv("HTTP__PORT", "not-a-port")

	_, err := LoadConfig(newTestCommand(t))
	require.Error(t, err)
}

func TestYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
http:
  port: 8181
persistence:
  driver: postgres
  database: postgres://db/kr_eta
geocoding:
  base_url: http://geocoder.test
  timeout: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := LoadConfig(newTestCommand(t, "--config", path, "--http.port", "8282"))
	require.NoError(t, err)

	assert.Equal(t, uint16(8282), cfg.HTTP.Port)
	assert.Equal(t, DatabaseDriverPostgres, cfg.Persistence.Driver)
	assert.Equal(t, "http://geocoder.test", cfg.Geocoding.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Geocoding.Timeout)
	assert.Equal(t, DefaultDirectionsBaseURL, cfg.Directions.BaseURL)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want error
	}{
		{"bad driver", []string{"--persistence.driver", "mysql"}, ErrInvalidDriver},
		{"redis without address", []string{"--redis.enabled"}, ErrRedisAddressRequired},
		{"negative timeout", []string{"--geocoding.timeout=-1s"}, ErrInvalidTimeout},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadConfig(newTestCommand(t, tc.args...))
			require.NoError(t, err)
			assert.ErrorIs(t, cfg.Validate(), tc.want)
		})
	}
}

func TestGet(t *testing.T) {
	t.Setenv("KR_ETA_TEST_VALUE", "set")

	assert.Equal(t, "set", Get("KR_ETA_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", Get("KR_ETA_TEST_UNSET", "fallback"))
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "HTTP__METRICS__ENABLED", EnvName("http.metrics.enabled"))
	assert.Equal(t, "REDIS__SESSION_TTL", EnvName("redis.session_ttl"))
}
