package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP        HTTP        `json:"http"`
	Persistence Persistence `json:"persistence"`
	Redis       Redis       `json:"redis"`
	Geocoding   Provider    `json:"geocoding"`
	Directions  Provider    `json:"directions"`
	Log         Log         `json:"log"`
}

type Metrics struct {
	Enabled bool `json:"enabled"`
}

type HTTP struct {
	Port      uint16   `json:"port"`
	CORSHosts []string `json:"cors_hosts" yaml:"cors_hosts"`
	Metrics   Metrics  `json:"metrics"`
}

type DatabaseDriver string

const (
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"
	DatabaseDriverPostgres DatabaseDriver = "postgres"
)

type Persistence struct {
	Driver   DatabaseDriver `json:"driver"`
	Database string         `json:"database"`
}

type Redis struct {
	Enabled    bool          `json:"enabled"`
	Address    string        `json:"address"`
	Password   string        `json:"password"`
	Database   int           `json:"database"`
	SessionTTL time.Duration `json:"session_ttl" yaml:"session_ttl"`
}

// Provider holds the endpoint override and request timeout of one upstream API.
type Provider struct {
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Timeout time.Duration `json:"timeout"`
}

type Log struct {
	Env string `json:"env"`
}

//nolint:golint,gochecknoglobals
var (
	ConfigFileKey          = "config"
	HTTPPortKey            = "http.port"
	HTTPCORSHostsKey       = "http.cors_hosts"
	HTTPMetricsEnabledKey  = "http.metrics.enabled"
	PersistenceDriverKey   = "persistence.driver"
	PersistenceDatabaseKey = "persistence.database"
	RedisEnabledKey        = "redis.enabled"
	RedisAddressKey        = "redis.address"
	RedisPasswordKey       = "redis.password"
	RedisDatabaseKey       = "redis.database"
	RedisSessionTTLKey     = "redis.session_ttl"
	GeocodingBaseURLKey    = "geocoding.base_url"
	GeocodingTimeoutKey    = "geocoding.timeout"
	DirectionsBaseURLKey   = "directions.base_url"
	DirectionsTimeoutKey   = "directions.timeout"
	LogEnvKey              = "log.env"
)

const (
	DefaultConfigPath          = "config.yaml"
	DefaultHTTPPort            = 8080
	DefaultPersistenceDriver   = DatabaseDriverSQLite
	DefaultPersistenceDatabase = "kr-eta.db"
	DefaultRedisSessionTTL     = 30 * time.Minute
	DefaultGeocodingBaseURL    = "https://api.vworld.kr/req/address"
	DefaultDirectionsBaseURL   = "https://apis-navi.kakaomobility.com/v1/directions"
	DefaultProviderTimeout     = 10 * time.Second
	DefaultLogEnv              = "production"
)

func RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(ConfigFileKey, "c", DefaultConfigPath, "Config file path")
	cmd.Flags().Uint16(HTTPPortKey, DefaultHTTPPort, "HTTP server port")
	cmd.Flags().StringSlice(HTTPCORSHostsKey, []string{}, "Comma-separated list of CORS hosts")
	cmd.Flags().Bool(HTTPMetricsEnabledKey, false, "Expose Prometheus metrics at /metrics")
	cmd.Flags().String(PersistenceDriverKey, string(DefaultPersistenceDriver), "Database driver (sqlite or postgres)")
	cmd.Flags().String(PersistenceDatabaseKey, DefaultPersistenceDatabase, "SQLite path or PostgreSQL URL")
	cmd.Flags().Bool(RedisEnabledKey, false, "Store wizard sessions in Redis")
	cmd.Flags().String(RedisAddressKey, "", "Redis address")
	cmd.Flags().String(RedisPasswordKey, "", "Redis password")
	cmd.Flags().Int(RedisDatabaseKey, 0, "Redis database")
	cmd.Flags().Duration(RedisSessionTTLKey, DefaultRedisSessionTTL, "Lifetime of an unfinished wizard session")
	cmd.Flags().String(GeocodingBaseURLKey, DefaultGeocodingBaseURL, "Geocoding API endpoint")
	cmd.Flags().Duration(GeocodingTimeoutKey, DefaultProviderTimeout, "Geocoding request timeout")
	cmd.Flags().String(DirectionsBaseURLKey, DefaultDirectionsBaseURL, "Directions API endpoint")
	cmd.Flags().Duration(DirectionsTimeoutKey, DefaultProviderTimeout, "Directions request timeout")
	cmd.Flags().String(LogEnvKey, DefaultLogEnv, "Logger preset (production or development)")
}

var (
	ErrDatabaseRequired     = errors.New("Database path or URL is required")
	ErrInvalidDriver        = errors.New("Database driver must be sqlite or postgres")
	ErrRedisAddressRequired = errors.New("Redis address is required when Redis is enabled")
	ErrInvalidTimeout       = errors.New("Provider timeouts must be positive")
)

func (c *Config) Validate() error {
	if c.Persistence.Driver != DatabaseDriverSQLite && c.Persistence.Driver != DatabaseDriverPostgres {
		return ErrInvalidDriver
	}
	if c.Persistence.Database == "" {
		return ErrDatabaseRequired
	}
	if c.Redis.Enabled && c.Redis.Address == "" {
		return ErrRedisAddressRequired
	}
	if c.Geocoding.Timeout <= 0 || c.Directions.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	return nil
}

// LoadConfig merges, in increasing priority: defaults, the YAML file,
// environment variables and command-line flags. The env name of a flag is
// its upper-cased name with "." replaced by "__".
func LoadConfig(cmd *cobra.Command) (*Config, error) {
	var config Config

	ctx, cancel := context.WithCancelCause(cmd.Context())
	defer cancel(nil)
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if ctx.Err() != nil {
			return
		}
		if val, ok := os.LookupEnv(EnvName(f.Name)); !f.Changed && ok {
			if err := f.Value.Set(val); err != nil {
				cancel(err)
			}
			f.Changed = true
		}
	})
	if ctx.Err() != nil {
		return &config, fmt.Errorf("failed to load env: %w", context.Cause(ctx))
	}

	configPath, err := cmd.Flags().GetString(ConfigFileKey)
	if err != nil {
		return &config, fmt.Errorf("failed to get config path: %w", err)
	}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return &config, fmt.Errorf("failed to read config: %w", err)
		} else if err == nil {
			if err := yaml.Unmarshal(data, &config); err != nil {
				return &config, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	if err := overrideFlags(&config, cmd); err != nil {
		return &config, fmt.Errorf("failed to override flags: %w", err)
	}

	// Defaults
	if config.HTTP.Port == 0 {
		config.HTTP.Port = DefaultHTTPPort
	}
	if config.Persistence.Driver == "" {
		config.Persistence.Driver = DefaultPersistenceDriver
	}
	if config.Persistence.Database == "" {
		config.Persistence.Database = DefaultPersistenceDatabase
	}
	if config.Redis.SessionTTL == 0 {
		config.Redis.SessionTTL = DefaultRedisSessionTTL
	}
	if config.Geocoding.BaseURL == "" {
		config.Geocoding.BaseURL = DefaultGeocodingBaseURL
	}
	if config.Geocoding.Timeout == 0 {
		config.Geocoding.Timeout = DefaultProviderTimeout
	}
	if config.Directions.BaseURL == "" {
		config.Directions.BaseURL = DefaultDirectionsBaseURL
	}
	if config.Directions.Timeout == 0 {
		config.Directions.Timeout = DefaultProviderTimeout
	}
	if config.Log.Env == "" {
		config.Log.Env = DefaultLogEnv
	}

	return &config, nil
}

func EnvName(flag string) string {
	return strings.ReplaceAll(strings.ReplaceAll(strings.ToUpper(flag), "-", "_"), ".", "__")
}

//nolint:gocyclo
func overrideFlags(config *Config, cmd *cobra.Command) error {
	var err error
	flags := cmd.Flags()

	if flags.Changed(HTTPPortKey) {
		config.HTTP.Port, err = flags.GetUint16(HTTPPortKey)
		if err != nil {
			return fmt.Errorf("failed to get HTTP port: %w", err)
		}
	}

	if flags.Changed(HTTPCORSHostsKey) {
		config.HTTP.CORSHosts, err = flags.GetStringSlice(HTTPCORSHostsKey)
		if err != nil {
			return fmt.Errorf("failed to get CORS hosts: %w", err)
		}
	}

	if flags.Changed(HTTPMetricsEnabledKey) {
		config.HTTP.Metrics.Enabled, err = flags.GetBool(HTTPMetricsEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get metrics enabled: %w", err)
		}
	}

	if flags.Changed(PersistenceDriverKey) {
		drvr, err := flags.GetString(PersistenceDriverKey)
		if err != nil {
			return fmt.Errorf("failed to get database driver: %w", err)
		}
		config.Persistence.Driver = DatabaseDriver(strings.ToLower(drvr))
	}

	if flags.Changed(PersistenceDatabaseKey) {
		config.Persistence.Database, err = flags.GetString(PersistenceDatabaseKey)
		if err != nil {
			return fmt.Errorf("failed to get database: %w", err)
		}
	}

	if flags.Changed(RedisEnabledKey) {
		config.Redis.Enabled, err = flags.GetBool(RedisEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get redis enabled: %w", err)
		}
	}

	if flags.Changed(RedisAddressKey) {
		config.Redis.Address, err = flags.GetString(RedisAddressKey)
		if err != nil {
			return fmt.Errorf("failed to get redis address: %w", err)
		}
	}

	if flags.Changed(RedisPasswordKey) {
		config.Redis.Password, err = flags.GetString(RedisPasswordKey)
		if err != nil {
			return fmt.Errorf("failed to get redis password: %w", err)
		}
	}

	if flags.Changed(RedisDatabaseKey) {
		config.Redis.Database, err = flags.GetInt(RedisDatabaseKey)
		if err != nil {
			return fmt.Errorf("failed to get redis database: %w", err)
		}
	}

	if flags.Changed(RedisSessionTTLKey) {
		config.Redis.SessionTTL, err = flags.GetDuration(RedisSessionTTLKey)
		if err != nil {
			return fmt.Errorf("failed to get redis session ttl: %w", err)
		}
	}

	if flags.Changed(GeocodingBaseURLKey) {
		config.Geocoding.BaseURL, err = flags.GetString(GeocodingBaseURLKey)
		if err != nil {
			return fmt.Errorf("failed to get geocoding base URL: %w", err)
		}
	}

	if flags.Changed(GeocodingTimeoutKey) {
		config.Geocoding.Timeout, err = flags.GetDuration(GeocodingTimeoutKey)
		if err != nil {
			return fmt.Errorf("failed to get geocoding timeout: %w", err)
		}
	}

	if flags.Changed(DirectionsBaseURLKey) {
		config.Directions.BaseURL, err = flags.GetString(DirectionsBaseURLKey)
		if err != nil {
			return fmt.Errorf("failed to get directions base URL: %w", err)
		}
	}

	if flags.Changed(DirectionsTimeoutKey) {
		config.Directions.Timeout, err = flags.GetDuration(DirectionsTimeoutKey)
		if err != nil {
			return fmt.Errorf("failed to get directions timeout: %w", err)
		}
	}

	if flags.Changed(LogEnvKey) {
		config.Log.Env, err = flags.GetString(LogEnvKey)
		if err != nil {
			return fmt.Errorf("failed to get log env: %w", err)
		}
	}

	return nil
}

// Get returns the environment variable key, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
