package main

import (
	"context"
	"database/sql"
	"fmt"
	"kr-eta-service/internal/adapters/directions"
	"kr-eta-service/internal/adapters/geocode"
	"kr-eta-service/internal/adapters/repositories"
	"kr-eta-service/internal/adapters/sessions"
	"kr-eta-service/internal/api"
	"kr-eta-service/internal/config"
	"kr-eta-service/internal/platform/db"
	"kr-eta-service/internal/platform/obs"
	"kr-eta-service/internal/ports"
	"kr-eta-service/internal/services/eta"
	"kr-eta-service/internal/services/wizard"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// app is the application composition root.
// It wires concrete adapters behind ports and builds the HTTP server.
type app struct {
	db      *sql.DB
	redis   *redis.Client
	sweeper *sessions.MemorySessionStore
	server  *http.Server
	logger  *zap.Logger
}

func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *app, err error) {
	a := &app{logger: logger}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	a.db, err = db.Open(string(cfg.Persistence.Driver), cfg.Persistence.Database)
	if err != nil {
		return nil, err
	}
	if err := repositories.InitSchema(a.db); err != nil {
		return nil, err
	}

	var store ports.RouteStore
	switch cfg.Persistence.Driver {
	case config.DatabaseDriverPostgres:
		store = repositories.NewSQLRouteStore(a.db, logger)
	default:
		store = repositories.NewSqliteRouteStore(a.db, logger)
	}

	var sessionStore ports.SessionStore
	if cfg.Redis.Enabled {
		a.redis = connectRedis(cfg)
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		sessionStore = sessions.NewRedisSessionStore(a.redis, sessions.DefaultKeyPrefix, logger)
	} else {
		a.sweeper = sessions.NewMemorySessionStore()
		sessionStore = a.sweeper
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := obs.NewMetrics(reg)

	// One client is shared by every provider call; timeouts are applied per request.
	session := &http.Client{}

	geocoders := geocode.Factory(session, geocode.Options{
		BaseURL: cfg.Geocoding.BaseURL,
		Timeout: cfg.Geocoding.Timeout,
		Logger:  logger,
		Metrics: metrics,
	})
	navis := directions.Factory(session, directions.Options{
		BaseURL: cfg.Directions.BaseURL,
		Timeout: cfg.Directions.Timeout,
		Logger:  logger,
		Metrics: metrics,
	})

	wz := wizard.New(store, geocoders, wizard.Options{Logger: logger, Metrics: metrics})
	deps := api.Deps{
		Store:     store,
		Flows:     wizard.NewFlows(wz, sessionStore, cfg.Redis.SessionTTL),
		Poller:    eta.NewPoller(navis, eta.Options{Logger: logger, Metrics: metrics}),
		Logger:    logger,
		CORSHosts: cfg.HTTP.CORSHosts,
	}
	if cfg.HTTP.Metrics.Enabled {
		deps.Metrics = reg
	}

	// Timeouts leave room for a directions call per route on a full poll.
	a.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

func connectRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})
}

// sweepSessions drops expired in-memory sessions until ctx is done.
func (a *app) sweepSessions(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.sweeper.Sweep(); n > 0 {
				a.logger.Debug("expired flows removed", zap.Int("count", n))
			}
		}
	}
}

func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close database", zap.Error(err))
		}
	}
}
