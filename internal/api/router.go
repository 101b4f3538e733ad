package api

import (
	"kr-eta-service/internal/api/handlers"
	"kr-eta-service/internal/ports"
	"kr-eta-service/internal/services/eta"
	"kr-eta-service/internal/services/wizard"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Deps struct {
	Store  ports.RouteStore
	Flows  *wizard.Flows
	Poller *eta.Poller
	Logger *zap.Logger
	// Metrics is served at /metrics when set.
	Metrics   prometheus.Gatherer
	CORSHosts []string
}

// NewRouter wires HTTP handlers with their dependencies.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(d.CORSHosts))
	r.Use(requestIDMiddleware())
	r.Use(loggingMiddleware(logger))

	flows := &handlers.FlowHandler{Flows: d.Flows, Logger: logger}
	entries := &handlers.EntryHandler{Store: d.Store, Poller: d.Poller, Logger: logger}

	r.GET("/health", handlers.Health)

	r.POST("/flows", flows.Start)
	r.POST("/flows/:flow_id", flows.Step)
	r.DELETE("/flows/:flow_id", flows.Abandon)

	r.GET("/entries", entries.List)
	r.GET("/entries/:entry_id/routes", entries.Routes)
	r.POST("/entries/:entry_id/routes/remove", entries.Remove)
	r.GET("/entries/:entry_id/routes/:route_id/eta", entries.ETA)
	r.POST("/entries/:entry_id/poll", entries.Poll)

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}

	return r
}
