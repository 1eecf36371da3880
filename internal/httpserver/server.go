package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/PratikDhanave/funnel-analytics-service/internal/analytics"
	"github.com/PratikDhanave/funnel-analytics-service/internal/config"
	"github.com/PratikDhanave/funnel-analytics-service/internal/handlers"
	"github.com/PratikDhanave/funnel-analytics-service/internal/store"
)

// Deps are the collaborators the router needs, constructed once in main.
type Deps struct {
	Store      store.EventStore
	Aggregator *analytics.Aggregator
	Logger     *zap.Logger
	Registry   *prometheus.Registry
}

// NewRouter wires the read-only reporting API.
// Probes: /api/health, /ready
// Reporting: /api/analytics, /api/analytics/event-types
// Operations: /metrics (Prometheus)
func NewRouter(cfg config.Config, deps Deps) *gin.Engine {
	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handlers.RequestIDMiddleware())
	r.Use(AccessLog(deps.Logger))
	r.Use(NewHTTPMetrics(deps.Registry).Middleware())

	handlers.RegisterHealthRoutes(r, deps.Store)
	handlers.RegisterAnalyticsRoutes(r, deps.Aggregator, deps.Store, deps.Logger)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return r
}
