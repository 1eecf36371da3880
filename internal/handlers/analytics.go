package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PratikDhanave/funnel-analytics-service/internal/models"
)

// ReportComputer builds the funnel report; satisfied by *analytics.Aggregator.
type ReportComputer interface {
	Compute(ctx context.Context) (models.AnalyticsReport, error)
}

// TypeCounter lists per-type event counts; satisfied by every store.
type TypeCounter interface {
	CountsByType(ctx context.Context) ([]models.EventTypeCount, error)
}

// RegisterAnalyticsRoutes registers the read-only reporting endpoints.
//
// GET /api/analytics
// - Recomputes the report over the whole event log on every call
// - 500 on any storage failure, never a partial report
//
// GET /api/analytics/event-types
// - Count for every event_type in the log, including unknown types
func RegisterAnalyticsRoutes(r gin.IRoutes, reports ReportComputer, types TypeCounter, logger *zap.Logger) {
	r.GET("/api/analytics", func(c *gin.Context) {
		report, err := reports.Compute(c.Request.Context())
		if err != nil {
			logger.Error("analytics report failed",
				zap.String("request_id", RequestID(c)),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "analytics query failed"})
			return
		}

		c.JSON(http.StatusOK, report)
	})

	r.GET("/api/analytics/event-types", func(c *gin.Context) {
		counts, err := types.CountsByType(c.Request.Context())
		if err != nil {
			logger.Error("event type counts failed",
				zap.String("request_id", RequestID(c)),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "analytics query failed"})
			return
		}

		c.JSON(http.StatusOK, models.EventTypeCountsResponse{Counts: counts})
	})
}
