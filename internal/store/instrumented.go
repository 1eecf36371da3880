package store

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/PratikDhanave/funnel-analytics-service/internal/models"
)

// InstrumentedStore records latency and failures of every accessor query.
// It wraps any EventStore and changes none of its results.
type InstrumentedStore struct {
	EventStore

	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// NewInstrumentedStore registers the query collectors on reg and wraps next.
func NewInstrumentedStore(next EventStore, reg prometheus.Registerer) *InstrumentedStore {
	s := &InstrumentedStore{
		EventStore: next,
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "event_store_query_duration_seconds",
				Help:    "Event store query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "event_store_query_errors_total",
				Help: "Total number of failed event store queries",
			},
			[]string{"operation"},
		),
	}
	reg.MustRegister(s.duration, s.errors)
	return s
}

func (s *InstrumentedStore) observe(operation string, start time.Time, err error) {
	s.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		s.errors.WithLabelValues(operation).Inc()
	}
}

func (s *InstrumentedStore) CountByType(ctx context.Context, eventType string) (count int64, err error) {
	defer func(start time.Time) { s.observe("count_by_type", start, err) }(time.Now())
	return s.EventStore.CountByType(ctx, eventType)
}

func (s *InstrumentedStore) PurchaseStats(ctx context.Context) (stats models.PurchaseStats, err error) {
	defer func(start time.Time) { s.observe("purchase_stats", start, err) }(time.Now())
	return s.EventStore.PurchaseStats(ctx)
}

func (s *InstrumentedStore) TopViewedProduct(ctx context.Context) (productID *string, err error) {
	defer func(start time.Time) { s.observe("top_viewed_product", start, err) }(time.Now())
	return s.EventStore.TopViewedProduct(ctx)
}

func (s *InstrumentedStore) CountsByType(ctx context.Context) (counts []models.EventTypeCount, err error) {
	defer func(start time.Time) { s.observe("counts_by_type", start, err) }(time.Now())
	return s.EventStore.CountsByType(ctx)
}
