// Package analytics derives the funnel report from the event store accessor.
package analytics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/PratikDhanave/funnel-analytics-service/internal/models"
	"github.com/PratikDhanave/funnel-analytics-service/internal/numeric"
	"github.com/PratikDhanave/funnel-analytics-service/internal/store"
)

// Aggregator builds AnalyticsReport values. It holds no state besides the
// accessor, so one instance can serve concurrent requests.
type Aggregator struct {
	events store.Accessor
}

// NewAggregator returns an Aggregator reading from events.
func NewAggregator(events store.Accessor) *Aggregator {
	return &Aggregator{events: events}
}

// Compute reads the current event log and returns a fresh report.
//
// The accessor queries are independent reads and run concurrently. The first
// failure cancels the rest and is returned unchanged; no partial report is built.
func (a *Aggregator) Compute(ctx context.Context) (models.AnalyticsReport, error) {
	var (
		pageViews, addToCarts, purchases int64
		stats                            models.PurchaseStats
		topProduct                       *string
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		pageViews, err = a.events.CountByType(ctx, models.EventTypePageView)
		return err
	})
	g.Go(func() (err error) {
		addToCarts, err = a.events.CountByType(ctx, models.EventTypeAddToCart)
		return err
	})
	g.Go(func() (err error) {
		purchases, err = a.events.CountByType(ctx, models.EventTypePurchase)
		return err
	})
	g.Go(func() (err error) {
		stats, err = a.events.PurchaseStats(ctx)
		return err
	})
	g.Go(func() (err error) {
		topProduct, err = a.events.TopViewedProduct(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.AnalyticsReport{}, err
	}

	return models.AnalyticsReport{
		TotalPageViews:       pageViews,
		TotalAddToCarts:      addToCarts,
		TotalPurchases:       purchases,
		ConversionRate:       numeric.Percent(purchases, pageViews),
		AveragePurchaseValue: stats.Avg,
		MaxPurchaseValue:     stats.Max,
		MinPurchaseValue:     stats.Min,
		TopProductID:         topProduct,
	}, nil
}
