package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/funnel-analytics-service/internal/models"
)

// harness is one empty, schema-ready store plus a way to append fixture rows.
type harness struct {
	store EventStore
	seed  func(t *testing.T, events ...models.Event)
}

func ptr[T any](v T) *T { return &v }

var baseTime = time.Date(2025, 10, 1, 10, 0, 0, 0, time.UTC)

func event(i int, eventType string, productID *string, amount *float64) models.Event {
	return models.Event{
		EventType:   eventType,
		Timestamp:   baseTime.Add(time.Duration(i) * time.Minute),
		ProductID:   productID,
		OrderAmount: amount,
	}
}

// referenceEvents is the six-row fixture the report numbers are checked against.
func referenceEvents() []models.Event {
	return []models.Event{
		event(0, models.EventTypePageView, ptr("prod-1"), nil),
		event(1, models.EventTypePageView, ptr("prod-2"), nil),
		event(2, models.EventTypePageView, ptr("prod-1"), nil),
		event(3, models.EventTypeAddToCart, ptr("prod-1"), nil),
		event(4, models.EventTypePurchase, ptr("prod-1"), ptr(99.99)),
		event(5, models.EventTypePurchase, ptr("prod-2"), ptr(49.99)),
	}
}

// runAccessorSuite checks the query contract every backend must honour.
func runAccessorSuite(t *testing.T, newHarness func(t *testing.T) harness) {
	ctx := context.Background()

	t.Run("empty log", func(t *testing.T) {
		h := newHarness(t)

		for _, eventType := range []string{models.EventTypePageView, models.EventTypeAddToCart, models.EventTypePurchase} {
			count, err := h.store.CountByType(ctx, eventType)
			require.NoError(t, err)
			assert.Zero(t, count)
		}

		stats, err := h.store.PurchaseStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.PurchaseStats{}, stats)

		top, err := h.store.TopViewedProduct(ctx)
		require.NoError(t, err)
		assert.Nil(t, top)

		counts, err := h.store.CountsByType(ctx)
		require.NoError(t, err)
		assert.Empty(t, counts)
	})

	t.Run("reference data", func(t *testing.T) {
		h := newHarness(t)
		h.seed(t, referenceEvents()...)

		pageViews, err := h.store.CountByType(ctx, models.EventTypePageView)
		require.NoError(t, err)
		assert.Equal(t, int64(3), pageViews)

		addToCarts, err := h.store.CountByType(ctx, models.EventTypeAddToCart)
		require.NoError(t, err)
		assert.Equal(t, int64(1), addToCarts)

		purchases, err := h.store.CountByType(ctx, models.EventTypePurchase)
		require.NoError(t, err)
		assert.Equal(t, int64(2), purchases)

		stats, err := h.store.PurchaseStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.PurchaseStats{Avg: 74.99, Max: 99.99, Min: 49.99}, stats)

		top, err := h.store.TopViewedProduct(ctx)
		require.NoError(t, err)
		require.NotNil(t, top)
		assert.Equal(t, "prod-1", *top)
	})

	t.Run("purchases without amount are counted but not valued", func(t *testing.T) {
		h := newHarness(t)
		h.seed(t,
			event(0, models.EventTypePurchase, ptr("prod-1"), nil),
			event(1, models.EventTypePurchase, nil, nil),
		)

		purchases, err := h.store.CountByType(ctx, models.EventTypePurchase)
		require.NoError(t, err)
		assert.Equal(t, int64(2), purchases)

		stats, err := h.store.PurchaseStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.PurchaseStats{}, stats)

		h.seed(t, event(2, models.EventTypePurchase, ptr("prod-3"), ptr(20.0)))

		stats, err = h.store.PurchaseStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.PurchaseStats{Avg: 20, Max: 20, Min: 20}, stats)
	})

	t.Run("amounts on other event types are ignored", func(t *testing.T) {
		h := newHarness(t)
		h.seed(t,
			event(0, models.EventTypeAddToCart, ptr("prod-1"), ptr(500.0)),
			event(1, models.EventTypePurchase, ptr("prod-1"), ptr(10.0)),
		)

		stats, err := h.store.PurchaseStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.PurchaseStats{Avg: 10, Max: 10, Min: 10}, stats)
	})

	t.Run("average is rounded to two decimals", func(t *testing.T) {
		h := newHarness(t)
		h.seed(t,
			event(0, models.EventTypePurchase, nil, ptr(1.0)),
			event(1, models.EventTypePurchase, nil, ptr(2.0)),
			event(2, models.EventTypePurchase, nil, ptr(2.0)),
		)

		stats, err := h.store.PurchaseStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.PurchaseStats{Avg: 1.67, Max: 2, Min: 1}, stats)
	})

	t.Run("top product ignores views without product", func(t *testing.T) {
		h := newHarness(t)
		h.seed(t,
			event(0, models.EventTypePageView, nil, nil),
			event(1, models.EventTypePageView, nil, nil),
			event(2, models.EventTypeAddToCart, ptr("prod-9"), nil),
			event(3, models.EventTypeAddToCart, ptr("prod-9"), nil),
		)

		top, err := h.store.TopViewedProduct(ctx)
		require.NoError(t, err)
		assert.Nil(t, top)

		h.seed(t, event(4, models.EventTypePageView, ptr("prod-2"), nil))

		top, err = h.store.TopViewedProduct(ctx)
		require.NoError(t, err)
		require.NotNil(t, top)
		assert.Equal(t, "prod-2", *top)
	})

	t.Run("top product tie goes to smallest id", func(t *testing.T) {
		h := newHarness(t)
		h.seed(t,
			event(0, models.EventTypePageView, ptr("prod-b"), nil),
			event(1, models.EventTypePageView, ptr("prod-c"), nil),
			event(2, models.EventTypePageView, ptr("prod-b"), nil),
			event(3, models.EventTypePageView, ptr("prod-a"), nil),
			event(4, models.EventTypePageView, ptr("prod-a"), nil),
		)

		top, err := h.store.TopViewedProduct(ctx)
		require.NoError(t, err)
		require.NotNil(t, top)
		assert.Equal(t, "prod-a", *top)
	})

	t.Run("count by type is exact and case sensitive", func(t *testing.T) {
		h := newHarness(t)
		h.seed(t,
			event(0, models.EventTypePageView, ptr("prod-1"), nil),
			event(1, "Page_View", ptr("prod-1"), nil),
			event(2, "refund", ptr("prod-1"), nil),
			event(3, "refund", ptr("prod-2"), nil),
		)

		count, err := h.store.CountByType(ctx, models.EventTypePageView)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		count, err = h.store.CountByType(ctx, "refund")
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		count, err = h.store.CountByType(ctx, "never_seen")
		require.NoError(t, err)
		assert.Zero(t, count)

		counts, err := h.store.CountsByType(ctx)
		require.NoError(t, err)
		assert.Equal(t, []models.EventTypeCount{
			{EventType: "refund", Count: 2},
			{EventType: "Page_View", Count: 1},
			{EventType: models.EventTypePageView, Count: 1},
		}, counts)
	})

	t.Run("average on a decimal tie rounds half up", func(t *testing.T) {
		h := newHarness(t)
		h.seed(t,
			event(0, models.EventTypePurchase, ptr("prod-1"), ptr(1.00)),
			event(1, models.EventTypePurchase, ptr("prod-2"), ptr(1.01)),
		)

		stats, err := h.store.PurchaseStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.PurchaseStats{Avg: 1.01, Max: 1.01, Min: 1}, stats)
	})

	t.Run("repeated schema bootstrap keeps existing rows", func(t *testing.T) {
		h := newHarness(t)
		h.seed(t, referenceEvents()...)

		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- h.store.EnsureSchema(ctx)
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			assert.NoError(t, err)
		}

		pageViews, err := h.store.CountByType(ctx, models.EventTypePageView)
		require.NoError(t, err)
		assert.Equal(t, int64(3), pageViews)
	})
}
