package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/PratikDhanave/funnel-analytics-service/internal/config"
	"github.com/PratikDhanave/funnel-analytics-service/internal/models"
	"github.com/PratikDhanave/funnel-analytics-service/internal/numeric"
)

// ErrUnknownDriver is returned by Open for an unsupported DB_DRIVER.
var ErrUnknownDriver = errors.New("unknown store driver")

// Accessor answers the three read queries the analytics report is built from.
//
// Empty data is never an error: unknown types count 0, purchase stats are all
// zero without valued purchases, and TopViewedProduct returns nil without
// product page views. Storage failures are returned as-is, with no retry.
type Accessor interface {
	// CountByType counts events whose event_type equals eventType exactly.
	CountByType(ctx context.Context, eventType string) (int64, error)

	// PurchaseStats returns avg/max/min order_amount over purchase events with
	// a non-null amount, each rounded to two decimals.
	PurchaseStats(ctx context.Context) (models.PurchaseStats, error)

	// TopViewedProduct returns the product with the most page_view events.
	// Ties go to the lexicographically smallest product_id.
	TopViewedProduct(ctx context.Context) (*string, error)
}

// TypeCounter reports a count for every event_type present in the log,
// ordered by count descending then event_type ascending.
type TypeCounter interface {
	CountsByType(ctx context.Context) ([]models.EventTypeCount, error)
}

// EventStore is a durable event log backend owned by the process.
type EventStore interface {
	Accessor
	TypeCounter

	// EnsureSchema creates the events table and indexes if absent.
	// It runs at most once per store; later calls return the first result.
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Open connects to the backend selected by cfg.DBDriver.
func Open(ctx context.Context, cfg config.Config) (EventStore, error) {
	var (
		st  EventStore
		err error
	)
	switch cfg.DBDriver {
	case config.DriverPostgres:
		st, err = NewPostgresStore(ctx, cfg.DBURL)
	case config.DriverSQLite:
		st, err = NewSQLiteStore(ctx, cfg.DBPath)
	case config.DriverMySQL:
		st, err = NewMySQLStore(ctx, cfg.DBURL)
	case config.DriverMongo:
		st, err = NewMongoStore(ctx, cfg.DBURL, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.DBDriver)
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// schemaGuard makes schema creation run exactly once, even under concurrent callers.
type schemaGuard struct {
	once sync.Once
	err  error
}

func (g *schemaGuard) do(fn func() error) error {
	g.once.Do(func() {
		g.err = fn()
	})
	return g.err
}

// purchaseStats turns nullable SQL aggregates into the zero-default, rounded form.
func purchaseStats(avg, max, min *float64) models.PurchaseStats {
	return models.PurchaseStats{
		Avg: roundOrZero(avg),
		Max: roundOrZero(max),
		Min: roundOrZero(min),
	}
}

func roundOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return numeric.Round2(*v)
}
