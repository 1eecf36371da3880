package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PratikDhanave/funnel-analytics-service/internal/models"
)

// schemaPostgresSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema_postgres.sql
var schemaPostgresSQL string

// PostgresStore reads the event log from Postgres through a connection pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema schemaGuard
}

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(ctx context.Context, dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema_postgres.sql once. The DDL itself is idempotent.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	return p.schema.do(func() error {
		if _, err := p.pool.Exec(ctx, schemaPostgresSQL); err != nil {
			return fmt.Errorf("apply postgres schema: %w", err)
		}
		return nil
	})
}

// Ping is used by readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

// CountByType counts events whose type matches eventType exactly.
func (p *PostgresStore) CountByType(ctx context.Context, eventType string) (int64, error) {
	var count int64
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM events
		WHERE event_type = $1
	`, eventType).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count %s events: %w", eventType, err)
	}
	return count, nil
}

// PurchaseStats aggregates and rounds in the database, where order_amount is
// NUMERIC and a tie such as 1.005 is still exact. AVG/MAX/MIN are NULL on an
// empty set; pgx scans NULL into a nil *float64.
func (p *PostgresStore) PurchaseStats(ctx context.Context) (models.PurchaseStats, error) {
	var avg, max, min *float64
	err := p.pool.QueryRow(ctx, `
		SELECT
			ROUND(AVG(order_amount), 2)::float8,
			ROUND(MAX(order_amount), 2)::float8,
			ROUND(MIN(order_amount), 2)::float8
		FROM events
		WHERE event_type = $1
		  AND order_amount IS NOT NULL
	`, models.EventTypePurchase).Scan(&avg, &max, &min)
	if err != nil {
		return models.PurchaseStats{}, fmt.Errorf("purchase stats: %w", err)
	}
	return purchaseStats(avg, max, min), nil
}

// TopViewedProduct orders ties with the "C" collation so they break byte-wise,
// matching the other backends regardless of the database locale.
func (p *PostgresStore) TopViewedProduct(ctx context.Context) (*string, error) {
	var productID string
	err := p.pool.QueryRow(ctx, `
		SELECT product_id
		FROM events
		WHERE event_type = $1
		  AND product_id IS NOT NULL
		GROUP BY product_id
		ORDER BY COUNT(*) DESC, product_id COLLATE "C" ASC
		LIMIT 1
	`, models.EventTypePageView).Scan(&productID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("top viewed product: %w", err)
	}
	return &productID, nil
}

// CountsByType returns every event type with its count, most frequent first.
func (p *PostgresStore) CountsByType(ctx context.Context) ([]models.EventTypeCount, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT event_type, COUNT(*)
		FROM events
		GROUP BY event_type
		ORDER BY COUNT(*) DESC, event_type COLLATE "C" ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("count events by type: %w", err)
	}
	defer rows.Close()

	counts := []models.EventTypeCount{}
	for rows.Next() {
		var c models.EventTypeCount
		if err := rows.Scan(&c.EventType, &c.Count); err != nil {
			return nil, fmt.Errorf("scan event type count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event type counts: %w", err)
	}
	return counts, nil
}
