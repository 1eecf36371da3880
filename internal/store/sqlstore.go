package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/PratikDhanave/funnel-analytics-service/internal/models"
)

// sqlStore implements the accessor over database/sql for drivers that use
// "?" placeholders (SQLite, MySQL). Only the schema differs between them.
type sqlStore struct {
	db        *sql.DB
	dialect   string
	schemaSQL []string
	schema    schemaGuard
}

// EnsureSchema runs the dialect's DDL statements once per store.
func (s *sqlStore) EnsureSchema(ctx context.Context) error {
	return s.schema.do(func() error {
		for _, stmt := range s.schemaSQL {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply %s schema: %w", s.dialect, err)
			}
		}
		return nil
	})
}

// Ping checks that the database is reachable.
func (s *sqlStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *sqlStore) Close() error {
	return s.db.Close()
}

// CountByType counts events whose type matches eventType exactly.
func (s *sqlStore) CountByType(ctx context.Context, eventType string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM events
		WHERE event_type = ?
	`, eventType).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count %s events: %w", eventType, err)
	}
	return count, nil
}

// PurchaseStats returns the average, maximum and minimum purchase amount.
// Purchases without an amount are left out.
func (s *sqlStore) PurchaseStats(ctx context.Context) (models.PurchaseStats, error) {
	var avg, max, min sql.NullFloat64
	err := s.db.QueryRowContext(ctx, s.purchaseStatsQuery(), models.EventTypePurchase).Scan(&avg, &max, &min)
	if err != nil {
		return models.PurchaseStats{}, fmt.Errorf("purchase stats: %w", err)
	}
	return purchaseStats(nullFloat(avg), nullFloat(max), nullFloat(min)), nil
}

// TopViewedProduct returns the product with the most page views, or nil when
// no page view names a product. Ties go to the smallest id.
func (s *sqlStore) TopViewedProduct(ctx context.Context) (*string, error) {
	var productID string
	err := s.db.QueryRowContext(ctx, `
		SELECT product_id
		FROM events
		WHERE event_type = ?
		  AND product_id IS NOT NULL
		GROUP BY product_id
		ORDER BY COUNT(*) DESC, product_id ASC
		LIMIT 1
	`, models.EventTypePageView).Scan(&productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("top viewed product: %w", err)
	}
	return &productID, nil
}

// CountsByType returns every event type with its count, most frequent first.
func (s *sqlStore) CountsByType(ctx context.Context) ([]models.EventTypeCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_type, COUNT(*) AS event_count
		FROM events
		GROUP BY event_type
		ORDER BY event_count DESC, event_type ASC
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

// purchaseStatsQuery rounds in SQL on MySQL, whose DECIMAL column keeps ties
// exact. SQLite stores REAL, so its values are rounded after the scan.
func (s *sqlStore) purchaseStatsQuery() string {
	if s.dialect == "mysql" {
		return `
		SELECT
			ROUND(AVG(order_amount), 2),
			ROUND(MAX(order_amount), 2),
			ROUND(MIN(order_amount), 2)
		FROM events
		WHERE event_type = ?
		  AND order_amount IS NOT NULL
	`
	}
	return `
		SELECT
			AVG(order_amount),
			MAX(order_amount),
			MIN(order_amount)
		FROM events
		WHERE event_type = ?
		  AND order_amount IS NOT NULL
	`
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
