package models

import "time"

// Event types the funnel report derives its metrics from.
// Other types may exist in the log; they only show up in the per-type breakdown.
const (
	EventTypePageView  = "page_view"
	EventTypeAddToCart = "add_to_cart"
	EventTypePurchase  = "purchase"
)

// Event is one row of the append-only event log.
// OrderAmount is only meaningful for purchase events.
type Event struct {
	ID          int64     `json:"id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	ProductID   *string   `json:"product_id"`
	OrderAmount *float64  `json:"order_amount"`
	CreatedAt   time.Time `json:"created_at"`
}
