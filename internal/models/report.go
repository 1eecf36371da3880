package models

// PurchaseStats holds value statistics over purchases with a known amount.
// All fields are zero when no such purchase exists.
type PurchaseStats struct {
	Avg float64 `json:"avg"`
	Max float64 `json:"max"`
	Min float64 `json:"min"`
}

// AnalyticsReport is the GET /api/analytics payload.
// It is rebuilt from the event log on every request.
type AnalyticsReport struct {
	TotalPageViews       int64   `json:"total_page_views"`
	TotalAddToCarts      int64   `json:"total_add_to_carts"`
	TotalPurchases       int64   `json:"total_purchases"`
	ConversionRate       float64 `json:"conversion_rate"`
	AveragePurchaseValue float64 `json:"average_purchase_value"`
	MaxPurchaseValue     float64 `json:"max_purchase_value"`
	MinPurchaseValue     float64 `json:"min_purchase_value"`
	TopProductID         *string `json:"top_product_id"`
}

// EventTypeCount is one entry of the per-type breakdown.
type EventTypeCount struct {
	EventType string `json:"event_type"`
	Count     int64  `json:"count"`
}

// EventTypeCountsResponse is returned by GET /api/analytics/event-types.
type EventTypeCountsResponse struct {
	Counts []EventTypeCount `json:"counts"`
}
