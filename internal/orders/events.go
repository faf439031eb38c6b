package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated = "OrderCreated"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "storefront"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya order_id
	Payload       json.RawMessage `json:"payload"`
}

type ItemPrice struct {
	ProductID  string `json:"product_id"`
	Qty        int    `json:"qty"`
	PriceCents int    `json:"price_cents"`
}

// OrderCreatedPayload: diumumkan setelah checkout commit, utk consumer
// back office (fulfilment, laporan). Email customer sengaja tidak ikut.
type OrderCreatedPayload struct {
	OrderID    string      `json:"order_id"`
	FullName   string      `json:"full_name"`
	Items      []ItemPrice `json:"items"`
	TotalCents int         `json:"total_cents"`
}
