package order

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicOrderRequested = "order.requested"

	EventOrderRequested = "OrderRequested"
)

// PartitionKey keeps all events of one session on one partition.
func PartitionKey(sessionID string) []byte { return []byte(sessionID) }

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type RequestedItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Qty         int             `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// OrderRequestedPayload records that a request message was generated for a
// vendor. It is an audit fact, not an order: the deep link is fire-and-forget
// and nothing confirms delivery.
type OrderRequestedPayload struct {
	SessionID     string          `json:"session_id"`
	VendorName    string          `json:"vendor_name"`
	VendorContact string          `json:"vendor_contact"`
	Reference     string          `json:"reference"`
	Items         []RequestedItem `json:"items"`
	TotalItems    int             `json:"total_items"`
	Total         decimal.Decimal `json:"total"`
}
