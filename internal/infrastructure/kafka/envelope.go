package kafka

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/purchases-api/internal/application/purchase"
)

// Envelope formato común de todos los eventos publicados en el topic.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // purchase_id
	Payload       json.RawMessage `json:"payload"`
}

// PurchasePayload estado de la compra tras el cambio.
type PurchasePayload struct {
	PurchaseID  int64           `json:"purchase_id"`
	UserID      int64           `json:"user_id"`
	StoreID     int64           `json:"store_id"`
	ProductID   int64           `json:"product_id"`
	Quantity    int             `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	PrevStatus  string          `json:"prev_status,omitempty"`
}

func payloadFromEvent(ev purchase.Event) PurchasePayload {
	p := PurchasePayload{
		PurchaseID:  ev.Purchase.ID,
		UserID:      ev.Purchase.UserID,
		StoreID:     ev.Purchase.StoreID,
		ProductID:   ev.Purchase.ProductID,
		Quantity:    ev.Purchase.Quantity,
		TotalAmount: ev.Purchase.TotalAmount,
		Status:      ev.Purchase.Status.String(),
	}
	if ev.PrevStatus.Valid() {
		p.PrevStatus = ev.PrevStatus.String()
	}
	return p
}
