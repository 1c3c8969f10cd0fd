package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const EventOrderPlaced = "OrderPlaced"

type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

type PlacedItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderPlacedPayload struct {
	OrderID     string          `json:"order_id"`
	UserID      string          `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []PlacedItem    `json:"items"`
	PlacedAt    time.Time       `json:"placed_at"`
}
