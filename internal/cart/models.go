package cart

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrLineNotFound = errors.New("cart line not found")

// Line is a raw cart row: one product per user, quantity always >= 1.
type Line struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// LineView is a line joined with its product, with the subtotal computed at
// the current catalog price. Cart subtotals are a live view; prices freeze
// only when an order is placed.
type LineView struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	AddedAt     time.Time       `json:"added_at"`
}

type View struct {
	Items      []LineView      `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}
