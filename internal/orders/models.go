package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentPayPal     PaymentMethod = "paypal"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCreditCard || m == PaymentPayPal
}

type Order struct {
	ID              string          `json:"id"`
	UserID          *string         `json:"user_id"` // nil once the user is deleted
	Status          Status          `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingAddress string          `json:"shipping_address"`
	BillingAddress  string          `json:"billing_address"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	Notes           string          `json:"notes,omitempty"`
	Lines           []Line          `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Line is an immutable order line. UnitPrice is the catalog price frozen at
// placement time; later price changes never touch it.
type Line struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"-"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"price_at_time"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// NewLine derives the subtotal from unit price and quantity; the two are
// never set independently.
func NewLine(id, orderID, productID, productName string, qty int, unitPrice decimal.Decimal) Line {
	return Line{
		ID:          id,
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    qty,
		UnitPrice:   unitPrice,
		Subtotal:    unitPrice.Mul(decimal.NewFromInt(int64(qty))),
	}
}
