package orders

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrNoItems       = errors.New("no items provided")
	ErrOrderNotFound = errors.New("order not found")
	ErrPermission    = errors.New("permission denied")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NotFoundError names the unknown product that aborted a placement.
type NotFoundError struct {
	ProductID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

// InsufficientStockError carries the product and what was actually available
// when the stock check ran.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// InvalidTransitionError rejects a status update the lifecycle does not allow.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}
