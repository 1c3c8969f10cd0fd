package orders

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/febriand/go-shop-api/internal/cart"
	"github.com/febriand/go-shop-api/internal/catalog"
)

// ItemInput is one requested (product, quantity) pair.
type ItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// PlaceRequest describes a placement attempt. Items == nil means "use the
// caller's stored cart"; an explicit (possibly invalid) list is passed as-is.
type PlaceRequest struct {
	UserID          string
	Items           []ItemInput
	ShippingAddress string
	BillingAddress  string
	PaymentMethod   PaymentMethod
	Notes           string
}

// Tx is the set of operations available inside one placement transaction.
// ProductForUpdate must lock the product row so that the stock check and the
// later decrement are serializable against concurrent placements.
type Tx interface {
	ProductForUpdate(ctx context.Context, productID string) (catalog.Product, error)
	DecrementStock(ctx context.Context, productID string, qty int) error
	InsertOrder(ctx context.Context, o *Order) error
	InsertLines(ctx context.Context, lines []Line) error
	CartLines(ctx context.Context, userID string) ([]cart.Line, error)
	ClearCart(ctx context.Context, userID string) error
}

// Store is the ledger boundary the service runs against. InTx commits only
// when fn returns nil; any error rolls every write back.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	GetOrder(ctx context.Context, orderID string) (Order, error)
	ListOrders(ctx context.Context, userID string) ([]Order, error)
	ListAllOrders(ctx context.Context) ([]Order, error)
	SetOrderStatus(ctx context.Context, orderID string, to Status, at time.Time) error
}

type Service struct {
	store Store
}

func NewService(s Store) *Service {
	return &Service{store: s}
}

// Place runs the whole placement as one atomic unit: resolve items, validate
// every line against the catalog, compute the total, write the order and its
// frozen lines, decrement stock, and clear the cart when it was the source.
// Any failure leaves catalog, ledger and cart untouched.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (Order, error) {
	items, fromCart, err := normalize(req)
	if err != nil {
		return Order{}, err
	}

	var placed Order
	err = s.store.InTx(ctx, func(tx Tx) error {
		if fromCart {
			lines, err := tx.CartLines(ctx, req.UserID)
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				return ErrEmptyCart
			}
			items = make([]ItemInput, 0, len(lines))
			for _, l := range lines {
				items = append(items, ItemInput{ProductID: l.ProductID, Quantity: l.Quantity})
			}
		}

		now := time.Now().UTC()
		userID := req.UserID
		order := Order{
			ID:              uuid.NewString(),
			UserID:          &userID,
			Status:          StatusPending,
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  req.BillingAddress,
			PaymentMethod:   req.PaymentMethod,
			Notes:           req.Notes,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		// Lock and validate every product before mutating anything, so a
		// mid-list failure cannot leave partial stock commitments.
		total := decimal.Zero
		lines := make([]Line, 0, len(items))
		for _, it := range items {
			p, err := tx.ProductForUpdate(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if p.StockQuantity < it.Quantity {
				return &InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Requested:   it.Quantity,
					Available:   p.StockQuantity,
				}
			}
			line := NewLine(uuid.NewString(), order.ID, p.ID, p.Name, it.Quantity, p.Price)
			lines = append(lines, line)
			total = total.Add(line.Subtotal)
		}
		order.TotalAmount = total
		order.Lines = lines

		if err := tx.InsertOrder(ctx, &order); err != nil {
			return err
		}
		if err := tx.InsertLines(ctx, lines); err != nil {
			return err
		}
		for _, it := range items {
			if err := tx.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		if fromCart {
			if err := tx.ClearCart(ctx, req.UserID); err != nil {
				return err
			}
		}
		placed = order
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return placed, nil
}

// normalize validates the request shape and merges duplicate product ids in
// an explicit item list, mirroring the cart's one-line-per-product rule.
func normalize(req PlaceRequest) ([]ItemInput, bool, error) {
	if req.UserID == "" {
		return nil, false, &ValidationError{Field: "user", Reason: "caller identity is required"}
	}
	if strings.TrimSpace(req.ShippingAddress) == "" {
		return nil, false, &ValidationError{Field: "shipping_address", Reason: "this field is required"}
	}
	if strings.TrimSpace(req.BillingAddress) == "" {
		return nil, false, &ValidationError{Field: "billing_address", Reason: "this field is required"}
	}
	if !req.PaymentMethod.Valid() {
		return nil, false, &ValidationError{Field: "payment_method", Reason: "unknown payment method"}
	}

	if req.Items == nil {
		return nil, true, nil
	}
	if len(req.Items) == 0 {
		return nil, false, ErrNoItems
	}

	merged := make([]ItemInput, 0, len(req.Items))
	index := make(map[string]int, len(req.Items))
	for _, it := range req.Items {
		if it.ProductID == "" {
			return nil, false, &ValidationError{Field: "product_id", Reason: "this field is required"}
		}
		if it.Quantity <= 0 {
			return nil, false, &ValidationError{Field: "quantity", Reason: "must be a positive integer"}
		}
		if i, ok := index[it.ProductID]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	return merged, false, nil
}

// Get returns one order; non-admin callers only see their own.
func (s *Service) Get(ctx context.Context, callerID string, admin bool, orderID string) (Order, error) {
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if !admin && (o.UserID == nil || *o.UserID != callerID) {
		return Order{}, ErrPermission
	}
	return o, nil
}

// List returns the caller's orders, or every order for admins.
func (s *Service) List(ctx context.Context, callerID string, admin bool) ([]Order, error) {
	if admin {
		return s.store.ListAllOrders(ctx)
	}
	return s.store.ListOrders(ctx, callerID)
}

// UpdateStatus applies an administrative transition, rejecting moves the
// lifecycle table does not allow.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, to Status) (Order, error) {
	if !to.Valid() {
		return Order{}, &ValidationError{Field: "status", Reason: "unknown status"}
	}
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(o.Status, to) {
		return Order{}, &InvalidTransitionError{From: o.Status, To: to}
	}
	now := time.Now().UTC()
	if err := s.store.SetOrderStatus(ctx, orderID, to, now); err != nil {
		return Order{}, err
	}
	o.Status = to
	o.UpdatedAt = now
	return o, nil
}
