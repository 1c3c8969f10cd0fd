package orders_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/febriand/go-shop-api/internal/catalog"
	"github.com/febriand/go-shop-api/internal/orders"
	"github.com/febriand/go-shop-api/internal/store"
)

func newEnv(t *testing.T) (*store.Memory, *orders.Service) {
	t.Helper()
	m := store.NewMemory()
	return m, orders.NewService(m)
}

func seedProduct(t *testing.T, m *store.Memory, id, name, price string, stock int) {
	t.Helper()
	err := m.CreateProduct(context.Background(), &catalog.Product{
		ID:            id,
		Name:          name,
		Slug:          id,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	})
	require.NoError(t, err)
}

func placeReq(userID string, items []orders.ItemInput) orders.PlaceRequest {
	return orders.PlaceRequest{
		UserID:          userID,
		Items:           items,
		ShippingAddress: "1 Main St",
		BillingAddress:  "1 Main St",
		PaymentMethod:   orders.PaymentCreditCard,
	}
}

func stockOf(t *testing.T, m *store.Memory, id string) int {
	t.Helper()
	p, err := m.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.StockQuantity
}

func TestPlaceFromCart(t *testing.T) {
	ctx := context.Background()
	m, svc := newEnv(t)
	seedProduct(t, m, "px", "Product X", "15.00", 5)
	require.NoError(t, m.AddCartLine(ctx, "u1", "px", 2))

	o, err := svc.Place(ctx, placeReq("u1", nil))
	require.NoError(t, err)

	assert.Equal(t, orders.StatusPending, o.Status)
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("30.00")),
		"total = %s", o.TotalAmount)
	require.Len(t, o.Lines, 1)
	assert.Equal(t, 2, o.Lines[0].Quantity)
	assert.True(t, o.Lines[0].UnitPrice.Equal(decimal.RequireFromString("15.00")))

	assert.Equal(t, 3, stockOf(t, m, "px"))

	view, err := m.CartView(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, view.Items, "cart must be cleared after placement")
}

func TestPlaceExplicitItemsTotal(t *testing.T) {
	ctx := context.Background()
	m, svc := newEnv(t)
	seedProduct(t, m, "pa", "Product A", "10.00", 10)
	seedProduct(t, m, "pb", "Product B", "5.50", 10)

	o, err := svc.Place(ctx, placeReq("u1", []orders.ItemInput{
		{ProductID: "pa", Quantity: 2},
		{ProductID: "pb", Quantity: 3},
	}))
	require.NoError(t, err)

	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("36.50")),
		"total = %s", o.TotalAmount)
	require.Len(t, o.Lines, 2)
	assert.Equal(t, 8, stockOf(t, m, "pa"))
	assert.Equal(t, 7, stockOf(t, m, "pb"))
}

func TestPlaceUnknownProductLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	m, svc := newEnv(t)
	seedProduct(t, m, "pa", "Product A", "10.00", 10)

	_, err := svc.Place(ctx, placeReq("u1", []orders.ItemInput{
		{ProductID: "pa", Quantity: 2},
		{ProductID: "ghost", Quantity: 1},
	}))
	var notFound *orders.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.ProductID)

	assert.Equal(t, 10, stockOf(t, m, "pa"), "stock must be untouched on failure")
	all, err := m.ListAllOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "no order may be recorded on failure")
}

func TestPlaceInsufficientStockLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	m, svc := newEnv(t)
	seedProduct(t, m, "pa", "Product A", "10.00", 10)
	seedProduct(t, m, "pb", "Product B", "5.50", 2)
	require.NoError(t, m.AddCartLine(ctx, "u1", "pa", 1))
	require.NoError(t, m.AddCartLine(ctx, "u1", "pb", 3))

	_, err := svc.Place(ctx, placeReq("u1", nil))
	var noStock *orders.InsufficientStockError
	require.ErrorAs(t, err, &noStock)
	assert.Equal(t, "pb", noStock.ProductID)
	assert.Equal(t, "Product B", noStock.ProductName)
	assert.Equal(t, 3, noStock.Requested)
	assert.Equal(t, 2, noStock.Available)

	assert.Equal(t, 10, stockOf(t, m, "pa"))
	assert.Equal(t, 2, stockOf(t, m, "pb"))

	view, err := m.CartView(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, view.Items, 2, "cart must survive a failed placement")
}

func TestPlaceEmptyCart(t *testing.T) {
	_, svc := newEnv(t)
	_, err := svc.Place(context.Background(), placeReq("u1", nil))
	assert.ErrorIs(t, err, orders.ErrEmptyCart)
}

func TestPlaceExplicitEmptyList(t *testing.T) {
	_, svc := newEnv(t)
	_, err := svc.Place(context.Background(), placeReq("u1", []orders.ItemInput{}))
	assert.ErrorIs(t, err, orders.ErrNoItems)
}

func TestPlaceValidation(t *testing.T) {
	m, svc := newEnv(t)
	seedProduct(t, m, "pa", "Product A", "10.00", 10)
	items := []orders.ItemInput{{ProductID: "pa", Quantity: 1}}

	cases := []struct {
		name   string
		mutate func(*orders.PlaceRequest)
	}{
		{"missing shipping address", func(r *orders.PlaceRequest) { r.ShippingAddress = " " }},
		{"missing billing address", func(r *orders.PlaceRequest) { r.BillingAddress = "" }},
		{"unknown payment method", func(r *orders.PlaceRequest) { r.PaymentMethod = "cheque" }},
		{"zero quantity", func(r *orders.PlaceRequest) { r.Items = []orders.ItemInput{{ProductID: "pa"}} }},
		{"negative quantity", func(r *orders.PlaceRequest) { r.Items = []orders.ItemInput{{ProductID: "pa", Quantity: -1}} }},
		{"missing product id", func(r *orders.PlaceRequest) { r.Items = []orders.ItemInput{{Quantity: 1}} }},
		{"missing user", func(r *orders.PlaceRequest) { r.UserID = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := placeReq("u1", items)
			tc.mutate(&req)
			_, err := svc.Place(context.Background(), req)
			var validation *orders.ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}
}

func TestPlaceMergesDuplicateItems(t *testing.T) {
	ctx := context.Background()
	m, svc := newEnv(t)
	seedProduct(t, m, "pa", "Product A", "10.00", 5)

	o, err := svc.Place(ctx, placeReq("u1", []orders.ItemInput{
		{ProductID: "pa", Quantity: 2},
		{ProductID: "pa", Quantity: 3},
	}))
	require.NoError(t, err)
	require.Len(t, o.Lines, 1)
	assert.Equal(t, 5, o.Lines[0].Quantity)
	assert.Equal(t, 0, stockOf(t, m, "pa"))
}

func TestPlaceExplicitItemsKeepsCart(t *testing.T) {
	ctx := context.Background()
	m, svc := newEnv(t)
	seedProduct(t, m, "pa", "Product A", "10.00", 10)
	require.NoError(t, m.AddCartLine(ctx, "u1", "pa", 4))

	_, err := svc.Place(ctx, placeReq("u1", []orders.ItemInput{{ProductID: "pa", Quantity: 1}}))
	require.NoError(t, err)

	view, err := m.CartView(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, view.Items, 1, "explicit placement must not touch the cart")
}

func TestLinePriceFrozen(t *testing.T) {
	ctx := context.Background()
	m, svc := newEnv(t)
	seedProduct(t, m, "pa", "Product A", "10.00", 10)

	o, err := svc.Place(ctx, placeReq("u1", []orders.ItemInput{{ProductID: "pa", Quantity: 1}}))
	require.NoError(t, err)

	p, err := m.GetProduct(ctx, "pa")
	require.NoError(t, err)
	p.Price = decimal.RequireFromString("99.99")
	require.NoError(t, m.UpdateProduct(ctx, &p))

	got, err := svc.Get(ctx, "u1", false, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.True(t, got.Lines[0].UnitPrice.Equal(decimal.RequireFromString("10.00")),
		"line price must not follow catalog changes, got %s", got.Lines[0].UnitPrice)
}

func TestNoOversellUnderContention(t *testing.T) {
	ctx := context.Background()
	m, svc := newEnv(t)
	const stock = 5
	const callers = 20
	seedProduct(t, m, "pa", "Product A", "10.00", stock)

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Place(ctx, placeReq("u1", []orders.ItemInput{{ProductID: "pa", Quantity: 1}}))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var noStock *orders.InsufficientStockError
		require.True(t, errors.As(err, &noStock), "unexpected error: %v", err)
	}
	assert.Equal(t, stock, succeeded, "exactly one placement per unit of stock")
	assert.Equal(t, 0, stockOf(t, m, "pa"))

	all, err := m.ListAllOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, stock)
}

func TestGetEnforcesOwnership(t *testing.T) {
	ctx := context.Background()
	m, svc := newEnv(t)
	seedProduct(t, m, "pa", "Product A", "10.00", 10)

	o, err := svc.Place(ctx, placeReq("u1", []orders.ItemInput{{ProductID: "pa", Quantity: 1}}))
	require.NoError(t, err)

	_, err = svc.Get(ctx, "u2", false, o.ID)
	assert.ErrorIs(t, err, orders.ErrPermission)

	got, err := svc.Get(ctx, "u2", true, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = svc.Get(ctx, "u1", false, "missing")
	assert.ErrorIs(t, err, orders.ErrOrderNotFound)
}

func TestListScopedToCaller(t *testing.T) {
	ctx := context.Background()
	m, svc := newEnv(t)
	seedProduct(t, m, "pa", "Product A", "10.00", 10)

	_, err := svc.Place(ctx, placeReq("u1", []orders.ItemInput{{ProductID: "pa", Quantity: 1}}))
	require.NoError(t, err)
	_, err = svc.Place(ctx, placeReq("u2", []orders.ItemInput{{ProductID: "pa", Quantity: 1}}))
	require.NoError(t, err)

	mine, err := svc.List(ctx, "u1", false)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.List(ctx, "u1", true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	m, svc := newEnv(t)
	seedProduct(t, m, "pa", "Product A", "10.00", 10)

	o, err := svc.Place(ctx, placeReq("u1", []orders.ItemInput{{ProductID: "pa", Quantity: 1}}))
	require.NoError(t, err)

	got, err := svc.UpdateStatus(ctx, o.ID, orders.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusConfirmed, got.Status)

	_, err = svc.UpdateStatus(ctx, o.ID, orders.StatusDelivered)
	var badTransition *orders.InvalidTransitionError
	require.ErrorAs(t, err, &badTransition)
	assert.Equal(t, orders.StatusConfirmed, badTransition.From)

	got, err = svc.UpdateStatus(ctx, o.ID, orders.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, got.Status)

	_, err = svc.UpdateStatus(ctx, o.ID, orders.StatusConfirmed)
	assert.ErrorAs(t, err, &badTransition)

	_, err = svc.UpdateStatus(ctx, o.ID, orders.Status("lost"))
	var validation *orders.ValidationError
	assert.ErrorAs(t, err, &validation)
}
