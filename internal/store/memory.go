package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/febriand/go-shop-api/internal/accounts"
	"github.com/febriand/go-shop-api/internal/analytics"
	"github.com/febriand/go-shop-api/internal/cart"
	"github.com/febriand/go-shop-api/internal/catalog"
	"github.com/febriand/go-shop-api/internal/orders"
)

// Memory is an in-process Store used by tests. A single mutex is held for
// the whole of InTx, which makes every transaction trivially serializable —
// the same isolation the row-locked Postgres implementation provides — and
// a snapshot restore gives the same all-or-nothing rollback.
type Memory struct {
	mu         sync.Mutex
	users      map[string]accounts.User
	categories map[string]catalog.Category
	products   map[string]catalog.Product
	cartLines  map[string]cart.Line
	orders     map[string]orders.Order
	metrics    map[string]analytics.DayPoint
}

func NewMemory() *Memory {
	return &Memory{
		users:      map[string]accounts.User{},
		categories: map[string]catalog.Category{},
		products:   map[string]catalog.Product{},
		cartLines:  map[string]cart.Line{},
		orders:     map[string]orders.Order{},
		metrics:    map[string]analytics.DayPoint{},
	}
}

var _ Store = (*Memory)(nil)

// --- catalog ---

func (m *Memory) CreateCategory(_ context.Context, c *catalog.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[c.ID] = *c
	return nil
}

func (m *Memory) ListCategories(_ context.Context) ([]catalog.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []catalog.Category
	for _, c := range m.categories {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) GetCategory(_ context.Context, id string) (catalog.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return catalog.Category{}, catalog.ErrCategoryNotFound
	}
	return c, nil
}

func (m *Memory) CreateProduct(_ context.Context, p *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = *p
	return nil
}

func (m *Memory) UpdateProduct(_ context.Context, p *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return catalog.ErrProductNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	m.products[p.ID] = *p
	return nil
}

func (m *Memory) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return catalog.ErrProductNotFound
	}
	for _, o := range m.orders {
		for _, l := range o.Lines {
			if l.ProductID == id {
				return catalog.ErrProductInUse
			}
		}
	}
	delete(m.products, id)
	for lineID, l := range m.cartLines {
		if l.ProductID == id {
			delete(m.cartLines, lineID)
		}
	}
	return nil
}

func (m *Memory) GetProduct(_ context.Context, id string) (catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	p.CategoryName = m.categories[p.CategoryID].Name
	return p, nil
}

func (m *Memory) ListProducts(_ context.Context) ([]catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []catalog.Product
	for _, p := range m.products {
		if !p.IsActive {
			continue
		}
		p.CategoryName = m.categories[p.CategoryID].Name
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- users ---

func (m *Memory) CreateUser(_ context.Context, u *accounts.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return accounts.ErrUserExists
		}
	}
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) GetUser(_ context.Context, id string) (accounts.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return accounts.User{}, accounts.ErrUserNotFound
	}
	return u, nil
}

func (m *Memory) UserByUsername(_ context.Context, username string) (accounts.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return accounts.User{}, accounts.ErrUserNotFound
}

func (m *Memory) UpdateUser(_ context.Context, u *accounts.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[u.ID]
	if !ok {
		return accounts.ErrUserNotFound
	}
	existing.FirstName = u.FirstName
	existing.LastName = u.LastName
	existing.PhoneNumber = u.PhoneNumber
	existing.Address = u.Address
	existing.DateOfBirth = u.DateOfBirth
	m.users[u.ID] = existing
	return nil
}

// --- cart ---

func (m *Memory) CartView(_ context.Context, userID string) (cart.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	view := cart.View{Items: []cart.LineView{}, TotalPrice: decimal.Zero}
	for _, l := range m.userCartLines(userID) {
		p := m.products[l.ProductID]
		lv := cart.LineView{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    l.Quantity,
			Subtotal:    p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))),
			AddedAt:     l.AddedAt,
		}
		view.Items = append(view.Items, lv)
		view.TotalPrice = view.TotalPrice.Add(lv.Subtotal)
	}
	return view, nil
}

func (m *Memory) AddCartLine(_ context.Context, userID, productID string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[productID]; !ok {
		return catalog.ErrProductNotFound
	}
	for id, l := range m.cartLines {
		if l.UserID == userID && l.ProductID == productID {
			l.Quantity += qty
			m.cartLines[id] = l
			return nil
		}
	}
	id := uuid.NewString()
	m.cartLines[id] = cart.Line{
		ID:        id,
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
		AddedAt:   time.Now().UTC(),
	}
	return nil
}

func (m *Memory) UpdateCartLine(_ context.Context, userID, lineID string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.cartLines[lineID]
	if !ok || l.UserID != userID {
		return cart.ErrLineNotFound
	}
	if qty <= 0 {
		delete(m.cartLines, lineID)
		return nil
	}
	l.Quantity = qty
	m.cartLines[lineID] = l
	return nil
}

func (m *Memory) RemoveCartLine(_ context.Context, userID, lineID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.cartLines[lineID]
	if !ok || l.UserID != userID {
		return cart.ErrLineNotFound
	}
	delete(m.cartLines, lineID)
	return nil
}

func (m *Memory) ClearCart(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCartLocked(userID)
	return nil
}

func (m *Memory) clearCartLocked(userID string) {
	for id, l := range m.cartLines {
		if l.UserID == userID {
			delete(m.cartLines, id)
		}
	}
}

func (m *Memory) userCartLines(userID string) []cart.Line {
	var out []cart.Line
	for _, l := range m.cartLines {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].AddedAt.Before(out[j].AddedAt)
	})
	return out
}

// --- orders ---

// InTx serializes transactions behind the store mutex and restores a full
// snapshot of products, cart lines and orders when fn fails, so a failed
// placement leaves no observable side effects.
func (m *Memory) InTx(_ context.Context, fn func(tx orders.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	products := make(map[string]catalog.Product, len(m.products))
	for k, v := range m.products {
		products[k] = v
	}
	cartLines := make(map[string]cart.Line, len(m.cartLines))
	for k, v := range m.cartLines {
		cartLines[k] = v
	}
	orderSnap := make(map[string]orders.Order, len(m.orders))
	for k, v := range m.orders {
		orderSnap[k] = copyOrder(v)
	}

	if err := fn(&memTx{m: m}); err != nil {
		m.products = products
		m.cartLines = cartLines
		m.orders = orderSnap
		return err
	}
	return nil
}

type memTx struct {
	m *Memory
}

func (t *memTx) ProductForUpdate(_ context.Context, productID string) (catalog.Product, error) {
	p, ok := t.m.products[productID]
	if !ok {
		return catalog.Product{}, &orders.NotFoundError{ProductID: productID}
	}
	return p, nil
}

func (t *memTx) DecrementStock(_ context.Context, productID string, qty int) error {
	p, ok := t.m.products[productID]
	if !ok {
		return &orders.NotFoundError{ProductID: productID}
	}
	if p.StockQuantity < qty {
		return &orders.InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Requested:   qty,
			Available:   p.StockQuantity,
		}
	}
	p.StockQuantity -= qty
	p.UpdatedAt = time.Now().UTC()
	t.m.products[productID] = p
	return nil
}

func (t *memTx) InsertOrder(_ context.Context, o *orders.Order) error {
	stored := copyOrder(*o)
	stored.Lines = nil
	t.m.orders[o.ID] = stored
	return nil
}

func (t *memTx) InsertLines(_ context.Context, lines []orders.Line) error {
	for _, l := range lines {
		o, ok := t.m.orders[l.OrderID]
		if !ok {
			return orders.ErrOrderNotFound
		}
		o.Lines = append(o.Lines, l)
		t.m.orders[l.OrderID] = o
	}
	return nil
}

func (t *memTx) CartLines(_ context.Context, userID string) ([]cart.Line, error) {
	return t.m.userCartLines(userID), nil
}

func (t *memTx) ClearCart(_ context.Context, userID string) error {
	t.m.clearCartLocked(userID)
	return nil
}

func copyOrder(o orders.Order) orders.Order {
	lines := make([]orders.Line, len(o.Lines))
	copy(lines, o.Lines)
	o.Lines = lines
	return o
}

func (m *Memory) GetOrder(_ context.Context, orderID string) (orders.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return orders.Order{}, orders.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (m *Memory) ListOrders(_ context.Context, userID string) ([]orders.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []orders.Order
	for _, o := range m.orders {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, copyOrder(o))
		}
	}
	sortOrdersDesc(out)
	return out, nil
}

func (m *Memory) ListAllOrders(_ context.Context) ([]orders.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]orders.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, copyOrder(o))
	}
	sortOrdersDesc(out)
	return out, nil
}

func sortOrdersDesc(out []orders.Order) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
}

func (m *Memory) SetOrderStatus(_ context.Context, orderID string, to orders.Status, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return orders.ErrOrderNotFound
	}
	o.Status = to
	o.UpdatedAt = at
	m.orders[orderID] = o
	return nil
}

// --- analytics ---

func (m *Memory) DayTotals(_ context.Context, day time.Time) (analytics.DayPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := day.UTC().Truncate(24 * time.Hour)
	end := start.AddDate(0, 0, 1)

	p := analytics.DayPoint{Date: start.Format(analytics.DateLayout), Sales: decimal.Zero}
	seen := map[string]bool{}
	for _, o := range m.orders {
		if o.CreatedAt.Before(start) || !o.CreatedAt.Before(end) {
			continue
		}
		p.Sales = p.Sales.Add(o.TotalAmount)
		p.Orders++
		if o.UserID != nil && !seen[*o.UserID] {
			seen[*o.UserID] = true
			p.Customers++
		}
	}
	return p, nil
}

func (m *Memory) NewCustomers(_ context.Context, day time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := day.UTC().Truncate(24 * time.Hour)
	end := start.AddDate(0, 0, 1)
	n := 0
	for _, u := range m.users {
		if !u.CreatedAt.Before(start) && u.CreatedAt.Before(end) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) GetSalesMetric(_ context.Context, day time.Time) (analytics.DayPoint, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.metrics[day.UTC().Truncate(24*time.Hour).Format(analytics.DateLayout)]
	return p, ok, nil
}

func (m *Memory) SaveSalesMetric(_ context.Context, p analytics.DayPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics[p.Date] = p
	return nil
}

func (m *Memory) RecentOrders(_ context.Context, limit int) ([]analytics.RecentOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]orders.Order, 0, len(m.orders))
	for _, o := range m.orders {
		all = append(all, o)
	}
	sortOrdersDesc(all)
	if len(all) > limit {
		all = all[:limit]
	}

	out := make([]analytics.RecentOrder, 0, len(all))
	for _, o := range all {
		name := "Guest"
		if o.UserID != nil {
			if u, ok := m.users[*o.UserID]; ok {
				name = u.DisplayName()
			}
		}
		out = append(out, analytics.RecentOrder{
			ID:           o.ID,
			CustomerName: name,
			Total:        o.TotalAmount,
			Status:       string(o.Status),
			CreatedAt:    o.CreatedAt,
		})
	}
	return out, nil
}
