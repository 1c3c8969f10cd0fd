package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/febriand/go-shop-api/internal/cart"
	"github.com/febriand/go-shop-api/internal/catalog"
	"github.com/febriand/go-shop-api/internal/orders"
)

// InTx runs fn inside one database transaction. The deferred rollback is a
// no-op after a successful commit.
func (s *Postgres) InTx(ctx context.Context, fn func(tx orders.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgTx struct {
	tx pgx.Tx
}

// ProductForUpdate locks the product row for the rest of the transaction, so
// the stock check and the decrement are serializable against concurrent
// placements touching the same product.
func (t *pgTx) ProductForUpdate(ctx context.Context, productID string) (catalog.Product, error) {
	var p catalog.Product
	err := t.tx.QueryRow(ctx, `
		SELECT id, name, price, stock_quantity
		FROM products WHERE id=$1 FOR UPDATE`, productID).
		Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Product{}, &orders.NotFoundError{ProductID: productID}
	}
	return p, err
}

func (t *pgTx) DecrementStock(ctx context.Context, productID string, qty int) error {
	ct, err := t.tx.Exec(ctx, `
		UPDATE products SET stock_quantity = stock_quantity - $2, updated_at = now()
		WHERE id=$1 AND stock_quantity >= $2`, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		// the row is locked, so this only fires when the caller skipped the check
		var name string
		var stock int
		if err := t.tx.QueryRow(ctx,
			`SELECT name, stock_quantity FROM products WHERE id=$1`, productID).Scan(&name, &stock); err != nil {
			return &orders.NotFoundError{ProductID: productID}
		}
		return &orders.InsufficientStockError{ProductID: productID, ProductName: name, Requested: qty, Available: stock}
	}
	return nil
}

func (t *pgTx) InsertOrder(ctx context.Context, o *orders.Order) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, status, total_amount, shipping_address,
			billing_address, payment_method, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		o.ID, o.UserID, o.Status, o.TotalAmount, o.ShippingAddress,
		o.BillingAddress, o.PaymentMethod, o.Notes, o.CreatedAt, o.UpdatedAt)
	return err
}

func (t *pgTx) InsertLines(ctx context.Context, lines []orders.Line) error {
	for _, l := range lines {
		_, err := t.tx.Exec(ctx, `
			INSERT INTO order_lines (id, order_id, product_id, quantity, unit_price, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			l.ID, l.OrderID, l.ProductID, l.Quantity, l.UnitPrice, l.Subtotal)
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *pgTx) CartLines(ctx context.Context, userID string) ([]cart.Line, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, user_id, product_id, quantity, added_at
		FROM cart_lines WHERE user_id=$1 ORDER BY added_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []cart.Line
	for rows.Next() {
		var l cart.Line
		if err := rows.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (t *pgTx) ClearCart(ctx context.Context, userID string) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM cart_lines WHERE user_id=$1`, userID)
	return err
}

const orderColumns = `id, user_id, status, total_amount, shipping_address,
	billing_address, payment_method, notes, created_at, updated_at`

func scanOrder(row pgx.Row) (orders.Order, error) {
	var o orders.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalAmount, &o.ShippingAddress,
		&o.BillingAddress, &o.PaymentMethod, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (s *Postgres) GetOrder(ctx context.Context, orderID string) (orders.Order, error) {
	o, err := scanOrder(s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.Order{}, orders.ErrOrderNotFound
	}
	if err != nil {
		return orders.Order{}, err
	}
	lines, err := s.orderLines(ctx, []string{o.ID})
	if err != nil {
		return orders.Order{}, err
	}
	o.Lines = lines[o.ID]
	return o, nil
}

func (s *Postgres) ListOrders(ctx context.Context, userID string) ([]orders.Order, error) {
	return s.listOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (s *Postgres) ListAllOrders(ctx context.Context) ([]orders.Order, error) {
	return s.listOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (s *Postgres) listOrders(ctx context.Context, query string, args ...any) ([]orders.Order, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orders.Order
	var ids []string
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	lines, err := s.orderLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Lines = lines[out[i].ID]
	}
	return out, nil
}

func (s *Postgres) orderLines(ctx context.Context, orderIDs []string) (map[string][]orders.Line, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ol.id, ol.order_id, ol.product_id, p.name, ol.quantity, ol.unit_price, ol.subtotal
		FROM order_lines ol JOIN products p ON p.id = ol.product_id
		WHERE ol.order_id = ANY($1)`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]orders.Line, len(orderIDs))
	for rows.Next() {
		var l orders.Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return nil, err
		}
		out[l.OrderID] = append(out[l.OrderID], l)
	}
	return out, rows.Err()
}

func (s *Postgres) SetOrderStatus(ctx context.Context, orderID string, to orders.Status, at time.Time) error {
	ct, err := s.pool.Exec(ctx,
		`UPDATE orders SET status=$2, updated_at=$3 WHERE id=$1`, orderID, to, at)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return orders.ErrOrderNotFound
	}
	return nil
}
