package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/febriand/go-shop-api/internal/cart"
	"github.com/febriand/go-shop-api/internal/catalog"
)

func (s *Postgres) CartView(ctx context.Context, userID string) (cart.View, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT cl.id, cl.product_id, p.name, p.price, cl.quantity, cl.added_at
		FROM cart_lines cl JOIN products p ON p.id = cl.product_id
		WHERE cl.user_id=$1 ORDER BY cl.added_at, cl.id`, userID)
	if err != nil {
		return cart.View{}, err
	}
	defer rows.Close()

	view := cart.View{Items: []cart.LineView{}, TotalPrice: decimal.Zero}
	for rows.Next() {
		var lv cart.LineView
		if err := rows.Scan(&lv.ID, &lv.ProductID, &lv.ProductName, &lv.UnitPrice, &lv.Quantity, &lv.AddedAt); err != nil {
			return cart.View{}, err
		}
		lv.Subtotal = lv.UnitPrice.Mul(decimal.NewFromInt(int64(lv.Quantity)))
		view.Items = append(view.Items, lv)
		view.TotalPrice = view.TotalPrice.Add(lv.Subtotal)
	}
	return view, rows.Err()
}

// AddCartLine merges the quantity into an existing line for the same product
// instead of creating a duplicate.
func (s *Postgres) AddCartLine(ctx context.Context, userID, productID string, qty int) error {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id=$1)`, productID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return catalog.ErrProductNotFound
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO cart_lines (id, user_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity`,
		uuid.NewString(), userID, productID, qty)
	return err
}

// UpdateCartLine sets an absolute quantity; zero or less removes the line.
func (s *Postgres) UpdateCartLine(ctx context.Context, userID, lineID string, qty int) error {
	if qty <= 0 {
		return s.RemoveCartLine(ctx, userID, lineID)
	}
	ct, err := s.pool.Exec(ctx,
		`UPDATE cart_lines SET quantity=$3 WHERE id=$1 AND user_id=$2`, lineID, userID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

func (s *Postgres) RemoveCartLine(ctx context.Context, userID, lineID string) error {
	ct, err := s.pool.Exec(ctx,
		`DELETE FROM cart_lines WHERE id=$1 AND user_id=$2`, lineID, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

func (s *Postgres) ClearCart(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM cart_lines WHERE user_id=$1`, userID)
	return err
}
