package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/febriand/go-shop-api/internal/catalog"
)

func (s *Postgres) CreateCategory(ctx context.Context, c *catalog.Category) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO categories (id, name, slug, description, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.Slug, c.Description, c.IsActive, c.CreatedAt)
	return err
}

func (s *Postgres) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, slug, description, is_active, created_at
		FROM categories WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Postgres) GetCategory(ctx context.Context, id string) (catalog.Category, error) {
	var c catalog.Category
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, slug, description, is_active, created_at
		FROM categories WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Category{}, catalog.ErrCategoryNotFound
	}
	return c, err
}

const productColumns = `p.id, p.name, p.slug, p.category_id, c.name, p.short_description,
	p.price, p.compare_price, p.stock_quantity, p.is_featured, p.is_active, p.image_url,
	p.created_at, p.updated_at`

func scanProduct(row pgx.Row) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.CategoryID, &p.CategoryName,
		&p.ShortDescription, &p.Price, &p.ComparePrice, &p.StockQuantity,
		&p.IsFeatured, &p.IsActive, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Postgres) CreateProduct(ctx context.Context, p *catalog.Product) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO products (id, name, slug, category_id, short_description, price,
			compare_price, stock_quantity, is_featured, is_active, image_url, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		p.ID, p.Name, p.Slug, p.CategoryID, p.ShortDescription, p.Price,
		p.ComparePrice, p.StockQuantity, p.IsFeatured, p.IsActive, p.ImageURL,
		p.CreatedAt, p.UpdatedAt)
	return err
}

func (s *Postgres) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	ct, err := s.pool.Exec(ctx, `
		UPDATE products SET name=$2, slug=$3, category_id=$4, short_description=$5,
			price=$6, compare_price=$7, stock_quantity=$8, is_featured=$9,
			is_active=$10, image_url=$11, updated_at=now()
		WHERE id=$1`,
		p.ID, p.Name, p.Slug, p.CategoryID, p.ShortDescription, p.Price,
		p.ComparePrice, p.StockQuantity, p.IsFeatured, p.IsActive, p.ImageURL)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// DeleteProduct refuses to remove a product any order line still references,
// so historical orders keep a valid product reference.
func (s *Postgres) DeleteProduct(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var inUse bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM order_lines WHERE product_id=$1)`, id).Scan(&inUse); err != nil {
		return err
	}
	if inUse {
		return catalog.ErrProductInUse
	}

	ct, err := tx.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return catalog.ErrProductNotFound
	}
	return tx.Commit(ctx)
}

func (s *Postgres) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products p JOIN categories c ON c.id = p.category_id
		WHERE p.id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	return p, err
}

func (s *Postgres) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products p JOIN categories c ON c.id = p.category_id
		WHERE p.is_active ORDER BY p.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
