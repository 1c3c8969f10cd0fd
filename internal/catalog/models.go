package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	// ErrProductInUse is returned when deleting a product that an order line
	// still references. Historical orders keep their product rows.
	ErrProductInUse = errors.New("product is referenced by an order")
)

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Product struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	Slug             string              `json:"slug"`
	CategoryID       string              `json:"category"`
	CategoryName     string              `json:"category_name,omitempty"`
	ShortDescription string              `json:"short_description"`
	Price            decimal.Decimal     `json:"price"`
	ComparePrice     decimal.NullDecimal `json:"compare_price"`
	StockQuantity    int                 `json:"stock_quantity"`
	IsFeatured       bool                `json:"is_featured"`
	IsActive         bool                `json:"is_active"`
	ImageURL         string              `json:"image"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}
