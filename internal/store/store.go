// Package store holds the persistence boundary: the interfaces the HTTP
// layer and services consume, a Postgres implementation used in production,
// and an in-memory implementation used by tests.
package store

import (
	"context"

	"github.com/febriand/go-shop-api/internal/accounts"
	"github.com/febriand/go-shop-api/internal/analytics"
	"github.com/febriand/go-shop-api/internal/cart"
	"github.com/febriand/go-shop-api/internal/catalog"
	"github.com/febriand/go-shop-api/internal/orders"
)

type CatalogStore interface {
	CreateCategory(ctx context.Context, c *catalog.Category) error
	ListCategories(ctx context.Context) ([]catalog.Category, error)
	GetCategory(ctx context.Context, id string) (catalog.Category, error)

	CreateProduct(ctx context.Context, p *catalog.Product) error
	UpdateProduct(ctx context.Context, p *catalog.Product) error
	DeleteProduct(ctx context.Context, id string) error
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
	ListProducts(ctx context.Context) ([]catalog.Product, error)
}

type CartStore interface {
	CartView(ctx context.Context, userID string) (cart.View, error)
	AddCartLine(ctx context.Context, userID, productID string, qty int) error
	UpdateCartLine(ctx context.Context, userID, lineID string, qty int) error
	RemoveCartLine(ctx context.Context, userID, lineID string) error
	ClearCart(ctx context.Context, userID string) error
}

type UserStore interface {
	CreateUser(ctx context.Context, u *accounts.User) error
	GetUser(ctx context.Context, id string) (accounts.User, error)
	UserByUsername(ctx context.Context, username string) (accounts.User, error)
	UpdateUser(ctx context.Context, u *accounts.User) error
}

// Store is everything a fully wired API needs.
type Store interface {
	CatalogStore
	CartStore
	UserStore
	orders.Store
	analytics.Store
}
