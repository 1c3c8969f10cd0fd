package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/febriand/go-shop-api/internal/accounts"
	"github.com/febriand/go-shop-api/internal/auth"
	"github.com/febriand/go-shop-api/internal/cart"
	"github.com/febriand/go-shop-api/internal/catalog"
	"github.com/febriand/go-shop-api/internal/orders"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation    *orders.ValidationError
		notFound      *orders.NotFoundError
		noStock       *orders.InsufficientStockError
		badTransition *orders.InvalidTransitionError
	)
	switch {
	case errors.As(err, &noStock):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      noStock.Error(),
			"product_id": noStock.ProductID,
			"available":  noStock.Available,
		})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":      notFound.Error(),
			"product_id": notFound.ProductID,
		})
	case errors.As(err, &validation),
		errors.Is(err, orders.ErrEmptyCart),
		errors.Is(err, orders.ErrNoItems),
		errors.Is(err, auth.ErrPasswordTooShort):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &badTransition),
		errors.Is(err, accounts.ErrUserExists),
		errors.Is(err, catalog.ErrProductInUse):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, accounts.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, orders.ErrPermission):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}
