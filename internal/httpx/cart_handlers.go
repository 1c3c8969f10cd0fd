package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/febriand/go-shop-api/internal/store"
)

type CartHandler struct {
	Store store.CartStore
}

func (h *CartHandler) Register(r chi.Router) {
	r.Get("/cart", h.view)
	r.Post("/cart/items", h.add)
	r.Put("/cart/items/{lineID}", h.update)
	r.Delete("/cart/items/{lineID}", h.remove)
	r.Delete("/cart", h.clear)
}

func (h *CartHandler) view(w http.ResponseWriter, r *http.Request) {
	v, err := h.Store.CartView(r.Context(), claimsFrom(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type cartAddReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	var req cartAddReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if req.ProductID == "" {
		badRequest(w, "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		badRequest(w, "quantity must be a positive integer")
		return
	}

	userID := claimsFrom(r).UserID
	if err := h.Store.AddCartLine(r.Context(), userID, req.ProductID, req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	v, err := h.Store.CartView(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

type cartUpdateReq struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) update(w http.ResponseWriter, r *http.Request) {
	var req cartUpdateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}

	userID := claimsFrom(r).UserID
	if err := h.Store.UpdateCartLine(r.Context(), userID, chi.URLParam(r, "lineID"), req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	v, err := h.Store.CartView(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	userID := claimsFrom(r).UserID
	if err := h.Store.RemoveCartLine(r.Context(), userID, chi.URLParam(r, "lineID")); err != nil {
		writeError(w, err)
		return
	}
	v, err := h.Store.CartView(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.ClearCart(r.Context(), claimsFrom(r).UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
