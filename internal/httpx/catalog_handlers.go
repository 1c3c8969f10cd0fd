package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/febriand/go-shop-api/internal/catalog"
	"github.com/febriand/go-shop-api/internal/store"
)

type CatalogHandler struct {
	Store store.CatalogStore
}

func (h *CatalogHandler) RegisterPublic(r chi.Router) {
	r.Get("/categories", h.listCategories)
	r.Get("/categories/{id}", h.getCategory)
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
}

func (h *CatalogHandler) RegisterAdmin(r chi.Router) {
	r.Post("/categories", h.createCategory)
	r.Post("/products", h.createProduct)
	r.Put("/products/{id}", h.updateProduct)
	r.Delete("/products/{id}", h.deleteProduct)
}

func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	out, err := h.Store.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) getCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type categoryReq struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (h *CatalogHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		badRequest(w, "name is required")
		return
	}
	if req.Slug == "" {
		req.Slug = slugify(req.Name)
	}

	c := catalog.Category{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.Store.CreateCategory(r.Context(), &c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

type productReq struct {
	Name             string              `json:"name"`
	Slug             string              `json:"slug"`
	CategoryID       string              `json:"category"`
	ShortDescription string              `json:"short_description"`
	Price            decimal.Decimal     `json:"price"`
	ComparePrice     decimal.NullDecimal `json:"compare_price"`
	StockQuantity    int                 `json:"stock_quantity"`
	IsFeatured       bool                `json:"is_featured"`
	IsActive         *bool               `json:"is_active"`
	ImageURL         string              `json:"image"`
}

func (req *productReq) validate() string {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return "name is required"
	case req.CategoryID == "":
		return "category is required"
	case req.Price.IsNegative() || req.Price.IsZero():
		return "price must be positive"
	case req.StockQuantity < 0:
		return "stock_quantity cannot be negative"
	}
	return ""
}

func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if msg := req.validate(); msg != "" {
		badRequest(w, msg)
		return
	}
	if req.Slug == "" {
		req.Slug = slugify(req.Name)
	}

	now := time.Now().UTC()
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	p := catalog.Product{
		ID:               uuid.NewString(),
		Name:             req.Name,
		Slug:             req.Slug,
		CategoryID:       req.CategoryID,
		ShortDescription: req.ShortDescription,
		Price:            req.Price,
		ComparePrice:     req.ComparePrice,
		StockQuantity:    req.StockQuantity,
		IsFeatured:       req.IsFeatured,
		IsActive:         active,
		ImageURL:         req.ImageURL,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := h.Store.CreateProduct(r.Context(), &p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *CatalogHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if msg := req.validate(); msg != "" {
		badRequest(w, msg)
		return
	}

	p, err := h.Store.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	p.Name = req.Name
	if req.Slug != "" {
		p.Slug = req.Slug
	}
	p.CategoryID = req.CategoryID
	p.ShortDescription = req.ShortDescription
	p.Price = req.Price
	p.ComparePrice = req.ComparePrice
	p.StockQuantity = req.StockQuantity
	p.IsFeatured = req.IsFeatured
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	p.ImageURL = req.ImageURL
	if err := h.Store.UpdateProduct(r.Context(), &p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	out, err := h.Store.ListProducts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(s, " ", "-")
}
