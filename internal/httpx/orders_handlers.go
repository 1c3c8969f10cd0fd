package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/febriand/go-shop-api/internal/kafka"
	"github.com/febriand/go-shop-api/internal/orders"
)

type OrdersHandler struct {
	Orders      *orders.Service
	Producer    *kafka.Producer // nil disables event publishing
	ServiceName string
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.create)
	r.Get("/orders", h.list)
	r.Get("/orders/{id}", h.get)
}

func (h *OrdersHandler) RegisterAdmin(r chi.Router) {
	r.Patch("/orders/{id}/status", h.updateStatus)
}

type createOrderReq struct {
	// Absent means "place from my cart"; an explicit empty list is an error.
	Items           []orders.ItemInput `json:"items"`
	ShippingAddress string             `json:"shipping_address"`
	BillingAddress  string             `json:"billing_address"`
	PaymentMethod   string             `json:"payment_method"`
	Notes           string             `json:"notes"`
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}

	placed, err := h.Orders.Place(r.Context(), orders.PlaceRequest{
		UserID:          claimsFrom(r).UserID,
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentMethod:   orders.PaymentMethod(req.PaymentMethod),
		Notes:           req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.publishPlaced(placed)
	writeJSON(w, http.StatusCreated, placed)
}

// publishPlaced emits the fact after the transaction committed. Delivery is
// best effort; the order itself is already durable.
func (h *OrdersHandler) publishPlaced(o orders.Order) {
	if h.Producer == nil {
		return
	}
	items := make([]orders.PlacedItem, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, orders.PlacedItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	userID := ""
	if o.UserID != nil {
		userID = *o.UserID
	}
	payload := kafka.MustMarshal(orders.OrderPlacedPayload{
		OrderID:     o.ID,
		UserID:      userID,
		TotalAmount: o.TotalAmount,
		Items:       items,
		PlacedAt:    o.CreatedAt,
	})
	env := kafka.MustMarshal(orders.Envelope{
		EventID:      uuid.NewString(),
		EventType:    orders.EventOrderPlaced,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     h.ServiceName,
		Payload:      payload,
	})
	h.Producer.Publish(orders.PartitionKey(o.ID), env)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	c := claimsFrom(r)
	out, err := h.Orders.List(r.Context(), c.UserID, isAdmin(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	c := claimsFrom(r)
	o, err := h.Orders.Get(r.Context(), c.UserID, isAdmin(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	o, err := h.Orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), orders.Status(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
