package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/febriand/go-shop-api/internal/analytics"
)

type AnalyticsHandler struct {
	Analytics *analytics.Service
}

func (h *AnalyticsHandler) RegisterAdmin(r chi.Router) {
	r.Get("/analytics/dashboard", h.dashboard)
	r.Get("/analytics/sales", h.sales)
	r.Get("/analytics/orders/recent", h.recent)
}

func (h *AnalyticsHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Analytics.Dashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *AnalyticsHandler) sales(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	points, err := h.Analytics.SalesChart(r.Context(), days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": len(points), "points": points})
}

func (h *AnalyticsHandler) recent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := h.Analytics.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
