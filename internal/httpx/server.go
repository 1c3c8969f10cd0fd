package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/febriand/go-shop-api/internal/analytics"
	"github.com/febriand/go-shop-api/internal/auth"
	"github.com/febriand/go-shop-api/internal/kafka"
	"github.com/febriand/go-shop-api/internal/orders"
	"github.com/febriand/go-shop-api/internal/store"
)

// Deps collects everything the router needs. Producer may be nil.
type Deps struct {
	Store       store.Store
	Orders      *orders.Service
	Analytics   *analytics.Service
	Tokens      *auth.TokenService
	Producer    *kafka.Producer
	ServiceName string
}

func NewRouter(d Deps) http.Handler {
	authH := &AuthHandler{Store: d.Store, Tokens: d.Tokens}
	catalogH := &CatalogHandler{Store: d.Store}
	cartH := &CartHandler{Store: d.Store}
	ordersH := &OrdersHandler{Orders: d.Orders, Producer: d.Producer, ServiceName: d.ServiceName}
	analyticsH := &AnalyticsHandler{Analytics: d.Analytics}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		authH.RegisterPublic(r)
		catalogH.RegisterPublic(r)

		r.Group(func(r chi.Router) {
			r.Use(AuthRequired(d.Tokens))
			authH.RegisterProtected(r)
			cartH.Register(r)
			ordersH.Register(r)

			r.Group(func(r chi.Router) {
				r.Use(AdminOnly)
				catalogH.RegisterAdmin(r)
				ordersH.RegisterAdmin(r)
				analyticsH.RegisterAdmin(r)
			})
		})
	})

	return r
}
