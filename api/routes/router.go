package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopyardhq/shopyard-backend/api/controllers"
	"github.com/shopyardhq/shopyard-backend/api/middleware"
	"github.com/shopyardhq/shopyard-backend/internal/accounts"
	"github.com/shopyardhq/shopyard-backend/internal/cascade"
	"github.com/shopyardhq/shopyard-backend/internal/inventory"
	"github.com/shopyardhq/shopyard-backend/internal/orders"
	"github.com/shopyardhq/shopyard-backend/pkg/config"
	"github.com/shopyardhq/shopyard-backend/pkg/logger"
)

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        controllers.Pinger
	Accounts  accounts.Service
	Inventory inventory.Service
	Orders    orders.Service
	Cascade   cascade.Coordinator
	Metrics   prometheus.Gatherer
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB))
	})

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", controllers.AuthRegister(p.Accounts, cfg.JWT, logg))
			r.Post("/login", controllers.AuthLogin(p.Accounts, cfg.JWT, logg))
		})

		r.Get("/items", controllers.ItemsList(p.Inventory, logg))
		r.Get("/items/{itemId}", controllers.ItemDetail(p.Inventory, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, logg))
			r.Post("/orders", controllers.OrdersPlace(p.Orders, logg))
			r.Post("/orders/{orderId}/cancel", controllers.OrdersCancel(p.Orders, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Get("/orders", controllers.OrdersListMine(p.Orders, logg))
			r.Get("/wishlist", controllers.WishlistGet(p.Accounts, logg))
			r.Put("/wishlist", controllers.WishlistSet(p.Accounts, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Get("/orders", controllers.AdminOrdersList(p.Orders, logg))
		r.Post("/orders/{orderId}/arrival", controllers.AdminSetArrival(p.Orders, logg))
		r.Post("/items", controllers.AdminCreateItem(p.Inventory, logg))
		r.Patch("/items/{itemId}/stock", controllers.AdminSetStock(p.Inventory, logg))
		r.Post("/items/{itemId}/takedown", controllers.AdminTakedownItem(p.Cascade, logg))
	})

	return r
}
