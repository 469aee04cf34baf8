package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orderhub/orderhub-backend/api/controllers"
	"github.com/orderhub/orderhub-backend/api/middleware"
	"github.com/orderhub/orderhub-backend/internal/auth"
	"github.com/orderhub/orderhub-backend/internal/basket"
	"github.com/orderhub/orderhub-backend/internal/catalog"
	"github.com/orderhub/orderhub-backend/internal/contacts"
	"github.com/orderhub/orderhub-backend/internal/orders"
	"github.com/orderhub/orderhub-backend/internal/users"
	"github.com/orderhub/orderhub-backend/pkg/auth/session"
	"github.com/orderhub/orderhub-backend/pkg/config"
	"github.com/orderhub/orderhub-backend/pkg/db"
	"github.com/orderhub/orderhub-backend/pkg/enums"
	"github.com/orderhub/orderhub-backend/pkg/logger"
	"github.com/orderhub/orderhub-backend/pkg/metrics"
	"github.com/orderhub/orderhub-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker
	Metrics  *metrics.HTTPMetrics

	AuthService     auth.Service
	RegisterService auth.RegisterService
	UsersService    users.Service
	CatalogQuery    catalog.Query
	Importer        catalog.Importer
	BasketService   basket.Service
	ContactsService contacts.Service
	OrdersService   orders.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public catalog reads.
		r.Get("/products", controllers.CatalogListings(deps.CatalogQuery, logg))
		r.Get("/categories", controllers.CatalogCategories(deps.CatalogQuery, logg))
		r.Get("/shops", controllers.CatalogShops(deps.CatalogQuery, logg))

		r.Route("/user", func(r chi.Router) {
			r.Post("/register", controllers.AuthRegister(deps.RegisterService, logg))
			r.Post("/register/confirm", controllers.AuthConfirm(deps.RegisterService, logg))
			r.Post("/login", controllers.AuthLogin(deps.AuthService, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
			r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

				r.Get("/details", controllers.AccountDetails(deps.UsersService, logg))
				r.Post("/details", controllers.AccountUpdate(deps.UsersService, logg))

				r.Get("/contact", controllers.ContactsList(deps.ContactsService, logg))
				r.Post("/contact", controllers.ContactsCreate(deps.ContactsService, logg))
				r.Put("/contact/{id}", controllers.ContactsUpdate(deps.ContactsService, logg))
				r.Delete("/contact", controllers.ContactsDelete(deps.ContactsService, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))

			r.Get("/basket", controllers.BasketGet(deps.BasketService, logg))
			r.Post("/basket", controllers.BasketAdd(deps.BasketService, logg))
			r.Put("/basket", controllers.BasketUpdate(deps.BasketService, logg))
			r.Delete("/basket", controllers.BasketDelete(deps.BasketService, logg))

			r.Get("/order", controllers.OrdersList(deps.OrdersService, logg))
			r.Post("/order", controllers.OrdersPlace(deps.OrdersService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.UserRoleShop), logg))

				r.Post("/partner/update", controllers.PartnerUpdate(deps.Importer, cfg.Import, logg))
				r.Get("/partner/state", controllers.PartnerStateGet(deps.CatalogQuery, logg))
				r.Post("/partner/state", controllers.PartnerStateSet(deps.CatalogQuery, logg))
				r.Get("/partner/orders", controllers.PartnerOrders(deps.OrdersService, logg))
				r.Put("/partner/orders/{id}", controllers.PartnerOrderState(deps.OrdersService, logg))
			})
		})
	})

	return r
}
