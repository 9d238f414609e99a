package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmendezdev/partsmarket-backend/api/controllers"
	"github.com/dmendezdev/partsmarket-backend/api/middleware"
	"github.com/dmendezdev/partsmarket-backend/internal/cart"
	"github.com/dmendezdev/partsmarket-backend/internal/catalog"
	"github.com/dmendezdev/partsmarket-backend/internal/orders"
	"github.com/dmendezdev/partsmarket-backend/internal/quotes"
	"github.com/dmendezdev/partsmarket-backend/internal/storeconfig"
	"github.com/dmendezdev/partsmarket-backend/pkg/config"
	"github.com/dmendezdev/partsmarket-backend/pkg/db"
	"github.com/dmendezdev/partsmarket-backend/pkg/logger"
	"github.com/dmendezdev/partsmarket-backend/pkg/metrics"
	"github.com/dmendezdev/partsmarket-backend/pkg/redis"
)

// Deps carries everything the HTTP surface is wired with.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	HTTPMetrics *metrics.HTTPMetrics

	Catalog catalog.Service
	Stores  storeconfig.Service
	Carts   cart.Service
	Orders  orders.Service
	Quotes  quotes.Service
}

// NewRouter assembles the storefront and admin HTTP surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Middleware)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})
	r.Handle("/metrics", promhttp.Handler())

	checkoutPolicy := middleware.NewRateLimitPolicy(
		"checkout",
		cfg.RateLimit.CheckoutWindow,
		cfg.RateLimit.CheckoutIPLimit,
		cfg.RateLimit.CheckoutSessionLimit,
	)

	r.Route("/api/v1/storefront/{store}", func(r chi.Router) {
		r.Use(middleware.StoreContext(deps.Stores, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.StorefrontProductList(deps.Catalog, logg))
			r.Get("/featured", controllers.StorefrontFeatured(deps.Catalog, logg))
			r.Get("/{sku}", controllers.StorefrontProductGet(deps.Catalog, logg))
		})

		r.Get("/orders/{number}", controllers.OrderGetByNumber(deps.Orders, logg))
		r.Get("/quotes/{number}", controllers.QuoteGetByNumber(deps.Quotes, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(deps.Carts, logg))
				r.Delete("/", controllers.CartClear(deps.Carts, logg))
				r.Put("/items", controllers.CartItemUpsert(deps.Carts, logg))
				r.Put("/items/{sku}", controllers.CartItemQuantity(deps.Carts, logg))
				r.Post("/items/{sku}/discount", controllers.CartItemDiscount(deps.Carts, logg))
				r.Delete("/items/{sku}", controllers.CartItemRemove(deps.Carts, logg))
				r.Put("/customer", controllers.CartCustomer(deps.Carts, logg))
			})

			r.With(middleware.RateLimit(checkoutPolicy, deps.Redis, logg)).Post("/checkout", controllers.Checkout(deps.Orders, logg))
		})
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Catalog, logg))
			r.Post("/", controllers.ProductCreate(deps.Catalog, logg))
			r.Get("/{sku}", controllers.ProductGet(deps.Catalog, logg))
			r.Patch("/{productID}", controllers.ProductUpdate(deps.Catalog, logg))
		})

		r.Route("/stores", func(r chi.Router) {
			r.Post("/", controllers.StoreCreate(deps.Stores, logg))

			r.Route("/{storeID}", func(r chi.Router) {
				r.Get("/", controllers.StoreGet(deps.Stores, logg))

				r.Route("/configs", func(r chi.Router) {
					r.Get("/", controllers.ConfigList(deps.Stores, logg))
					r.Put("/", controllers.ConfigUpsert(deps.Stores, logg))
					r.Get("/{sku}", controllers.ConfigGet(deps.Stores, logg))
					r.Patch("/{sku}", controllers.ConfigUpdate(deps.Stores, logg))
					r.Delete("/{sku}", controllers.ConfigDelete(deps.Stores, logg))
				})

				r.Route("/orders", func(r chi.Router) {
					r.Get("/", controllers.OrderList(deps.Orders, logg))
					r.Get("/{orderID}", controllers.OrderGet(deps.Orders, logg))
					r.Post("/{orderID}/status", controllers.OrderSetStatus(deps.Orders, logg))
					r.Post("/{orderID}/payment", controllers.OrderSetPayment(deps.Orders, logg))
				})

				r.Route("/quotes", func(r chi.Router) {
					r.Get("/", controllers.QuoteList(deps.Quotes, logg))
					r.Post("/", controllers.QuoteCreate(deps.Quotes, logg))
					r.Get("/{quoteID}", controllers.QuoteGet(deps.Quotes, logg))
					r.Post("/{quoteID}/send", controllers.QuoteSend(deps.Quotes, logg))
					r.Post("/{quoteID}/approve", controllers.QuoteApprove(deps.Quotes, logg))
					r.Post("/{quoteID}/reject", controllers.QuoteReject(deps.Quotes, logg))
				})
			})
		})
	})

	return r
}
