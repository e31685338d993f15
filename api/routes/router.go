package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elarose/storefront/api/controllers"
	ordercontrollers "github.com/elarose/storefront/api/controllers/orders"
	"github.com/elarose/storefront/api/middleware"
	"github.com/elarose/storefront/internal/cart"
	"github.com/elarose/storefront/internal/catalog"
	"github.com/elarose/storefront/internal/checkout"
	"github.com/elarose/storefront/internal/contacts"
	"github.com/elarose/storefront/internal/discounts"
	"github.com/elarose/storefront/internal/invoices"
	"github.com/elarose/storefront/internal/listings"
	"github.com/elarose/storefront/internal/orders"
	"github.com/elarose/storefront/internal/session"
	"github.com/elarose/storefront/internal/support"
	"github.com/elarose/storefront/internal/users"
	"github.com/elarose/storefront/internal/wishlist"
	"github.com/elarose/storefront/pkg/config"
	"github.com/elarose/storefront/pkg/identity"
	"github.com/elarose/storefront/pkg/logger"
	"github.com/elarose/storefront/pkg/metrics"
	"github.com/elarose/storefront/pkg/redis"
)

// Params carries everything the HTTP surface is built from.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	Verifier identity.Verifier
	// Redis backs idempotency and rate limiting. A nil client disables both.
	Redis     *redis.Client
	Readiness map[string]controllers.Pinger
	Metrics   *metrics.HTTPMetrics
	Gatherer  prometheus.Gatherer

	Catalog   catalog.Service
	Cart      cart.Service
	Wishlist  wishlist.Service
	Discounts discounts.Service
	Checkout  checkout.Service
	Orders    orders.Service
	Invoices  invoices.Service
	Users     users.Service
	Session   *session.Service
	Contacts  contacts.Service
	Support   support.Service
	Listings  listings.Service
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.Metrics),
		middleware.CORS(cfg.App.AllowedOrigins),
	)

	var idempotencyStore middleware.IdempotencyStore
	if p.Redis != nil {
		idempotencyStore = p.Redis
	}
	idempotent := middleware.Idempotency(idempotencyStore, cfg.Eventing.HTTPIdempotency, logg)
	auth := middleware.Auth(p.Verifier, logg)
	admin := middleware.RequireAdmin(logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Readiness))
	})

	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", controllers.CatalogCategories(p.Catalog, logg))
		r.Get("/products", controllers.CatalogProducts(p.Catalog, logg))
		r.Get("/products/{id}", controllers.CatalogProductDetail(p.Catalog, logg))

		r.Get("/listings", controllers.ListingsList(p.Listings, logg))
		r.Get("/listings/markers", controllers.ListingsMarkers(p.Listings, logg))
		r.Get("/listings/{id}", controllers.ListingsDetail(p.Listings, logg))

		contactPolicy := middleware.NewRateLimitPolicy("contacts",
			cfg.Contacts.RateLimitWindow, cfg.Contacts.RateLimitIP, cfg.Contacts.RateLimitEmail)
		var limiter middleware.RateLimitStore
		if p.Redis != nil {
			limiter = p.Redis
		}
		r.With(middleware.RateLimit(contactPolicy, limiter, logg)).Post("/contacts", controllers.ContactCreate(p.Contacts, logg))

		r.Group(func(r chi.Router) {
			r.Use(auth, idempotent)

			r.Post("/products/{id}/reviews", controllers.CatalogCreateReview(p.Catalog, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(p.Cart, logg))
				r.Delete("/", controllers.CartClear(p.Cart, logg))
				r.Post("/items", controllers.CartAddItem(p.Cart, logg))
				r.Patch("/items", controllers.CartUpdateItem(p.Cart, logg))
				r.Delete("/items", controllers.CartRemoveItem(p.Cart, logg))
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistList(p.Wishlist, logg))
				r.Delete("/", controllers.WishlistClear(p.Wishlist, logg))
				r.Post("/status", controllers.WishlistStatus(p.Wishlist, logg))
				r.Post("/{productId}", controllers.WishlistToggle(p.Wishlist, logg))
				r.Delete("/{productId}", controllers.WishlistRemove(p.Wishlist, logg))
			})

			r.Route("/discounts", func(r chi.Router) {
				r.Post("/validate", controllers.DiscountValidate(p.Discounts, logg))
				r.Post("/apply", controllers.DiscountApply(p.Discounts, logg))
				r.Get("/current", controllers.DiscountCurrent(p.Discounts, logg))
				r.Delete("/current", controllers.DiscountRemove(p.Discounts, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", ordercontrollers.Place(p.Checkout, logg))
				r.Get("/", ordercontrollers.ListMine(p.Orders, logg))
				r.Get("/{id}", ordercontrollers.Get(p.Orders, logg))
				r.Get("/{id}/invoice", ordercontrollers.Invoice(p.Invoices, logg))
			})

			r.Get("/me", controllers.Me(p.Users, logg))
			r.Put("/me", controllers.UpdateMe(p.Users, logg))
			r.Post("/session/logout", controllers.SessionLogout(p.Session, logg))

			r.Get("/support", controllers.SupportListMine(p.Support, logg))
			r.Post("/support", controllers.SupportCreate(p.Support, logg))

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Get("/users", controllers.AdminListUsers(p.Users, logg))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(admin)
				r.Post("/products", controllers.AdminCreateProduct(p.Catalog, logg))
				r.Put("/products/{id}", controllers.AdminUpdateProduct(p.Catalog, logg))

				r.Get("/discounts", controllers.AdminListDiscounts(p.Discounts, logg))
				r.Post("/discounts", controllers.AdminCreateDiscount(p.Discounts, logg))
				r.Delete("/discounts/{id}", controllers.AdminDeactivateDiscount(p.Discounts, logg))

				r.Get("/orders", ordercontrollers.AdminList(p.Orders, logg))
				r.Get("/orders/{id}", ordercontrollers.Get(p.Orders, logg))
				r.Patch("/orders/{id}/status", ordercontrollers.AdminUpdateStatus(p.Orders, logg))

				r.Get("/contacts", controllers.AdminListContacts(p.Contacts, logg))

				r.Get("/support", controllers.AdminListSupport(p.Support, logg))
				r.Patch("/support/{id}", controllers.AdminUpdateSupport(p.Support, logg))
			})
		})
	})

	return r
}
