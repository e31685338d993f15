package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/elarose/storefront/api/controllers"
	"github.com/elarose/storefront/api/routes"
	"github.com/elarose/storefront/internal/cart"
	"github.com/elarose/storefront/internal/catalog"
	"github.com/elarose/storefront/internal/checkout"
	"github.com/elarose/storefront/internal/contacts"
	"github.com/elarose/storefront/internal/discounts"
	"github.com/elarose/storefront/internal/invoices"
	"github.com/elarose/storefront/internal/listings"
	"github.com/elarose/storefront/internal/orders"
	"github.com/elarose/storefront/internal/pricing"
	"github.com/elarose/storefront/internal/session"
	"github.com/elarose/storefront/internal/support"
	"github.com/elarose/storefront/internal/users"
	"github.com/elarose/storefront/internal/wishlist"
	"github.com/elarose/storefront/pkg/config"
	"github.com/elarose/storefront/pkg/db"
	"github.com/elarose/storefront/pkg/identity"
	"github.com/elarose/storefront/pkg/logger"
	"github.com/elarose/storefront/pkg/maps"
	"github.com/elarose/storefront/pkg/metrics"
	"github.com/elarose/storefront/pkg/migrate"
	"github.com/elarose/storefront/pkg/outbox"
	"github.com/elarose/storefront/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	verifier, err := identity.NewVerifier(ctx, cfg.Identity)
	if err != nil {
		logg.Error(ctx, "failed to create identity verifier", err)
		os.Exit(1)
	}

	handler, err := buildHandler(ctx, cfg, logg, dbClient, redisClient, verifier)
	if err != nil {
		logg.Error(ctx, "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(serverCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.App.ReadHeaderTimeout,
		ReadTimeout:       cfg.App.ReadTimeout,
		WriteTimeout:      cfg.App.WriteTimeout,
		IdleTimeout:       cfg.App.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(serverCtx, "graceful shutdown failed", err)
		}
	}
}

func buildHandler(ctx context.Context, cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, verifier identity.Verifier) (http.Handler, error) {
	storefrontMetrics := metrics.NewStorefrontMetrics(prometheus.DefaultRegisterer)
	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)
	policy := pricing.PolicyFromConfig(cfg.Storefront)
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Repo:        catalogRepo,
		DB:          dbClient,
		Logger:      logg,
		PageSize:    cfg.Storefront.CatalogPageSize,
		MaxPageSize: cfg.Storefront.CatalogMaxPageSize,
	})
	if err != nil {
		return nil, err
	}

	discountState, err := discounts.NewStateStore(redisClient, cfg.Redis.SlotTTL)
	if err != nil {
		return nil, err
	}
	discountRepo := discounts.NewRepository(dbClient.DB())
	discountResolver, err := discounts.NewResolver(discountRepo, discountState, nil)
	if err != nil {
		return nil, err
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Slots:     redisClient,
		TTL:       cfg.Redis.SlotTTL,
		Products:  catalogRepo,
		Discounts: discountResolver,
		Policy:    policy,
		Logger:    logg,
		Metrics:   storefrontMetrics,
	})
	if err != nil {
		return nil, err
	}

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		Slots:    redisClient,
		TTL:      cfg.Redis.SlotTTL,
		Products: catalogRepo,
		Metrics:  storefrontMetrics,
	})
	if err != nil {
		return nil, err
	}

	discountService, err := discounts.NewService(discounts.ServiceParams{
		Repo:    discountRepo,
		State:   discountState,
		Carts:   cartService,
		DB:      dbClient,
		Outbox:  outboxService,
		Logger:  logg,
		Metrics: storefrontMetrics,
	})
	if err != nil {
		return nil, err
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		DB:        dbClient,
		Carts:     cartService,
		Discounts: discountResolver,
		Orders:    ordersRepo,
		Catalog:   catalogRepo,
		Outbox:    outboxService,
		Policy:    policy,
		Logger:    logg,
		Metrics:   storefrontMetrics,
	})
	if err != nil {
		return nil, err
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:   ordersRepo,
		DB:     dbClient,
		Outbox: outboxService,
		Logger: logg,
	})
	if err != nil {
		return nil, err
	}

	invoiceService, err := invoices.NewService(invoices.ServiceParams{
		Repo:   invoices.NewRepository(dbClient.DB()),
		Orders: ordersRepo,
		Logger: logg,
	})
	if err != nil {
		return nil, err
	}

	usersService, err := users.NewService(users.ServiceParams{
		Repo:   users.NewRepository(dbClient.DB()),
		Logger: logg,
	})
	if err != nil {
		return nil, err
	}

	sessionService, err := session.NewService(logg,
		session.Named{Name: "cart", Clearer: cartService},
		session.Named{Name: "wishlist", Clearer: wishlistService},
		session.Named{Name: "discount", Clearer: discountResolver},
	)
	if err != nil {
		return nil, err
	}

	contactsService, err := contacts.NewService(contacts.NewRepository(dbClient.DB()), logg)
	if err != nil {
		return nil, err
	}

	supportService, err := support.NewService(support.NewRepository(dbClient.DB()), logg)
	if err != nil {
		return nil, err
	}

	listingsService, err := buildListings(ctx, cfg, logg)
	if err != nil {
		return nil, err
	}

	return routes.NewRouter(routes.Params{
		Config:   cfg,
		Logger:   logg,
		Verifier: verifier,
		Redis:    redisClient,
		Readiness: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
		},
		Metrics:   httpMetrics,
		Gatherer:  prometheus.DefaultGatherer,
		Catalog:   catalogService,
		Cart:      cartService,
		Wishlist:  wishlistService,
		Discounts: discountService,
		Checkout:  checkoutService,
		Orders:    ordersService,
		Invoices:  invoiceService,
		Users:     usersService,
		Session:   sessionService,
		Contacts:  contactsService,
		Support:   supportService,
		Listings:  listingsService,
	}), nil
}

func buildListings(ctx context.Context, cfg *config.Config, logg *logger.Logger) (listings.Service, error) {
	items, err := listings.LoadFile(cfg.Listings.DatasetPath)
	if err != nil {
		return nil, err
	}
	if cfg.Listings.GeocodeMissing && cfg.GoogleMaps.APIKey != "" {
		client, err := maps.NewClient(cfg.GoogleMaps.APIKey)
		if err != nil {
			return nil, err
		}
		resolved := listings.GeocodeMissing(ctx, items, client, logg)
		logg.Info(logg.WithField(ctx, "resolved", resolved), "geocoded listings without coordinates")
	}
	return listings.NewService(listings.ServiceParams{
		Listings:        items,
		DefaultPageSize: cfg.Listings.DefaultPageSize,
	})
}
