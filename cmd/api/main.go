package main

import (
	"context"
	"net/http"
	"os"

	"github.com/confeccionesismael/storefront-backend/api/routes"
	"github.com/confeccionesismael/storefront-backend/internal/accounts"
	"github.com/confeccionesismael/storefront-backend/internal/cart"
	"github.com/confeccionesismael/storefront-backend/internal/catalog"
	"github.com/confeccionesismael/storefront-backend/internal/checkout"
	"github.com/confeccionesismael/storefront-backend/internal/orders"
	"github.com/confeccionesismael/storefront-backend/internal/shipping"
	"github.com/confeccionesismael/storefront-backend/pkg/auth/session"
	"github.com/confeccionesismael/storefront-backend/pkg/config"
	"github.com/confeccionesismael/storefront-backend/pkg/db"
	"github.com/confeccionesismael/storefront-backend/pkg/logger"
	"github.com/confeccionesismael/storefront-backend/pkg/migrate"
	"github.com/confeccionesismael/storefront-backend/pkg/redis"
	"github.com/joho/godotenv"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	txRunner := db.FromGorm(gormDB)
	cartRepo := cart.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	accountsRepo := accounts.NewRepository(gormDB)

	catalogService, err := catalog.NewService(catalog.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	shippingService, err := shipping.NewService(shipping.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create shipping service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cartRepo, txRunner)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo, txRunner)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Tx:         txRunner,
		CartRepo:   cartRepo,
		OrdersRepo: ordersRepo,
		Zones:      shippingService,
		Profiles:   accountsRepo,
		Store:      cfg.Store,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	accountsService, err := accounts.NewService(accounts.ServiceParams{
		UserRepo:       accountsRepo,
		SessionManager: sessionManager,
		CartMerger:     cartService,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create accounts service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			SessionManager:  sessionManager,
			AccountsService: accountsService,
			CatalogService:  catalogService,
			CartService:     cartService,
			CheckoutService: checkoutService,
			OrdersService:   ordersService,
			ShippingService: shippingService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
