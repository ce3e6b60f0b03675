package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shopyardhq/shopyard-backend/api/routes"
	"github.com/shopyardhq/shopyard-backend/internal/accounts"
	"github.com/shopyardhq/shopyard-backend/internal/cascade"
	"github.com/shopyardhq/shopyard-backend/internal/inventory"
	"github.com/shopyardhq/shopyard-backend/internal/orders"
	"github.com/shopyardhq/shopyard-backend/internal/snapshot"
	"github.com/shopyardhq/shopyard-backend/pkg/config"
	"github.com/shopyardhq/shopyard-backend/pkg/db"
	"github.com/shopyardhq/shopyard-backend/pkg/logger"
	"github.com/shopyardhq/shopyard-backend/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "shopyard"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "shopyard",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	backend, err := snapshot.NewGormBackend(dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create snapshot backend", err)
		os.Exit(1)
	}
	if cfg.FeatureFlags.AutoMigrate {
		if err := backend.AutoMigrate(); err != nil {
			logg.Error(context.Background(), "failed to migrate schema", err)
			os.Exit(1)
		}
	}
	store := snapshot.NewLocked(backend)

	registry := prometheus.NewRegistry()
	orderMetrics := metrics.NewOrderMetrics(registry)

	accountsSvc, err := accounts.NewService(accounts.ServiceParams{
		Store:          store,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create accounts service", err)
		os.Exit(1)
	}

	inventorySvc, err := inventory.NewService(inventory.ServiceParams{Store: store})
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Store:   store,
		Orders:  cfg.Orders,
		Metrics: orderMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	cascadeCoord, err := cascade.NewCoordinator(cascade.CoordinatorParams{
		Store:   store,
		Metrics: orderMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cascade coordinator", err)
		os.Exit(1)
	}

	if err := accountsSvc.EnsureAdmin(context.Background(), cfg.Admin.Password, cfg.Admin.FullName); err != nil {
		logg.Error(context.Background(), "failed to seed admin account", err)
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
			Config:    cfg,
			Logger:    logg,
			DB:        dbClient,
			Accounts:  accountsSvc,
			Inventory: inventorySvc,
			Orders:    ordersSvc,
			Cascade:   cascadeCoord,
			Metrics:   registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
