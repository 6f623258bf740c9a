package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/calderacafe/brewstock-backend/api/routes"
	"github.com/calderacafe/brewstock-backend/internal/activity"
	authsvc "github.com/calderacafe/brewstock-backend/internal/auth"
	"github.com/calderacafe/brewstock-backend/internal/branches"
	"github.com/calderacafe/brewstock-backend/internal/catalog"
	"github.com/calderacafe/brewstock-backend/internal/inventory"
	"github.com/calderacafe/brewstock-backend/internal/notifications"
	"github.com/calderacafe/brewstock-backend/internal/purchaseorders"
	"github.com/calderacafe/brewstock-backend/internal/reorder"
	"github.com/calderacafe/brewstock-backend/internal/requests"
	"github.com/calderacafe/brewstock-backend/internal/stockchecks"
	"github.com/calderacafe/brewstock-backend/internal/users"
	"github.com/calderacafe/brewstock-backend/pkg/config"
	"github.com/calderacafe/brewstock-backend/pkg/db"
	"github.com/calderacafe/brewstock-backend/pkg/logger"
	"github.com/calderacafe/brewstock-backend/pkg/migrate"
	"github.com/calderacafe/brewstock-backend/pkg/outbox"
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

	gdb := dbClient.DB()
	outboxService := outbox.NewService(outbox.NewRepository(gdb), logg)

	inventoryService, err := inventory.NewService(inventory.NewRepository(gdb))
	requireService(logg, "inventory", err)

	stockCheckRepo := stockchecks.NewRepository(gdb)
	stockCheckService, err := stockchecks.NewService(stockCheckRepo, dbClient, inventoryService, outboxService)
	requireService(logg, "stock checks", err)

	requestService, err := requests.NewService(requests.NewRepository(gdb), dbClient, inventoryService, outboxService)
	requireService(logg, "requests", err)

	reorderService, err := reorder.NewService(reorder.NewRepository(gdb), dbClient, logg, cfg.Reorder.Buffer)
	requireService(logg, "reorder", err)

	purchaseOrderService, err := purchaseorders.NewService(purchaseorders.NewRepository(gdb))
	requireService(logg, "purchase orders", err)

	activityService, err := activity.NewService(activity.NewRepository(gdb), logg)
	requireService(logg, "activity", err)

	notificationsService, err := notifications.NewService(notifications.NewRepository(gdb))
	requireService(logg, "notifications", err)

	branchService, err := branches.NewService(branches.NewRepository(gdb), dbClient, outboxService)
	requireService(logg, "branches", err)

	catalogService, err := catalog.NewService(catalog.NewRepository(gdb), dbClient)
	requireService(logg, "catalog", err)

	userRepo := users.NewRepository(gdb)
	userService, err := users.NewService(userRepo, cfg.Password)
	requireService(logg, "users", err)

	authService, err := authsvc.NewService(userRepo, cfg.JWT)
	requireService(logg, "auth", err)

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
		Handler: routes.NewRouter(cfg, logg, routes.Services{
			Auth:           authService,
			Users:          userService,
			Branches:       branchService,
			Catalog:        catalogService,
			Inventory:      inventoryService,
			StockChecks:    stockCheckService,
			StockCheckRepo: stockCheckRepo,
			Requests:       requestService,
			Reorder:        reorderService,
			PurchaseOrders: purchaseOrderService,
			Activity:       activityService,
			Notifications:  notificationsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err != nil {
		logg.Error(context.Background(), "failed to create "+name+" service", err)
		os.Exit(1)
	}
}
