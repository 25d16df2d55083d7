package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ezzystore/ezzystore/internal/app"
	"github.com/ezzystore/ezzystore/internal/auth"
	"github.com/ezzystore/ezzystore/internal/catalog"
	"github.com/ezzystore/ezzystore/internal/platform/cache"
	"github.com/ezzystore/ezzystore/internal/platform/db"
	"github.com/ezzystore/ezzystore/internal/reports"
	"github.com/ezzystore/ezzystore/internal/sales"
	"github.com/ezzystore/ezzystore/internal/shared"
	"github.com/ezzystore/ezzystore/internal/shops"
	"github.com/ezzystore/ezzystore/internal/stock"
	"github.com/ezzystore/ezzystore/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "ezzystore_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	shopsRepo := shops.NewRepository(pool)
	shopsService := shops.NewService(shopsRepo)
	resolver := shops.NewResolver(shopsRepo)
	shopsHandler := shops.NewHandler(logger, shopsService, resolver)

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo, logger)
	catalogHandler := catalog.NewHandler(logger, catalogService, resolver)

	stockRepo := stock.NewRepository(pool)
	stockService := stock.NewService(stockRepo, logger)
	stockHandler := stock.NewHandler(logger, stockService, resolver)

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(salesRepo, logger)
	salesHandler := sales.NewHandler(logger, salesService, resolver)

	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(reportsRepo, func(ctx context.Context, shopID int64) (float64, error) {
		settings, err := shopsRepo.GetSettings(ctx, shopID)
		if err != nil {
			return 0, err
		}
		return settings.ExpensePercent, nil
	})
	reportsHandler := reports.NewHandler(logger, reportsService, resolver)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		AuthService:    authService,
		AuthHandler:    authHandler,
		ShopsHandler:   shopsHandler,
		CatalogHandler: catalogHandler,
		StockHandler:   stockHandler,
		SalesHandler:   salesHandler,
		ReportsHandler: reportsHandler,
		JobHandler:     jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
