package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quarrylab/quarry/internal/app"
	"github.com/quarrylab/quarry/internal/auth"
	"github.com/quarrylab/quarry/internal/catalog/categories"
	"github.com/quarrylab/quarry/internal/catalog/products"
	"github.com/quarrylab/quarry/internal/orders"
	"github.com/quarrylab/quarry/internal/platform/cache"
	"github.com/quarrylab/quarry/internal/platform/db"
	"github.com/quarrylab/quarry/internal/sandbox"
	"github.com/quarrylab/quarry/internal/users"
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

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	authenticator := &auth.Middleware{Tokens: tokens, Logger: logger}

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, tokens, authenticator)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	categoriesRepo := categories.NewRepository(pool)
	categoriesService := categories.NewService(categoriesRepo)
	categoriesHandler := categories.NewHandler(logger, categoriesService)

	productsRepo := products.NewRepository(pool)
	productsService := products.NewService(productsRepo, categoriesRepo)
	productsHandler := products.NewHandler(logger, productsService)

	ordersRepo := orders.NewRepository(pool)
	ordersService := orders.NewService(ordersRepo)
	ordersHandler := orders.NewHandler(logger, ordersService)

	statsCache := sandbox.NewStatsCache(redisClient, cfg.StatsCacheTTL)
	sandboxRepo := sandbox.NewRepository(pool)
	sandboxService := sandbox.NewService(sandboxRepo, statsCache, logger)
	sandboxHandler := sandbox.NewHandler(logger, sandboxService)

	if cfg.SeedOnStartup {
		if err := sandboxService.SeedIfEmpty(ctx); err != nil {
			logger.Error("startup seeding", slog.Any("error", err))
			os.Exit(1)
		}
	}

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Authenticator:     authenticator,
		AuthHandler:       authHandler,
		UsersHandler:      usersHandler,
		CategoriesHandler: categoriesHandler,
		ProductsHandler:   productsHandler,
		OrdersHandler:     ordersHandler,
		SandboxHandler:    sandboxHandler,
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
