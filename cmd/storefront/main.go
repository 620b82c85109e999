package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/posbok/storefront/api/routes"
	"github.com/posbok/storefront/internal/cart"
	"github.com/posbok/storefront/internal/gateway"
	"github.com/posbok/storefront/internal/reviews"
	"github.com/posbok/storefront/internal/session"
	"github.com/posbok/storefront/pkg/config"
	"github.com/posbok/storefront/pkg/logger"
	"github.com/posbok/storefront/pkg/metrics"
	"github.com/posbok/storefront/pkg/redis"
)

const reviewsPageSize = 5

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sessions session.Provider
	var redisClient *redis.Client
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		sessions = session.NewRedisStore(redisClient, logg)
	default:
		sessions = session.NewFileStore(cfg.Session.Dir, logg)
	}

	registry := prometheus.NewRegistry()
	upstreamMetrics := metrics.NewUpstreamMetrics(registry)

	client, err := gateway.NewClient(cfg.Upstream, sessions, logg, upstreamMetrics)
	if err != nil {
		logg.Error(ctx, "failed to create gateway client", err)
		os.Exit(1)
	}

	engine, err := cart.NewEngine(client, sessions, cfg.Store.DefaultSlug, logg, upstreamMetrics)
	if err != nil {
		logg.Error(ctx, "failed to create cart engine", err)
		os.Exit(1)
	}

	// Best-effort warmup. The daemon still serves local UIs when the
	// upstream is down; the cart just reads as empty until a refresh lands.
	if err := engine.Refresh(ctx); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "initial cart refresh failed")
	}

	browser, err := reviews.NewBrowser(client, reviewsPageSize)
	if err != nil {
		logg.Error(ctx, "failed to create review browser", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":   cfg.App.Env,
		"addr":  addr,
		"store": cfg.Store.DefaultSlug,
	})
	logg.Info(startCtx, "starting storefront daemon")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, engine, client, browser, registry),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(startCtx, "storefront daemon stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(startCtx, "shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if serveResult := <-serveErr; serveResult != nil && serveResult != http.ErrServerClosed {
			err = multierr.Append(err, serveResult)
		}
		if err != nil {
			logg.Error(startCtx, "error during shutdown", err)
			os.Exit(1)
		}
	}
}
