// Package main is the entry point for the CarePath admin server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"carepath/internal/actions"
	"carepath/internal/cache"
	"carepath/internal/config"
	"carepath/internal/database"
	"carepath/internal/handlers"
	"carepath/internal/logger"
	"carepath/internal/metrics"
	"carepath/internal/middleware"
	"carepath/internal/programlist"
	"carepath/internal/render"
	"carepath/internal/router"
	"carepath/internal/session"
	"carepath/internal/storage"
	"carepath/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from the environment (and .env when present).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Text logs in development, JSON everywhere else.
	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel, !cfg.IsDev()))
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := store.Seed(context.Background(), db); err != nil {
			return err
		}
	}

	// Valkey backs sessions and the route cache.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		return err
	}
	defer valkeyClient.Close()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// Object storage for module videos is optional.
	var resolver handlers.MediaResolver
	if cfg.StorageEnabled() {
		media, err := storage.New(storage.Options{
			Endpoint:   cfg.S3Endpoint,
			Region:     cfg.S3Region,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Bucket:     cfg.S3Bucket,
			PresignTTL: cfg.S3PresignTTL,
		})
		if err != nil {
			return err
		}
		resolver = media
		slog.Info("s3 storage configured", "endpoint", cfg.S3Endpoint, "bucket", media.Bucket())
	} else {
		slog.Warn("s3 storage not configured, only absolute video URLs will play")
	}

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		return err
	}

	routeCache := cache.NewRouteCache(valkeyClient, cfg.ListCacheTTL, m)
	// Snapshots cached by an earlier run may predate the current schema.
	if err := routeCache.InvalidateAll(context.Background()); err != nil {
		slog.Warn("route cache reset failed", "error", err)
	}
	engine, err := programlist.NewEngine(cfg.ListMemoSize)
	if err != nil {
		return err
	}
	m.WatchListMemo(engine.Len)

	programs := actions.NewPrograms(
		store.NewCategoryStore(db),
		store.NewProgramStore(db),
		store.NewModuleStore(db),
		store.NewAssessmentStore(db),
		routeCache,
	)

	secureCookies := cfg.IsProduction()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Ten credential or code submissions per minute per client IP.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute).
		OnLimited(func(key string) {
			m.RecordRateLimited()
			slog.Warn("login rate limited", "client", key)
		})
	defer loginLimiter.Stop()

	r := router.New(router.Options{
		Sessions:        sessionStore,
		Admin:           handlers.NewAdmin(renderer, programs, engine, routeCache, resolver, m),
		Auth:            handlers.NewAuth(renderer, sessionStore, store.NewUserStore(db), m),
		Metrics:         m,
		Registry:        registry,
		MetricsUsername: cfg.MetricsUsername,
		MetricsPassword: cfg.MetricsPassword,
		LoginLimiter:    loginLimiter,
		SecureCookies:   secureCookies,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("server stopped gracefully")
	return nil
}
