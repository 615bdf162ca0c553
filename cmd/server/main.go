package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jiaqili/fitroom/internal/ai"
	"github.com/jiaqili/fitroom/internal/api"
	"github.com/jiaqili/fitroom/internal/cache"
	"github.com/jiaqili/fitroom/internal/config"
	"github.com/jiaqili/fitroom/internal/store"
	"github.com/jiaqili/fitroom/internal/tryon"
	"github.com/jiaqili/fitroom/internal/upload"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionStore, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	sessionCache, err := buildCache(cfg)
	if err != nil {
		return err
	}
	defer sessionCache.Close()

	provider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("building AI provider: %w", err)
	}
	slog.Info("AI provider ready", "provider", provider.Name())

	uploads, err := upload.NewProcessor(cfg.Upload.Dir, provider)
	if err != nil {
		return err
	}

	fetcher := tryon.NewHTTPFetcher(cfg.Session.FetchTimeout)
	svc := tryon.NewService(sessionStore, sessionCache, provider, fetcher, cfg.AI.InferenceTimeout, cfg.Session.Retention)

	go evictLoop(ctx, sessionStore, cfg.Session.Retention)

	router := api.NewRouter(api.Dependencies{
		Config:  cfg,
		Store:   sessionStore,
		Cache:   sessionCache,
		TryOn:   svc,
		Uploads: uploads,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "port", cfg.Server.Port, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func buildStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if cfg.Session.Store == "postgres" {
		pool, err := store.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("session store ready", "kind", "postgres")
		return store.NewPostgresStore(pool), pool.Close, nil
	}
	slog.Info("session store ready", "kind", "memory")
	return store.NewMemoryStore(), func() {}, nil
}

func buildCache(cfg *config.Config) (cache.Cache, error) {
	if cfg.Redis.URL == "" {
		return cache.Noop{}, nil
	}
	c, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	slog.Info("redis cache ready")
	return c, nil
}

// evictLoop periodically drops terminal sessions older than the retention
// window so the store does not grow without bound.
func evictLoop(ctx context.Context, st store.Store, retention time.Duration) {
	if retention <= 0 {
		return
	}
	ticker := time.NewTicker(retention / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := st.EvictTerminal(ctx, retention)
			if err != nil {
				slog.Error("evicting terminal sessions", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("evicted terminal sessions", "count", n)
			}
		}
	}
}
