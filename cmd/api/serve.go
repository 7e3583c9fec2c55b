package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seogyeonga/auction-radar/internal/cache"
	"github.com/seogyeonga/auction-radar/internal/config"
	httpapi "github.com/seogyeonga/auction-radar/internal/http"
	"github.com/seogyeonga/auction-radar/internal/logger"
	"github.com/seogyeonga/auction-radar/internal/scheduler"
	"github.com/seogyeonga/auction-radar/internal/scoring"
	"github.com/seogyeonga/auction-radar/internal/storage"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reassessment scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

// bootstrap loads configuration and opens the store every command shares.
func bootstrap(ctx context.Context) (*config.Config, *zap.Logger, *storage.SQLiteStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := storage.OpenSQLite(cfg.Database.Path)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, nil, nil, err
	}
	return cfg, log, store, nil
}

func loadRules(path string, log *zap.Logger) scoring.Rules {
	r, err := scoring.LoadRulesFromFile(path)
	if err != nil {
		log.Info("using default rules", zap.String("path", path), zap.String("reason", err.Error()))
		return scoring.DefaultRules()
	}
	return r
}

// openViewCache returns nil when redis is not configured or unreachable; the
// API works without the cache.
func openViewCache(ctx context.Context, rc config.RedisConfig, log *zap.Logger) *cache.ViewCache {
	if !rc.Enabled() {
		return nil
	}
	views := cache.NewViewCache(cache.NewRedisClient(rc.Address, rc.Password, rc.DB), rc.TTL)
	if err := views.Ping(ctx); err != nil {
		log.Warn("view cache disabled", zap.Error(err))
		_ = views.Close()
		return nil
	}
	log.Info("view cache enabled", zap.String("address", rc.Address), zap.Duration("ttl", rc.TTL))
	return views
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, store, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	defer store.Close()

	views := openViewCache(ctx, cfg.Redis, log)
	defer views.Close()

	if cfg.Data.SeedOnStart {
		n, err := seedListings(ctx, store, cfg.Data.ListingsPath, views, log)
		if err != nil {
			return err
		}
		log.Info("listings seeded", zap.String("path", cfg.Data.ListingsPath), zap.Int("count", n))
	}

	engine := scoring.NewEngine(loadRules(cfg.Data.RulesPath, log))

	if cfg.Scheduler.Enabled {
		sched := scheduler.New(ctx, log)
		if err := sched.AddJob(cfg.Scheduler.ReassessSchedule, scheduler.NewReassessJob(store, views, log)); err != nil {
			return fmt.Errorf("schedule reassessment: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      httpapi.NewServer(engine, store, views, log).Routes(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("API listening", zap.String("address", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
