package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nulzo/resto-analytics/internal/analytics"
	"github.com/nulzo/resto-analytics/internal/config"
	"github.com/nulzo/resto-analytics/internal/platform/logger"
	"github.com/nulzo/resto-analytics/internal/platform/otel"
	"github.com/nulzo/resto-analytics/internal/server"
	"github.com/nulzo/resto-analytics/internal/server/middleware"
	"github.com/nulzo/resto-analytics/internal/store"
	"github.com/nulzo/resto-analytics/internal/store/cache"
	"github.com/nulzo/resto-analytics/internal/store/memory"
	"github.com/nulzo/resto-analytics/internal/store/model"
	"github.com/nulzo/resto-analytics/internal/store/seed"
	"github.com/nulzo/resto-analytics/internal/store/sqlite"
	"github.com/nulzo/resto-analytics/internal/version"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Get().Fatal("Failed to load config", zap.Error(err))
	}

	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Log.Color,
		Service:     cfg.Tracing.ServiceName,
		Version:     version.AppVersion,
	})
	log := logger.Get()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.Server.UpdateCheckURL != "" {
		go checkForUpdates(ctx, cfg.Server.UpdateCheckURL, log)
	}

	shutdownTracer, err := otel.InitTracer(otel.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     version.AppVersion,
	}, log, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}()

	opts, err := cfg.Analytics.Options(cfg.Cache)
	if err != nil {
		return err
	}

	repo, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		_ = repo.Close()
	}()

	if cfg.Database.Seed.OnStartup {
		if err := seedIfEmpty(ctx, repo, cfg.Database.Seed, opts.Location, log); err != nil {
			return err
		}
	}

	repo = store.WithRetry(repo, cfg.Database.Retry.Store(), log.Named("store"))

	resultCache, closeCache, err := openCache(cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()

	svc := analytics.NewService(repo, resultCache, opts, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.RateLimit.ClientTTL, log)
		go sweepLimiter(ctx, limiter, cfg.RateLimit.ClientTTL, log)
	}

	srv := server.New(cfg, log, server.Deps{
		Service:  svc,
		Store:    repo,
		Registry: reg,
		Limiter:  limiter,
		Version:  version.AppVersion,
	})

	return srv.Run(ctx)
}

func openStore(cfg *config.Config, log *zap.Logger) (store.Repository, error) {
	switch cfg.Database.Driver {
	case "memory":
		log.Info("Using in-memory record store")
		return memory.New(nil, nil), nil
	default:
		return sqlite.NewSQLiteStorage(cfg.Database.DSN, cfg.Database.QueryTimeout, log)
	}
}

// openCache returns a nil cache when result caching is disabled.
func openCache(cfg *config.Config, log *zap.Logger) (cache.Cache, func(), error) {
	noop := func() {}
	if !cfg.Cache.Enabled {
		return nil, noop, nil
	}
	if !cfg.Redis.Enabled {
		log.Info("Using in-memory result cache", zap.Duration("ttl", cfg.Cache.TTL))
		return cache.NewMemoryCache(), noop, nil
	}

	rc, err := cache.NewRedisCache(cache.RedisConfig{
		Address:   cfg.Redis.Addr,
		Password:  cfg.Redis.Password,
		DB:        cfg.Redis.DB,
		KeyPrefix: cfg.Redis.KeyPrefix,
	})
	if err != nil {
		return nil, noop, err
	}
	log.Info("Using redis result cache", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Cache.TTL))
	return rc, func() { _ = rc.Close() }, nil
}

func seedIfEmpty(ctx context.Context, repo store.Repository, cfg config.SeedConfig, loc *time.Location, log *zap.Logger) error {
	existing, err := repo.Restaurants().Scan(ctx, model.RestaurantFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Debug("Store already populated, skipping seed", zap.Int("restaurants", len(existing)))
		return nil
	}

	ds, err := seed.LoadFiles(cfg.Restaurants, cfg.Orders, loc)
	if err != nil {
		return err
	}
	if err := seed.Apply(ctx, repo, ds); err != nil {
		return err
	}

	log.Info("Seeded record store",
		zap.Int("restaurants", len(ds.Restaurants)),
		zap.Int("orders", len(ds.Orders)),
	)
	return nil
}

func sweepLimiter(ctx context.Context, limiter *middleware.RateLimiter, every time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Sweep(); n > 0 {
				log.Debug("Evicted idle rate limiters", zap.Int("clients", n))
			}
		}
	}
}

func checkForUpdates(ctx context.Context, url string, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update, err := version.CheckForUpdates(ctx, nil, url)
	if err != nil {
		log.Debug("Update check failed", zap.Error(err))
		return
	}
	if update != nil {
		log.Warn("A newer release is available",
			zap.String("current", update.Current),
			zap.String("latest", update.Latest),
		)
	}
}
