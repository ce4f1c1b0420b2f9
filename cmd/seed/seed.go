package main

import (
	"context"
	"flag"
	"time"

	"github.com/nulzo/resto-analytics/internal/config"
	"github.com/nulzo/resto-analytics/internal/platform/logger"
	"github.com/nulzo/resto-analytics/internal/store/seed"
	"github.com/nulzo/resto-analytics/internal/store/sqlite"
	"go.uber.org/zap"
)

// seed replaces the contents of the SQLite store with the JSON datasets.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Get().Fatal("Failed to load config", zap.Error(err))
	}

	dsn := flag.String("dsn", cfg.Database.DSN, "SQLite data source name")
	restaurants := flag.String("restaurants", cfg.Database.Seed.Restaurants, "Path to restaurants.json")
	orders := flag.String("orders", cfg.Database.Seed.Orders, "Path to orders.json")
	tz := flag.String("timezone", cfg.Analytics.Timezone, "Timezone of order_time values without an offset")
	flag.Parse()

	logger.Initialize(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, EnableColor: cfg.Log.Color})
	log := logger.Get()
	defer logger.Sync()

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		log.Fatal("Unknown timezone", zap.String("timezone", *tz), zap.Error(err))
	}

	ds, err := seed.LoadFiles(*restaurants, *orders, loc)
	if err != nil {
		log.Fatal("Failed to read seed data", zap.Error(err))
	}

	repo, err := sqlite.NewSQLiteStorage(*dsn, 0, log)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() {
		_ = repo.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := seed.Apply(ctx, repo, ds); err != nil {
		log.Fatal("Failed to seed database", zap.Error(err))
	}

	log.Info("Successfully seeded database",
		zap.String("dsn", *dsn),
		zap.Int("restaurants", len(ds.Restaurants)),
		zap.Int("orders", len(ds.Orders)),
	)
}
