package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/nulzo/resto-analytics/internal/analytics"
	"github.com/nulzo/resto-analytics/internal/store"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port" validate:"required,numeric"`
	Env             string        `mapstructure:"env" validate:"oneof=development test production"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	// UpdateCheckURL is a releases endpoint queried once at boot; empty disables it.
	UpdateCheckURL  string        `mapstructure:"update_check_url" validate:"omitempty,url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
	Color  bool   `mapstructure:"color"`
}

type DatabaseConfig struct {
	Driver       string        `mapstructure:"driver" validate:"oneof=sqlite memory"`
	DSN          string        `mapstructure:"dsn" validate:"required_if=Driver sqlite"`
	QueryTimeout time.Duration `mapstructure:"query_timeout" validate:"gte=0"`
	Retry        RetryConfig   `mapstructure:"retry"`
	Seed         SeedConfig    `mapstructure:"seed"`
}

type RetryConfig struct {
	Attempts     int           `mapstructure:"attempts" validate:"gte=1"`
	InitialDelay time.Duration `mapstructure:"initial_delay" validate:"gte=0"`
	MaxDelay     time.Duration `mapstructure:"max_delay" validate:"gte=0"`
}

// SeedConfig points at the JSON datasets loaded at boot when OnStartup is
// set and the store holds no restaurants.
type SeedConfig struct {
	Restaurants string `mapstructure:"restaurants"`
	Orders      string `mapstructure:"orders"`
	OnStartup   bool   `mapstructure:"on_startup"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db" validate:"gte=0"`
	KeyPrefix string `mapstructure:"key_prefix"`
	Enabled   bool   `mapstructure:"enabled"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int           `mapstructure:"burst" validate:"gte=1"`
	ClientTTL         time.Duration `mapstructure:"client_ttl" validate:"gt=0"`
	Enabled           bool          `mapstructure:"enabled"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name" validate:"required"`
}

type AnalyticsConfig struct {
	DefaultSort     string `mapstructure:"default_sort" validate:"oneof=id name location cuisine"`
	DefaultOrder    string `mapstructure:"default_order" validate:"oneof=asc desc"`
	DefaultLimit    int    `mapstructure:"default_limit" validate:"gte=1,ltefield=MaxLimit"`
	MaxLimit        int    `mapstructure:"max_limit" validate:"gte=1"`
	LeaderboardSize int    `mapstructure:"leaderboard_size" validate:"gte=1,ltefield=MaxLimit"`
	OrphanPolicy    string `mapstructure:"orphan_policy" validate:"oneof=placeholder exclude"`
	OrphanName      string `mapstructure:"orphan_name" validate:"contains=%d"`
	Timezone        string `mapstructure:"timezone" validate:"required"`
}

// Options converts the section into analytics options. Caching settings
// live in their own section and are applied by the caller.
func (a AnalyticsConfig) Options(cache CacheConfig) (analytics.Options, error) {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return analytics.Options{}, fmt.Errorf("analytics.timezone: %w", err)
	}

	opts := analytics.Options{
		DefaultSort:     a.DefaultSort,
		DefaultOrder:    a.DefaultOrder,
		DefaultLimit:    a.DefaultLimit,
		MaxLimit:        a.MaxLimit,
		LeaderboardSize: a.LeaderboardSize,
		OrphanPolicy:    analytics.OrphanPolicy(a.OrphanPolicy),
		OrphanName:      a.OrphanName,
		Location:        loc,
	}
	if cache.Enabled {
		opts.CacheTTL = cache.TTL
	}
	return opts, nil
}

func (r RetryConfig) Store() store.RetryConfig {
	return store.RetryConfig{
		MaxAttempts:  r.Attempts,
		InitialDelay: r.InitialDelay,
		MaxDelay:     r.MaxDelay,
	}
}

// LoadConfig reads configuration from file or environment variables.
// CONFIG_FILE overrides the search path with an explicit file.
func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	// Environment Variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Analytics.Timezone); err != nil {
		return nil, fmt.Errorf("invalid config: analytics.timezone: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.update_check_url", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.color", true)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:resto.db?_journal_mode=WAL&_busy_timeout=5000")
	v.SetDefault("database.query_timeout", 5*time.Second)
	v.SetDefault("database.retry.attempts", 3)
	v.SetDefault("database.retry.initial_delay", 50*time.Millisecond)
	v.SetDefault("database.retry.max_delay", time.Second)
	v.SetDefault("database.seed.restaurants", "data/restaurants.json")
	v.SetDefault("database.seed.orders", "data/orders.json")
	v.SetDefault("database.seed.on_startup", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "resto:")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", 30*time.Second)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("rate_limit.client_ttl", 10*time.Minute)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "resto-analytics")

	d := analytics.DefaultOptions()
	v.SetDefault("analytics.default_sort", d.DefaultSort)
	v.SetDefault("analytics.default_order", d.DefaultOrder)
	v.SetDefault("analytics.default_limit", d.DefaultLimit)
	v.SetDefault("analytics.max_limit", d.MaxLimit)
	v.SetDefault("analytics.leaderboard_size", d.LeaderboardSize)
	v.SetDefault("analytics.orphan_policy", string(d.OrphanPolicy))
	v.SetDefault("analytics.orphan_name", d.OrphanName)
	v.SetDefault("analytics.timezone", "UTC")
}
