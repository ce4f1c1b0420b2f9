package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nulzo/resto-analytics/internal/store/model"
	"go.uber.org/zap"
)

// RetryConfig configures retries of read calls against a Repository.
type RetryConfig struct {
	// MaxAttempts includes the initial attempt.
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryConfig returns the retry settings used when none are configured.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     time.Second,
	}
}

// WithRetry decorates repo so that scans and lookups failing with
// ErrUnavailable are retried with exponential backoff. Writes and
// ErrNotFound results are never retried.
func WithRetry(repo Repository, cfg RetryConfig, logger *zap.Logger) Repository {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultRetryConfig().InitialDelay
	}
	if cfg.MaxDelay < cfg.InitialDelay {
		cfg.MaxDelay = cfg.InitialDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &retryRepository{Repository: repo, cfg: cfg, logger: logger}
}

type retryRepository struct {
	Repository
	cfg    RetryConfig
	logger *zap.Logger
}

func (r *retryRepository) Restaurants() RestaurantRepository {
	return &retryRestaurants{RestaurantRepository: r.Repository.Restaurants(), r: r}
}

func (r *retryRepository) Orders() OrderRepository {
	return &retryOrders{OrderRepository: r.Repository.Orders(), r: r}
}

func (r *retryRepository) do(ctx context.Context, op string, fn func() error) error {
	delay := r.cfg.InitialDelay
	var err error

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		if err = fn(); err == nil || !errors.Is(err, ErrUnavailable) {
			return err
		}
		if attempt == r.cfg.MaxAttempts {
			break
		}

		r.logger.Warn("Store call failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, ctx.Err())
		case <-time.After(delay):
		}

		delay *= 2
		if delay > r.cfg.MaxDelay {
			delay = r.cfg.MaxDelay
		}
	}

	return err
}

type retryRestaurants struct {
	RestaurantRepository
	r *retryRepository
}

func (s *retryRestaurants) Scan(ctx context.Context, filter model.RestaurantFilter) ([]model.Restaurant, error) {
	var out []model.Restaurant
	err := s.r.do(ctx, "restaurants.scan", func() (err error) {
		out, err = s.RestaurantRepository.Scan(ctx, filter)
		return err
	})
	return out, err
}

func (s *retryRestaurants) Lookup(ctx context.Context, ids []int64) (map[int64]model.Restaurant, error) {
	var out map[int64]model.Restaurant
	err := s.r.do(ctx, "restaurants.lookup", func() (err error) {
		out, err = s.RestaurantRepository.Lookup(ctx, ids)
		return err
	})
	return out, err
}

func (s *retryRestaurants) Get(ctx context.Context, id int64) (*model.Restaurant, error) {
	var out *model.Restaurant
	err := s.r.do(ctx, "restaurants.get", func() (err error) {
		out, err = s.RestaurantRepository.Get(ctx, id)
		return err
	})
	return out, err
}

type retryOrders struct {
	OrderRepository
	r *retryRepository
}

func (s *retryOrders) Scan(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	var out []model.Order
	err := s.r.do(ctx, "orders.scan", func() (err error) {
		out, err = s.OrderRepository.Scan(ctx, filter)
		return err
	})
	return out, err
}
