package analytics

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/nulzo/resto-analytics/internal/store"
	"github.com/nulzo/resto-analytics/internal/store/cache"
	"github.com/nulzo/resto-analytics/internal/store/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Facets are the distinct filter values of the directory.
type Facets struct {
	Cuisines  []string `json:"cuisines"`
	Locations []string `json:"locations"`
}

type Service interface {
	Directory(ctx context.Context, p DirectoryParams) (*DirectoryPage, error)
	Restaurant(ctx context.Context, id string) (*model.Restaurant, error)
	Trends(ctx context.Context, p TrendParams) ([]TrendPoint, error)
	TrendSummary(ctx context.Context, p TrendParams) (*TrendSummary, error)
	Leaderboard(ctx context.Context, p LeaderboardParams) ([]LeaderboardEntry, error)
	Facets(ctx context.Context) (*Facets, error)
}

type service struct {
	repo        store.Repository
	cache       cache.Cache
	opts        Options
	filters     FilterBuilder
	leaderboard LeaderboardAggregator
	logger      *zap.Logger
	tracer      trace.Tracer
}

// NewService wires the query service. c may be nil to disable caching.
func NewService(repo store.Repository, c cache.Cache, opts Options, logger *zap.Logger) Service {
	opts = opts.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		repo:    repo,
		cache:   c,
		opts:    opts,
		filters: NewFilterBuilder(opts),
		leaderboard: LeaderboardAggregator{
			Policy:     opts.OrphanPolicy,
			OrphanName: opts.OrphanName,
		},
		logger: logger.Named("analytics"),
		tracer: otel.Tracer("analytics"),
	}
}

func (s *service) Directory(ctx context.Context, p DirectoryParams) (*DirectoryPage, error) {
	q, err := s.filters.Directory(p)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "analytics.directory",
		trace.WithAttributes(
			attribute.String("sort_by", q.SortBy),
			attribute.Int("page", q.Page),
			attribute.Int("limit", q.Limit),
		))
	defer span.End()

	key := fmt.Sprintf("directory|%q|%q|%q|%s|%s|%d|%d",
		q.Filter.Search, q.Filter.Cuisine, q.Filter.Location, q.SortBy, q.Order, q.Page, q.Limit)

	page, err := cached(ctx, s, key, func() (*DirectoryPage, error) {
		rows, err := s.repo.Restaurants().Scan(ctx, q.Filter)
		if err != nil {
			return nil, storeError("scan restaurants", err)
		}
		page := Paginate(rows, q)
		return &page, nil
	})
	return page, s.finish(span, err)
}

func (s *service) Restaurant(ctx context.Context, raw string) (*model.Restaurant, error) {
	id, err := ParseRestaurantID(raw)
	if err != nil {
		return nil, err
	}

	rest, err := s.repo.Restaurants().Get(ctx, id)
	if err != nil {
		return nil, storeError("restaurant "+strconv.FormatInt(id, 10), err)
	}
	return rest, nil
}

func (s *service) Trends(ctx context.Context, p TrendParams) ([]TrendPoint, error) {
	filter, err := s.filters.Trend(p)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "analytics.trends",
		trace.WithAttributes(attribute.Int64("restaurant_id", *filter.RestaurantID)))
	defer span.End()

	points, err := cached(ctx, s, "trends|"+filter.Key(), func() ([]TrendPoint, error) {
		return s.trend(ctx, filter)
	})
	return points, s.finish(span, err)
}

func (s *service) TrendSummary(ctx context.Context, p TrendParams) (*TrendSummary, error) {
	id, err := ParseRestaurantID(p.RestaurantID)
	if err != nil {
		return nil, err
	}
	points, err := s.Trends(ctx, p)
	if err != nil {
		return nil, err
	}
	summary := Summarize(points)
	summary.RestaurantID = id
	return &summary, nil
}

// trend runs the daily and peak-hour aggregations over the same order set
// and merges them.
func (s *service) trend(ctx context.Context, filter model.OrderFilter) ([]TrendPoint, error) {
	orders, err := s.repo.Orders().Scan(ctx, filter)
	if err != nil {
		return nil, storeError("scan orders", err)
	}

	var (
		daily []DailyStats
		peaks map[string]int
		g     errgroup.Group
	)
	g.Go(func() error {
		daily = DailyStatsByDay(orders, s.opts.Location)
		return nil
	})
	g.Go(func() error {
		peaks = PeakHours(orders, s.opts.Location)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return MergeTrend(daily, peaks), nil
}

func (s *service) Leaderboard(ctx context.Context, p LeaderboardParams) ([]LeaderboardEntry, error) {
	filter, n, err := s.filters.Leaderboard(p)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "analytics.leaderboard",
		trace.WithAttributes(attribute.Int("size", n)))
	defer span.End()

	key := "leaderboard|" + strconv.Itoa(n) + "|" + filter.Key()
	entries, err := cached(ctx, s, key, func() ([]LeaderboardEntry, error) {
		orders, err := s.repo.Orders().Scan(ctx, filter)
		if err != nil {
			return nil, storeError("scan orders", err)
		}

		entries, orphans, err := s.leaderboard.Top(ctx, RankRevenue(orders), n, s.lookup)
		if err != nil {
			return nil, err
		}
		for _, id := range orphans {
			s.logger.Warn("Orders reference a missing restaurant",
				zap.Int64("restaurant_id", id),
				zap.String("policy", string(s.opts.OrphanPolicy)),
			)
		}
		return entries, nil
	})
	return entries, s.finish(span, err)
}

func (s *service) lookup(ctx context.Context, ids []int64) (map[int64]model.Restaurant, error) {
	found, err := s.repo.Restaurants().Lookup(ctx, ids)
	if err != nil {
		return nil, storeError("lookup restaurants", err)
	}
	return found, nil
}

func (s *service) Facets(ctx context.Context) (*Facets, error) {
	return cached(ctx, s, "facets", func() (*Facets, error) {
		rows, err := s.repo.Restaurants().Scan(ctx, model.RestaurantFilter{})
		if err != nil {
			return nil, storeError("scan restaurants", err)
		}

		f := &Facets{
			Cuisines:  distinct(rows, func(r model.Restaurant) string { return r.Cuisine }),
			Locations: distinct(rows, func(r model.Restaurant) string { return r.Location }),
		}
		return f, nil
	})
}

func distinct(rows []model.Restaurant, field func(model.Restaurant) string) []string {
	seen := groupBy(rows,
		func(r model.Restaurant) (string, bool) { v := field(r); return v, v != "" },
		func(n int, _ model.Restaurant) int { return n + 1 },
	)
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	slices.SortFunc(out, cmp.Compare[string])
	return out
}

func (s *service) finish(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// cached serves compute through the result cache. Cache failures are
// logged and fall through to compute.
func cached[T any](ctx context.Context, s *service, key string, compute func() (T, error)) (T, error) {
	if s.cache == nil || s.opts.CacheTTL <= 0 {
		return compute()
	}

	var hit T
	err := s.cache.Get(ctx, key, &hit)
	if err == nil {
		return hit, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	}

	v, err := compute()
	if err != nil {
		return v, err
	}
	if err := s.cache.Set(ctx, key, v, s.opts.CacheTTL); err != nil {
		s.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}
