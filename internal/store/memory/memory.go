// Package memory is an in-process store.Repository backed by slices. It is
// used by tests and by the "memory" database driver for local runs.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/nulzo/resto-analytics/internal/store"
	"github.com/nulzo/resto-analytics/internal/store/model"
)

type Store struct {
	mu          sync.RWMutex
	restaurants []model.Restaurant
	orders      []model.Order
	err         error
}

func New(restaurants []model.Restaurant, orders []model.Order) *Store {
	s := &Store{}
	s.setRestaurants(restaurants)
	s.setOrders(orders)
	return s
}

// Fail makes every subsequent call return err wrapped in store.ErrUnavailable.
// Passing nil restores normal behaviour.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Store) failure() error {
	if s.err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", store.ErrUnavailable, s.err)
}

func (s *Store) Restaurants() store.RestaurantRepository { return (*restaurantRepo)(s) }
func (s *Store) Orders() store.OrderRepository           { return (*orderRepo)(s) }

func (s *Store) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	return fn(s)
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failure()
}

func (s *Store) Close() error { return nil }

func (s *Store) setRestaurants(rs []model.Restaurant) {
	s.restaurants = slices.Clone(rs)
	slices.SortFunc(s.restaurants, func(a, b model.Restaurant) int { return cmp.Compare(a.ID, b.ID) })
}

func (s *Store) setOrders(orders []model.Order) {
	s.orders = slices.Clone(orders)
	slices.SortFunc(s.orders, func(a, b model.Order) int { return cmp.Compare(a.ID, b.ID) })
}

type restaurantRepo Store

func (r *restaurantRepo) Scan(ctx context.Context, filter model.RestaurantFilter) ([]model.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := (*Store)(r).failure(); err != nil {
		return nil, err
	}

	out := make([]model.Restaurant, 0, len(r.restaurants))
	for _, rest := range r.restaurants {
		if filter.Match(rest) {
			out = append(out, rest)
		}
	}
	return out, nil
}

func (r *restaurantRepo) Lookup(ctx context.Context, ids []int64) (map[int64]model.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := (*Store)(r).failure(); err != nil {
		return nil, err
	}

	out := make(map[int64]model.Restaurant, len(ids))
	for _, id := range ids {
		if rest, ok := r.find(id); ok {
			out[id] = rest
		}
	}
	return out, nil
}

func (r *restaurantRepo) Get(ctx context.Context, id int64) (*model.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := (*Store)(r).failure(); err != nil {
		return nil, err
	}

	rest, ok := r.find(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &rest, nil
}

func (r *restaurantRepo) ReplaceAll(ctx context.Context, restaurants []model.Restaurant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := (*Store)(r).failure(); err != nil {
		return err
	}
	(*Store)(r).setRestaurants(restaurants)
	return nil
}

// find relies on restaurants being sorted by id.
func (r *restaurantRepo) find(id int64) (model.Restaurant, bool) {
	i, ok := slices.BinarySearchFunc(r.restaurants, id, func(rest model.Restaurant, id int64) int {
		return cmp.Compare(rest.ID, id)
	})
	if !ok {
		return model.Restaurant{}, false
	}
	return r.restaurants[i], true
}

type orderRepo Store

func (r *orderRepo) Scan(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := (*Store)(r).failure(); err != nil {
		return nil, err
	}

	out := make([]model.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if filter.Match(o) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *orderRepo) ReplaceAll(ctx context.Context, orders []model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := (*Store)(r).failure(); err != nil {
		return err
	}
	(*Store)(r).setOrders(orders)
	return nil
}
