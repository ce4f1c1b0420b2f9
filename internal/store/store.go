package store

import (
	"context"
	"errors"

	"github.com/nulzo/resto-analytics/internal/store/model"
)

var (
	// ErrNotFound is returned when a lookup by id has no match.
	ErrNotFound = errors.New("record not found")
	// ErrUnavailable wraps every failure to reach or query the backing store.
	ErrUnavailable = errors.New("record store unavailable")
)

// Repository is the main contract for the data layer. It exposes scan and
// lookup primitives only; grouping happens in the analytics package so it
// stays storage-agnostic.
type Repository interface {
	Restaurants() RestaurantRepository
	Orders() OrderRepository

	// transaction support, used by the seed loader
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

type RestaurantRepository interface {
	// Scan returns every restaurant matching the filter, ordered by id.
	Scan(ctx context.Context, filter model.RestaurantFilter) ([]model.Restaurant, error)
	// Lookup returns the restaurants for ids keyed by id. Unknown ids are absent from the map.
	Lookup(ctx context.Context, ids []int64) (map[int64]model.Restaurant, error)
	// Get returns a single restaurant or ErrNotFound.
	Get(ctx context.Context, id int64) (*model.Restaurant, error)
	// ReplaceAll drops every restaurant and inserts the given set.
	ReplaceAll(ctx context.Context, restaurants []model.Restaurant) error
}

type OrderRepository interface {
	// Scan returns every order matching the filter, ordered by id.
	Scan(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	// ReplaceAll drops every order and inserts the given set.
	ReplaceAll(ctx context.Context, orders []model.Order) error
}
