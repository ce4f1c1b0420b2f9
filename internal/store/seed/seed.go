// Package seed loads restaurant and order fixtures from JSON files and
// replaces the contents of a store.Repository with them.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nulzo/resto-analytics/internal/store"
	"github.com/nulzo/resto-analytics/internal/store/model"
	"github.com/shopspring/decimal"
)

// timestamp layouts accepted for order_time, tried in order.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

type restaurantRecord struct {
	ID       int64  `json:"_id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Cuisine  string `json:"cuisine"`
}

type orderRecord struct {
	ID           int64           `json:"_id"`
	RestaurantID int64           `json:"restaurant_id"`
	Amount       decimal.Decimal `json:"order_amount"`
	OrderTime    string          `json:"order_time"`
}

// Dataset is the parsed content of the fixture files.
type Dataset struct {
	Restaurants []model.Restaurant
	Orders      []model.Order
}

// LoadFiles parses the restaurant and order fixture files.
// Timestamps without an offset are interpreted in loc.
func LoadFiles(restaurantsPath, ordersPath string, loc *time.Location) (*Dataset, error) {
	var rs []restaurantRecord
	if err := readJSON(restaurantsPath, &rs); err != nil {
		return nil, err
	}
	var orders []orderRecord
	if err := readJSON(ordersPath, &orders); err != nil {
		return nil, err
	}
	return parse(rs, orders, loc)
}

func readJSON(path string, dest interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// parse validates fixture records and converts them to store models.
func parse(rs []restaurantRecord, orders []orderRecord, loc *time.Location) (*Dataset, error) {
	if loc == nil {
		loc = time.UTC
	}

	ds := &Dataset{
		Restaurants: make([]model.Restaurant, 0, len(rs)),
		Orders:      make([]model.Order, 0, len(orders)),
	}

	seen := make(map[int64]struct{}, len(rs))
	for _, r := range rs {
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("restaurant %d: name is required", r.ID)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("restaurant %d: duplicate id", r.ID)
		}
		seen[r.ID] = struct{}{}
		ds.Restaurants = append(ds.Restaurants, model.Restaurant(r))
	}

	seenOrders := make(map[int64]struct{}, len(orders))
	for _, o := range orders {
		if _, dup := seenOrders[o.ID]; dup {
			return nil, fmt.Errorf("order %d: duplicate id", o.ID)
		}
		seenOrders[o.ID] = struct{}{}

		if o.Amount.IsNegative() {
			return nil, fmt.Errorf("order %d: negative order_amount %s", o.ID, o.Amount)
		}

		order := model.Order{ID: o.ID, RestaurantID: o.RestaurantID, Amount: o.Amount}
		if o.OrderTime != "" {
			t, err := parseTime(o.OrderTime, loc)
			if err != nil {
				return nil, fmt.Errorf("order %d: %w", o.ID, err)
			}
			order.OrderTime = &t
		}
		ds.Orders = append(ds.Orders, order)
	}

	return ds, nil
}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised order_time %q", s)
}

// Apply replaces the store contents with ds in a single transaction.
func Apply(ctx context.Context, repo store.Repository, ds *Dataset) error {
	return repo.WithTx(ctx, func(tx store.Repository) error {
		if err := tx.Restaurants().ReplaceAll(ctx, ds.Restaurants); err != nil {
			return fmt.Errorf("replace restaurants: %w", err)
		}
		if err := tx.Orders().ReplaceAll(ctx, ds.Orders); err != nil {
			return fmt.Errorf("replace orders: %w", err)
		}
		return nil
	})
}
