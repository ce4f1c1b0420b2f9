package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Restaurant is a directory entry. Records are loaded once and never mutated.
type Restaurant struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Location string `db:"location" json:"location"`
	Cuisine  string `db:"cuisine" json:"cuisine"`
}

// Order is a single order placed at a restaurant.
type Order struct {
	ID           int64           `db:"id" json:"id"`
	RestaurantID int64           `db:"restaurant_id" json:"restaurant_id"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	// OrderTime is nil when the source record carried no timestamp.
	OrderTime *time.Time `db:"order_time" json:"order_time,omitempty"`
}

// RestaurantFilter selects restaurants. Empty fields match everything.
type RestaurantFilter struct {
	// Search is a case-insensitive substring of Name.
	Search   string
	Cuisine  string
	Location string
}

func (f RestaurantFilter) Match(r Restaurant) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(f.Search)) {
		return false
	}
	if f.Cuisine != "" && r.Cuisine != f.Cuisine {
		return false
	}
	if f.Location != "" && r.Location != f.Location {
		return false
	}
	return true
}

// OrderFilter selects orders by restaurant and by a half-open time window
// [Since, Before). A nil bound is unbounded on that side.
type OrderFilter struct {
	RestaurantID *int64
	Since        *time.Time
	Before       *time.Time
}

// DateBounded reports whether either time bound is set.
func (f OrderFilter) DateBounded() bool {
	return f.Since != nil || f.Before != nil
}

// Match reports whether o satisfies the filter. Orders without an
// order time never satisfy a date-bounded filter.
func (f OrderFilter) Match(o Order) bool {
	if f.RestaurantID != nil && o.RestaurantID != *f.RestaurantID {
		return false
	}
	if !f.DateBounded() {
		return true
	}
	if o.OrderTime == nil {
		return false
	}
	if f.Since != nil && o.OrderTime.Before(*f.Since) {
		return false
	}
	if f.Before != nil && !o.OrderTime.Before(*f.Before) {
		return false
	}
	return true
}

// Key renders the filter as a stable string, used for cache keys.
func (f OrderFilter) Key() string {
	var sb strings.Builder
	if f.RestaurantID != nil {
		sb.WriteString("r=")
		sb.WriteString(strconv.FormatInt(*f.RestaurantID, 10))
	}
	sb.WriteString("|since=")
	if f.Since != nil {
		sb.WriteString(f.Since.UTC().Format(time.RFC3339Nano))
	}
	sb.WriteString("|before=")
	if f.Before != nil {
		sb.WriteString(f.Before.UTC().Format(time.RFC3339Nano))
	}
	return sb.String()
}
