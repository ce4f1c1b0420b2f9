package analytics

import (
	"strconv"
	"strings"
	"time"

	"github.com/nulzo/resto-analytics/internal/store/model"
)

// DirectoryParams are the raw directory request parameters. Empty means absent.
type DirectoryParams struct {
	Search   string
	Cuisine  string
	Location string
	SortBy   string
	Order    string
	Page     string
	Limit    string
}

// TrendParams are the raw trend request parameters.
type TrendParams struct {
	RestaurantID string
	StartDate    string
	EndDate      string
}

// LeaderboardParams are the raw leaderboard request parameters.
type LeaderboardParams struct {
	StartDate string
	EndDate   string
	Limit     string
}

// FilterBuilder turns request parameters into store predicates and
// validated queries.
type FilterBuilder struct {
	opts Options
}

func NewFilterBuilder(opts Options) FilterBuilder {
	return FilterBuilder{opts: opts.withDefaults()}
}

// Restaurants builds the restaurant predicate. Blank fields match everything.
func (b FilterBuilder) Restaurants(search, cuisine, location string) model.RestaurantFilter {
	return model.RestaurantFilter{
		Search:   strings.TrimSpace(search),
		Cuisine:  strings.TrimSpace(cuisine),
		Location: strings.TrimSpace(location),
	}
}

// Orders builds the date-bounded order predicate. Both bounds are
// inclusive: a calendar date as end_date covers that whole day.
func (b FilterBuilder) Orders(startDate, endDate string) (model.OrderFilter, error) {
	var f model.OrderFilter

	if s := strings.TrimSpace(startDate); s != "" {
		since, err := b.parseBound(s, false)
		if err != nil {
			return f, invalid("start_date", "must be YYYY-MM-DD or an RFC 3339 timestamp")
		}
		f.Since = &since
	}
	if s := strings.TrimSpace(endDate); s != "" {
		before, err := b.parseBound(s, true)
		if err != nil {
			return f, invalid("end_date", "must be YYYY-MM-DD or an RFC 3339 timestamp")
		}
		f.Before = &before
	}

	if f.Since != nil && f.Before != nil && !f.Since.Before(*f.Before) {
		return f, invalid("start_date", "must not be after end_date")
	}
	return f, nil
}

// parseBound returns the lower bound for a start date or the exclusive
// upper bound for an end date.
func (b FilterBuilder) parseBound(s string, end bool) (time.Time, error) {
	if t, err := time.ParseInLocation(time.DateOnly, s, b.opts.Location); err == nil {
		if end {
			return t.AddDate(0, 0, 1), nil
		}
		return t, nil
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	if end {
		return t.Add(time.Nanosecond), nil
	}
	return t, nil
}

// Trend builds the order predicate for one restaurant's trend.
func (b FilterBuilder) Trend(p TrendParams) (model.OrderFilter, error) {
	id, err := ParseRestaurantID(p.RestaurantID)
	if err != nil {
		return model.OrderFilter{}, err
	}
	f, err := b.Orders(p.StartDate, p.EndDate)
	if err != nil {
		return f, err
	}
	f.RestaurantID = &id
	return f, nil
}

// Leaderboard builds the order predicate and the number of entries to return.
func (b FilterBuilder) Leaderboard(p LeaderboardParams) (model.OrderFilter, int, error) {
	n, err := b.positive("limit", p.Limit, b.opts.LeaderboardSize)
	if err != nil {
		return model.OrderFilter{}, 0, err
	}
	f, err := b.Orders(p.StartDate, p.EndDate)
	return f, n, err
}

// Directory validates the directory parameters.
func (b FilterBuilder) Directory(p DirectoryParams) (DirectoryQuery, error) {
	q := DirectoryQuery{
		Filter: b.Restaurants(p.Search, p.Cuisine, p.Location),
		SortBy: strings.TrimSpace(p.SortBy),
		Order:  strings.ToLower(strings.TrimSpace(p.Order)),
	}

	if q.SortBy == "" {
		q.SortBy = b.opts.DefaultSort
	}
	if _, ok := sortKeys[q.SortBy]; !ok {
		return q, invalid("sortBy", "must be one of id, name, location, cuisine")
	}

	if q.Order == "" {
		q.Order = b.opts.DefaultOrder
	}
	if q.Order != "asc" && q.Order != "desc" {
		return q, invalid("order", "must be asc or desc")
	}

	var err error
	if q.Page, err = b.positive("page", p.Page, 1); err != nil {
		return q, err
	}
	if q.Limit, err = b.positive("limit", p.Limit, b.opts.DefaultLimit); err != nil {
		return q, err
	}
	return q, nil
}

// positive parses an optional positive integer bounded by MaxLimit for limits.
func (b FilterBuilder) positive(field, raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, invalid(field, "must be a positive integer")
	}
	if field == "limit" && n > b.opts.MaxLimit {
		return 0, invalid(field, "must not exceed %d", b.opts.MaxLimit)
	}
	return n, nil
}
