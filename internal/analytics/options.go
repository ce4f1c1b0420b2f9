package analytics

import (
	"time"
)

// OrphanPolicy decides what the leaderboard does with revenue whose
// restaurant_id has no matching restaurant.
type OrphanPolicy string

const (
	// OrphanPlaceholder keeps the entry under a generated name.
	OrphanPlaceholder OrphanPolicy = "placeholder"
	// OrphanExclude drops the entry before truncation to the top N.
	OrphanExclude OrphanPolicy = "exclude"
)

// Options are the construction-time defaults for every query.
type Options struct {
	DefaultSort  string
	DefaultOrder string
	DefaultLimit int
	// MaxLimit caps both the directory page size and the leaderboard size.
	MaxLimit        int
	LeaderboardSize int

	OrphanPolicy OrphanPolicy
	// OrphanName is a fmt pattern receiving the restaurant id.
	OrphanName string

	// Location is the timezone in which day keys and hours are computed.
	Location *time.Location

	// CacheTTL of zero disables result caching.
	CacheTTL time.Duration
}

func DefaultOptions() Options {
	return Options{
		DefaultSort:     "name",
		DefaultOrder:    "asc",
		DefaultLimit:    10,
		MaxLimit:        100,
		LeaderboardSize: 3,
		OrphanPolicy:    OrphanPlaceholder,
		OrphanName:      "Unknown restaurant #%d",
		Location:        time.UTC,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DefaultSort == "" {
		o.DefaultSort = d.DefaultSort
	}
	if o.DefaultOrder == "" {
		o.DefaultOrder = d.DefaultOrder
	}
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = d.DefaultLimit
	}
	if o.MaxLimit <= 0 {
		o.MaxLimit = d.MaxLimit
	}
	if o.LeaderboardSize <= 0 {
		o.LeaderboardSize = d.LeaderboardSize
	}
	if o.OrphanPolicy == "" {
		o.OrphanPolicy = d.OrphanPolicy
	}
	if o.OrphanName == "" {
		o.OrphanName = d.OrphanName
	}
	if o.Location == nil {
		o.Location = d.Location
	}
	return o
}
