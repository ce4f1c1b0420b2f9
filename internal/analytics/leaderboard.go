package analytics

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/nulzo/resto-analytics/internal/store/model"
	"github.com/shopspring/decimal"
)

// RevenueTotal is the summed revenue of one restaurant.
type RevenueTotal struct {
	RestaurantID int64
	Revenue      decimal.Decimal
}

type LeaderboardEntry struct {
	RestaurantID int64           `json:"restaurant_id"`
	Name         string          `json:"name"`
	Revenue      decimal.Decimal `json:"revenue"`
	// Orphan marks revenue whose restaurant record is missing.
	Orphan bool `json:"orphan,omitempty"`
}

// LookupFunc resolves restaurant ids. Unknown ids are absent from the result.
type LookupFunc func(ctx context.Context, ids []int64) (map[int64]model.Restaurant, error)

// RankRevenue sums revenue per restaurant and sorts descending, ties by
// restaurant id ascending.
func RankRevenue(orders []model.Order) []RevenueTotal {
	sums := groupBy(orders,
		func(o model.Order) (int64, bool) { return o.RestaurantID, true },
		func(sum decimal.Decimal, o model.Order) decimal.Decimal { return sum.Add(o.Amount) },
	)

	ranked := make([]RevenueTotal, 0, len(sums))
	for id, sum := range sums {
		ranked = append(ranked, RevenueTotal{RestaurantID: id, Revenue: sum})
	}
	slices.SortFunc(ranked, func(a, b RevenueTotal) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.RestaurantID, b.RestaurantID)
	})
	return ranked
}

// LeaderboardAggregator truncates a ranking to the top N and joins
// restaurant names.
type LeaderboardAggregator struct {
	Policy     OrphanPolicy
	OrphanName string
}

// Top returns up to n entries from ranked along with every orphaned id it
// encountered. Under OrphanExclude, orphans are skipped and lookups
// continue down the ranking until n entries are found.
func (a LeaderboardAggregator) Top(ctx context.Context, ranked []RevenueTotal, n int, lookup LookupFunc) ([]LeaderboardEntry, []int64, error) {
	if n <= 0 {
		return []LeaderboardEntry{}, nil, nil
	}

	entries := make([]LeaderboardEntry, 0, min(n, len(ranked)))
	var orphans []int64

	for next := 0; len(entries) < n && next < len(ranked); {
		batch := ranked[next:min(next+n-len(entries), len(ranked))]
		next += len(batch)

		ids := make([]int64, len(batch))
		for i, r := range batch {
			ids[i] = r.RestaurantID
		}

		found, err := lookup(ctx, ids)
		if err != nil {
			return nil, nil, err
		}

		for _, r := range batch {
			rest, ok := found[r.RestaurantID]
			if ok {
				entries = append(entries, LeaderboardEntry{RestaurantID: r.RestaurantID, Name: rest.Name, Revenue: r.Revenue})
				continue
			}

			orphans = append(orphans, r.RestaurantID)
			if a.Policy == OrphanExclude {
				continue
			}
			entries = append(entries, LeaderboardEntry{
				RestaurantID: r.RestaurantID,
				Name:         fmt.Sprintf(a.OrphanName, r.RestaurantID),
				Revenue:      r.Revenue,
				Orphan:       true,
			})
		}
	}

	return entries, orphans, nil
}
