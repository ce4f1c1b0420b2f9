package analytics

import (
	"github.com/shopspring/decimal"
)

// TrendSummary rolls a trend up over its whole date range.
type TrendSummary struct {
	RestaurantID  int64           `json:"restaurant_id"`
	Days          int             `json:"days"`
	Orders        int             `json:"orders"`
	Revenue       decimal.Decimal `json:"revenue"`
	AvgOrderValue int64           `json:"avg_order_value"`
	// PeakHour is the most frequent daily peak hour, ties to the smallest.
	PeakHour *int `json:"peak_hour"`
}

func Summarize(points []TrendPoint) TrendSummary {
	s := TrendSummary{Days: len(points), Revenue: decimal.Zero}

	freq := make(map[int]int)
	for _, p := range points {
		s.Orders += p.Orders
		s.Revenue = s.Revenue.Add(p.Revenue)
		if p.PeakHour != nil {
			freq[*p.PeakHour]++
		}
	}
	s.AvgOrderValue = average(s.Revenue, s.Orders)

	bestHour, bestCount := -1, 0
	for h, n := range freq {
		if n > bestCount || (n == bestCount && h < bestHour) {
			bestHour, bestCount = h, n
		}
	}
	if bestHour >= 0 {
		s.PeakHour = &bestHour
	}
	return s
}
