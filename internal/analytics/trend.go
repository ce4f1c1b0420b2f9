package analytics

import (
	"github.com/shopspring/decimal"
)

// TrendPoint is one day of a restaurant's trend.
type TrendPoint struct {
	Date          string          `json:"date"`
	Orders        int             `json:"orders"`
	Revenue       decimal.Decimal `json:"revenue"`
	AvgOrderValue int64           `json:"avg_order_value"`
	// PeakHour is nil when unknown, never zero.
	PeakHour *int `json:"peak_hour"`
}

// MergeTrend left-joins daily stats with peak hours on the day key,
// keeping the order of daily.
func MergeTrend(daily []DailyStats, peaks map[string]int) []TrendPoint {
	out := make([]TrendPoint, 0, len(daily))
	for _, d := range daily {
		p := TrendPoint{
			Date:          d.Day,
			Orders:        d.Orders,
			Revenue:       d.Revenue,
			AvgOrderValue: d.AvgOrderValue,
		}
		if h, ok := peaks[d.Day]; ok {
			p.PeakHour = &h
		}
		out = append(out, p)
	}
	return out
}
