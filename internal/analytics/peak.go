package analytics

import (
	"time"

	"github.com/nulzo/resto-analytics/internal/store/model"
)

type dayHour struct {
	day  string
	hour int
}

// PeakHours returns, per day in loc, the hour with the most orders. Ties
// go to the smallest hour. Days without orders are absent.
func PeakHours(orders []model.Order, loc *time.Location) map[string]int {
	counts := groupBy(orders,
		func(o model.Order) (dayHour, bool) {
			if o.OrderTime == nil {
				return dayHour{}, false
			}
			t := o.OrderTime.In(loc)
			return dayHour{day: t.Format(DayLayout), hour: t.Hour()}, true
		},
		func(n int, _ model.Order) int { return n + 1 },
	)

	type best struct{ hour, count int }
	winners := make(map[string]best)
	for k, n := range counts {
		w, seen := winners[k.day]
		if !seen || n > w.count || (n == w.count && k.hour < w.hour) {
			winners[k.day] = best{hour: k.hour, count: n}
		}
	}

	out := make(map[string]int, len(winners))
	for day, w := range winners {
		out[day] = w.hour
	}
	return out
}
