package analytics

import (
	"cmp"
	"slices"
	"time"

	"github.com/nulzo/resto-analytics/internal/store/model"
	"github.com/shopspring/decimal"
)

// DayLayout is the format of day keys.
const DayLayout = time.DateOnly

// DailyStats are the order totals of a single calendar day.
type DailyStats struct {
	Day     string
	Orders  int
	Revenue decimal.Decimal
	// AvgOrderValue is Revenue/Orders rounded half away from zero.
	AvgOrderValue int64
}

type dayTotal struct {
	orders  int
	revenue decimal.Decimal
}

// dayKey reports false for orders without a timestamp.
func dayKey(o model.Order, loc *time.Location) (string, bool) {
	if o.OrderTime == nil {
		return "", false
	}
	return o.OrderTime.In(loc).Format(DayLayout), true
}

// DailyStatsByDay groups orders by calendar day in loc, sorted by day.
func DailyStatsByDay(orders []model.Order, loc *time.Location) []DailyStats {
	totals := groupBy(orders,
		func(o model.Order) (string, bool) { return dayKey(o, loc) },
		func(t dayTotal, o model.Order) dayTotal {
			t.orders++
			t.revenue = t.revenue.Add(o.Amount)
			return t
		},
	)

	out := make([]DailyStats, 0, len(totals))
	for day, t := range totals {
		out = append(out, DailyStats{
			Day:           day,
			Orders:        t.orders,
			Revenue:       t.revenue,
			AvgOrderValue: average(t.revenue, t.orders),
		})
	}
	slices.SortFunc(out, func(a, b DailyStats) int { return cmp.Compare(a.Day, b.Day) })
	return out
}

func average(revenue decimal.Decimal, orders int) int64 {
	if orders == 0 {
		return 0
	}
	return revenue.DivRound(decimal.NewFromInt(int64(orders)), 0).IntPart()
}
