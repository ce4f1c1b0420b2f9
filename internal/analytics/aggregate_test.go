package analytics

import (
	"math/rand"
	"testing"
	"time"

	"github.com/nulzo/resto-analytics/internal/store/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrend_ThreeOrdersOnOneDay(t *testing.T) {
	orders := []model.Order{
		orderAt(1, 10, 100, day1(10, 0)),
		orderAt(2, 10, 50, day1(10, 30)),
		orderAt(3, 10, 80, day1(14, 0)),
	}

	points := MergeTrend(DailyStatsByDay(orders, time.UTC), PeakHours(orders, time.UTC))

	require.Len(t, points, 1)
	p := points[0]
	assert.Equal(t, "2024-03-01", p.Date)
	assert.Equal(t, 3, p.Orders)
	assert.True(t, decimal.NewFromInt(230).Equal(p.Revenue))
	assert.Equal(t, int64(77), p.AvgOrderValue)
	require.NotNil(t, p.PeakHour)
	assert.Equal(t, 10, *p.PeakHour)
}

func TestDailyStats_SortedAndSkipsUntimed(t *testing.T) {
	orders := []model.Order{
		orderAt(1, 1, 10, time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC)),
		orderAt(2, 1, 20, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)),
		{ID: 3, RestaurantID: 1, Amount: decimal.NewFromInt(999)},
		orderAt(4, 1, 30, time.Date(2024, 3, 2, 23, 59, 59, 0, time.UTC)),
	}

	stats := DailyStatsByDay(orders, time.UTC)

	require.Len(t, stats, 3)
	assert.Equal(t, []string{"2024-03-01", "2024-03-02", "2024-03-03"},
		[]string{stats[0].Day, stats[1].Day, stats[2].Day})
}

func TestDailyStats_Empty(t *testing.T) {
	stats := DailyStatsByDay(nil, time.UTC)
	assert.NotNil(t, stats)
	assert.Empty(t, stats)
}

func TestDailyStats_RoundsHalfAwayFromZero(t *testing.T) {
	orders := []model.Order{
		orderAt(1, 1, 2, day1(9, 0)),
		orderAt(2, 1, 3, day1(9, 5)),
	}

	stats := DailyStatsByDay(orders, time.UTC)

	require.Len(t, stats, 1)
	assert.Equal(t, int64(3), stats[0].AvgOrderValue, "2.5 rounds up")
}

func TestDailyStats_DayKeyUsesLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	orders := []model.Order{orderAt(1, 1, 10, time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC))}

	assert.Equal(t, "2024-03-02", DailyStatsByDay(orders, ist)[0].Day)
	assert.Equal(t, map[string]int{"2024-03-02": 1}, PeakHours(orders, ist))
}

func TestPeakHours_TieGoesToSmallestHour(t *testing.T) {
	orders := []model.Order{
		orderAt(1, 1, 10, day1(18, 0)),
		orderAt(2, 1, 10, day1(18, 40)),
		orderAt(3, 1, 10, day1(9, 0)),
		orderAt(4, 1, 10, day1(9, 15)),
		orderAt(5, 1, 10, day1(12, 0)),
	}

	assert.Equal(t, map[string]int{"2024-03-01": 9}, PeakHours(orders, time.UTC))
}

func TestMergeTrend_MissingPeakIsNil(t *testing.T) {
	daily := []DailyStats{{Day: "2024-03-01", Orders: 1, Revenue: decimal.NewFromInt(5), AvgOrderValue: 5}}

	points := MergeTrend(daily, map[string]int{})

	require.Len(t, points, 1)
	assert.Nil(t, points[0].PeakHour)
}

func TestMergeTrend_PeakHourZeroIsKept(t *testing.T) {
	orders := []model.Order{orderAt(1, 1, 10, day1(0, 15))}

	points := MergeTrend(DailyStatsByDay(orders, time.UTC), PeakHours(orders, time.UTC))

	require.NotNil(t, points[0].PeakHour)
	assert.Equal(t, 0, *points[0].PeakHour)
}

// Randomised check of the per-day invariants against a brute-force count.
func TestTrend_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var orders []model.Order
	for i := int64(1); i <= 500; i++ {
		if rng.Intn(20) == 0 {
			orders = append(orders, model.Order{ID: i, RestaurantID: 1, Amount: decimal.NewFromInt(rng.Int63n(500))})
			continue
		}
		ts := time.Date(2024, 3, 1+rng.Intn(5), rng.Intn(24), rng.Intn(60), 0, 0, time.UTC)
		orders = append(orders, orderAt(i, 1, rng.Int63n(1000), ts))
	}

	points := MergeTrend(DailyStatsByDay(orders, time.UTC), PeakHours(orders, time.UTC))

	timed := 0
	for _, o := range orders {
		if o.OrderTime != nil {
			timed++
		}
	}

	total := 0
	for _, p := range points {
		total += p.Orders

		hours := make([]int, 24)
		count := 0
		revenue := decimal.Zero
		for _, o := range orders {
			if o.OrderTime != nil && o.OrderTime.Format(DayLayout) == p.Date {
				hours[o.OrderTime.Hour()]++
				count++
				revenue = revenue.Add(o.Amount)
			}
		}

		assert.Equal(t, count, p.Orders)
		assert.True(t, revenue.Equal(p.Revenue))
		assert.Equal(t, revenue.DivRound(decimal.NewFromInt(int64(count)), 0).IntPart(), p.AvgOrderValue)

		want := 0
		for h := range hours {
			if hours[h] > hours[want] {
				want = h
			}
		}
		require.NotNil(t, p.PeakHour)
		assert.Equal(t, want, *p.PeakHour, p.Date)
	}
	assert.Equal(t, timed, total)
}

func TestSummarize(t *testing.T) {
	h9, h13 := 9, 13
	points := []TrendPoint{
		{Date: "2024-03-01", Orders: 2, Revenue: decimal.NewFromInt(300), PeakHour: &h13},
		{Date: "2024-03-02", Orders: 1, Revenue: decimal.NewFromInt(100), PeakHour: &h9},
		{Date: "2024-03-03", Orders: 3, Revenue: decimal.NewFromInt(200), PeakHour: &h13},
		{Date: "2024-03-04", Orders: 1, Revenue: decimal.NewFromInt(50), PeakHour: &h9},
	}

	s := Summarize(points)

	assert.Equal(t, 4, s.Days)
	assert.Equal(t, 7, s.Orders)
	assert.True(t, decimal.NewFromInt(650).Equal(s.Revenue))
	assert.Equal(t, int64(93), s.AvgOrderValue)
	require.NotNil(t, s.PeakHour)
	assert.Equal(t, 9, *s.PeakHour, "tied frequency resolves to the smaller hour")
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Equal(t, 0, s.Orders)
	assert.Equal(t, int64(0), s.AvgOrderValue)
	assert.Nil(t, s.PeakHour)
}
