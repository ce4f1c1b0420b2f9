package analytics

import (
	"time"

	"github.com/nulzo/resto-analytics/internal/store/model"
	"github.com/shopspring/decimal"
)

func orderAt(id, restaurantID, amount int64, t time.Time) model.Order {
	return model.Order{
		ID:           id,
		RestaurantID: restaurantID,
		Amount:       decimal.NewFromInt(amount),
		OrderTime:    &t,
	}
}

func day1(hour, minute int) time.Time {
	return time.Date(2024, 3, 1, hour, minute, 0, 0, time.UTC)
}
