package v1

import (
	"github.com/nulzo/resto-analytics/internal/analytics"
	"github.com/nulzo/resto-analytics/internal/store/model"
	"github.com/nulzo/resto-analytics/pkg/api"
)

func toRestaurant(r model.Restaurant) api.Restaurant {
	return api.Restaurant{ID: r.ID, Name: r.Name, Location: r.Location, Cuisine: r.Cuisine}
}

func toDirectory(p *analytics.DirectoryPage) api.DirectoryResponse {
	out := api.DirectoryResponse{
		Data: make([]api.Restaurant, 0, len(p.Data)),
		Pagination: api.Pagination{
			Total: p.Pagination.Total,
			Page:  p.Pagination.Page,
			Pages: p.Pagination.Pages,
		},
	}
	for _, r := range p.Data {
		out.Data = append(out.Data, toRestaurant(r))
	}
	return out
}

func toTrend(points []analytics.TrendPoint) []api.TrendPoint {
	out := make([]api.TrendPoint, 0, len(points))
	for _, p := range points {
		out = append(out, api.TrendPoint{
			Date:          p.Date,
			Orders:        p.Orders,
			Revenue:       p.Revenue.InexactFloat64(),
			AvgOrderValue: p.AvgOrderValue,
			PeakHour:      p.PeakHour,
		})
	}
	return out
}

func toLeaderboard(entries []analytics.LeaderboardEntry) []api.LeaderboardEntry {
	out := make([]api.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, api.LeaderboardEntry{
			RestaurantID: e.RestaurantID,
			Name:         e.Name,
			Revenue:      e.Revenue.InexactFloat64(),
			Orphan:       e.Orphan,
		})
	}
	return out
}
