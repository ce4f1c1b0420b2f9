package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/resto-analytics/internal/analytics"
	"github.com/nulzo/resto-analytics/internal/server/validator"
	"github.com/nulzo/resto-analytics/pkg/api"
)

type AnalyticsHandler struct {
	service analytics.Service
}

func NewAnalyticsHandler(service analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
	}
}

func (h *AnalyticsHandler) trendParams(c *gin.Context) (analytics.TrendParams, bool) {
	var req api.TrendRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return analytics.TrendParams{}, false
	}
	return analytics.TrendParams{
		RestaurantID: c.Param("id"),
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	}, true
}

// Trends returns the per-day order trend of one restaurant.
// GET /api/:id/trends
func (h *AnalyticsHandler) Trends(c *gin.Context) {
	params, ok := h.trendParams(c)
	if !ok {
		return
	}

	points, err := h.service.Trends(c.Request.Context(), params)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toTrend(points))
}

// TrendSummary rolls the trend up into headline figures.
// GET /api/:id/trends/summary
func (h *AnalyticsHandler) TrendSummary(c *gin.Context) {
	params, ok := h.trendParams(c)
	if !ok {
		return
	}

	s, err := h.service.TrendSummary(c.Request.Context(), params)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, api.TrendSummary{
		RestaurantID:  s.RestaurantID,
		Days:          s.Days,
		Orders:        s.Orders,
		Revenue:       s.Revenue.InexactFloat64(),
		AvgOrderValue: s.AvgOrderValue,
		PeakHour:      s.PeakHour,
	})
}

// Top returns the revenue leaderboard.
// GET /api/top
func (h *AnalyticsHandler) Top(c *gin.Context) {
	var req api.LeaderboardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	entries, err := h.service.Leaderboard(c.Request.Context(), analytics.LeaderboardParams{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Limit:     req.Limit,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toLeaderboard(entries))
}
