package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/resto-analytics/internal/analytics"
	"github.com/nulzo/resto-analytics/internal/server/middleware"
	v1 "github.com/nulzo/resto-analytics/internal/server/v1"
	"github.com/nulzo/resto-analytics/internal/server/validator"
	"github.com/nulzo/resto-analytics/internal/store/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockService is a mock implementation of analytics.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Directory(ctx context.Context, p analytics.DirectoryParams) (*analytics.DirectoryPage, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.DirectoryPage), args.Error(1)
}

func (m *MockService) Restaurant(ctx context.Context, id string) (*model.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Restaurant), args.Error(1)
}

func (m *MockService) Trends(ctx context.Context, p analytics.TrendParams) ([]analytics.TrendPoint, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.TrendPoint), args.Error(1)
}

func (m *MockService) TrendSummary(ctx context.Context, p analytics.TrendParams) (*analytics.TrendSummary, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.TrendSummary), args.Error(1)
}

func (m *MockService) Leaderboard(ctx context.Context, p analytics.LeaderboardParams) ([]analytics.LeaderboardEntry, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.LeaderboardEntry), args.Error(1)
}

func (m *MockService) Facets(ctx context.Context) (*analytics.Facets, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.Facets), args.Error(1)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func setupRouter(svc analytics.Service, ping error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator.InitValidator()

	engine := gin.New()
	engine.Use(middleware.ErrorHandler(zap.NewNop()))

	restaurants := v1.NewRestaurantHandler(svc)
	trends := v1.NewAnalyticsHandler(svc)
	health := v1.NewHealthHandler(stubPinger{err: ping}, "test")

	engine.GET("/ready", health.Ready)
	api := engine.Group("/api")
	api.GET("/getRestaurent", restaurants.List)
	api.GET("/restaurants/:id", restaurants.Get)
	api.GET("/facets", restaurants.Facets)
	api.GET("/top", trends.Top)
	api.GET("/:id/trends", trends.Trends)
	api.GET("/:id/trends/summary", trends.TrendSummary)
	return engine
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestDirectory_Success(t *testing.T) {
	svc := new(MockService)
	svc.On("Directory", mock.Anything, analytics.DirectoryParams{
		Search: "pizza", SortBy: "name", Order: "desc", Page: "2", Limit: "5",
	}).Return(&analytics.DirectoryPage{
		Data:       []model.Restaurant{{ID: 7, Name: "Pizza Point", Location: "Pune", Cuisine: "Italian"}},
		Pagination: analytics.Pagination{Total: 6, Page: 2, Pages: 2},
	}, nil)

	w := get(setupRouter(svc, nil), "/api/getRestaurent?search=pizza&sortBy=name&order=desc&page=2&limit=5")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"data": [{"id": 7, "name": "Pizza Point", "location": "Pune", "cuisine": "Italian"}],
		"pagination": {"total": 6, "page": 2, "pages": 2}
	}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestDirectory_BindingValidation(t *testing.T) {
	svc := new(MockService)

	w := get(setupRouter(svc, nil), "/api/getRestaurent?order=sideways")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Errors, "order")
	svc.AssertNotCalled(t, "Directory", mock.Anything, mock.Anything)
}

func TestDirectory_ServiceValidation(t *testing.T) {
	svc := new(MockService)
	svc.On("Directory", mock.Anything, mock.Anything).
		Return(nil, &analytics.ValidationError{Field: "sortBy", Reason: "must be one of id, name, location, cuisine"})

	w := get(setupRouter(svc, nil), "/api/getRestaurent?sortBy=rating")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"sortBy"`)
}

func TestTrends_Success(t *testing.T) {
	peak := 10
	svc := new(MockService)
	svc.On("Trends", mock.Anything, analytics.TrendParams{RestaurantID: "10", StartDate: "2024-03-01", EndDate: "2024-03-02"}).
		Return([]analytics.TrendPoint{
			{Date: "2024-03-01", Orders: 3, Revenue: decimal.NewFromInt(230), AvgOrderValue: 77, PeakHour: &peak},
			{Date: "2024-03-02", Orders: 1, Revenue: decimal.RequireFromString("40.5"), AvgOrderValue: 41},
		}, nil)

	w := get(setupRouter(svc, nil), "/api/10/trends?start_date=2024-03-01&end_date=2024-03-02")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"date": "2024-03-01", "orders": 3, "revenue": 230, "avg_order_value": 77, "peak_hour": 10},
		{"date": "2024-03-02", "orders": 1, "revenue": 40.5, "avg_order_value": 41, "peak_hour": null}
	]`, w.Body.String())
}

func TestTrends_EmptyIsArray(t *testing.T) {
	svc := new(MockService)
	svc.On("Trends", mock.Anything, mock.Anything).Return([]analytics.TrendPoint{}, nil)

	w := get(setupRouter(svc, nil), "/api/10/trends")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestTrends_BadID(t *testing.T) {
	svc := new(MockService)
	svc.On("Trends", mock.Anything, analytics.TrendParams{RestaurantID: "abc"}).
		Return(nil, &analytics.ValidationError{Field: "id", Reason: "must be a positive integer"})

	w := get(setupRouter(svc, nil), "/api/abc/trends")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrends_StoreUnavailable(t *testing.T) {
	svc := new(MockService)
	svc.On("Trends", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("scan orders: %w: %w", analytics.ErrStoreUnavailable, errors.New("database is locked")))

	w := get(setupRouter(svc, nil), "/api/10/trends")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "locked")
}

func TestTrendSummary(t *testing.T) {
	peak := 13
	svc := new(MockService)
	svc.On("TrendSummary", mock.Anything, analytics.TrendParams{RestaurantID: "10"}).
		Return(&analytics.TrendSummary{RestaurantID: 10, Days: 2, Orders: 4, Revenue: decimal.NewFromInt(270), AvgOrderValue: 68, PeakHour: &peak}, nil)

	w := get(setupRouter(svc, nil), "/api/10/trends/summary")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"restaurant_id": 10, "days": 2, "orders": 4, "revenue": 270, "avg_order_value": 68, "peak_hour": 13}`, w.Body.String())
}

func TestTop(t *testing.T) {
	svc := new(MockService)
	svc.On("Leaderboard", mock.Anything, analytics.LeaderboardParams{StartDate: "2024-03-01", Limit: "2"}).
		Return([]analytics.LeaderboardEntry{
			{RestaurantID: 2, Name: "B", Revenue: decimal.NewFromInt(800)},
			{RestaurantID: 99, Name: "Unknown restaurant #99", Revenue: decimal.NewFromInt(500), Orphan: true},
		}, nil)

	w := get(setupRouter(svc, nil), "/api/top?start_date=2024-03-01&limit=2")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"restaurant_id": 2, "name": "B", "revenue": 800},
		{"restaurant_id": 99, "name": "Unknown restaurant #99", "revenue": 500, "orphan": true}
	]`, w.Body.String())
}

func TestRestaurant_NotFound(t *testing.T) {
	svc := new(MockService)
	svc.On("Restaurant", mock.Anything, "404").Return(nil, fmt.Errorf("restaurant 404: %w", analytics.ErrNotFound))

	w := get(setupRouter(svc, nil), "/api/restaurants/404")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFacets(t *testing.T) {
	svc := new(MockService)
	svc.On("Facets", mock.Anything).Return(&analytics.Facets{Cuisines: []string{"Indian"}, Locations: []string{"Delhi"}}, nil)

	w := get(setupRouter(svc, nil), "/api/facets")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cuisines": ["Indian"], "locations": ["Delhi"]}`, w.Body.String())
}

func TestReady(t *testing.T) {
	svc := new(MockService)

	assert.Equal(t, http.StatusOK, get(setupRouter(svc, nil), "/ready").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(setupRouter(svc, errors.New("down")), "/ready").Code)
}
