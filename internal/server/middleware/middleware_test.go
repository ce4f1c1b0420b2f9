package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/resto-analytics/internal/analytics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEngine(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID(), ErrorHandler(zap.NewNop()))
	engine.GET("/x", handler)
	return engine
}

func serve(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestErrorHandler_MapsAnalyticsErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &analytics.ValidationError{Field: "sortBy", Reason: "unknown"}, http.StatusBadRequest},
		{"not found", fmt.Errorf("restaurant 4: %w", analytics.ErrNotFound), http.StatusNotFound},
		{"store down", fmt.Errorf("scan: %w: %w", analytics.ErrStoreUnavailable, errors.New("timeout")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newEngine(func(c *gin.Context) { _ = c.Error(tt.err) })

			w := serve(engine, "/x")

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, float64(tt.status), body["status"])
			assert.Equal(t, "/x", body["instance"])
		})
	}
}

func TestErrorHandler_ValidationBody(t *testing.T) {
	engine := newEngine(func(c *gin.Context) {
		_ = c.Error(&analytics.ValidationError{Field: "start_date", Reason: "must be YYYY-MM-DD"})
	})

	w := serve(engine, "/x")

	var body struct {
		Title  string            `json:"title"`
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Validation Error", body.Title)
	assert.Equal(t, map[string]string{"start_date": "must be YYYY-MM-DD"}, body.Errors)
}

func TestErrorHandler_InternalDetailIsHidden(t *testing.T) {
	engine := newEngine(func(c *gin.Context) { _ = c.Error(errors.New("secret dsn leaked")) })

	w := serve(engine, "/x")

	assert.NotContains(t, w.Body.String(), "secret")
}

func TestRequestID(t *testing.T) {
	engine := newEngine(func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := serve(engine, "/x")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1, 2, time.Minute, zap.NewNop())
	engine := gin.New()
	engine.Use(rl.Middleware())
	engine.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(engine, "/x").Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute, zap.NewNop())
	rl.getLimiter("10.0.0.1")
	rl.clients["10.0.0.1"].lastSeen = time.Now().Add(-2 * time.Minute)
	rl.getLimiter("10.0.0.2")

	assert.Equal(t, 1, rl.Sweep())
	assert.Len(t, rl.clients, 1)
}

func TestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	engine := gin.New()
	engine.Use(m.Middleware())
	engine.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(engine, "/x")
	serve(engine, "/nope")

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "resto_http_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			counts[labels["route"]+" "+labels["status"]] = metric.GetCounter().GetValue()
		}
	}

	assert.Equal(t, map[string]float64{"/x 200": 1, "unmatched 404": 1}, counts)
}
