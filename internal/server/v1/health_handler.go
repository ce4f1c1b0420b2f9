package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/resto-analytics/pkg/api"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	startTime time.Time
	version   string
	store     Pinger
	timeout   time.Duration
}

func NewHealthHandler(store Pinger, version string) *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
		version:   version,
		store:     store,
		timeout:   2 * time.Second,
	}
}

// Health returns the health status and uptime of the API.
//
// This endpoint is used by load balancers and monitoring systems
// to verify the service is running.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Status:  "healthy",
		Uptime:  time.Since(h.startTime).String(),
		Time:    time.Now().UTC().Format(time.RFC3339),
		Version: h.version,
	})
}

// Ready checks that the record store answers.
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, api.HealthResponse{
			Status: "unavailable",
			Error:  "record store unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, api.HealthResponse{Status: "ready"})
}
