package server

import (
	"github.com/gin-gonic/gin"
	"github.com/nulzo/resto-analytics/internal/server/middleware"
	v1 "github.com/nulzo/resto-analytics/internal/server/v1"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.ErrorHandler(s.logger))

	// Probes and metrics are not rate limited
	healthHandler := v1.NewHealthHandler(s.deps.Store, s.deps.Version)
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/ready", healthHandler.Ready)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.deps.Registry, promhttp.HandlerOpts{})))

	api := s.router.Group("/api")
	if s.deps.Limiter != nil {
		api.Use(s.deps.Limiter.Middleware())
	}
	{
		restaurants := v1.NewRestaurantHandler(s.deps.Service)
		// getRestaurent keeps the historical misspelling for existing clients
		api.GET("/getRestaurent", restaurants.List)
		api.GET("/restaurants", restaurants.List)
		api.GET("/restaurants/:id", restaurants.Get)
		api.GET("/facets", restaurants.Facets)

		analyticsHandler := v1.NewAnalyticsHandler(s.deps.Service)
		api.GET("/top", analyticsHandler.Top)
		api.GET("/:id/trends", analyticsHandler.Trends)
		api.GET("/:id/trends/summary", analyticsHandler.TrendSummary)
	}
}
