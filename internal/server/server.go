package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/nulzo/resto-analytics/internal/analytics"
	"github.com/nulzo/resto-analytics/internal/config"
	"github.com/nulzo/resto-analytics/internal/server/middleware"
	"github.com/nulzo/resto-analytics/internal/server/validator"
	v1 "github.com/nulzo/resto-analytics/internal/server/v1"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const readHeaderTimeout = 5 * time.Second

// Deps are the collaborators the HTTP layer serves.
type Deps struct {
	Service analytics.Service
	Store   v1.Pinger
	// Registry receives the HTTP metrics and is exposed on /metrics.
	Registry *prometheus.Registry
	// Limiter may be nil to disable per-client rate limiting.
	Limiter *middleware.RateLimiter
	Version string
}

type Server struct {
	router *gin.Engine
	server *http.Server
	config *config.Config
	logger *zap.Logger
	deps   Deps
}

func New(cfg *config.Config, logger *zap.Logger, deps Deps) *Server {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}

	validator.InitValidator()

	engine := gin.New()
	_ = engine.SetTrustedProxies(nil)

	engine.Use(ginzap.RecoveryWithZap(logger, true))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(logger))
	engine.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))
	if cfg.Tracing.Enabled {
		engine.Use(middleware.Tracing(cfg.Tracing.ServiceName))
	}
	engine.Use(middleware.NewMetrics(deps.Registry).Middleware())

	s := &Server{
		router: engine,
		config: cfg,
		logger: logger,
		deps:   deps,
	}
	s.SetupRoutes()

	s.server = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	c.AddAllowHeaders(middleware.RequestIDHeader)
	c.AddExposeHeaders(middleware.RequestIDHeader, "Retry-After")
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Run serves until ctx is cancelled, then drains in-flight requests within
// the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server", zap.Duration("timeout", s.config.Server.ShutdownTimeout))
	}

	// ctx is already cancelled; shutdown gets a fresh deadline
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.logger.Info("HTTP server stopped gracefully")
	return <-errCh
}
