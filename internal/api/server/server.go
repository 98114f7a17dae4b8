package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bonesdao/onboarding/internal/api/middleware"
	"github.com/bonesdao/onboarding/internal/api/rest"
	"github.com/bonesdao/onboarding/internal/auth"
	"github.com/bonesdao/onboarding/internal/ledger"
	"github.com/bonesdao/onboarding/internal/logger"
	"github.com/bonesdao/onboarding/internal/metrics"
	"github.com/bonesdao/onboarding/internal/onboarding"
	"github.com/bonesdao/onboarding/internal/ratelimit"
	"github.com/bonesdao/onboarding/internal/store"
)

// Config holds the server configuration
type Config struct {
	Debug          bool
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
	// TrustedProxies whose X-Forwarded-For is used as the client IP; empty trusts none
	TrustedProxies []string
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	store      store.Store
	onboarding onboarding.Service
	gateway    auth.Gateway
	ledger     ledger.Ledger
	limiter    ratelimit.Limiter
	metrics    *metrics.Metrics
	httpServer *http.Server
}

// New creates a new API server. A nil limiter leaves the open endpoints unlimited.
func New(cfg Config, st store.Store, svc onboarding.Service, gateway auth.Gateway, l ledger.Ledger, limiter ratelimit.Limiter, m *metrics.Metrics) *Server {
	return &Server{
		config:     cfg,
		store:      st,
		onboarding: svc,
		gateway:    gateway,
		ledger:     l,
		limiter:    limiter,
		metrics:    m,
	}
}

// Router builds the gin engine with the middleware chain and routes
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	if err := router.SetTrustedProxies(s.config.TrustedProxies); err != nil {
		logger.Warn("Invalid trusted proxies, trusting none", zap.Strings("trusted_proxies", s.config.TrustedProxies), zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics(s.metrics))
	router.Use(middleware.SetupCORS(s.config.AllowedOrigins))

	handler := rest.NewHandler(s.onboarding, s.gateway, s.ledger, s.store, s.metrics)
	rest.SetupRoutes(router, handler, s.gateway, s.limiter, s.metrics)

	return router
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	// Set Gin mode based on debug flag
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Info("Starting API server", zap.String("address", addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
