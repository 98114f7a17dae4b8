package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/bonesdao/onboarding/internal/adapter"
	"github.com/bonesdao/onboarding/internal/api/server"
	"github.com/bonesdao/onboarding/internal/auth"
	"github.com/bonesdao/onboarding/internal/config"
	"github.com/bonesdao/onboarding/internal/ledger"
	"github.com/bonesdao/onboarding/internal/logger"
	"github.com/bonesdao/onboarding/internal/messaging"
	"github.com/bonesdao/onboarding/internal/metrics"
	"github.com/bonesdao/onboarding/internal/onboarding"
	"github.com/bonesdao/onboarding/internal/providers/jetstream"
	"github.com/bonesdao/onboarding/internal/ratelimit"
	"github.com/bonesdao/onboarding/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "onboarding-api",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting onboarding API")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	dataStore := store.NewPGStore(db)
	clock := adapter.NewClock()
	m := metrics.New()

	// Events are optional; without a broker they are dropped
	publisher := messaging.NewNoopPublisher()
	if cfg.NATS.URL != "" {
		publisher, err = jetstream.NewPublisher(ctx, jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, adapter.NewNatsJetStream())
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		logger.InfoCtx(ctx, "Connected to NATS", zap.String("stream", cfg.NATS.StreamName))
	} else {
		logger.WarnCtx(ctx, "NATS not configured, events will not be published")
	}
	defer publisher.Close()

	gateway, err := auth.NewGateway(auth.Config{
		Secret:          cfg.Auth.JWTSecret,
		AccessTokenTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	}, dataStore, clock)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create auth gateway", zap.Error(err))
	}

	onboardingService := onboarding.NewService(onboarding.Config{
		Referrers: cfg.Onboarding.Referrers,
	}, dataStore, publisher, clock, m)
	transactionLedger := ledger.New(dataStore, publisher, clock, m)

	serverConfig := server.Config{
		Debug:          cfg.Debug,
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeout) * time.Second,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
	}
	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter, err = newRateLimiter(cfg.RateLimit, clock)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create rate limiter", zap.Error(err))
		}
		defer func() { _ = limiter.Close() }()
	}

	srv := server.New(serverConfig, dataStore, onboardingService, gateway, transactionLedger, limiter, m)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	logger.Info("API server stopped")
}

// newRateLimiter builds the open-endpoint limiter, backed by redis when an address is set
func newRateLimiter(cfg config.RateLimitConfig, clock adapter.Clock) (ratelimit.Limiter, error) {
	rules := make(map[string]ratelimit.Rule, len(cfg.Routes))
	for route, limit := range cfg.Routes {
		rules[route] = ratelimit.Rule{
			RequestsPerMinute: limit.RequestsPerMinute,
			Burst:             limit.Burst,
		}
	}

	var rc adapter.RedisClient
	if cfg.RedisAddr != "" {
		rc = adapter.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	}

	return ratelimit.New(ratelimit.Config{
		KeyPrefix: cfg.KeyPrefix,
		Rules:     rules,
	}, rc, clock)
}
