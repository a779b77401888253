package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/snaplens/gateway/config"
	httpDelivery "github.com/snaplens/gateway/internal/delivery/http"
	"github.com/snaplens/gateway/internal/infrastructure/backend"
	"github.com/snaplens/gateway/internal/infrastructure/ratelimit"
	"github.com/snaplens/gateway/internal/usecase"
)

const (
	shutdownTimeout = 10 * time.Second
	limiterIdleTTL  = 30 * time.Minute
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("shutdown with error")
		os.Exit(1)
	}
	log.Info().Msg("shutdown complete")
}

// run owns every resource of the server so deferred cleanup completes
// before main exits
func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogging(cfg.Log)

	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("backend", cfg.Backend.Origin).
		Msg("starting SnapLens gateway v1.0.0")

	// Initialize infrastructure dependencies
	backendClient := backend.NewClient(cfg.Backend.Origin)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		backendClient.SetDebug(true)
		log.Debug().Msg("backend client debug mode enabled")
	}

	// Initialize usecase layer
	gatewayService := usecase.NewGatewayService(
		backendClient,
		usecase.GatewayServiceConfig{
			DetectPath:   cfg.Backend.DetectPath,
			OptOutPath:   cfg.Backend.OptOutPath,
			CheckoutPath: cfg.Backend.CheckoutPath,
			Timeout:      cfg.Backend.Timeout,
		},
	)

	var limiter httpDelivery.RateLimiter
	if cfg.RateLimit.PerIP > 0 {
		store := ratelimit.NewStore(cfg.RateLimit.PerIP, cfg.RateLimit.Burst, limiterIdleTTL)
		defer store.Close()
		limiter = store
		log.Info().Int("per_minute", cfg.RateLimit.PerIP).Int("burst", cfg.RateLimit.Burst).Msg("rate limiting enabled")
	}

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(gatewayService, cfg.Upload.MaxBytes)

	// Setup router
	router, err := httpDelivery.SetupRouter(cfg, handler, limiter)
	if err != nil {
		return fmt.Errorf("failed to set up router: %w", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Create context that cancels on SIGINT or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// setupLogging configures the global zerolog logger
func setupLogging(cfg config.LogConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}
