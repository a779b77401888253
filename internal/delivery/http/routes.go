package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/snaplens/gateway/config"
	"github.com/snaplens/gateway/internal/domain"
	"github.com/snaplens/gateway/internal/routes"
)

// SetupRouter creates and configures the Gin router. limiter may be nil to
// disable rate limiting.
func SetupRouter(cfg *config.Config, handler *Handler, limiter RateLimiter) (*gin.Engine, error) {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	// Forwarding headers only count from listed proxies; the rate limiter
	// keys on ClientIP
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	api := router.Group("/api")
	if limiter != nil {
		api.Use(RateLimitMiddleware(limiter))
	}
	{
		api.POST("/detect", handler.Detect)
		api.POST("/opt-out", handler.OptOut)
		api.POST("/subscription/checkout", handler.Checkout)
	}

	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, domain.ErrorBody{Error: "method not allowed"})
	})

	// Everything else under the API prefix goes straight to the backend
	notFound := func(c *gin.Context) {
		c.JSON(http.StatusNotFound, domain.ErrorBody{Error: "not found"})
	}
	if !cfg.Routes.Enabled {
		router.NoRoute(notFound)
		return router, nil
	}

	rule, err := routes.Resolve(cfg.Backend.Origin, cfg.Routes.Prefix)
	if err != nil {
		return nil, err
	}
	proxy := routes.NewProxy(rule)
	log.Info().Str("rule", rule.String()).Msg("static route enabled")

	handlers := []gin.HandlerFunc{func(c *gin.Context) {
		if !rule.Match(c.Request.URL.Path) {
			notFound(c)
			c.Abort()
		}
	}}
	if limiter != nil {
		handlers = append(handlers, RateLimitMiddleware(limiter))
	}
	handlers = append(handlers, func(c *gin.Context) {
		log.Debug().
			Str("path", c.Request.URL.Path).
			Str("destination", rule.Destination(c.Request.URL.Path, c.Request.URL.RawQuery)).
			Msg("static route")
		proxy.ServeHTTP(c.Writer, c.Request)
	})
	router.NoRoute(handlers...)

	return router, nil
}
