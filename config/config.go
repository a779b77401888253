package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultBackendOrigin is used when no backend origin is configured
const DefaultBackendOrigin = "http://127.0.0.1:8000"

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Routes    RoutesConfig
	Upload    UploadConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	TrustedProxies []string `mapstructure:"trusted_proxies"` // empty: client IP is the peer address
}

// BackendConfig describes the detection service. Origin is shared by the
// gateway handlers and the static route proxy.
type BackendConfig struct {
	Origin       string        `mapstructure:"origin"`
	DetectPath   string        `mapstructure:"detect_path"`
	OptOutPath   string        `mapstructure:"opt_out_path"`
	CheckoutPath string        `mapstructure:"checkout_path"`
	Timeout      time.Duration `mapstructure:"timeout"` // 0 disables the outbound timeout
}

// RoutesConfig controls the static prefix rewrite to the backend
type RoutesConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Prefix  string `mapstructure:"prefix"`
}

// UploadConfig bounds incoming detection uploads
type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
	Burst int `mapstructure:"burst"`
}

// LogConfig selects zerolog level and output format
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/snaplens/")

	// Environment variable settings
	v.SetEnvPrefix("SNAPLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// NEXT_PUBLIC_API_URL is what the web frontend reads for the same origin;
	// API_URL is accepted too. Earlier names win.
	if err := v.BindEnv("backend.origin", "SNAPLENS_BACKEND_ORIGIN", "NEXT_PUBLIC_API_URL", "API_URL"); err != nil {
		return nil, fmt.Errorf("error binding backend origin: %w", err)
	}

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if strings.TrimSpace(config.Backend.Origin) == "" {
		config.Backend.Origin = DefaultBackendOrigin
	}
	config.Backend.Origin = strings.TrimRight(config.Backend.Origin, "/")

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env when present. Variables already set in the
// environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
	v.SetDefault("server.trusted_proxies", []string{})

	// Backend defaults
	v.SetDefault("backend.origin", DefaultBackendOrigin)
	v.SetDefault("backend.detect_path", "/api/detect")
	v.SetDefault("backend.opt_out_path", "/api/opt-out")
	v.SetDefault("backend.checkout_path", "/api/subscription/checkout")
	v.SetDefault("backend.timeout", "60s")

	// Static route defaults
	v.SetDefault("routes.enabled", true)
	v.SetDefault("routes.prefix", "/api/")

	v.SetDefault("upload.max_bytes", 20<<20)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)
	v.SetDefault("ratelimit.burst", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// validate validates the configuration
func validate(config *Config) error {
	origin, err := url.Parse(config.Backend.Origin)
	if err != nil {
		return fmt.Errorf("backend origin is not a valid URL: %w", err)
	}
	if (origin.Scheme != "http" && origin.Scheme != "https") || origin.Host == "" {
		return fmt.Errorf("backend origin must be an absolute http(s) URL, got: %s", config.Backend.Origin)
	}

	for name, path := range map[string]string{
		"detect_path":   config.Backend.DetectPath,
		"opt_out_path":  config.Backend.OptOutPath,
		"checkout_path": config.Backend.CheckoutPath,
	} {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("backend %s must start with '/', got: %q", name, path)
		}
	}

	if config.Backend.Timeout < 0 {
		return fmt.Errorf("backend timeout must not be negative, got: %s", config.Backend.Timeout)
	}

	if config.Routes.Enabled && (!strings.HasPrefix(config.Routes.Prefix, "/") || !strings.HasSuffix(config.Routes.Prefix, "/")) {
		return fmt.Errorf("routes prefix must start and end with '/', got: %q", config.Routes.Prefix)
	}

	if config.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload max_bytes must be positive, got: %d", config.Upload.MaxBytes)
	}

	if config.RateLimit.PerIP < 0 || config.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit values must not be negative")
	}

	if config.Log.Format != "console" && config.Log.Format != "json" {
		return fmt.Errorf("log format must be 'console' or 'json', got: %s", config.Log.Format)
	}

	return nil
}
