package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Environment   string
	Port          string
	DatabaseURL   string
	JWTSecret     string
	JWTExpiration int

	// Marketplace API Configuration
	UpstreamAPIURL  string
	AssetBaseURL    string
	UpstreamTimeout time.Duration
	FallbackEnabled bool
	CatalogCacheTTL time.Duration

	// Checkout Configuration
	StandardShipping int64
	ExpressShipping  int64
	Currency         string

	// Session Configuration
	SessionCookieName   string
	SessionCookieSecure bool

	// File Upload Configuration
	MaxFileSize      int64
	AllowedFileTypes []string

	// Rate Limiting Configuration
	RateLimitRequests int
	RateLimitWindow   int

	// Logging Configuration
	LogLevel string

	// CORS Configuration
	AllowedOrigins  []string
	AllowAllOrigins bool

	// Metrics Configuration
	EnableMetrics bool

	// Maintenance Configuration
	CleanupInterval time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	environment := getEnv("ENVIRONMENT", "development")

	return &Config{
		Environment:   environment,
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", "agrimarket.db"),
		JWTSecret:     getEnv("JWT_SECRET", "your-super-secret-jwt-key-change-in-production"),
		JWTExpiration: getEnvAsInt("JWT_EXPIRATION", 24*60*60), // 24 hours in seconds

		// The storefront historically read NEXT_PUBLIC_* variables, keep them as aliases
		UpstreamAPIURL:  getEnv("API_URL", getEnv("NEXT_PUBLIC_API_URL", "http://localhost:8000/api")),
		AssetBaseURL:    getEnv("ASSET_URL", getEnv("NEXT_PUBLIC_URL", "http://localhost:8000")),
		UpstreamTimeout: getEnvAsDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		FallbackEnabled: getEnvAsBool("FALLBACK_ENABLED", environment != "production"),
		CatalogCacheTTL: getEnvAsDuration("CATALOG_CACHE_TTL", 30*time.Second),

		StandardShipping: getEnvAsInt64("SHIPPING_STANDARD", 1000),
		ExpressShipping:  getEnvAsInt64("SHIPPING_EXPRESS", 2500),
		Currency:         getEnv("CURRENCY", "FCFA"),

		SessionCookieName:   getEnv("SESSION_COOKIE_NAME", "agrimarket_session"),
		SessionCookieSecure: getEnvAsBool("SESSION_COOKIE_SECURE", environment == "production"),

		MaxFileSize:      getEnvAsInt64("MAX_FILE_SIZE", 5*1024*1024), // 5MB
		AllowedFileTypes: []string{"image/jpeg", "image/png", "image/webp"},

		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 600),
		RateLimitWindow:   getEnvAsInt("RATE_LIMIT_WINDOW", 60),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		AllowedOrigins:  getEnvAsStringSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		AllowAllOrigins: getEnvAsBool("ALLOW_ALL_ORIGINS", false),

		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),

		CleanupInterval: getEnvAsDuration("CLEANUP_INTERVAL", time.Hour),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		// bare numbers are seconds
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("database URL is required")
	}
	if c.UpstreamAPIURL == "" {
		return fmt.Errorf("marketplace API URL is required")
	}
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive")
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup interval must be positive")
	}
	if c.StandardShipping < 0 || c.ExpressShipping < 0 {
		return fmt.Errorf("shipping costs cannot be negative")
	}

	return nil
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %s, DatabaseURL: %s, UpstreamAPIURL: %s, FallbackEnabled: %t}",
		c.Environment, c.Port, c.DatabaseURL, c.UpstreamAPIURL, c.FallbackEnabled)
}
