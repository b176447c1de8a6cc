// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/swellctl.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Table names - single source of truth, matches migrations
// --------------------------------------------------------------------------

const (
	SpotsTable         = "spots"
	RegionsTable       = "regions"
	SchedulingsTable   = "schedulings"
	NotificationsTable = "notifications"
	DedupeTable        = "notification_dedupe"
	UserDevicesTable   = "user_devices"

	// DefaultTideCollection is the default table backing the tide document
	// cache. Overridable so staging can point at a scratch collection.
	DefaultTideCollection = "tide_cache"
)

// --------------------------------------------------------------------------
// Config struct - populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Forecast & tide providers
	MarineBaseURL string
	TideBaseURL   string
	TideAPIKey    string
	ProviderRPM   int
	ForecastDays  int

	// Tide cache
	TideCacheTTL        time.Duration
	TideCacheCollection string

	// Notification scheduler
	TickInterval     time.Duration
	TickBudget       time.Duration
	SchedulerWorkers int
	DefaultTimezone  string

	// Push delivery
	FCMCredentialsFile string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", envOr("SWELLWATCH_DATABASE_URL", ""))
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or SWELLWATCH_DATABASE_URL must be set")
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		MarineBaseURL: envOr("MARINE_BASE_URL", "https://marine-api.open-meteo.com/v1"),
		TideBaseURL:   envOr("TIDE_BASE_URL", "https://api.stormglass.io/v2"),
		TideAPIKey:    envOr("TIDE_API_KEY", ""),
		ProviderRPM:   envInt("PROVIDER_REQUESTS_PER_MINUTE", 60),
		ForecastDays:  envInt("FORECAST_DAYS", 5),

		TideCacheTTL:        time.Duration(envInt("TIDE_CACHE_TTL_HOURS", 24)) * time.Hour,
		TideCacheCollection: envOr("TIDE_CACHE_COLLECTION", DefaultTideCollection),

		TickInterval:     time.Duration(envInt("SCHEDULER_TICK_MINUTES", 10)) * time.Minute,
		TickBudget:       time.Duration(envInt("SCHEDULER_TICK_BUDGET_SECONDS", 300)) * time.Second,
		SchedulerWorkers: envInt("SCHEDULER_WORKERS", 4),
		DefaultTimezone:  envOr("DEFAULT_TIMEZONE", "America/Sao_Paulo"),

		FCMCredentialsFile: envOr("FIREBASE_CREDENTIALS_FILE", ""),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
