package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP settings
	Port     int
	BasePath string

	// Source and lexicon settings
	SourcesConfigPath string
	LexiconPath       string // empty = built-in lexicon
	NewsLimit         int

	// Cache settings
	CacheTTL        time.Duration // fresh window, also the s-maxage directive
	CacheStaleTTL   time.Duration // extra window served while revalidating
	RefreshSchedule string        // cron spec; empty disables background refresh
	RedisAddr       string        // empty = in-memory cache
	RedisPassword   string
	RedisDB         int

	// Fetch settings
	RequestTimeout     time.Duration
	RetryAttempts      int
	RetryDelay         time.Duration
	FetchConcurrency   int
	FetchRatePerSecond float64
	FetchBudgetPerHour int

	// App settings
	Debug     bool
	LogFormat string
}

func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnvIntOrDefault("PORT", 8080),
		BasePath:           getEnvOrDefault("BASE_PATH", "/ai-news"),
		SourcesConfigPath:  getEnvOrDefault("SOURCES_CONFIG_PATH", "configs/sources.yaml"),
		LexiconPath:        os.Getenv("LEXICON_PATH"),
		NewsLimit:          getEnvIntOrDefault("NEWS_LIMIT", 20),
		CacheTTL:           getEnvDurationOrDefault("CACHE_TTL", 5*time.Minute),
		CacheStaleTTL:      getEnvDurationOrDefault("CACHE_STALE_TTL", 10*time.Minute),
		RefreshSchedule:    getEnvOrDefault("REFRESH_SCHEDULE", "@every 5m"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            getEnvIntOrDefault("REDIS_DB", 0),
		RequestTimeout:     getEnvDurationOrDefault("REQUEST_TIMEOUT", 15*time.Second),
		RetryAttempts:      getEnvIntOrDefault("RETRY_ATTEMPTS", 3),
		RetryDelay:         getEnvDurationOrDefault("RETRY_DELAY", time.Second),
		FetchConcurrency:   getEnvIntOrDefault("FETCH_CONCURRENCY", 10),
		FetchRatePerSecond: getEnvFloatOrDefault("FETCH_RATE_PER_SECOND", 20),
		FetchBudgetPerHour: getEnvIntOrDefault("FETCH_BUDGET_PER_HOUR", 5000),
		Debug:              os.Getenv("DEBUG") == "true",
		LogFormat:          getEnvOrDefault("LOG_FORMAT", "text"),
	}

	// REFRESH_SCHEDULE="" must disable refresh, so check presence explicitly.
	if v, ok := os.LookupEnv("REFRESH_SCHEDULE"); ok {
		cfg.RefreshSchedule = strings.TrimSpace(v)
	}

	cfg.BasePath = normalizeBasePath(cfg.BasePath)

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// normalizeBasePath returns "" or a path with a leading and no trailing slash.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.NewsLimit <= 0 {
		return fmt.Errorf("NEWS_LIMIT must be positive, got %d", c.NewsLimit)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	if c.CacheStaleTTL < 0 {
		return fmt.Errorf("CACHE_STALE_TTL must not be negative, got %s", c.CacheStaleTTL)
	}
	if c.FetchConcurrency <= 0 {
		return fmt.Errorf("FETCH_CONCURRENCY must be positive, got %d", c.FetchConcurrency)
	}
	if c.RetryAttempts <= 0 {
		return fmt.Errorf("RETRY_ATTEMPTS must be positive, got %d", c.RetryAttempts)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be 'text' or 'json'")
	}
	return nil
}
