package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Log       LogConfig
	PSX       PSXConfig
	Prices    PriceConfig
	Portfolio PortfolioConfig
	Security  SecurityConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Pretty bool   // console writer instead of JSON
}

// PSXConfig holds settings for the PSX data portal client.
type PSXConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second
	RateBurst int
}

// PriceConfig controls the tiered price cache and market fan-out.
type PriceConfig struct {
	CacheTTL          time.Duration
	EODCacheTTL       time.Duration
	FetchConcurrency  int
	MarketSymbolLimit int
	RefreshSchedule   string // cron schedule, empty disables the refresh job
}

// PortfolioConfig holds portfolio accounting settings.
type PortfolioConfig struct {
	OversellPolicy string // allow or reject
}

// SecurityConfig holds the API key guarding mutating endpoints.
type SecurityConfig struct {
	APIKey string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/psx_portfolio.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
		PSX: PSXConfig{
			BaseURL: strings.TrimRight(getEnv("PSX_BASE_URL", "https://dps.psx.com.pk"), "/"),
		},
		Prices: PriceConfig{
			RefreshSchedule: getEnv("PRICE_REFRESH_SCHEDULE", "@every 15m"),
		},
		Portfolio: PortfolioConfig{
			OversellPolicy: strings.ToLower(getEnv("OVERSELL_POLICY", "allow")),
		},
		Security: SecurityConfig{
			APIKey: os.Getenv("INTERNAL_API_KEY"),
		},
	}

	var err error
	if config.Log.Pretty, err = getBool("LOG_PRETTY", false); err != nil {
		return nil, err
	}
	if config.PSX.Timeout, err = getDuration("PSX_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if config.PSX.RateLimit, err = getFloat("PSX_RATE_LIMIT", 10); err != nil {
		return nil, err
	}
	if config.PSX.RateBurst, err = getInt("PSX_RATE_BURST", 5); err != nil {
		return nil, err
	}
	if config.Prices.CacheTTL, err = getDuration("PRICE_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if config.Prices.EODCacheTTL, err = getDuration("EOD_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if config.Prices.FetchConcurrency, err = getInt("FETCH_CONCURRENCY", 5); err != nil {
		return nil, err
	}
	if config.Prices.MarketSymbolLimit, err = getInt("MARKET_SYMBOL_LIMIT", 100); err != nil {
		return nil, err
	}

	if config.Prices.FetchConcurrency < 1 {
		return nil, fmt.Errorf("FETCH_CONCURRENCY must be at least 1, got %d", config.Prices.FetchConcurrency)
	}
	switch config.Portfolio.OversellPolicy {
	case "allow", "reject":
	default:
		return nil, fmt.Errorf("OVERSELL_POLICY must be allow or reject, got %q", config.Portfolio.OversellPolicy)
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// splitList splits a comma separated value, dropping empty entries.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
