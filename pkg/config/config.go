package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Screening thresholds
	Screen ScreenConfig

	// Market data source
	Market MarketConfig

	// Ticker list source
	Tickers TickersConfig

	// Redis (optional fetch cache)
	Redis RedisConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// ScreenConfig holds the screening pipeline thresholds.
// Threaded explicitly into each stage; there are no package-level defaults.
type ScreenConfig struct {
	MinQualityPrice float64 // validator penny-stock floor (local currency)
	MinMarketCap    float64 // universe filter: minimum market cap
	MinPrice        float64 // universe filter: minimum share price
	RiskFreeRate    float64 // annualized, for Sharpe ratio
	Workers         int     // batch orchestrator pool size
	LookbackDays    int     // history window requested per symbol
	TopN            int     // picks shown after scoring
}

// MarketConfig holds market data source configuration
type MarketConfig struct {
	BaseURL        string  // Yahoo Finance API base
	SymbolSuffix   string  // exchange suffix appended to bare symbols
	RequestsPerSec float64 // outbound rate limit
	Timeout        time.Duration
}

// TickersConfig holds ticker list source configuration
type TickersConfig struct {
	EquityListURL   string // exchange's full equity list CSV
	ConstituentsURL string // index constituents page (HTML fallback)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8099"),
		Env:  getEnv("ENV", "development"),

		Screen: ScreenConfig{
			MinQualityPrice: getEnvAsFloat("SCREEN_MIN_QUALITY_PRICE", 5.0),
			MinMarketCap:    getEnvAsFloat("SCREEN_MIN_MARKET_CAP", 5e10),
			MinPrice:        getEnvAsFloat("SCREEN_MIN_PRICE", 10),
			RiskFreeRate:    getEnvAsFloat("SCREEN_RISK_FREE_RATE", 0.07),
			Workers:         getEnvAsInt("SCREEN_WORKERS", 10),
			LookbackDays:    getEnvAsInt("SCREEN_LOOKBACK_DAYS", 365),
			TopN:            getEnvAsInt("SCREEN_TOP_N", 5),
		},

		Market: MarketConfig{
			BaseURL:        getEnv("MARKET_BASE_URL", "https://query1.finance.yahoo.com"),
			SymbolSuffix:   getEnv("MARKET_SYMBOL_SUFFIX", ".NS"),
			RequestsPerSec: getEnvAsFloat("MARKET_REQUESTS_PER_SEC", 5),
			Timeout:        getEnvAsDuration("MARKET_TIMEOUT", "15s"),
		},

		Tickers: TickersConfig{
			EquityListURL:   getEnv("TICKERS_EQUITY_LIST_URL", "https://nsearchives.nseindia.com/content/equities/EQUITY_L.csv"),
			ConstituentsURL: getEnv("TICKERS_CONSTITUENTS_URL", ""),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Screen.Workers < 1 {
		return fmt.Errorf("SCREEN_WORKERS must be at least 1")
	}

	if c.Screen.MinQualityPrice <= 0 {
		return fmt.Errorf("SCREEN_MIN_QUALITY_PRICE must be positive")
	}

	if c.Screen.LookbackDays < 2 {
		return fmt.Errorf("SCREEN_LOOKBACK_DAYS must be at least 2")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
