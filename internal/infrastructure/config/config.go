package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverOracle   = "oracle"
	DBDriverMemory   = "memory"

	MarketDataProviderWebApp     = "webapp"
	MarketDataProviderYFinance   = "yfinance"
	MarketDataProviderTwelveData = "twelvedata"
	MarketDataProviderFinnhub    = "finnhub"
)

type Config struct {
	ServerPort             string
	ServerHost             string
	LogLevel               string
	DBDriver               string
	DBDSN                  string
	MarketDataProvider     string
	TickersURL             string
	YFinanceBaseURL        string
	TwelveDataAPIKey       string
	FinnhubAPIKey          string
	PriceRefreshInterval   time.Duration
	// BackupSchedule is a cron spec; empty disables scheduled backups.
	BackupSchedule         string
	BackupDir              string
	ProjectionDiscountRate float64
	DefaultReturnRate      float64
}

func Load() (*Config, error) {
	driver := strings.ToLower(getEnvOrDefault("DB_DRIVER", DBDriverPostgres))
	switch driver {
	case DBDriverPostgres, DBDriverOracle, DBDriverMemory:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", driver)
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" && driver != DBDriverMemory {
		return nil, fmt.Errorf("DB_DSN environment variable is required")
	}

	provider := strings.ToLower(getEnvOrDefault("MARKET_DATA_PROVIDER", MarketDataProviderWebApp))
	tickersURL := os.Getenv("TICKERS_URL")
	switch provider {
	case MarketDataProviderWebApp:
		if tickersURL == "" {
			return nil, fmt.Errorf("TICKERS_URL environment variable is required for webapp provider")
		}
	case MarketDataProviderYFinance:
	case MarketDataProviderTwelveData:
		if os.Getenv("TWELVE_DATA_API_KEY") == "" {
			return nil, fmt.Errorf("TWELVE_DATA_API_KEY environment variable is required for twelvedata provider")
		}
	case MarketDataProviderFinnhub:
		if os.Getenv("FINNHUB_API_KEY") == "" {
			return nil, fmt.Errorf("FINNHUB_API_KEY environment variable is required for finnhub provider")
		}
	default:
		return nil, fmt.Errorf("unsupported MARKET_DATA_PROVIDER: %s", provider)
	}

	refreshInterval, err := time.ParseDuration(getEnvOrDefault("PRICE_REFRESH_INTERVAL", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PRICE_REFRESH_INTERVAL: %w", err)
	}

	discountRate, err := getFloatOrDefault("PROJECTION_DISCOUNT_RATE", 0.06)
	if err != nil {
		return nil, err
	}
	returnRate, err := getFloatOrDefault("DEFAULT_RETURN_RATE", 0.12)
	if err != nil {
		return nil, err
	}

	backupSchedule, ok := os.LookupEnv("BACKUP_SCHEDULE")
	if !ok {
		backupSchedule = "@daily"
	}

	return &Config{
		ServerPort:             getEnvOrDefault("SERVER_PORT", "8080"),
		ServerHost:             getEnvOrDefault("SERVER_HOST", "localhost"),
		LogLevel:               getEnvOrDefault("LOG_LEVEL", "info"),
		DBDriver:               driver,
		DBDSN:                  dsn,
		MarketDataProvider:     provider,
		TickersURL:             tickersURL,
		YFinanceBaseURL:        getEnvOrDefault("YFINANCE_BASE_URL", "http://localhost:8000"),
		TwelveDataAPIKey:       os.Getenv("TWELVE_DATA_API_KEY"),
		FinnhubAPIKey:          os.Getenv("FINNHUB_API_KEY"),
		PriceRefreshInterval:   refreshInterval,
		BackupSchedule:         strings.TrimSpace(backupSchedule),
		BackupDir:              getEnvOrDefault("BACKUP_DIR", "./backup"),
		ProjectionDiscountRate: discountRate,
		DefaultReturnRate:      returnRate,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
