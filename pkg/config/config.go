package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// CORS origins allowed by the API (dev frontend hosts)
	CORSOrigins []string

	Database  DatabaseConfig
	Redis     RedisConfig
	FMP       FMPConfig
	Auth      AuthConfig
	Ingest    IngestConfig
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration. Redis is optional; when disabled
// the cache degrades to pass-through.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// FMPConfig holds Financial Modeling Prep API configuration.
type FMPConfig struct {
	APIKey  string
	BaseURL string

	// RequestsPerMinute matches the FMP plan limit (starter: 300/min).
	RequestsPerMinute int
	Timeout           time.Duration
}

// AuthConfig holds login and token configuration.
type AuthConfig struct {
	AppPassword string
	SecretKey   string
	TokenTTL    time.Duration
}

// IngestConfig holds ingestion tuning.
type IngestConfig struct {
	// TargetExchanges filters the upstream stock list by exchangeShortName.
	TargetExchanges []string

	// Workers is the size of the per-company worker pool. Keep small; the
	// effective throughput is bounded by the FMP rate limit anyway.
	Workers int

	// StatementYears is how many annual periods to pull per series.
	// 7 = 1 current + 5 for the trailing average + 1 buffer.
	StatementYears int

	// QuoteBatchSize is how many tickers go into one batch quote request.
	QuoteBatchSize int
}

// SchedulerConfig holds cron schedules (6-field, with seconds).
type SchedulerConfig struct {
	Enabled           bool
	FullIngestionSpec string
	QuoteRefreshSpec  string
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		CORSOrigins: getEnvAsSlice("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "screener"),
			User:            getEnv("DB_USER", "screener"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		FMP: FMPConfig{
			APIKey:            getEnv("FMP_API_KEY", ""),
			BaseURL:           getEnv("FMP_BASE_URL", "https://financialmodelingprep.com/api"),
			RequestsPerMinute: getEnvAsInt("FMP_REQUESTS_PER_MINUTE", 300),
			Timeout:           getEnvAsDuration("FMP_TIMEOUT", "30s"),
		},

		Auth: AuthConfig{
			AppPassword: getEnv("APP_PASSWORD", "changeme"),
			SecretKey:   getEnv("SECRET_KEY", "dev-secret-change-in-production"),
			TokenTTL:    getEnvAsDuration("TOKEN_TTL", "72h"),
		},

		Ingest: IngestConfig{
			TargetExchanges: getEnvAsSlice("TARGET_EXCHANGES", []string{
				"NYSE", "NASDAQ", "AMEX", "TSX", "LSE", "XETRA", "EURONEXT",
				"SIX", "OMX", "OSE", "TSE", "ASX", "TASE", "SGX", "KSE", "HKSE",
			}),
			Workers:        getEnvAsInt("INGEST_WORKERS", 4),
			StatementYears: getEnvAsInt("INGEST_STATEMENT_YEARS", 7),
			QuoteBatchSize: getEnvAsInt("INGEST_QUOTE_BATCH_SIZE", 50),
		},

		Scheduler: SchedulerConfig{
			Enabled:           getEnvAsBool("SCHEDULER_ENABLED", true),
			FullIngestionSpec: getEnv("SCHEDULE_FULL_INGESTION", "0 0 5 * * *"),
			QuoteRefreshSpec:  getEnv("SCHEDULE_QUOTE_REFRESH", "0 0 */4 * * *"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks required configuration values.
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Env == "production" {
		if c.Auth.SecretKey == "dev-secret-change-in-production" {
			return fmt.Errorf("SECRET_KEY must be set in production")
		}
		if c.Auth.AppPassword == "changeme" {
			return fmt.Errorf("APP_PASSWORD must be set in production")
		}
		if c.FMP.APIKey == "" {
			return fmt.Errorf("FMP_API_KEY must be set in production")
		}
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}

	if c.Ingest.Workers < 1 {
		return fmt.Errorf("INGEST_WORKERS must be at least 1")
	}
	if c.Ingest.QuoteBatchSize < 1 {
		return fmt.Errorf("INGEST_QUOTE_BATCH_SIZE must be at least 1")
	}

	if c.FMP.RequestsPerMinute < 1 {
		return fmt.Errorf("FMP_REQUESTS_PER_MINUTE must be at least 1")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
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
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
