package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the scoring engine.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Scoring
	Scoring ScoringConfig

	// Backtest
	Backtest BacktestConfig

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

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ScoringConfig holds tunables for the scoring pipeline.
type ScoringConfig struct {
	// Worker pool size for per-ticker scoring. 0 means GOMAXPROCS.
	Workers int

	// Sector distribution parameters
	MinSampleSize  int     // below this a distribution is flagged degraded
	WinsorizeSigma float64 // clip beyond this many standard deviations

	// Stabilizer parameters
	SmoothingAlpha  float64 // weight on the new raw score
	MinChangeFloor  float64 // absolute change below which the score holds
	EventLookback   time.Duration
	InsiderEventUSD float64 // insider trade value that counts as a reset event

	// Confidence thresholds (completeness percentages)
	HighCompleteness   float64
	MediumCompleteness float64
	LowCompleteness    float64

	// Hard floor on core factor availability
	MinCoreQuality   int
	MinCoreValuation int
}

// BacktestConfig holds defaults for backtest runs.
type BacktestConfig struct {
	Workers            int
	TransactionCostBps float64
	SlippageBps        float64
	Benchmark          string
}

// Load reads configuration from environment variables. A .env file is
// loaded first if one can be found next to the working directory or the
// executable.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "icengine"),
			User:            getEnv("DB_USER", "icengine"),
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
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		Scoring: ScoringConfig{
			Workers:            getEnvAsInt("SCORING_WORKERS", 0),
			MinSampleSize:      getEnvAsInt("SECTOR_MIN_SAMPLE", 5),
			WinsorizeSigma:     getEnvAsFloat("SECTOR_WINSORIZE_SIGMA", 3.0),
			SmoothingAlpha:     getEnvAsFloat("SCORE_SMOOTHING_ALPHA", 0.7),
			MinChangeFloor:     getEnvAsFloat("SCORE_MIN_CHANGE", 0.5),
			EventLookback:      getEnvAsDuration("SCORE_EVENT_LOOKBACK", "24h"),
			InsiderEventUSD:    getEnvAsFloat("INSIDER_EVENT_USD", 100000),
			HighCompleteness:   getEnvAsFloat("CONFIDENCE_HIGH_PCT", 90),
			MediumCompleteness: getEnvAsFloat("CONFIDENCE_MEDIUM_PCT", 70),
			LowCompleteness:    getEnvAsFloat("CONFIDENCE_LOW_PCT", 50),
			MinCoreQuality:     getEnvAsInt("MIN_CORE_QUALITY", 3),
			MinCoreValuation:   getEnvAsInt("MIN_CORE_VALUATION", 1),
		},

		Backtest: BacktestConfig{
			Workers:            getEnvAsInt("BACKTEST_WORKERS", 4),
			TransactionCostBps: getEnvAsFloat("BACKTEST_COST_BPS", 10),
			SlippageBps:        getEnvAsFloat("BACKTEST_SLIPPAGE_BPS", 5),
			Benchmark:          getEnv("BACKTEST_BENCHMARK", "SPY"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Scoring.SmoothingAlpha <= 0 || c.Scoring.SmoothingAlpha > 1 {
		return fmt.Errorf("SCORE_SMOOTHING_ALPHA must be in (0, 1]")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

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
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
