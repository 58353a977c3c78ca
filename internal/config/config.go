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
	Data      DataConfig
	Yahoo     YahooConfig
	Pipeline  PipelineConfig
	Scheduler SchedulerConfig
	Cache     CacheConfig
	Logging   LoggingConfig
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

// DataConfig points at the static ETF list and the bundled fallback dataset.
type DataConfig struct {
	ETFConfigPath string
	DatasetPath   string
}

// YahooConfig configures the chart endpoint and its transport.
type YahooConfig struct {
	ChartEndpoint string
	RelayURL      string
	Timeout       time.Duration
}

// PipelineConfig tunes the series pipeline.
type PipelineConfig struct {
	Concurrency    int
	SplitThreshold float64
}

// SchedulerConfig controls the background refresh.
type SchedulerConfig struct {
	RefreshSchedule string // standard 5-field cron spec, empty disables
	RefreshOnStart  bool
}

// Cache backends accepted by CACHE_BACKEND.
const (
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
)

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend       string // "sqlite" or "redis"
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// LoggingConfig configures the slog logger.
type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	timeout, err := getDuration("HTTP_TIMEOUT", 20*time.Second)
	if err != nil {
		return nil, err
	}
	concurrency, err := getInt("FETCH_CONCURRENCY", 8)
	if err != nil {
		return nil, err
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("FETCH_CONCURRENCY must be at least 1, got %d", concurrency)
	}
	threshold, err := getFloat("SPLIT_THRESHOLD", 7)
	if err != nil {
		return nil, err
	}
	if threshold <= 1 {
		return nil, fmt.Errorf("SPLIT_THRESHOLD must be greater than 1, got %v", threshold)
	}
	refreshOnStart, err := getBool("REFRESH_ON_START", true)
	if err != nil {
		return nil, err
	}
	redisDB, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/etf_dashboard.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Data: DataConfig{
			ETFConfigPath: getEnv("ETF_CONFIG_PATH", "./data/etfs.yaml"),
			DatasetPath:   getEnv("DATASET_PATH", "./data/etf-prices.json"),
		},
		Yahoo: YahooConfig{
			ChartEndpoint: getEnv("YAHOO_CHART_ENDPOINT", "https://query1.finance.yahoo.com/v8/finance/chart/"),
			RelayURL:      os.Getenv("YAHOO_RELAY_URL"),
			Timeout:       timeout,
		},
		Pipeline: PipelineConfig{
			Concurrency:    concurrency,
			SplitThreshold: threshold,
		},
		Scheduler: SchedulerConfig{
			RefreshSchedule: getEnvAllowEmpty("REFRESH_SCHEDULE", "30 18 * * 1-5"),
			RefreshOnStart:  refreshOnStart,
		},
		Cache: CacheConfig{
			Backend:       strings.ToLower(getEnv("CACHE_BACKEND", CacheBackendSQLite)),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       redisDB,
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	switch config.Cache.Backend {
	case CacheBackendSQLite, CacheBackendRedis:
	default:
		return nil, fmt.Errorf("CACHE_BACKEND must be sqlite or redis, got %q", config.Cache.Backend)
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

// getEnvAllowEmpty is like getEnv but an explicitly empty variable wins over the default.
func getEnvAllowEmpty(key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
