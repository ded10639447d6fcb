package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host               string
	Port               string
	LogLevel           string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64
	MaxImageBytes      int64
	MaxImagePixels     int64

	// Image source
	StorageBackend     string
	AzureAccountName   string
	AzureAccountKey    string
	AllowedURLSchemes  []string
	AllowedCORSOrigins []string

	// Pipeline
	KMeansSeed    int64
	VisionBackend string
	BatchWorkers  int
	MaxBatchSize  int

	// Persistence
	HistoryDBPath      string
	CacheBackend       string
	CacheTTL           time.Duration
	MemoryCacheEntries int
	RedisAddr          string
	RedisMaxIdle       int
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		AnalysisTimeout:    parseDurationOrDefault("ANALYSIS_TIMEOUT", 20*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 1024*1024),
		MaxImageBytes:      parseIntOrDefault("MAX_IMAGE_BYTES", 25*1024*1024),
		MaxImagePixels:     parseIntOrDefault("MAX_IMAGE_PIXELS", 50_000_000),
		StorageBackend:     strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", "http")),
		AzureAccountName:   os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureAccountKey:    os.Getenv("AZURE_STORAGE_KEY"),
		AllowedURLSchemes:  parseListOrDefault("ALLOWED_URL_SCHEMES", []string{"http", "https"}),
		AllowedCORSOrigins: parseListOrDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
		KMeansSeed:         parseIntOrDefault("KMEANS_SEED", 42),
		VisionBackend:      strings.ToLower(getEnvOrDefault("VISION_BACKEND", "go")),
		BatchWorkers:       int(parseIntOrDefault("BATCH_WORKERS", 0)),
		MaxBatchSize:       int(parseIntOrDefault("MAX_BATCH_SIZE", 20)),
		HistoryDBPath:      os.Getenv("HISTORY_DB_PATH"),
		CacheBackend:       strings.ToLower(getEnvOrDefault("CACHE_BACKEND", "none")),
		CacheTTL:           parseDurationOrDefault("CACHE_TTL", 10*time.Minute),
		MemoryCacheEntries: int(parseIntOrDefault("MEMORY_CACHE_ENTRIES", 1024)),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisMaxIdle:       int(parseIntOrDefault("REDIS_MAX_IDLE", 4)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and cross-field requirements.
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be > 0 (got %d)", c.MaxImageBytes)
	}
	if c.MaxImagePixels <= 0 {
		return fmt.Errorf("MAX_IMAGE_PIXELS must be > 0 (got %d)", c.MaxImagePixels)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.AnalysisTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, analysis=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.AnalysisTimeout)
	}
	switch c.StorageBackend {
	case "http", "file":
	case "azure":
		if c.AzureAccountName == "" || c.AzureAccountKey == "" {
			return fmt.Errorf("STORAGE_BACKEND=azure requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND: %q", c.StorageBackend)
	}
	switch c.VisionBackend {
	case "go", "gocv":
	default:
		return fmt.Errorf("unsupported VISION_BACKEND: %q", c.VisionBackend)
	}
	switch c.CacheBackend {
	case "none":
	case "memory":
		if c.MemoryCacheEntries <= 0 {
			return fmt.Errorf("MEMORY_CACHE_ENTRIES must be > 0 (got %d)", c.MemoryCacheEntries)
		}
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("CACHE_BACKEND=redis requires REDIS_ADDR")
		}
		if c.RedisMaxIdle <= 0 {
			return fmt.Errorf("REDIS_MAX_IDLE must be > 0 (got %d)", c.RedisMaxIdle)
		}
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND: %q", c.CacheBackend)
	}
	if c.BatchWorkers < 0 {
		return fmt.Errorf("BATCH_WORKERS must be >= 0 (got %d)", c.BatchWorkers)
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("MAX_BATCH_SIZE must be > 0 (got %d)", c.MaxBatchSize)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// parseListOrDefault splits a comma separated variable, dropping empty items.
func parseListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
