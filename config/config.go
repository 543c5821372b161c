package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPServerAddress string
	Instrument        string

	// Empty means the in-memory journal/cache/stream stand-ins are used.
	PostgresDSN  string
	RedisAddr    string
	RedisDB      int
	RedisTTL     time.Duration
	KafkaBrokers []string
	KafkaTopic   string

	CutoffHour        int
	RateLimitInterval time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		HTTPServerAddress: getEnv("HTTP_SERVER_ADDRESS", "0.0.0.0:8080"),
		Instrument:        getEnv("INSTRUMENT", "DEFAULT"),
		PostgresDSN:       getEnv("POSTGRES_DSN", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RedisTTL:          getEnvDuration("REDIS_TTL", 5*time.Minute),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "trades"),
		CutoffHour:        getEnvInt("GFD_CUTOFF_HOUR", 16),
		RateLimitInterval: getEnvDuration("RATE_LIMIT_INTERVAL", 100*time.Millisecond),
	}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
