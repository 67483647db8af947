package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	NewRelic     NewRelicConfig
	Settlement   SettlementConfig
	Notification NotificationConfig
	Trip         TripConfig
	LogLevel     string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// WorkerDB is the redis database used by the payout worker queue,
	// kept separate from locks and caches.
	WorkerDB int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// SettlementConfig holds escrow and payout settings.
type SettlementConfig struct {
	// CommissionRate is the fraction of each fare retained by the platform.
	CommissionRate float64
	// PayoutReviewThreshold: payouts at or above this amount are held for
	// compliance review before being sent.
	PayoutReviewThreshold float64
	// PayoutReviewWindow is how long a held payout waits before the worker
	// releases it automatically.
	PayoutReviewWindow time.Duration
}

// NotificationConfig holds fan-out settings.
type NotificationConfig struct {
	// SendTimeout bounds each individual recipient send.
	SendTimeout time.Duration
}

// TripConfig holds trip lifecycle settings.
type TripConfig struct {
	// EvictionDelay is the grace period a terminal trip stays in the
	// active registry before being cleared.
	EvictionDelay time.Duration
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "rideshare"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			WorkerDB: getIntEnv("REDIS_WORKER_DB", 1),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "rideshare-core"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Settlement: SettlementConfig{
			CommissionRate:        getFloatEnv("COMMISSION_RATE", 0.10),
			PayoutReviewThreshold: getFloatEnv("PAYOUT_REVIEW_THRESHOLD", 500),
			PayoutReviewWindow:    getDurationEnv("PAYOUT_REVIEW_WINDOW", 30*time.Minute),
		},
		Notification: NotificationConfig{
			SendTimeout: getDurationEnv("NOTIFICATION_SEND_TIMEOUT", 2*time.Second),
		},
		Trip: TripConfig{
			EvictionDelay: getDurationEnv("TRIP_EVICTION_DELAY", 3*time.Second),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
