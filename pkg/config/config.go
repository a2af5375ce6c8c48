// Package config loads clinicflow settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string

	// Database. An empty URL selects the local SQLite file.
	DatabaseURL    string
	DatabaseDriver string
	SQLitePath     string

	// Clinic catalog file (YAML). Empty uses the built-in catalog.
	CatalogPath string

	// Scheduling defaults, overridable per command.
	ScheduleSeed         uint64
	ScheduleSlotsKind    string
	ScheduleMaxAttempts  int
	ScheduleShuffleSlots bool
	ScheduleUseAllSlots  bool

	// Availability oracle breaker
	BreakerThreshold int
	BreakerTimeout   time.Duration

	// Events. An empty RabbitMQ URL delivers in process.
	RabbitMQURL        string
	EventsExchange     string
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxRetries   int
	OutboxRetention    time.Duration
	OutboxFlushOnExit  bool

	// Leave cache. An empty Redis URL disables caching.
	RedisURL      string
	LeaveCacheTTL time.Duration

	// MCP server
	MCPAddr      string
	MCPAuthToken string
}

// Load reads configuration from the environment, after loading a .env file
// when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", "auto")),
		SQLitePath:     getEnv("SQLITE_PATH", defaultSQLitePath()),

		CatalogPath: getEnv("CLINIC_CATALOG_PATH", ""),

		ScheduleSeed:         getUint64Env("SCHEDULE_SEED", 42),
		ScheduleSlotsKind:    strings.ToUpper(getEnv("SCHEDULE_SLOTS_KIND", "CD")),
		ScheduleMaxAttempts:  getIntEnv("SCHEDULE_MAX_ATTEMPTS", 50),
		ScheduleShuffleSlots: getBoolEnv("SCHEDULE_SHUFFLE_SLOTS", true),
		ScheduleUseAllSlots:  getBoolEnv("SCHEDULE_USE_ALL_SLOTS", false),

		BreakerThreshold: getIntEnv("AVAILABILITY_BREAKER_THRESHOLD", 5),
		BreakerTimeout:   getDurationEnv("AVAILABILITY_BREAKER_TIMEOUT", 30*time.Second),

		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		EventsExchange:     getEnv("EVENTS_EXCHANGE", "clinicflow.events"),
		OutboxPollInterval: getDurationEnv("OUTBOX_POLL_INTERVAL", time.Second),
		OutboxBatchSize:    getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:   getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxRetention:    getDurationEnv("OUTBOX_RETENTION", 7*24*time.Hour),
		OutboxFlushOnExit:  getBoolEnv("OUTBOX_FLUSH_ON_EXIT", true),

		RedisURL:      getEnv("REDIS_URL", ""),
		LeaveCacheTTL: getDurationEnv("LEAVE_CACHE_TTL", 5*time.Minute),

		MCPAddr:      getEnv("MCP_ADDR", ":8765"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// IsPostgres reports whether the shared PostgreSQL store is selected.
func (c *Config) IsPostgres() bool {
	switch c.DatabaseDriver {
	case "postgres":
		return true
	case "sqlite":
		return false
	}
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getUint64Env(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseUint(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".clinicflow", "clinicflow.db")
	}
	return filepath.Join(home, ".clinicflow", "clinicflow.db")
}
