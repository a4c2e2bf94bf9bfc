package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr                      string
	DatabaseURL               string
	JWTSecret                 string
	Environment               string
	LogLevel                  string
	RunMigrations             bool
	MigrationsDir             string
	MaxBodyBytes              int64
	AutoScheduleInterval      time.Duration
	ReviewCatalogFile         string
	ScheduleLockRedisAddr     string
	ScheduleLockRedisPassword string
	ScheduleLockTTL           time.Duration
	MetricsEnabled            bool
	SeedTenantName            string
	RateLimitPerMinute        int
}

func Load() Config {
	return Config{
		Addr:                      getEnv("APP_ADDR", ":8080"),
		DatabaseURL:               getEnv("DATABASE_URL", ""),
		JWTSecret:                 getEnv("JWT_SECRET", ""),
		Environment:               getEnv("APP_ENV", "development"),
		LogLevel:                  getEnv("LOG_LEVEL", "info"),
		RunMigrations:             getEnvBool("RUN_MIGRATIONS", true),
		MigrationsDir:             getEnv("MIGRATIONS_DIR", "migrations"),
		MaxBodyBytes:              int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		AutoScheduleInterval:      getEnvDuration("AUTO_SCHEDULE_INTERVAL", 24*time.Hour),
		ReviewCatalogFile:         getEnv("REVIEW_CATALOG_FILE", ""),
		ScheduleLockRedisAddr:     getEnv("SCHEDULE_LOCK_REDIS_ADDR", ""),
		ScheduleLockRedisPassword: getEnv("SCHEDULE_LOCK_REDIS_PASSWORD", ""),
		ScheduleLockTTL:           getEnvDuration("SCHEDULE_LOCK_TTL", 5*time.Minute),
		MetricsEnabled:            getEnvBool("METRICS_ENABLED", true),
		SeedTenantName:            getEnv("SEED_TENANT_NAME", ""),
		RateLimitPerMinute:        getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
	}
}

// SlogLevel maps LOG_LEVEL onto a slog level; unknown values fall back to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.AutoScheduleInterval < 0 {
		return fmt.Errorf("AUTO_SCHEDULE_INTERVAL must not be negative")
	}
	if c.ScheduleLockRedisAddr != "" && c.ScheduleLockTTL <= 0 {
		return fmt.Errorf("SCHEDULE_LOCK_TTL must be positive when SCHEDULE_LOCK_REDIS_ADDR is set")
	}
	return nil
}
