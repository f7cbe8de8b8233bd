package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("flashwash.config")

const (
	defaultHTTPAddr         = ":8080"
	defaultDatabaseURL      = "file:flashwash.db?_pragma=busy_timeout(5000)"
	defaultJWTSecret        = "change-me-jwt-secret"
	defaultJWTTTL           = "24h"
	defaultTimezone         = "UTC"
	defaultLogConfig        = "<root>=INFO"
	defaultAdmissionLockTTL = "10s"
	defaultAMQPQueue        = "reservation.events"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string
	LogConfig   string

	JWTSecret string
	JWTTTL    time.Duration

	// Location used for providers that have no timezone of their own.
	Location *time.Location

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	AdmissionLockTTL time.Duration

	AMQPURL   string
	AMQPQueue string

	ExclusionConstraint bool
}

// Load reads configuration from the environment. Values from a .env file in
// the working directory are applied first without overriding real env vars.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		logger.Debugf("loaded .env")
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.LogConfig = strings.TrimSpace(getEnv("LOG_CONFIG", defaultLogConfig))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.AMQPURL = strings.TrimSpace(os.Getenv("AMQP_URL"))
	cfg.AMQPQueue = strings.TrimSpace(getEnv("AMQP_QUEUE", defaultAMQPQueue))
	cfg.ExclusionConstraint = parseBoolEnv("DB_EXCLUSION_CONSTRAINT", "false")

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}
	cfg.AdmissionLockTTL, err = parseDurationEnv("ADMISSION_LOCK_TTL", defaultAdmissionLockTTL)
	if err != nil {
		return nil, err
	}

	cfg.RedisDB, err = parseIntEnv("REDIS_DB", "0")
	if err != nil {
		return nil, err
	}

	tz := strings.TrimSpace(getEnv("APP_TIMEZONE", defaultTimezone))
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE value %q: %w", tz, err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.AdmissionLockTTL <= 0 {
		return fmt.Errorf("ADMISSION_LOCK_TTL must be > 0")
	}
	if cfg.RedisDB < 0 {
		return fmt.Errorf("REDIS_DB must be >= 0")
	}
	if cfg.AMQPURL != "" && cfg.AMQPQueue == "" {
		return fmt.Errorf("AMQP_QUEUE must not be empty when AMQP_URL is set")
	}

	if isProdLike(cfg.AppEnv) && isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	return nil
}

func (c *Config) IsProd() bool {
	return isProdLike(c.AppEnv)
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
