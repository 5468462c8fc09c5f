package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	App       AppConfig
	JWT       JWTConfig
	Polling   PollingConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
	// Domain appended to notify codes, e.g. "huisheen.com"
	WebsiteDomain string
}

// JWTConfig holds token signing configuration
type JWTConfig struct {
	Secret               string
	SubscriptionValidity string // push tokens handed to third parties
	ExternalValidity     string // read-access tokens for third parties
}

// PollingConfig holds the scheduler and outbound HTTP knobs
type PollingConfig struct {
	TickInterval       time.Duration
	PollTimeout        time.Duration
	ProbeTimeout       time.Duration
	MaxConcurrentPolls int
	DefaultIntervalMin int
}

type RedisConfig struct {
	URL string // empty disables redis-backed rate limiting
}

type RateLimitConfig struct {
	Window      time.Duration
	MaxRequests int
}

func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "huisheen"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:          appPort,
		Env:           getEnv("APP_ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		WebsiteDomain: getEnv("WEBSITE_DOMAIN", "localhost:8080"),
	}

	config.JWT = JWTConfig{
		Secret:               getEnv("JWT_SECRET_KEY", ""),
		SubscriptionValidity: getEnv("JWT_SUBSCRIPTION_VALIDITY", "8760h"), // 365 days
		ExternalValidity:     getEnv("JWT_EXTERNAL_VALIDITY", "720h"),      // 30 days
	}

	tick, err := time.ParseDuration(getEnv("POLL_TICK_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_TICK_INTERVAL: %w", err)
	}
	pollTimeout, err := time.ParseDuration(getEnv("POLL_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_TIMEOUT: %w", err)
	}
	probeTimeout, err := time.ParseDuration(getEnv("PROBE_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROBE_TIMEOUT: %w", err)
	}
	maxPolls, err := strconv.Atoi(getEnv("POLL_MAX_CONCURRENT", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_MAX_CONCURRENT: %w", err)
	}
	defaultInterval, err := strconv.Atoi(getEnv("POLLING_INTERVAL_MINUTES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLLING_INTERVAL_MINUTES: %w", err)
	}

	config.Polling = PollingConfig{
		TickInterval:       tick,
		PollTimeout:        pollTimeout,
		ProbeTimeout:       probeTimeout,
		MaxConcurrentPolls: maxPolls,
		DefaultIntervalMin: defaultInterval,
	}

	config.Redis = RedisConfig{
		URL: getEnv("REDIS_URL", ""),
	}

	rlWindow, err := time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}
	rlMax, err := strconv.Atoi(getEnv("RATE_LIMIT_MAX_REQUESTS", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_MAX_REQUESTS: %w", err)
	}
	config.RateLimit = RateLimitConfig{
		Window:      rlWindow,
		MaxRequests: rlMax,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Polling.MaxConcurrentPolls < 1 {
		return fmt.Errorf("POLL_MAX_CONCURRENT must be at least 1")
	}
	if c.Polling.DefaultIntervalMin < 1 {
		return fmt.Errorf("POLLING_INTERVAL_MINUTES must be at least 1")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
