package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/metalofmeat1/telegram-bot-for-selling/pkg/config"
	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/database"
)

// Update source modes.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Config holds all configuration for the storefront bot.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Telegram
	TelegramToken     string        `env:"TELEGRAM_BOT_TOKEN"`
	TelegramMode      string        `env:"TELEGRAM_MODE" envDefault:"polling"`
	WebhookURL        string        `env:"TELEGRAM_WEBHOOK_URL"`
	WebhookSecret     string        `env:"TELEGRAM_WEBHOOK_SECRET"`
	PollTimeoutSecs   int           `env:"TELEGRAM_POLL_TIMEOUT_SECONDS" envDefault:"30"`
	SendRatePerSecond float64       `env:"TELEGRAM_SEND_RATE" envDefault:"25"`
	PlaceholderImage  string        `env:"TELEGRAM_PLACEHOLDER_IMAGE" envDefault:"https://placehold.co/600x400.png"`
	APITimeout        time.Duration `env:"TELEGRAM_API_TIMEOUT" envDefault:"30s"`
	UpdateWorkers     int           `env:"UPDATE_WORKERS" envDefault:"8"`

	// Staff ids written to an empty admin registry at startup.
	BootstrapAdminIDs []int64 `env:"BOOTSTRAP_ADMIN_IDS" envSeparator:","`

	// HTTP server (webhook, health, metrics)
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"storefront_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"storefront"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Redis
	RedisHost      string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort      int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass      string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	UpdateDedupTTL time.Duration `env:"UPDATE_DEDUP_TTL" envDefault:"24h"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	switch c.TelegramMode {
	case ModePolling:
	case ModeWebhook:
		if c.WebhookURL == "" {
			return fmt.Errorf("TELEGRAM_WEBHOOK_URL is required in webhook mode")
		}
		if c.WebhookSecret == "" {
			return fmt.Errorf("TELEGRAM_WEBHOOK_SECRET is required in webhook mode")
		}
	default:
		return fmt.Errorf("TELEGRAM_MODE must be %q or %q, got %q", ModePolling, ModeWebhook, c.TelegramMode)
	}
	if c.SendRatePerSecond <= 0 {
		return fmt.Errorf("TELEGRAM_SEND_RATE must be positive, got %f", c.SendRatePerSecond)
	}
	if c.UpdateWorkers < 1 {
		return fmt.Errorf("UPDATE_WORKERS must be at least 1, got %d", c.UpdateWorkers)
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// PostgresConfig returns the pool configuration for pkg/database.
func (c *Config) PostgresConfig() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
	}
}

// RedisConfig returns the client configuration for pkg/database.
func (c *Config) RedisConfig() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPass,
		DB:       c.RedisDB,
	}
}

// WebhookPath is the path Telegram posts updates to in webhook mode.
func (c *Config) WebhookPath() string {
	return "/telegram/webhook/" + c.WebhookSecret
}
