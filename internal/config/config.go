// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime setting of the service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTP     HTTP     `envPrefix:"HTTP_"`
	Database Database `envPrefix:"DB_"`
	Redis    Redis    `envPrefix:"REDIS_"`
	Telegram Telegram `envPrefix:"TELEGRAM_"`
	OpenAI   OpenAI   `envPrefix:"OPENAI_"`
	Admin    Admin    `envPrefix:"ADMIN_"`
	Jobs     Jobs     `envPrefix:"JOBS_"`
}

// HTTP configures the chi server.
type HTTP struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
}

// Database configures the PostgreSQL pool and migrations.
type Database struct {
	Host           string `env:"HOST" envDefault:"localhost"`
	Port           string `env:"PORT" envDefault:"5432"`
	User           string `env:"USER" envDefault:"postgres"`
	Password       string `env:"PASSWORD" envDefault:"postgres"`
	Name           string `env:"NAME" envDefault:"eventnav"`
	SSLMode        string `env:"SSLMODE" envDefault:"disable"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"migrations"`
}

// DSN builds a libpq-compatible connection string.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// URL builds the URL form used by golang-migrate's pgx driver.
func (d Database) URL() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Redis configures the optional read cache. An empty Addr disables it.
type Redis struct {
	Addr     string        `env:"ADDR"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	TTL      time.Duration `env:"TTL" envDefault:"30s"`
}

// Telegram configures the WebApp identity handshake.
type Telegram struct {
	BotToken string        `env:"BOT_TOKEN"`
	MaxAge   time.Duration `env:"AUTH_MAX_AGE" envDefault:"24h"`
}

// OpenAI configures the assistant's LLM backend. An empty key leaves the
// assistant in degraded mode.
type OpenAI struct {
	APIKey     string  `env:"API_KEY"`
	Model      string  `env:"MODEL" envDefault:"gpt-4o-mini"`
	MaxTokens  int64   `env:"MAX_TOKENS" envDefault:"1000"`
	RatePerMin float64 `env:"RATE_PER_MIN" envDefault:"6"`
}

// Admin configures panel login and token issuing.
type Admin struct {
	Username    string        `env:"USERNAME" envDefault:"admin"`
	Password    string        `env:"PASSWORD" envDefault:"admin"`
	SecretKey   string        `env:"SECRET_KEY" envDefault:"change-me-in-production"`
	TokenExpiry time.Duration `env:"TOKEN_EXPIRY" envDefault:"2h"`
}

// Jobs configures the maintenance cron schedules.
type Jobs struct {
	ReconcileSpec string `env:"RECONCILE_SPEC" envDefault:"@every 1h"`
	KnowledgeSpec string `env:"KNOWLEDGE_SPEC" envDefault:"@every 30m"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
