package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/xelth-com/eckodoo/internal/services/odoo"
)

// Config holds all application configuration
type Config struct {
	NodeEnv   string         `env:"NODE_ENV" envDefault:"development"`
	Port      string         `env:"PORT" envDefault:"3210"`
	JWTSecret string         `env:"JWT_SECRET"`
	LogLevel  string         `env:"LOG_LEVEL" envDefault:"info"`
	Odoo      OdooConfig     `envPrefix:"ODOO_"`
	Database  DatabaseConfig `envPrefix:"PG_"`
}

// OdooConfig holds the Odoo connection and mirror settings. Empty connection
// fields fall back to the client defaults.
type OdooConfig struct {
	BaseURL  string `env:"BASE_URL"`
	Port     int    `env:"PORT"`
	Database string `env:"DB"`
	Username string `env:"USER"`
	Password string `env:"PW"`

	SyncModels   []string      `env:"SYNC_MODELS" envSeparator:","`
	SyncFields   []string      `env:"SYNC_FIELDS" envSeparator:","`
	SyncInterval time.Duration `env:"SYNC_INTERVAL" envDefault:"15m"`
	SyncBatch    int           `env:"SYNC_BATCH" envDefault:"1000"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	Username string `env:"USERNAME" envDefault:"postgres"`
	Password string `env:"PASSWORD"`
	Database string `env:"DATABASE" envDefault:"eckodoo"`
	LogSQL   bool   `env:"LOG_SQL"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}
	return &cfg, nil
}

// ValidateAPI checks the settings only the HTTP gateway needs.
func (c *Config) ValidateAPI() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

// Enabled reports whether an Odoo server is configured at all.
func (c OdooConfig) Enabled() bool {
	return c.BaseURL != ""
}

// ClientOptions translates the settings into odoo client options, passing
// only the values that were actually set.
func (c OdooConfig) ClientOptions() []odoo.Option {
	var opts []odoo.Option
	if c.BaseURL != "" {
		opts = append(opts, odoo.WithBaseURL(c.BaseURL))
	}
	if c.Port != 0 {
		opts = append(opts, odoo.WithPort(c.Port))
	}
	if c.Database != "" {
		opts = append(opts, odoo.WithDatabase(c.Database))
	}
	if c.Username != "" {
		opts = append(opts, odoo.WithUsername(c.Username))
	}
	if c.Password != "" {
		opts = append(opts, odoo.WithPassword(c.Password))
	}
	return opts
}

// SyncConfig returns the mirror settings.
func (c OdooConfig) SyncConfig() odoo.SyncConfig {
	return odoo.SyncConfig{
		Models:    c.SyncModels,
		Fields:    c.SyncFields,
		Interval:  c.SyncInterval,
		BatchSize: c.SyncBatch,
	}
}
