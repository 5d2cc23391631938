package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	devJWTSecret        = "dev-secret-change-in-production"
	devEncryptionSecret = "dev-encryption-secret-change-in-production"
)

var ErrInsecureProductionConfig = errors.New("JWT_SECRET and ENCRYPTION_SECRET must be set in production environment")

type Config struct {
	Port               string        `env:"PORT" envDefault:"8080"`
	Env                string        `env:"ENV" envDefault:"development"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	JWTSecret          string        `env:"JWT_SECRET" envDefault:"dev-secret-change-in-production"`
	JWTExpiry          time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	EncryptionSecret   string        `env:"ENCRYPTION_SECRET" envDefault:"dev-encryption-secret-change-in-production"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
	Database           Database      `envPrefix:"DATABASE_"`
	LLM                LLM           `envPrefix:"LLM_"`
}

// Database contains database connection parameters.
type Database struct {
	Driver          string        `env:"DRIVER" envDefault:"mysql"`
	DSN             string        `env:"DSN" envDefault:"root:password@tcp(127.0.0.1:3306)/cardchat"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	AutoMigrate     bool          `env:"AUTO_MIGRATE" envDefault:"true"`
}

// LLM contains parameters for the Anthropic Messages API.
type LLM struct {
	BaseURL   string        `env:"BASE_URL" envDefault:"https://api.anthropic.com"`
	Model     string        `env:"MODEL" envDefault:"claude-3-5-sonnet-latest"`
	MaxTokens int           `env:"MAX_TOKENS" envDefault:"4096"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// Load parses the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Env == "production" &&
		(cfg.JWTSecret == devJWTSecret || cfg.EncryptionSecret == devEncryptionSecret) {
		return Config{}, ErrInsecureProductionConfig
	}

	switch cfg.Database.Driver {
	case "mysql", "sqlite3":
	default:
		return Config{}, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.Database.Driver)
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}
