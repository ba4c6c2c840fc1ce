package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env         string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port        string `env:"PORT" envDefault:"8080" validate:"required"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	// Base64-encoded symmetric signing key, decoded once in Load.
	JWTSecretBase64 string `env:"JWT_SECRET_BASE64,required" validate:"required"`

	PurgeCron string `env:"PURGE_CRON" envDefault:"@hourly" validate:"required"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`

	jwtSecret []byte
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	secret, err := base64.StdEncoding.DecodeString(cfg.JWTSecretBase64)
	if err != nil {
		return nil, fmt.Errorf("decode JWT_SECRET_BASE64: %w", err)
	}
	if len(secret) < 32 {
		return nil, errors.New("JWT secret must decode to at least 32 bytes")
	}
	cfg.jwtSecret = secret

	return cfg, nil
}

// JWTSecret returns the decoded signing key. Immutable after Load.
func (c *Config) JWTSecret() []byte {
	return c.jwtSecret
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
