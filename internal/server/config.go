// Package server provides configuration helpers that define runtime defaults,
// validation, and rate-limiting parameters for the realtime gateway.
package server

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// RateLimitConfig defines the parameters for per-connection inbound frame
// rate limiting.
type RateLimitConfig struct {
	Burst          int           `env:"RATE_LIMIT_BURST,default=20"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL,default=1s"`
}

// Config holds the gateway settings. Every field can be set from the
// environment; a .env file in the working directory is read first.
type Config struct {
	Port                string        `env:"SERVER_PORT,default=:8080"`
	AllowedOrigins      string        `env:"ALLOWED_ORIGINS,default=http://localhost:8080"`
	MaxMessageSize      int64         `env:"MAX_MESSAGE_SIZE,default=65536"`
	SendBufferSize      int           `env:"SEND_BUFFER_SIZE,default=256"`
	CollaboratorTimeout time.Duration `env:"COLLABORATOR_TIMEOUT,default=10s"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	JWTSecret           string        `env:"JWT_SECRET"`
	JWTIssuer           string        `env:"JWT_ISSUER"`
	LogLevel            string        `env:"LOG_LEVEL,default=info"`
	LogFormat           string        `env:"LOG_FORMAT,default=text"`
	SeedConversations   string        `env:"SEED_CONVERSATIONS"`
	RateLimit           RateLimitConfig
}

const (
	defaultPort                = ":8080"
	defaultMaxMessageSize      = 64 << 10
	defaultSendBufferSize      = 256
	defaultRateBurst           = 20
	defaultCollaboratorTimeout = 10 * time.Second
	defaultShutdownTimeout     = 10 * time.Second
)

// NewConfig creates a Config populated with default values for all settings.
func NewConfig() *Config {
	cfg := Config{AllowedOrigins: "http://localhost:8080"}
	cfg.Sanitize()
	return &cfg
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	cfg.Sanitize()
	return &cfg, nil
}

// Sanitize replaces unset or nonsensical values with defaults.
func (c *Config) Sanitize() {
	if c.Port == "" {
		c.Port = defaultPort
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = defaultMaxMessageSize
	}
	if c.SendBufferSize <= 0 {
		c.SendBufferSize = defaultSendBufferSize
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = defaultRateBurst
	}
	if c.RateLimit.RefillInterval <= 0 {
		c.RateLimit.RefillInterval = time.Second
	}
	if c.CollaboratorTimeout <= 0 {
		c.CollaboratorTimeout = defaultCollaboratorTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
}

// Origins splits AllowedOrigins on commas.
func (c *Config) Origins() []string {
	return parseOrigins(c.AllowedOrigins)
}

func parseOrigins(origins string) []string {
	if strings.TrimSpace(origins) == "" {
		return nil
	}
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// NewLogger builds the process logger from LogLevel and LogFormat.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
