package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is built once at process start and passed explicitly into the
// server, worker runner, token provider, and Google client. Nothing else
// reads the environment.
type Config struct {
	Server ServerConfig `env:", prefix=SERVER_"`
	Worker WorkerConfig `env:", prefix=WORKER_"`
	Google GoogleConfig `env:", prefix=GOOGLE_"`

	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogFormat string `env:"LOG_FORMAT, default=console"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Port            int           `env:"PORT, default=8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`
}

// WorkerConfig holds batch-processing settings.
type WorkerConfig struct {
	ID            string        `env:"ID, default=worker-1"`
	BatchLimit    int           `env:"BATCH_LIMIT, default=100"`
	MaxRetries    int           `env:"MAX_RETRIES, default=5"`
	PollInterval  time.Duration `env:"POLL_INTERVAL, default=30s"`
	LeaseDuration time.Duration `env:"LEASE_DURATION, default=5m"`
}

// GoogleConfig holds OAuth credentials and the API endpoints. The base URLs
// are overridable so tests can point the client at a stub server.
type GoogleConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`

	TokenURL        string        `env:"TOKEN_URL, default=https://oauth2.googleapis.com/token"`
	AccountsBaseURL string        `env:"ACCOUNTS_BASE_URL, default=https://mybusinessaccountmanagement.googleapis.com/v1"`
	BusinessBaseURL string        `env:"BUSINESS_BASE_URL, default=https://mybusinessbusinessinformation.googleapis.com/v1"`
	PostsBaseURL    string        `env:"POSTS_BASE_URL, default=https://mybusiness.googleapis.com/v4"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT, default=30s"`
}

// to help with testing
var envProcess = envconfig.Process

// Load reads the full configuration from the environment and validates it.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envProcess(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the loaded values for obvious misconfiguration.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "SERVER_PORT must be between 1 and 65535")
	}

	if c.Worker.BatchLimit <= 0 {
		errs = append(errs, "WORKER_BATCH_LIMIT must be positive")
	}

	if c.Worker.MaxRetries < 0 {
		errs = append(errs, "WORKER_MAX_RETRIES must be non-negative")
	}

	if c.Worker.PollInterval <= 0 {
		errs = append(errs, "WORKER_POLL_INTERVAL must be positive")
	}

	if c.Worker.LeaseDuration <= 0 {
		errs = append(errs, "WORKER_LEASE_DURATION must be positive")
	}

	if strings.TrimSpace(c.Google.ClientID) == "" {
		errs = append(errs, "GOOGLE_CLIENT_ID is required")
	}

	if strings.TrimSpace(c.Google.ClientSecret) == "" {
		errs = append(errs, "GOOGLE_CLIENT_SECRET is required")
	}

	if strings.TrimSpace(c.Google.TokenURL) == "" {
		errs = append(errs, "GOOGLE_TOKEN_URL is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}

	return nil
}
