package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "worker-1", cfg.Worker.ID)
	assert.Equal(t, 100, cfg.Worker.BatchLimit)
	assert.Equal(t, 5, cfg.Worker.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Worker.PollInterval)
	assert.Equal(t, 5*time.Minute, cfg.Worker.LeaseDuration)
	assert.Equal(t, "https://oauth2.googleapis.com/token", cfg.Google.TokenURL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("WORKER_BATCH_LIMIT", "25")
	t.Setenv("WORKER_LEASE_DURATION", "90s")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Worker.BatchLimit)
	assert.Equal(t, 90*time.Second, cfg.Worker.LeaseDuration)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_MissingCredentials(t *testing.T) {
	_, err := Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_CLIENT_ID is required")
	assert.Contains(t, err.Error(), "GOOGLE_CLIENT_SECRET is required")
}

func TestLoad_ProcessError(t *testing.T) {
	original := envProcess
	defer func() { envProcess = original }()

	envProcess = func(ctx context.Context, target any, mus ...envconfig.Mutator) error {
		return errors.New("boom")
	}

	_, err := Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process env config")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server: ServerConfig{Port: 8080},
			Worker: WorkerConfig{
				BatchLimit:    100,
				MaxRetries:    5,
				PollInterval:  30 * time.Second,
				LeaseDuration: 5 * time.Minute,
			},
			Google: GoogleConfig{
				ClientID:     "id",
				ClientSecret: "secret",
				TokenURL:     "https://oauth2.googleapis.com/token",
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "SERVER_PORT"},
		{"zero batch limit", func(c *Config) { c.Worker.BatchLimit = 0 }, "WORKER_BATCH_LIMIT"},
		{"negative retries", func(c *Config) { c.Worker.MaxRetries = -1 }, "WORKER_MAX_RETRIES"},
		{"zero poll interval", func(c *Config) { c.Worker.PollInterval = 0 }, "WORKER_POLL_INTERVAL"},
		{"zero lease", func(c *Config) { c.Worker.LeaseDuration = 0 }, "WORKER_LEASE_DURATION"},
		{"blank client id", func(c *Config) { c.Google.ClientID = "  " }, "GOOGLE_CLIENT_ID"},
		{"blank token url", func(c *Config) { c.Google.TokenURL = "" }, "GOOGLE_TOKEN_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
