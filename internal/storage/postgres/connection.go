package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/sethvargo/go-retry"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	User           string        `env:"POSTGRES_USER, default=postgres"`
	Password       string        `env:"POSTGRES_PASSWORD, default=postgres"`
	Host           string        `env:"POSTGRES_HOST, default=localhost"`
	Port           string        `env:"POSTGRES_PORT, default=5432"`
	Database       string        `env:"POSTGRES_DB, default=matbakh"`
	SSLMode        string        `env:"POSTGRES_SSLMODE, default=disable"`
	MaxRetries     uint64        `env:"DB_MAX_RETRIES, default=10"`
	RetryDelay     time.Duration `env:"DB_RETRY_DELAY, default=2s"`
	LogLevelString string        `env:"DB_LOG_LEVEL, default=warn"`
	LogLevel       logger.LogLevel
}

// to help with testing
var envProcess = envconfig.Process

func LoadConfigFromEnv(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envProcess(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.LogLevel = ParseLogLevel(cfg.LogLevelString)
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if strings.TrimSpace(cfg.User) == "" {
		errors = append(errors, "POSTGRES_USER is required")
	}

	if strings.TrimSpace(cfg.Database) == "" {
		errors = append(errors, "POSTGRES_DB is required")
	}

	if strings.TrimSpace(cfg.Host) == "" {
		errors = append(errors, "POSTGRES_HOST is required")
	}

	if cfg.Port != "" {
		port, err := strconv.Atoi(cfg.Port)
		if err != nil {
			errors = append(errors, "POSTGRES_PORT must be a valid number")
		} else if port < 1 || port > 65535 {
			errors = append(errors, "POSTGRES_PORT must be between 1 and 65535")
		}
	} else {
		errors = append(errors, "POSTGRES_PORT is required")
	}

	if cfg.RetryDelay <= 0 {
		errors = append(errors, "DB_RETRY_DELAY must be positive")
	}

	if cfg.RetryDelay > 10*time.Minute {
		errors = append(errors, "DB_RETRY_DELAY must not exceed 10 minutes")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}

// DSN renders the connection string for database/sql based tooling (goose,
// integration tests).
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Database, c.Port, c.SSLMode,
	)
}

// ConnectDB establishes the gorm connection, retrying with a constant delay
// until the database answers a ping or the retry budget is spent.
func ConnectDB(ctx context.Context, cfg *Config, log *slog.Logger) (*gorm.DB, error) {
	if cfg == nil {
		loadedCfg, err := LoadConfigFromEnv(ctx)
		if err != nil {
			return nil, err
		}
		cfg = loadedCfg
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
	}

	var gdb *gorm.DB
	backoff := retry.WithMaxRetries(cfg.MaxRetries, retry.NewConstant(cfg.RetryDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var openErr error
		gdb, openErr = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if openErr != nil {
			log.Warn("database open failed, retrying",
				slog.String("error", simplifyDBError(openErr)))
			return retry.RetryableError(openErr)
		}

		sqlDB, dbErr := gdb.DB()
		if dbErr != nil {
			return retry.RetryableError(dbErr)
		}

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if pingErr := sqlDB.PingContext(pingCtx); pingErr != nil {
			log.Warn("database ping failed, retrying",
				slog.String("error", simplifyDBError(pingErr)))
			return retry.RetryableError(pingErr)
		}

		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed after %d attempts: %w", cfg.MaxRetries, err)
	}

	log.Info("database connected",
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database))

	return gdb, nil
}

// simplifyDBError returns a user-friendly error message
func simplifyDBError(err error) string {
	msg := err.Error()

	switch {
	case strings.Contains(msg, "password authentication failed"):
		return "invalid database credentials"
	case strings.Contains(msg, "connect"):
		return "cannot reach database server"
	case strings.Contains(msg, "timeout"):
		return "database connection timed out"
	case strings.Contains(msg, "SASL"):
		return "authentication error"
	}

	return "database error"
}

// Convert string to logger.LogLevel
func ParseLogLevel(levelStr string) logger.LogLevel {
	switch strings.ToLower(levelStr) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
