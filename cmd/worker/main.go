package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/matbakh-app/google-job-worker/internal/config"
	"github.com/matbakh-app/google-job-worker/internal/google"
	"github.com/matbakh-app/google-job-worker/internal/logging"
	"github.com/matbakh-app/google-job-worker/internal/report"
	"github.com/matbakh-app/google-job-worker/internal/storage/postgres"
	"github.com/matbakh-app/google-job-worker/internal/token"
	"github.com/matbakh-app/google-job-worker/internal/worker"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	dbCfg, err := postgres.LoadConfigFromEnv(ctx)
	if err != nil {
		log.Error("failed to load database config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := postgres.ConnectDB(ctx, dbCfg, log)
	if err != nil {
		log.Error("database connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := postgres.Migrate(db); err != nil {
		log.Error("migration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	jobRepo := postgres.NewJobRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)
	partnerRepo := postgres.NewPartnerRepository(db)
	leadRepo := postgres.NewLeadRepository(db)

	tokens := token.NewProvider(tokenRepo, cfg.Google, log)
	client := google.NewClient(tokens, cfg.Google, log)
	reports := report.NewHTMLGenerator("reports", log)
	handlers := worker.NewHandlers(client, partnerRepo, leadRepo, reports, log)
	runner := worker.NewRunner(jobRepo, handlers, cfg.Worker, log)

	janitor := worker.NewJanitor(jobRepo, cfg.Worker.LeaseDuration/2, log)
	go janitor.Run(ctx)

	log.Info("worker started",
		slog.String("worker_id", cfg.Worker.ID),
		slog.Duration("poll_interval", cfg.Worker.PollInterval))

	ticker := time.NewTicker(cfg.Worker.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := runner.RunBatch(ctx); err != nil {
			log.Error("batch failed", slog.String("error", err.Error()))
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			log.Info("shutdown complete")
			return
		}
	}
}
