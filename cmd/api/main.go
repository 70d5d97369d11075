package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/matbakh-app/google-job-worker/internal/config"
	"github.com/matbakh-app/google-job-worker/internal/google"
	"github.com/matbakh-app/google-job-worker/internal/job"
	"github.com/matbakh-app/google-job-worker/internal/logging"
	"github.com/matbakh-app/google-job-worker/internal/report"
	"github.com/matbakh-app/google-job-worker/internal/storage/postgres"
	"github.com/matbakh-app/google-job-worker/internal/token"
	"github.com/matbakh-app/google-job-worker/internal/worker"
	"github.com/matbakh-app/google-job-worker/middleware"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()

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

	jobService := job.NewJobService(jobRepo)
	jobHandler := job.NewJobHandler(jobService)
	triggerHandler := job.NewTriggerHandler(runner, log)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS(), middleware.ErrorHandler())

	v1 := r.Group("/api/v1")
	{
		v1.POST("/jobs", jobHandler.Create)
		v1.GET("/jobs/:id", jobHandler.Get)
		v1.GET("/jobs", jobHandler.List)
		v1.POST("/worker/run", triggerHandler.Run)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("api listening", slog.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
