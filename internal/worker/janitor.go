package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/matbakh-app/google-job-worker/internal/storage/postgres"
)

// Janitor returns jobs whose lease expired (crashed or stalled worker) back
// to pending so they are not stuck in_progress forever.
type Janitor struct {
	jobs     *postgres.JobRepository
	interval time.Duration
	log      *slog.Logger
}

func NewJanitor(jobs *postgres.JobRepository, interval time.Duration, log *slog.Logger) *Janitor {
	return &Janitor{jobs: jobs, interval: interval, log: log}
}

func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	stuck, err := j.jobs.ListStuck(ctx)
	if err != nil {
		j.log.Error("stuck job scan failed", slog.String("error", err.Error()))
		return
	}

	for _, job := range stuck {
		j.log.Warn("recovering stuck job", slog.Uint64("job_id", uint64(job.ID)))
		if err := j.jobs.Release(ctx, job.ID); err != nil {
			j.log.Error("release failed",
				slog.Uint64("job_id", uint64(job.ID)),
				slog.String("error", err.Error()))
		}
	}
}
