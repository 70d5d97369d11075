package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/matbakh-app/google-job-worker/internal/config"
	"github.com/matbakh-app/google-job-worker/internal/dto"
	"github.com/matbakh-app/google-job-worker/internal/models"
	"github.com/matbakh-app/google-job-worker/internal/storage/postgres"
	"github.com/matbakh-app/google-job-worker/internal/token"
	"gorm.io/datatypes"
)

// Summary reports the outcome of one batch invocation.
type Summary struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Runner pulls due jobs, claims them, dispatches to the matching operation
// handler, and finalizes each one as done, rescheduled, or failed. A claimed
// job always leaves the batch in exactly one of those three states.
type Runner struct {
	jobs     *postgres.JobRepository
	handlers *Handlers
	cfg      config.WorkerConfig
	log      *slog.Logger
}

func NewRunner(jobs *postgres.JobRepository, handlers *Handlers, cfg config.WorkerConfig, log *slog.Logger) *Runner {
	return &Runner{jobs: jobs, handlers: handlers, cfg: cfg, log: log}
}

// Backoff returns the delay before the retryCount-th retry: 5^retryCount
// seconds (5s, 25s, 125s, ...).
func Backoff(retryCount int) time.Duration {
	d := time.Second
	for i := 0; i < retryCount; i++ {
		d *= 5
	}
	return d
}

// RunBatch processes up to BatchLimit due jobs sequentially.
func (r *Runner) RunBatch(ctx context.Context) (Summary, error) {
	var summary Summary

	jobs, err := r.jobs.FetchDue(ctx, r.cfg.BatchLimit)
	if err != nil {
		return summary, err
	}

	for i := range jobs {
		job := &jobs[i]

		claimed, err := r.jobs.Claim(ctx, job.ID, r.cfg.ID, r.cfg.LeaseDuration)
		if err != nil {
			r.log.Error("claim failed",
				slog.Uint64("job_id", uint64(job.ID)),
				slog.String("error", err.Error()))
			continue
		}
		if !claimed {
			// Another invocation got there first; leave it alone.
			r.log.Debug("job already claimed, skipping",
				slog.Uint64("job_id", uint64(job.ID)))
			continue
		}

		summary.Processed++

		result, err := r.dispatch(ctx, job)
		if err != nil {
			summary.Failed++
			r.finalizeFailure(ctx, job, err)
			continue
		}

		summary.Succeeded++
		buf, _ := json.Marshal(result)
		if err := r.jobs.MarkDone(ctx, job.ID, datatypes.JSON(buf)); err != nil {
			r.log.Error("mark done failed",
				slog.Uint64("job_id", uint64(job.ID)),
				slog.String("error", err.Error()))
		}
	}

	r.log.Info("batch complete",
		slog.Int("processed", summary.Processed),
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("failed", summary.Failed))

	return summary, nil
}

// dispatch routes the job to its operation handler. The switch is exhaustive
// over the known job types; anything else is a permanent failure.
func (r *Runner) dispatch(ctx context.Context, job *models.Job) (*Result, error) {
	switch config.JobType(job.JobType) {
	case config.JobTypeCreateBusinessProfile:
		payload, err := unmarshalPayload[dto.CreateBusinessProfilePayload](job.Payload)
		if err != nil {
			return nil, err
		}
		return r.handlers.CreateBusinessProfile(ctx, payload)

	case config.JobTypeUpdateBusinessProfile:
		payload, err := unmarshalPayload[dto.UpdateBusinessProfilePayload](job.Payload)
		if err != nil {
			return nil, err
		}
		return r.handlers.UpdateBusinessProfile(ctx, payload)

	case config.JobTypePublishPost:
		payload, err := unmarshalPayload[dto.PublishPostPayload](job.Payload)
		if err != nil {
			return nil, err
		}
		return r.handlers.PublishPost(ctx, payload)

	case config.JobTypeGenerateVisibilityReport:
		payload, err := unmarshalPayload[dto.GenerateVisibilityReportPayload](job.Payload)
		if err != nil {
			return nil, err
		}
		return r.handlers.GenerateVisibilityReport(ctx, payload)

	default:
		return nil, Permanentf("unknown job type %q", job.JobType)
	}
}

func unmarshalPayload[T any](raw datatypes.JSON) (*T, error) {
	var payload T
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, Permanentf("decode payload: %v", err)
	}
	return &payload, nil
}

// finalizeFailure decides between terminal failure and delayed retry.
// Permanent errors and exhausted retry budgets are terminal; everything else
// goes back to pending with exponential backoff.
func (r *Runner) finalizeFailure(ctx context.Context, job *models.Job, cause error) {
	permanent := IsPermanent(cause) || token.IsPermanent(cause)

	if permanent {
		r.log.Warn("job failed permanently",
			slog.Uint64("job_id", uint64(job.ID)),
			slog.String("job_type", job.JobType),
			slog.String("error", cause.Error()))
		if err := r.jobs.MarkFailed(ctx, job.ID, job.RetryCount, cause.Error()); err != nil {
			r.log.Error("mark failed errored",
				slog.Uint64("job_id", uint64(job.ID)),
				slog.String("error", err.Error()))
		}
		return
	}

	retryCount := job.RetryCount + 1
	if retryCount > r.cfg.MaxRetries {
		r.log.Warn("job exceeded max retries",
			slog.Uint64("job_id", uint64(job.ID)),
			slog.Int("retry_count", retryCount),
			slog.String("error", cause.Error()))
		if err := r.jobs.MarkFailed(ctx, job.ID, retryCount, cause.Error()); err != nil {
			r.log.Error("mark failed errored",
				slog.Uint64("job_id", uint64(job.ID)),
				slog.String("error", err.Error()))
		}
		return
	}

	delay := Backoff(retryCount)
	runAt := time.Now().Add(delay)

	r.log.Info("job rescheduled",
		slog.Uint64("job_id", uint64(job.ID)),
		slog.Int("retry_count", retryCount),
		slog.Duration("delay", delay),
		slog.String("error", cause.Error()))

	if err := r.jobs.RetryIn(ctx, job.ID, retryCount, runAt, cause.Error()); err != nil {
		r.log.Error("reschedule errored",
			slog.Uint64("job_id", uint64(job.ID)),
			slog.String("error", err.Error()))
	}
}
