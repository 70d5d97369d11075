package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matbakh-app/google-job-worker/internal/config"
	"github.com/matbakh-app/google-job-worker/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job record into the database. It uses the provided
// context for cancellation and timeout propagation. Returns an error if the
// database operation fails.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// Get retrieves a single job record by its ID. Returns the job if found,
// or an error if the job doesn't exist or the database query fails.
func (r *JobRepository) Get(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job not found: %w", err)
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

// FetchDue returns up to limit pending jobs whose run_at has passed, oldest
// first so the queue stays FIFO-fair.
func (r *JobRepository) FetchDue(ctx context.Context, limit int) ([]models.Job, error) {
	var jobs []models.Job
	if err := r.db.WithContext(ctx).
		Where("status = ? AND run_at <= ?", config.JobStatusPending, time.Now()).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("fetch due jobs: %w", err)
	}
	return jobs, nil
}

// Claim flips a job from pending to in_progress and records a lease. The
// update is conditional on the current status, so of two overlapping workers
// only one sees RowsAffected == 1; the other skips the job.
func (r *JobRepository) Claim(ctx context.Context, id uint, workerID string, lease time.Duration) (bool, error) {
	until := time.Now().Add(lease)
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status = ?", id, config.JobStatusPending).
		Updates(map[string]any{
			"status":       config.JobStatusInProgress,
			"locked_by":    workerID,
			"locked_until": until,
		})
	if res.Error != nil {
		return false, fmt.Errorf("claim job: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// MarkDone finalizes a successful job with its result and releases the lease.
func (r *JobRepository) MarkDone(ctx context.Context, id uint, result datatypes.JSON) error {
	if err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       config.JobStatusDone,
			"result":       result,
			"locked_by":    nil,
			"locked_until": nil,
		}).Error; err != nil {
		return fmt.Errorf("mark job done: %w", err)
	}
	return nil
}

// RetryIn puts a failed job back into pending with the new retry count, the
// delayed run_at, and the failure message.
func (r *JobRepository) RetryIn(ctx context.Context, id uint, retryCount int, runAt time.Time, errMsg string) error {
	if err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        config.JobStatusPending,
			"retry_count":   retryCount,
			"run_at":        runAt,
			"error_message": errMsg,
			"locked_by":     nil,
			"locked_until":  nil,
		}).Error; err != nil {
		return fmt.Errorf("reschedule job: %w", err)
	}
	return nil
}

// MarkFailed moves a job to the terminal error state.
func (r *JobRepository) MarkFailed(ctx context.Context, id uint, retryCount int, errMsg string) error {
	if err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        config.JobStatusError,
			"retry_count":   retryCount,
			"error_message": errMsg,
			"locked_by":     nil,
			"locked_until":  nil,
		}).Error; err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	return nil
}

// Release returns an in_progress job to pending without touching its retry
// bookkeeping. Used by the janitor for leases whose holder died.
func (r *JobRepository) Release(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status = ?", id, config.JobStatusInProgress).
		Updates(map[string]any{
			"status":       config.JobStatusPending,
			"locked_by":    nil,
			"locked_until": nil,
		}).Error; err != nil {
		return fmt.Errorf("release job: %w", err)
	}
	return nil
}

// ListStuck returns in_progress jobs whose lease has expired.
func (r *JobRepository) ListStuck(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	if err := r.db.WithContext(ctx).
		Where("status = ? AND locked_until < ?", config.JobStatusInProgress, time.Now()).
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list stuck jobs: %w", err)
	}
	return jobs, nil
}

// List retrieves jobs filtered by status; an empty status returns everything.
func (r *JobRepository) List(ctx context.Context, status string) ([]models.Job, error) {
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var jobs []models.Job
	if err := q.Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}
