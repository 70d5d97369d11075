package job

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/matbakh-app/google-job-worker/common"
	"github.com/matbakh-app/google-job-worker/internal/config"
	"github.com/matbakh-app/google-job-worker/internal/dto"
	"github.com/matbakh-app/google-job-worker/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type JobService struct {
	repo JobRepoInterface
}

func NewJobService(repo JobRepoInterface) *JobService {
	return &JobService{repo: repo}
}

var _ JobServiceInterface = (*JobService)(nil)

// CreateJob validates the job type and its typed payload, constructs a
// pending Job row, and persists it. Returns a typed API error for
// validation failures and an internal error for persistence failures.
func (s *JobService) CreateJob(ctx context.Context, in *dto.JobCreateDTO) (*dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request canceled or timed out")
	}

	if !json.Valid(in.Payload) {
		return nil, common.Errf(http.StatusBadRequest, "payload must be valid JSON")
	}

	jobType := config.JobType(in.JobType)
	if !slices.Contains(config.AllowedJobTypes, jobType) {
		return nil, common.NewAPIError(
			http.StatusBadRequest,
			"invalid job type",
			map[string]any{
				"provided": in.JobType,
				"allowed":  config.AllowedJobTypes,
			},
		)
	}

	switch jobType {
	case config.JobTypeCreateBusinessProfile:
		if err := validatePayload[dto.CreateBusinessProfilePayload](in.Payload); err != nil {
			return nil, err
		}
	case config.JobTypeUpdateBusinessProfile:
		if err := validatePayload[dto.UpdateBusinessProfilePayload](in.Payload); err != nil {
			return nil, err
		}
	case config.JobTypePublishPost:
		if err := validatePayload[dto.PublishPostPayload](in.Payload); err != nil {
			return nil, err
		}
	case config.JobTypeGenerateVisibilityReport:
		if err := validatePayload[dto.GenerateVisibilityReportPayload](in.Payload); err != nil {
			return nil, err
		}
	}

	runAt := time.Now()
	if in.RunAt != nil {
		runAt = *in.RunAt
	}

	job := models.Job{
		JobType: in.JobType,
		Payload: datatypes.JSON(in.Payload),
		Status:  string(config.JobStatusPending),
		RunAt:   runAt,
	}

	if err := s.repo.Create(ctx, &job); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return nil, common.Errf(http.StatusRequestTimeout, "request was canceled")
		case errors.Is(err, context.DeadlineExceeded):
			return nil, common.Errf(http.StatusRequestTimeout, "request timeout")
		default:
			return nil, common.Errf(http.StatusInternalServerError, "failed to add job to database")
		}
	}

	resp := toResponseDTO(&job)
	return &resp, nil
}

// GetJobByID retrieves a job by its ID from the repository.
// It maps repository errors to appropriate API errors
// (e.g., not found, timeout, or internal failure).
func (s *JobService) GetJobByID(ctx context.Context, id uint) (*dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	job, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(err, context.Canceled) {
			return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
		}

		if errors.Is(err, gorm.ErrRecordNotFound) ||
			strings.Contains(err.Error(), "job not found") {
			return nil, common.Errf(http.StatusNotFound, "job not found")
		}

		return nil, common.Errf(http.StatusInternalServerError, "failed to get job")
	}

	resp := toResponseDTO(job)
	return &resp, nil
}

// ListJobs retrieves jobs filtered by status (empty status returns all).
func (s *JobService) ListJobs(ctx context.Context, status string) ([]dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	jobs, err := s.repo.List(ctx, status)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(err, context.Canceled) {
			return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
		}

		return nil, common.Errf(http.StatusInternalServerError, "failed to list jobs")
	}

	dtos := make([]dto.JobResponseDTO, len(jobs))
	for i := range jobs {
		dtos[i] = toResponseDTO(&jobs[i])
	}

	return dtos, nil
}

func toResponseDTO(job *models.Job) dto.JobResponseDTO {
	return dto.JobResponseDTO{
		ID:           job.ID,
		JobType:      job.JobType,
		Payload:      json.RawMessage(job.Payload),
		Status:       job.Status,
		RetryCount:   job.RetryCount,
		RunAt:        job.RunAt,
		Result:       json.RawMessage(job.Result),
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}
}
