package job

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/matbakh-app/google-job-worker/internal/dto"
	"github.com/matbakh-app/google-job-worker/internal/models"
	"github.com/matbakh-app/google-job-worker/internal/worker"
)

// JobRepoInterface is the slice of the job store the enqueue API uses.
type JobRepoInterface interface {
	Create(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, id uint) (*models.Job, error)
	List(ctx context.Context, status string) ([]models.Job, error)
}

// JobServiceInterface defines the contract for job business logic operations.
type JobServiceInterface interface {
	CreateJob(ctx context.Context, dto *dto.JobCreateDTO) (*dto.JobResponseDTO, error)
	GetJobByID(ctx context.Context, id uint) (*dto.JobResponseDTO, error)
	ListJobs(ctx context.Context, status string) ([]dto.JobResponseDTO, error)
}

// JobHandlerInterface defines the contract for HTTP request handlers.
type JobHandlerInterface interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
}

// BatchRunner executes one worker batch; implemented by worker.Runner.
type BatchRunner interface {
	RunBatch(ctx context.Context) (worker.Summary, error)
}
