package mocks

import (
	"context"

	"github.com/matbakh-app/google-job-worker/internal/models"
	"github.com/matbakh-app/google-job-worker/internal/worker"
	"github.com/stretchr/testify/mock"
)

type JobRepoMock struct {
	mock.Mock
}

func (m *JobRepoMock) Create(ctx context.Context, job *models.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *JobRepoMock) Get(ctx context.Context, id uint) (*models.Job, error) {
	args := m.Called(ctx, id)

	job, _ := args.Get(0).(*models.Job)
	return job, args.Error(1)
}

func (m *JobRepoMock) List(ctx context.Context, status string) ([]models.Job, error) {
	args := m.Called(ctx, status)

	jobs, _ := args.Get(0).([]models.Job)
	return jobs, args.Error(1)
}

type BatchRunnerMock struct {
	mock.Mock
}

func (m *BatchRunnerMock) RunBatch(ctx context.Context) (worker.Summary, error) {
	args := m.Called(ctx)

	summary, _ := args.Get(0).(worker.Summary)
	return summary, args.Error(1)
}
