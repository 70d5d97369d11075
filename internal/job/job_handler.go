package job

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/matbakh-app/google-job-worker/common"
	"github.com/matbakh-app/google-job-worker/internal/dto"
	"github.com/matbakh-app/google-job-worker/middleware"
)

type JobHandler struct {
	service JobServiceInterface
}

func NewJobHandler(s JobServiceInterface) *JobHandler {
	return &JobHandler{service: s}
}

var _ JobHandlerInterface = (*JobHandler)(nil)

// Create handles HTTP requests for creating a new job.
// It validates and binds the request body, delegates business logic
// to the JobService, and returns HTTP 201 on successful creation.
func (h *JobHandler) Create(c *gin.Context) {
	var req dto.JobCreateDTO

	if !middleware.Bind(c, &req) {
		c.Abort()
		return
	}

	resp, err := h.service.CreateJob(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Get handles HTTP requests to fetch a job by its ID.
func (h *JobHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, common.APIError{Message: "Invalid ID"})
		return
	}

	resp, err := h.service.GetJobByID(c.Request.Context(), uint(id))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// List handles HTTP requests to retrieve jobs, optionally filtered by the
// status query parameter.
func (h *JobHandler) List(c *gin.Context) {
	jobs, err := h.service.ListJobs(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, jobs)
}
