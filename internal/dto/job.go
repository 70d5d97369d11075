package dto

import (
	"encoding/json"
	"time"
)

type JobCreateDTO struct {
	JobType string          `json:"job_type" validate:"required"`
	Payload json.RawMessage `json:"payload" validate:"required"`
	RunAt   *time.Time      `json:"run_at,omitempty"`
}

type JobResponseDTO struct {
	ID           uint            `json:"id"`
	JobType      string          `json:"job_type"`
	Payload      json.RawMessage `json:"payload"`
	Status       string          `json:"status"`
	RetryCount   int             `json:"retry_count"`
	RunAt        time.Time       `json:"run_at"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
