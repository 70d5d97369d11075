package models

import (
	"time"

	"gorm.io/datatypes"
)

// Job is one row in the durable work queue. A worker claims it by flipping
// status from pending to in_progress together with a lease (locked_by /
// locked_until), so overlapping invocations cannot double-execute it.
type Job struct {
	ID           uint           `gorm:"primaryKey;autoIncrement"`
	JobType      string         `gorm:"type:varchar(64);not null;index"`
	Payload      datatypes.JSON `gorm:"type:jsonb"`
	Status       string         `gorm:"type:varchar(32);not null;default:'pending';index"`
	RetryCount   int            `gorm:"not null;default:0"`
	RunAt        time.Time      `gorm:"not null;index"`
	LockedBy     *string        `gorm:"type:varchar(255)"`
	LockedUntil  *time.Time
	Result       datatypes.JSON `gorm:"type:jsonb"`
	ErrorMessage string         `gorm:"type:text"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
}
