package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/matbakh-app/google-job-worker/internal/models"
	"gorm.io/gorm"
)

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Get(ctx context.Context, id string) (*models.VisibilityLead, error) {
	var lead models.VisibilityLead
	if err := r.db.WithContext(ctx).First(&lead, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("visibility lead %s not found: %w", id, err)
		}
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return &lead, nil
}

// SetReportURL records a successfully generated report on the lead.
func (r *LeadRepository) SetReportURL(ctx context.Context, id, url string) error {
	if err := r.db.WithContext(ctx).Model(&models.VisibilityLead{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"report_url":    url,
			"error_message": "",
		}).Error; err != nil {
		return fmt.Errorf("set report url: %w", err)
	}
	return nil
}

// SetError writes a report-generation failure onto the lead itself, next to
// the generic job error path.
func (r *LeadRepository) SetError(ctx context.Context, id, msg string) error {
	if err := r.db.WithContext(ctx).Model(&models.VisibilityLead{}).
		Where("id = ?", id).
		Update("error_message", msg).Error; err != nil {
		return fmt.Errorf("set lead error: %w", err)
	}
	return nil
}
