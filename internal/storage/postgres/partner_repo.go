package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/matbakh-app/google-job-worker/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PartnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

// GetGoogleAccountID returns the cached account resource name, or "" when
// discovery has not run yet for this partner.
func (r *PartnerRepository) GetGoogleAccountID(ctx context.Context, partnerID string) (string, error) {
	var partner models.BusinessPartner
	if err := r.db.WithContext(ctx).First(&partner, "id = ?", partnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("partner %s not found: %w", partnerID, err)
		}
		return "", fmt.Errorf("get partner: %w", err)
	}
	if partner.GoogleAccountID == nil {
		return "", nil
	}
	return *partner.GoogleAccountID, nil
}

// SetGoogleAccountID memoizes the discovered account resource name.
func (r *PartnerRepository) SetGoogleAccountID(ctx context.Context, partnerID, accountID string) error {
	if err := r.db.WithContext(ctx).Model(&models.BusinessPartner{}).
		Where("id = ?", partnerID).
		Update("google_account_id", accountID).Error; err != nil {
		return fmt.Errorf("set google account id: %w", err)
	}
	return nil
}

// ConnectProfile stores the external location id on the partner's profile
// and flags it connected.
func (r *PartnerRepository) ConnectProfile(ctx context.Context, partnerID, placeID string) error {
	if err := r.db.WithContext(ctx).Model(&models.BusinessProfile{}).
		Where("partner_id = ?", partnerID).
		Updates(map[string]any{
			"google_place_id":  placeID,
			"google_connected": true,
		}).Error; err != nil {
		return fmt.Errorf("connect profile: %w", err)
	}
	return nil
}

// GetProfile loads the partner's business profile.
func (r *PartnerRepository) GetProfile(ctx context.Context, partnerID string) (*models.BusinessProfile, error) {
	var profile models.BusinessProfile
	if err := r.db.WithContext(ctx).First(&profile, "partner_id = ?", partnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("business profile for partner %s not found: %w", partnerID, err)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

// UpdateProfileFields mirrors accepted external updates into the local
// profile row.
func (r *PartnerRepository) UpdateProfileFields(ctx context.Context, partnerID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&models.BusinessProfile{}).
		Where("partner_id = ?", partnerID).
		Updates(fields).Error; err != nil {
		return fmt.Errorf("update profile fields: %w", err)
	}
	return nil
}

// AppendAudit writes one audit trail entry.
func (r *PartnerRepository) AppendAudit(ctx context.Context, partnerID, action string, details datatypes.JSON) error {
	entry := models.AuditLog{
		PartnerID: partnerID,
		Action:    action,
		Details:   details,
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}
