package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matbakh-app/google-job-worker/internal/models"
	"gorm.io/gorm"
)

// ErrTokenNotFound is returned when a partner has no stored OAuth token.
var ErrTokenNotFound = errors.New("oauth token not found")

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) GetToken(ctx context.Context, userID string) (*models.OAuthToken, error) {
	var tok models.OAuthToken
	if err := r.db.WithContext(ctx).First(&tok, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("get token: %w", err)
	}
	return &tok, nil
}

// SaveAccessToken persists the result of a refresh. The refresh_token column
// is only rewritten when the provider rotated it.
func (r *TokenRepository) SaveAccessToken(ctx context.Context, userID, accessToken string, expiresAt time.Time, refreshToken *string) error {
	updates := map[string]any{
		"access_token": accessToken,
		"expires_at":   expiresAt,
	}
	if refreshToken != nil {
		updates["refresh_token"] = *refreshToken
	}

	if err := r.db.WithContext(ctx).Model(&models.OAuthToken{}).
		Where("user_id = ?", userID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}
