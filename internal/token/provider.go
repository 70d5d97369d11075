package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matbakh-app/google-job-worker/internal/config"
	"github.com/matbakh-app/google-job-worker/internal/models"
	"github.com/matbakh-app/google-job-worker/internal/storage/postgres"
)

// Store is the slice of the token repository the provider needs.
type Store interface {
	GetToken(ctx context.Context, userID string) (*models.OAuthToken, error)
	SaveAccessToken(ctx context.Context, userID, accessToken string, expiresAt time.Time, refreshToken *string) error
}

// Provider hands out valid Google access tokens for partners, refreshing
// through the OAuth token endpoint when needed. Both the proactive expiry
// check and the reactive 401/403 retry go through EnsureValidToken, so there
// is exactly one refresh path.
type Provider struct {
	store        Store
	http         *http.Client
	tokenURL     string
	clientID     string
	clientSecret string
	log          *slog.Logger
}

func NewProvider(store Store, cfg config.GoogleConfig, log *slog.Logger) *Provider {
	return &Provider{
		store:        store,
		http:         &http.Client{Timeout: cfg.HTTPTimeout},
		tokenURL:     cfg.TokenURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		log:          log,
	}
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

type refreshError struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

// EnsureValidToken returns an access token for the partner, refreshing it
// first when it is expired or when force is set (after a 401/403 upstream).
func (p *Provider) EnsureValidToken(ctx context.Context, partnerID string, force bool) (string, error) {
	tok, err := p.store.GetToken(ctx, partnerID)
	if err != nil {
		if errors.Is(err, postgres.ErrTokenNotFound) {
			return "", fmt.Errorf("partner %s: %w", partnerID, ErrNoToken)
		}
		return "", err
	}

	if !force && time.Now().Before(tok.ExpiresAt) {
		return tok.AccessToken, nil
	}

	if tok.RefreshToken == nil || *tok.RefreshToken == "" {
		return "", fmt.Errorf("partner %s: %w", partnerID, ErrExpiredNoRefresh)
	}

	return p.refresh(ctx, partnerID, *tok.RefreshToken)
}

func (p *Provider) refresh(ctx context.Context, partnerID, refreshToken string) (string, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {p.clientID},
		"client_secret": {p.clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token refresh request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read refresh response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var oauthErr refreshError
		if json.Unmarshal(body, &oauthErr) == nil && oauthErr.Description != "" {
			return "", fmt.Errorf("token refresh rejected: %s", oauthErr.Description)
		}
		return "", fmt.Errorf("token refresh failed with status %d", resp.StatusCode)
	}

	var refreshed refreshResponse
	if err := json.Unmarshal(body, &refreshed); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if refreshed.AccessToken == "" {
		return "", fmt.Errorf("token refresh response missing access_token")
	}

	expiresAt := time.Now().Add(time.Duration(refreshed.ExpiresIn) * time.Second)

	var rotated *string
	if refreshed.RefreshToken != "" {
		rotated = &refreshed.RefreshToken
	}

	if err := p.store.SaveAccessToken(ctx, partnerID, refreshed.AccessToken, expiresAt, rotated); err != nil {
		return "", err
	}

	p.log.Info("refreshed oauth token",
		slog.String("partner_id", partnerID),
		slog.Time("expires_at", expiresAt))

	return refreshed.AccessToken, nil
}
