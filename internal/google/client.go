package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/matbakh-app/google-job-worker/internal/config"
)

// TokenSource supplies valid access tokens; force bypasses the expiry check
// after the API answered 401/403.
type TokenSource interface {
	EnsureValidToken(ctx context.Context, partnerID string, force bool) (string, error)
}

// Client talks to the Google Business Profile APIs on behalf of a partner.
// Base URLs come from config so tests can point it at a stub server.
type Client struct {
	http            *http.Client
	tokens          TokenSource
	accountsBaseURL string
	businessBaseURL string
	postsBaseURL    string
	log             *slog.Logger
}

func NewClient(tokens TokenSource, cfg config.GoogleConfig, log *slog.Logger) *Client {
	return &Client{
		http:            &http.Client{Timeout: cfg.HTTPTimeout},
		tokens:          tokens,
		accountsBaseURL: strings.TrimRight(cfg.AccountsBaseURL, "/"),
		businessBaseURL: strings.TrimRight(cfg.BusinessBaseURL, "/"),
		postsBaseURL:    strings.TrimRight(cfg.PostsBaseURL, "/"),
		log:             log,
	}
}

// doWithAuthRetry executes one API call with a valid token. On 401/403 it
// forces a single token refresh and retries once; every other response is
// returned as-is.
func (c *Client) doWithAuthRetry(ctx context.Context, partnerID string, build func(token string) (*http.Request, error)) (*http.Response, error) {
	tok, err := c.tokens.EnsureValidToken(ctx, partnerID, false)
	if err != nil {
		return nil, err
	}

	req, err := build(tok)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google api request: %w", err)
	}

	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		return resp, nil
	}

	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	c.log.Warn("google api auth failure, refreshing token",
		slog.String("partner_id", partnerID),
		slog.Int("status", resp.StatusCode))

	tok, err = c.tokens.EnsureValidToken(ctx, partnerID, true)
	if err != nil {
		return nil, err
	}

	req, err = build(tok)
	if err != nil {
		return nil, err
	}

	resp, err = c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google api retry: %w", err)
	}
	return resp, nil
}

func (c *Client) jsonRequest(ctx context.Context, method, rawURL, token string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// decode reads the response, translating non-2xx statuses into an error
// carrying the provider's message.
func decode(resp *http.Response, op string, out any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%s failed (%d): %s", op, resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("%s failed with status %d", op, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// ListAccounts performs account discovery and returns the partner's first
// account resource name, e.g. "accounts/1".
func (c *Client) ListAccounts(ctx context.Context, partnerID string) (string, error) {
	resp, err := c.doWithAuthRetry(ctx, partnerID, func(token string) (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodGet, c.accountsBaseURL+"/accounts", token, nil)
	})
	if err != nil {
		return "", err
	}

	var accounts accountsResponse
	if err := decode(resp, "list accounts", &accounts); err != nil {
		return "", err
	}
	if len(accounts.Accounts) == 0 {
		return "", fmt.Errorf("no google business account found for partner %s", partnerID)
	}
	return accounts.Accounts[0].Name, nil
}

// CreateLocation creates the location under the account and returns the new
// resource name, e.g. "accounts/1/locations/99".
func (c *Client) CreateLocation(ctx context.Context, partnerID, accountName string, loc *Location) (string, error) {
	resp, err := c.doWithAuthRetry(ctx, partnerID, func(token string) (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodPost, c.businessBaseURL+"/"+accountName+"/locations", token, loc)
	})
	if err != nil {
		return "", err
	}

	var created Location
	if err := decode(resp, "create location", &created); err != nil {
		return "", err
	}
	if created.Name == "" {
		return "", fmt.Errorf("create location: response missing resource name")
	}
	return created.Name, nil
}

// PatchLocation applies a partial update; updateMask lists exactly the
// fields present in loc.
func (c *Client) PatchLocation(ctx context.Context, partnerID, locationName string, loc *Location, mask []string) error {
	patchURL := fmt.Sprintf("%s/%s?updateMask=%s",
		c.businessBaseURL, locationName, url.QueryEscape(strings.Join(mask, ",")))

	resp, err := c.doWithAuthRetry(ctx, partnerID, func(token string) (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodPatch, patchURL, token, loc)
	})
	if err != nil {
		return err
	}
	return decode(resp, "patch location", nil)
}

// CreateLocalPost publishes a post to the location's posts collection.
func (c *Client) CreateLocalPost(ctx context.Context, partnerID, locationName string, post *LocalPost) (string, error) {
	resp, err := c.doWithAuthRetry(ctx, partnerID, func(token string) (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodPost, c.postsBaseURL+"/"+locationName+"/localPosts", token, post)
	})
	if err != nil {
		return "", err
	}

	var created LocalPost
	if err := decode(resp, "create local post", &created); err != nil {
		return "", err
	}
	return created.Name, nil
}
