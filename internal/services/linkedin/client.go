// Package linkedin publishes member posts through the LinkedIn REST API.
// Auth failures surface as the token-expired kind so the UI can route the
// user to account reconnection rather than a generic failure page.
package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"postforge/internal/common/config"
	"postforge/internal/common/errors"
	httpx "postforge/internal/common/http"
	"postforge/internal/common/logger"
	"postforge/internal/common/services"
)

type Client struct {
	cfg    config.LinkedInConfig
	client *httpx.Client
	logger logger.Logger
	retry  *errors.RetryHandler
}

func NewClient(cfg config.LinkedInConfig, log logger.Logger) *Client {
	return &Client{
		cfg:    cfg,
		client: httpx.NewClient(config.GetDuration(cfg.Timeout)),
		logger: log.WithFields(map[string]interface{}{"service": "linkedin"}),
		retry:  errors.NewRetryHandler(cfg.MaxRetries, config.GetDuration(cfg.BaseDelay)),
	}
}

// Profile is the subset of member data needed for post attribution.
type Profile struct {
	ID        string `json:"id"`
	FirstName string `json:"localizedFirstName"`
	LastName  string `json:"localizedLastName"`
}

// GetProfile fetches the member profile for the given access token.
func (c *Client) GetProfile(ctx context.Context, accessToken string) (*Profile, error) {
	op := services.WithRetry(c.retry,
		services.WithServiceErrors(services.ProviderLinkedIn, c.logger, func(ctx context.Context) (*Profile, error) {
			return c.fetchProfile(ctx, accessToken)
		}))
	return op(ctx)
}

// PublishPost shares the text as an immediate public post and returns the
// platform's post id.
func (c *Client) PublishPost(ctx context.Context, accessToken, memberID, text string) (string, error) {
	op := services.WithRetry(c.retry,
		services.WithServiceErrors(services.ProviderLinkedIn, c.logger, func(ctx context.Context) (string, error) {
			return c.createShare(ctx, accessToken, memberID, text)
		}))
	return op(ctx)
}

func (c *Client) fetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequest("GET", c.cfg.BaseURL+"/me", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.DoWithContext(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &profile, nil
}

func (c *Client) createShare(ctx context.Context, accessToken, memberID, text string) (string, error) {
	requestBody := map[string]interface{}{
		"author":         "urn:li:person:" + memberID,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": map[string]interface{}{
				"shareCommentary":    map[string]string{"text": text},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	payload, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", c.cfg.BaseURL+"/ugcPosts", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := c.client.DoWithContext(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return created.ID, nil
}

// checkStatus turns non-2xx replies into errors. 401s mention the token so
// the classification rules route them to reconnection.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	text, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("access token rejected: status %d: %s", resp.StatusCode, string(text))
	}
	return fmt.Errorf("status %d: %s", resp.StatusCode, string(text))
}
