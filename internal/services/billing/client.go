// Package billing charges subscriptions through the payment processor.
// Declines come back as typed payment errors keyed by decline code; processor
// outages come back as the external-service kind and are retried.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"postforge/internal/common/config"
	"postforge/internal/common/errors"
	httpx "postforge/internal/common/http"
	"postforge/internal/common/logger"
	"postforge/internal/common/services"
)

type Client struct {
	cfg    config.ProviderConfig
	client *httpx.Client
	logger logger.Logger
	retry  *errors.RetryHandler
}

func NewClient(cfg config.ProviderConfig, log logger.Logger) *Client {
	return &Client{
		cfg:    cfg,
		client: httpx.NewClient(config.GetDuration(cfg.Timeout)),
		logger: log.WithFields(map[string]interface{}{"service": "billing"}),
		retry:  errors.NewRetryHandler(cfg.MaxRetries, config.GetDuration(cfg.BaseDelay)),
	}
}

// Charge is one completed payment attempt.
type Charge struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreateCharge bills the customer's stored payment method. Declines are not
// retried; only processor-side failures consume the retry budget.
func (c *Client) CreateCharge(ctx context.Context, customerID string, amountCents int, currency string) (*Charge, error) {
	op := services.WithRetry(c.retry,
		services.WithServiceErrors(services.ProviderStripe, c.logger, func(ctx context.Context) (*Charge, error) {
			return c.createCharge(ctx, customerID, amountCents, currency)
		}))
	return op(ctx)
}

func (c *Client) createCharge(ctx context.Context, customerID string, amountCents int, currency string) (*Charge, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("amount", strconv.Itoa(amountCents))
	form.Set("currency", currency)
	form.Set("confirm", "true")

	req, err := http.NewRequest("POST", c.cfg.BaseURL+"/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.DoWithContext(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var charge Charge
		if err := json.Unmarshal(body, &charge); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return &charge, nil
	}

	// Card errors carry a structured decline code; map those directly and
	// leave everything else to the classification rules.
	var apiErr struct {
		Error struct {
			Type        string `json:"type"`
			Code        string `json:"code"`
			DeclineCode string `json:"decline_code"`
			Message     string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Type == "card_error" {
		declineCode := apiErr.Error.DeclineCode
		if declineCode == "" {
			declineCode = apiErr.Error.Code
		}
		return nil, errors.NewPaymentFailedError(declineCode)
	}

	return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
}
