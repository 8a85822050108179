// Package ai generates LinkedIn post drafts through the configured language
// model providers. The primary provider is tried first; transient failures
// fall through to the secondary before surfacing.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"postforge/internal/common/config"
	"postforge/internal/common/errors"
	httpx "postforge/internal/common/http"
	"postforge/internal/common/logger"
	"postforge/internal/common/services"
)

// Generation is one produced post draft.
type Generation struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
}

type Client struct {
	openai    config.ProviderConfig
	anthropic config.ProviderConfig
	client    *httpx.Client
	logger    logger.Logger
	retry     *errors.RetryHandler
}

func NewClient(providers config.ProvidersConfig, log logger.Logger) *Client {
	return &Client{
		openai:    providers.OpenAI,
		anthropic: providers.Anthropic,
		client:    httpx.NewClient(config.GetDuration(providers.OpenAI.Timeout)),
		logger:    log.WithFields(map[string]interface{}{"service": "ai"}),
		retry:     errors.NewRetryHandler(providers.OpenAI.MaxRetries, config.GetDuration(providers.OpenAI.BaseDelay)),
	}
}

// Generate produces a post draft for the prompt. The primary provider's
// failure is only surfaced when the secondary also fails; the error returned
// is always the classified primary failure so callers see a stable kind.
func (c *Client) Generate(ctx context.Context, prompt string) (*Generation, error) {
	primary := services.WithRetry(c.retry,
		services.WithServiceErrors(services.ProviderOpenAI, c.logger, func(ctx context.Context) (*Generation, error) {
			return c.callOpenAI(ctx, prompt)
		}))

	gen, primaryErr := primary(ctx)
	if primaryErr == nil {
		return gen, nil
	}
	if ctx.Err() != nil || c.anthropic.APIKey == "" {
		return nil, primaryErr
	}

	c.logger.Warn("primary provider failed, trying secondary", map[string]interface{}{
		"error": errors.SanitizeString(primaryErr.Error()),
	})

	secondary := services.WithServiceErrors(services.ProviderAnthropic, c.logger, func(ctx context.Context) (*Generation, error) {
		return c.callAnthropic(ctx, prompt)
	})
	gen, secondaryErr := secondary(ctx)
	if secondaryErr != nil {
		return nil, primaryErr
	}
	return gen, nil
}

// TrendingTopics fetches topic suggestions for prompt enrichment. Strictly
// optional: any failure yields an empty list and the caller proceeds.
func (c *Client) TrendingTopics(ctx context.Context, industry string) []string {
	fetch := services.WithFallback(services.ProviderOpenAI, []string{}, c.logger,
		func(ctx context.Context) ([]string, error) {
			return c.fetchTopics(ctx, industry)
		})
	topics, _ := fetch(ctx)
	return topics
}

func (c *Client) callOpenAI(ctx context.Context, prompt string) (*Generation, error) {
	requestBody := map[string]interface{}{
		"model": "gpt-4o-mini",
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
	}

	var apiResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.postJSON(ctx, c.openai, "/chat/completions", requestBody, &apiResponse); err != nil {
		return nil, err
	}
	if len(apiResponse.Choices) == 0 || strings.TrimSpace(apiResponse.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("openai: empty completion")
	}
	return &Generation{Text: apiResponse.Choices[0].Message.Content, Provider: "openai"}, nil
}

func (c *Client) callAnthropic(ctx context.Context, prompt string) (*Generation, error) {
	requestBody := map[string]interface{}{
		"model":      "claude-3-5-haiku-latest",
		"max_tokens": 1024,
		"system":     systemPrompt,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	var apiResponse struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := c.postJSON(ctx, c.anthropic, "/messages", requestBody, &apiResponse); err != nil {
		return nil, err
	}
	if len(apiResponse.Content) == 0 || strings.TrimSpace(apiResponse.Content[0].Text) == "" {
		return nil, fmt.Errorf("anthropic: empty completion")
	}
	return &Generation{Text: apiResponse.Content[0].Text, Provider: "anthropic"}, nil
}

func (c *Client) fetchTopics(ctx context.Context, industry string) ([]string, error) {
	requestBody := map[string]interface{}{
		"model": "gpt-4o-mini",
		"messages": []map[string]string{
			{"role": "user", "content": "List five trending discussion topics for the " + industry + " industry, one per line."},
		},
	}

	var apiResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.postJSON(ctx, c.openai, "/chat/completions", requestBody, &apiResponse); err != nil {
		return nil, err
	}
	if len(apiResponse.Choices) == 0 {
		return nil, fmt.Errorf("openai: empty completion")
	}

	var topics []string
	for _, line := range strings.Split(apiResponse.Choices[0].Message.Content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			topics = append(topics, line)
		}
	}
	return topics, nil
}

// postJSON issues one provider request. Non-2xx statuses become errors
// carrying status and response text so the classification layer can key off
// them.
func (c *Client) postJSON(ctx context.Context, provider config.ProviderConfig, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", provider.BaseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+provider.APIKey)

	resp, err := c.client.DoWithContext(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(text))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

const systemPrompt = "You write concise, engaging LinkedIn posts in the author's voice. " +
	"Plain language, no hashtag spam, at most 1300 characters."
