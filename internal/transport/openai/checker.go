// Package openai validates the OpenAI key that Weaviate forwards to its
// text2vec-openai and generative-openai modules.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ErrKeyRejected signals that the API refused the configured key.
var ErrKeyRejected = errors.New("openai key rejected")

// Config holds the OpenAI client settings.
type Config struct {
	APIKey  string
	BaseURL string
	Logger  *zap.Logger
}

// Checker probes the OpenAI API with the configured key.
type Checker struct {
	client *openai.Client
	logger *zap.Logger
}

// NewChecker creates an OpenAI key checker. An empty BaseURL keeps the public endpoint.
func NewChecker(cfg *Config) *Checker {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		client: openai.NewClientWithConfig(clientCfg),
		logger: logger,
	}
}

// Models lists the model IDs visible to the key.
func (c *Checker) Models(ctx context.Context) ([]string, error) {
	resp, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, parseAPIError(err)
	}
	ids := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// HealthCheck verifies the key via ListModels (free endpoint).
func (c *Checker) HealthCheck(ctx context.Context) error {
	ids, err := c.Models(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	c.logger.Debug("OpenAI key accepted", zap.Int("models", len(ids)))
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// 401 and 403 are wrapped with ErrKeyRejected.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractMessage(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return statusError(reqErr.HTTPStatusCode, detail)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.HTTPStatusCode, apiErr.Message)
	}

	return fmt.Errorf("openai request failed: %w", err)
}

func statusError(status int, msg string) error {
	if status == 401 || status == 403 {
		return fmt.Errorf("openai API error %d: %s: %w", status, msg, ErrKeyRejected)
	}
	return fmt.Errorf("openai API error %d: %s", status, msg)
}

// extractMessage pulls "error.message" or "detail" out of a JSON error body.
func extractMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	if parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return parsed.Detail
}
