// Package weaviate is the vector database adapter: it encodes typed queries as
// GraphQL, posts them to a Weaviate instance and decodes the card rows.
package weaviate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/magicchat/internal/domain"
	"github.com/kailas-cloud/magicchat/internal/domain/search/query"
	"github.com/kailas-cloud/magicchat/internal/domain/search/result"
	"github.com/kailas-cloud/magicchat/internal/metrics"
)

const (
	graphQLPath = "/v1/graphql"
	readyPath   = "/v1/.well-known/ready"

	maxResponseBytes = 32 << 20
	maxErrorBytes    = 4 << 10
)

// Config holds the Weaviate connection settings.
type Config struct {
	URL       string
	APIKey    string
	OpenAIKey string
	Class     string
	Timeout   time.Duration
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client queries a Weaviate instance over its GraphQL endpoint.
type Client struct {
	baseURL   string
	apiKey    string
	openAIKey string
	class     string
	http      *http.Client
	logger    *zap.Logger
}

// NewClient creates a Weaviate client. A URL without scheme is treated as https.
func NewClient(cfg Config) (*Client, error) {
	base, err := normalizeURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	class := cfg.Class
	if class == "" {
		class = "Card"
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   base,
		apiKey:    cfg.APIKey,
		openAIKey: cfg.OpenAIKey,
		class:     class,
		http:      hc,
		logger:    logger,
	}, nil
}

func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("weaviate url is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse weaviate url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("weaviate url %q has no host", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// Class returns the queried class name.
func (c *Client) Class() string { return c.class }

// Encode renders q against the client's class.
func (c *Client) Encode(q query.Query) (string, error) {
	return Encode(c.class, q)
}

// Search executes q and returns the ranked cards. Every failure wraps domain.ErrExternalQuery.
func (c *Client) Search(ctx context.Context, q query.Query) (result.Set, error) {
	doc, err := c.Encode(q)
	if err != nil {
		return result.Set{}, fmt.Errorf("encode query: %w", err)
	}

	m := string(q.Mode())
	start := time.Now()

	set, err := c.post(ctx, doc)

	metrics.QueryRequestDuration.WithLabelValues(m).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.QueryRequestsTotal.WithLabelValues(m, "error").Inc()
		c.logger.Warn("Weaviate query failed",
			zap.String("mode", m),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return result.Set{}, err
	}
	metrics.QueryRequestsTotal.WithLabelValues(m, "success").Inc()
	metrics.QueryResultRows.WithLabelValues(m).Observe(float64(set.Len()))

	c.logger.Debug("Weaviate query completed",
		zap.String("mode", m),
		zap.Int("rows", set.Len()),
		zap.Duration("latency", time.Since(start)),
	)
	return set, nil
}

func (c *Client) post(ctx context.Context, doc string) (result.Set, error) {
	body, err := json.Marshal(map[string]string{"query": doc})
	if err != nil {
		return result.Set{}, fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+graphQLPath, bytes.NewReader(body))
	if err != nil {
		return result.Set{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return result.Set{}, domain.NewQueryError(0, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return result.Set{}, domain.NewQueryError(resp.StatusCode, readErrorBody(resp.Body))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return result.Set{}, domain.NewQueryError(0, "read response: "+err.Error())
	}

	set, err := decodeResponse(data, c.class)
	if err != nil {
		return result.Set{}, domain.NewQueryError(resp.StatusCode, err.Error())
	}
	return set, nil
}

// HealthCheck probes the readiness endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+readyPath, http.NoBody)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("weaviate ready: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBytes))

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("weaviate ready: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.openAIKey != "" {
		req.Header.Set("X-OpenAI-Api-Key", c.openAIKey)
	}
}

// readErrorBody extracts a readable message from a Weaviate error body.
func readErrorBody(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBytes))
	var parsed struct {
		Error []struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(data, &parsed) == nil && len(parsed.Error) > 0 {
		msgs := make([]string, len(parsed.Error))
		for i, e := range parsed.Error {
			msgs[i] = e.Message
		}
		return strings.Join(msgs, "; ")
	}
	return strings.TrimSpace(string(data))
}
