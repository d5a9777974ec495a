// Package llm adapts the Anthropic Messages API to domain.LanguageService.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"nlschedule/internal/domain"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-sonnet-4-20250514"
	apiVersion       = "2023-06-01"
	maxErrorBodySize = 512
)

// APIError is a non-2xx reply from the Messages API.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Config holds the adapter settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout bounds one request including reading the reply.
	Timeout time.Duration
	// Location is the zone in which the model reads and writes wall-clock times.
	Location *time.Location
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is overwritten by Config.Timeout
// when that is set.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Client talks to the Messages API. It never retries; a failed call is reported to the caller.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	loc        *time.Location
	httpClient *http.Client
}

// New creates a Client from cfg.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		loc:        cfg.Location,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.loc == nil {
		c.loc = time.UTC
	}
	for _, opt := range opts {
		opt(c)
	}
	if cfg.Timeout > 0 {
		// Copy so a shared client such as http.DefaultClient keeps its own timeout.
		hc := *c.httpClient
		hc.Timeout = cfg.Timeout
		c.httpClient = &hc
	}
	return c
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// complete sends a single user turn and returns the concatenated text blocks of the reply.
func (c *Client) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(messageRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read reply: %v", domain.ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b := string(raw)
		if len(b) > maxErrorBodySize {
			b = b[:maxErrorBodySize]
		}
		return "", fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, &APIError{StatusCode: resp.StatusCode, Body: b})
	}

	var out messageResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: decode reply envelope: %v", domain.ErrExtractionFailed, err)
	}
	var sb strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: reply has no text", domain.ErrExtractionFailed)
	}
	return sb.String(), nil
}

// unfence strips a Markdown code fence (```json or ```) around a reply, if present.
func unfence(text string) string {
	if i := strings.Index(text, "```json"); i >= 0 {
		text = text[i+len("```json"):]
	} else if i := strings.Index(text, "```"); i >= 0 {
		text = text[i+3:]
	} else {
		return strings.TrimSpace(text)
	}
	if j := strings.Index(text, "```"); j >= 0 {
		text = text[:j]
	}
	return strings.TrimSpace(text)
}
