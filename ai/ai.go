// Package ai talks to an OpenAI-compatible API for memo analysis and text
// embeddings. Works against OpenAI itself as well as vLLM, Ollama and other
// servers speaking the same wire format.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single API call when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

const (
	defaultModel      = "gpt-4o-mini"
	defaultEmbedModel = "text-embedding-3-small"
)

// Options configures the client.
type Options struct {
	// Endpoint is the API base URL, e.g. "https://api.openai.com" or a
	// local Ollama address.
	Endpoint string
	// APIKey is sent as a bearer token when non-empty.
	APIKey string
	// Model used for memo analysis.
	Model string
	// EmbedModel used for embeddings.
	EmbedModel string
	Timeout    time.Duration
}

// Client is a thin HTTP client for the chat completions and embeddings
// endpoints. Safe for concurrent use.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	embedModel string
	client     *http.Client
}

// New creates a client for the given endpoint.
func New(o Options) *Client {
	if o.Model == "" {
		o.Model = defaultModel
	}
	if o.EmbedModel == "" {
		o.EmbedModel = defaultEmbedModel
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	return &Client{
		endpoint:   strings.TrimRight(o.Endpoint, "/"),
		apiKey:     o.APIKey,
		model:      o.Model,
		embedModel: o.EmbedModel,
		client:     &http.Client{Timeout: o.Timeout},
	}
}

// Enabled reports whether an endpoint is configured at all. A disabled
// client fails every call, which callers treat as analysis being off.
func (c *Client) Enabled() bool {
	return c.endpoint != ""
}

// postJSON sends one JSON request and decodes the JSON response into out.
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	if c.endpoint == "" {
		return fmt.Errorf("ai: no endpoint configured")
	}

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := c.endpoint + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP POST %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, url, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
