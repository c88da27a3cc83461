// Client for a running relay's HTTP API
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// RelayClient makes HTTP requests to a running token relay.
type RelayClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRelayClient creates a client for the relay at baseURL.
func NewRelayClient(baseURL string, client *http.Client) *RelayClient {
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &RelayClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// HealthStatus is the body of GET /api/health.
type HealthStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// PublicConfig is the body of GET /api/config.
type PublicConfig struct {
	AppID       string `json:"appId"`
	RedirectURI string `json:"redirectUri"`
}

// ExchangeResponse is the success body of POST /api/exchange-token.
type ExchangeResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Message     string `json:"message"`
}

// ErrorResponse is the failure body returned by every relay endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Get performs a GET request to the specified path and returns the raw response.
func (c *RelayClient) Get(ctx context.Context, path string) (*APIResponse, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (c *RelayClient) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return c.do(ctx, http.MethodPost, path, data)
}

func (c *RelayClient) do(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &APIResponse{StatusCode: resp.StatusCode, Body: raw}, nil
}

// Health calls GET /api/health.
func (c *RelayClient) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.getJSON(ctx, "/api/health", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Config calls GET /api/config.
func (c *RelayClient) Config(ctx context.Context) (*PublicConfig, error) {
	var cfg PublicConfig
	if err := c.getJSON(ctx, "/api/config", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ExchangeToken calls POST /api/exchange-token with the given authorization code.
func (c *RelayClient) ExchangeToken(ctx context.Context, code string) (*ExchangeResponse, error) {
	payload, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.Post(ctx, "/api/exchange-token", payload)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, responseError(resp)
	}

	var out ExchangeResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

func (c *RelayClient) getJSON(ctx context.Context, path string, dst any) error {
	resp, err := c.Get(ctx, path)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return responseError(resp)
	}
	if err := json.Unmarshal(resp.Body, dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// responseError converts a non-2xx relay response into an error carrying the relay's message.
func responseError(resp *APIResponse) error {
	var body ErrorResponse
	if err := json.Unmarshal(resp.Body, &body); err == nil && body.Error != "" {
		if body.Details != "" {
			return fmt.Errorf("relay returned %d: %s (%s)", resp.StatusCode, body.Error, body.Details)
		}
		return fmt.Errorf("relay returned %d: %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("relay returned %d: %s", resp.StatusCode, strings.TrimSpace(string(resp.Body)))
}
