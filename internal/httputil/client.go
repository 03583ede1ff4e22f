// Package httputil provides the JSON HTTP client used for hosted
// collaborators (search index, purchase provider).
package httputil

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

// Client is a JSON-over-HTTP client with API-key auth and bounded retries on
// transient upstream failures.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	authHeader   string
	authValue    string
	extraHeaders map[string]string
	maxRetries   int
}

// Config configures the client. AuthHeader defaults to "Authorization"; the
// key is sent verbatim, so include a "Bearer " prefix when the API wants one.
type Config struct {
	BaseURL    string
	AuthHeader string
	APIKey     string
	Headers    map[string]string
	Timeout    time.Duration
	MaxRetries int
}

// New creates a client. A zero timeout defaults to 5s.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	authHeader := cfg.AuthHeader
	if authHeader == "" {
		authHeader = "Authorization"
	}

	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		authHeader:   authHeader,
		authValue:    cfg.APIKey,
		extraHeaders: cfg.Headers,
		maxRetries:   cfg.MaxRetries,
	}
}

// Do executes a request, retrying transient upstream failures (502, 503,
// 429) up to MaxRetries times.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	var resp *http.Response
	var lastErr error
	for attempt := 0; ; attempt++ {
		resp, lastErr = c.send(ctx, method, path, payload)
		if lastErr == nil && !isTransient(resp.StatusCode) {
			return resp, nil
		}
		if attempt >= c.maxRetries {
			break
		}
		if resp != nil {
			resp.Body.Close()
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 100 * time.Millisecond):
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authValue != "" {
		req.Header.Set(c.authHeader, c.authValue)
	}
	for k, v := range c.extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func isTransient(status int) bool {
	return status == http.StatusBadGateway ||
		status == http.StatusServiceUnavailable ||
		status == http.StatusTooManyRequests
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// ReadBody drains the response body up to limit bytes and closes it. Error
// statuses (>= 400) become errors carrying the trimmed body text.
func ReadBody(resp *http.Response, limit int64) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// DecodeResponse decodes a JSON response into target via ReadBody.
func DecodeResponse(resp *http.Response, target any) error {
	body, err := ReadBody(resp, 8<<20)
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
