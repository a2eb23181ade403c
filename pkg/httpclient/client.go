package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/richxcame/visit-pricing/pkg/logger"
	"github.com/richxcame/visit-pricing/pkg/middleware"
	"github.com/richxcame/visit-pricing/pkg/resilience"
)

// maxErrorBody bounds how much of a failed response is kept on HTTPError
const maxErrorBody = 4 << 10

// Client sends JSON requests to one upstream API
type Client struct {
	httpClient *http.Client
	baseURL    string
	name       string
	retry      *resilience.RetryConfig
	// expected lists the only accepted statuses; empty accepts anything below 400
	expected []int
}

// Option configures a Client
type Option func(*Client)

// WithRetry retries failed calls. Without a RetryableChecker only
// transport errors and transient statuses are retried.
func WithRetry(config resilience.RetryConfig) Option {
	if config.RetryableChecker == nil {
		config.RetryableChecker = isTransient
	}
	return func(c *Client) { c.retry = &config }
}

// WithName labels the client in retry metrics and logs
func WithName(name string) Option {
	return func(c *Client) { c.name = name }
}

// WithExpectedStatus rejects every response whose status is not one of codes
func WithExpectedStatus(codes ...int) Option {
	return func(c *Client) { c.expected = codes }
}

// NewClient returns a client rooted at baseURL with a per-attempt timeout
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		name:       "http",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Post sends body as JSON and returns the raw response body
func (c *Client) Post(ctx context.Context, path string, body interface{}, headers map[string]string) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", c.name, err)
	}
	return c.send(ctx, http.MethodPost, path, payload, headers)
}

// Get returns the raw response body of path
func (c *Client) Get(ctx context.Context, path string, headers map[string]string) ([]byte, error) {
	return c.send(ctx, http.MethodGet, path, nil, headers)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, headers map[string]string) ([]byte, error) {
	attempt := func(ctx context.Context) ([]byte, error) {
		return c.do(ctx, method, path, payload, headers)
	}
	if c.retry == nil {
		return attempt(ctx)
	}
	return resilience.Retry(ctx, *c.retry, c.name, attempt)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, headers map[string]string) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.CorrelationIDHeader, id)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, c.name, err)
	}
	defer resp.Body.Close()

	if !c.accepts(resp.StatusCode) {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", c.name, err)
	}
	return data, nil
}

func (c *Client) accepts(status int) bool {
	if len(c.expected) == 0 {
		return status < http.StatusBadRequest
	}
	return slices.Contains(c.expected, status)
}

// HTTPError is an upstream answer with a rejected status
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

func isTransient(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return resilience.IsRetryableHTTPStatus(httpErr.StatusCode)
	}
	return true
}
