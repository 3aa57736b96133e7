// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/songfinder/core"
	"github.com/poiesic/songfinder/session"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const (
	// RequestIDHeader carries a fresh correlation id on every request.
	RequestIDHeader = "X-Request-ID"

	// HealthyStatus is the only status value the health endpoint reports when ready.
	HealthyStatus = "ok"

	maxResponseBytes = 8 << 20
)

// Client talks to the song search backend.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
}

var (
	_ session.Searcher       = (*Client)(nil)
	_ session.FeedbackSender = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient sets the underlying HTTP client. Its transport is instrumented.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("http client cannot be nil")
		}
		clone := *hc
		c.http = &clone
		return nil
	}
}

// WithTimeout bounds every request. Zero leaves requests to the network layer.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d < 0 {
			return fmt.Errorf("timeout cannot be negative: %s", d)
		}
		c.timeout = d
		return nil
	}
}

// WithRateLimit caps outgoing requests per second. Zero rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) error {
		if rps < 0 {
			return fmt.Errorf("requests per second cannot be negative: %v", rps)
		}
		if rps == 0 {
			c.limiter = nil
			return nil
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		return nil
	}
}

// WithLogger sets the logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// NewClient creates a client for the backend rooted at baseURL, for example
// "http://localhost:5000/api".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: base,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "api", "baseUrl", base)

	transport := c.http.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	c.http.Transport = otelhttp.NewTransport(transport)
	return c, nil
}

func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidBaseURL, raw)
	}
	return trimmed, nil
}

// BaseURL returns the normalized backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type searchRequest struct {
	Query string `json:"query"`
}

type errorBody struct {
	Error json.RawMessage `json:"error"`
}

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Healthy reports whether the backend declared itself ready.
func (h HealthStatus) Healthy() bool {
	return h.Status == HealthyStatus
}

// Search implements session.Searcher.
//
// Failures wrap core.ErrTransport (backend unreachable), core.ErrBackend
// (non-2xx status, as *core.BackendError) or core.ErrInvalidResponse.
func (c *Client) Search(ctx context.Context, query string) (*core.SearchResponse, error) {
	normalized, err := core.ValidateQuery(query)
	if err != nil {
		return nil, err
	}

	status, body, err := c.send(ctx, http.MethodPost, "/search", searchRequest{Query: normalized})
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, backendError(status, body)
	}

	var resp core.SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidResponse, err)
	}
	if core.NormalizeResponse(&resp) {
		c.logger.Warn("backend sent a selection without candidates", "query", normalized)
	}
	c.logger.Debug("search completed", "query", normalized, "candidates", len(resp.Candidates), "selected", resp.SelectedTitle())
	return &resp, nil
}

// SendFeedback implements session.FeedbackSender. It is never retried.
func (c *Client) SendFeedback(ctx context.Context, req core.FeedbackRequest) error {
	if err := core.ValidateFeedback(req.Feedback); err != nil {
		return err
	}
	if req.SelectedSongID == "" {
		return core.ErrNoSelection
	}

	status, body, err := c.send(ctx, http.MethodPost, "/feedback", req)
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return backendError(status, body)
	}
	c.logger.Debug("feedback sent", "query", req.Query, "songId", req.SelectedSongID, "feedback", req.Feedback)
	return nil
}

// Health queries the health endpoint once.
// Anything other than a 2xx response with status "ok" wraps ErrUnhealthy.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	status, body, err := c.send(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return HealthStatus{}, err
	}

	var health HealthStatus
	decodeErr := json.Unmarshal(body, &health)

	switch {
	case decodeErr != nil && isSuccess(status):
		return HealthStatus{}, fmt.Errorf("%w: %w: %w", ErrUnhealthy, core.ErrInvalidResponse, decodeErr)
	case !isSuccess(status) || !health.Healthy():
		return health, fmt.Errorf("%w: %s", ErrUnhealthy, healthReason(status, health))
	}
	return health, nil
}

func healthReason(status int, health HealthStatus) string {
	switch {
	case health.Message != "":
		return health.Message
	case health.Status != "":
		return fmt.Sprintf("status %q", health.Status)
	default:
		return core.GenericBackendMessage(status)
	}
}

// send performs one request and returns the status code and the body.
func (c *Client) send(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, fmt.Errorf("%w: %w", core.ErrTransport, err)
		}
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "requestId", requestID, "err", err)
		return 0, nil, fmt.Errorf("%w: %w", core.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: reading response: %w", core.ErrTransport, err)
	}
	c.logger.Debug("request completed",
		"method", method,
		"path", path,
		"requestId", requestID,
		"status", resp.StatusCode,
		"elapsed", time.Since(start))
	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// backendError builds the error for a non-2xx response, using the body's
// "error" field when it is a string.
func backendError(status int, body []byte) error {
	var parsed errorBody
	message := ""
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Error) > 0 {
		var text string
		if err := json.Unmarshal(parsed.Error, &text); err == nil {
			message = strings.TrimSpace(text)
		}
	}
	return &core.BackendError{StatusCode: status, Message: message}
}
