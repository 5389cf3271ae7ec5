// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport sends a conversation to a message completion service.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/siteassist/internal/model"
	"github.com/jeranaias/siteassist/internal/util"
)

const (
	// DefaultTimeout bounds a single completion request.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum accepted response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	userAgent = "siteassist/1.0"
)

// Error variables for completion failures.
var (
	// ErrNotConfigured indicates no endpoint is set.
	ErrNotConfigured = errors.New("completion endpoint not configured")

	// ErrMalformedResponse indicates a 2xx reply without choices[0].message.content.
	ErrMalformedResponse = errors.New("malformed completion response")

	// ErrRateLimited indicates the service answered 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnauthorized indicates the service answered 401 or 403.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError represents a non-2xx reply from the completion service.
type APIError struct {
	Status  int
	Code    string
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("completion error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("completion error (HTTP %d): %s", e.Status, e.Message)
}

// Is maps statuses onto the sentinel errors so errors.Is works on *APIError.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.Status == http.StatusTooManyRequests
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

// =============================================================================
// COMPLETER
// =============================================================================

// Completer turns a conversation into the next assistant reply.
type Completer interface {
	Complete(ctx context.Context, turns []model.Turn) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, turns []model.Turn) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, turns []model.Turn) (string, error) {
	return f(ctx, turns)
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// Message is one conversation entry on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the body posted to the completion endpoint.
type Request struct {
	Model    string    `json:"model,omitempty"`
	Messages []Message `json:"messages"`
}

// Response is the subset of the completion reply the widget reads.
type Response struct {
	ID      string `json:"id,omitempty"`
	Choices []struct {
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason,omitempty"`
	} `json:"choices"`
}

// Content returns choices[0].message.content and whether it was present
// and non-empty.
func (r *Response) Content() (string, bool) {
	if len(r.Choices) == 0 || r.Choices[0].Message.Content == nil {
		return "", false
	}
	content := *r.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", false
	}
	return content, true
}

// MessagesFromTurns converts conversation turns to wire messages, in order.
func MessagesFromTurns(turns []model.Turn) []Message {
	msgs := make([]Message, len(turns))
	for i, t := range turns {
		msgs[i] = Message{Role: t.Role.String(), Content: t.Content}
	}
	return msgs
}

// =============================================================================
// CLIENT
// =============================================================================

// Options configure a Client.
type Options struct {
	// Endpoint is the full URL of the completion route.
	Endpoint string
	// APIKey is sent as a Bearer token when non-empty.
	APIKey string
	// Model is forwarded as "model" when non-empty.
	Model string
	// Timeout bounds each request (0 = DefaultTimeout).
	Timeout time.Duration
	// RequestsPerMinute throttles calls (0 = unlimited).
	RequestsPerMinute int
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
	// Logger receives debug request logs (nil = slog.Default()).
	Logger *slog.Logger
}

// Client posts conversations to an HTTP completion endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		endpoint:   strings.TrimSpace(opts.Endpoint),
		apiKey:     strings.TrimSpace(opts.APIKey),
		model:      opts.Model,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger,
	}
}

// IsConfigured returns true if the client has an endpoint.
func (c *Client) IsConfigured() bool {
	return c.endpoint != ""
}

// Endpoint returns the configured completion URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Complete posts the full conversation and returns the assistant reply.
func (c *Client) Complete(ctx context.Context, turns []model.Turn) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}

	body, err := json.Marshal(Request{Model: c.model, Messages: MessagesFromTurns(turns)})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	c.logger.Debug("completion request", "url", req.URL.Redacted(), "turns", len(turns))
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("completion response", "status", resp.StatusCode, "duration", time.Since(start))

	data, err := readResponse(resp)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", handleErrorResponse(resp.StatusCode, data)
	}

	var parsed Response
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	content, ok := parsed.Content()
	if !ok {
		return "", fmt.Errorf("%w: missing choices[0].message.content", ErrMalformedResponse)
	}
	return content, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// readResponse reads the body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// handleErrorResponse decodes {"error":{"message","code"}} or {"error":"..."}
// bodies into an *APIError.
func handleErrorResponse(status int, body []byte) error {
	apiErr := &APIError{Status: status}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Error) > 0 {
		var obj struct {
			Code    any    `json:"code"`
			Message string `json:"message"`
		}
		var str string
		switch {
		case json.Unmarshal(envelope.Error, &str) == nil:
			apiErr.Message = str
		case json.Unmarshal(envelope.Error, &obj) == nil:
			apiErr.Message = obj.Message
			if obj.Code != nil {
				apiErr.Code = fmt.Sprint(obj.Code)
			}
		}
	}

	if apiErr.Message == "" {
		text := util.TruncateRunes(strings.TrimSpace(string(body)), 200)
		if text == "" {
			text = http.StatusText(status)
		}
		apiErr.Message = text
	}
	return apiErr
}
