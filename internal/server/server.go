// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/jeranaias/siteassist/internal/content"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8787"

	// MaxQueryLength is the maximum length of a single message.
	MaxQueryLength = 100000

	// MaxMessageCount is the maximum number of messages in a request.
	MaxMessageCount = 200

	// MaxRequestBodySize is the maximum size of a request body (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// ModelName is reported in every completion.
	ModelName = "siteassist-stub"

	// Version is the server version.
	Version = "1.0.0"
)

// validRoles defines the set of acceptable message roles.
var validRoles = map[string]bool{
	"user":      true,
	"assistant": true,
	"system":    true,
}

// validateMessages checks the count, roles and sizes of messages.
func validateMessages(messages []ChatMessage) error {
	if len(messages) == 0 {
		return errors.New("request must contain at least one message")
	}
	if len(messages) > MaxMessageCount {
		return fmt.Errorf("too many messages: maximum is %d", MaxMessageCount)
	}
	for i, msg := range messages {
		if !validRoles[msg.Role] {
			return fmt.Errorf("invalid role %q at message %d: must be one of user, assistant, system", msg.Role, i)
		}
		if len(msg.Content) > MaxQueryLength {
			return fmt.Errorf("message %d exceeds maximum length of %d", i, MaxQueryLength)
		}
	}
	return nil
}

// ============================================================================
// SERVER STATS
// ============================================================================

// Stats tracks server usage.
type Stats struct {
	TotalRequests    int64     `json:"total_requests"`
	Answered         int64     `json:"answered"`
	Fallbacks        int64     `json:"fallbacks"`
	InjectedFailures int64     `json:"injected_failures"`
	StartTime        time.Time `json:"start_time"`
}

type counters struct {
	total    atomic.Int64
	answered atomic.Int64
	fallback atomic.Int64
	failed   atomic.Int64
	start    time.Time
}

func (c *counters) snapshot() Stats {
	return Stats{
		TotalRequests:    c.total.Load(),
		Answered:         c.answered.Load(),
		Fallbacks:        c.fallback.Load(),
		InjectedFailures: c.failed.Load(),
		StartTime:        c.start,
	}
}

// ============================================================================
// SERVER
// ============================================================================

// Source supplies the catalog replies are chosen from. *content.Store
// satisfies it, so a hot-reloaded catalog is picked up per request.
type Source interface {
	Catalog() *content.Catalog
	Locale() string
}

// Options configure a Server.
type Options struct {
	Addr           string
	AllowedOrigins []string

	// RequestsPerMinute limits each client; 0 disables limiting.
	RequestsPerMinute int

	// Latency delays every completion.
	Latency time.Duration

	// FailureRate is the fraction of completions answered with a 503.
	FailureRate float64

	// Rand returns a value in [0, 1) for failure injection. Defaults to
	// math/rand/v2.
	Rand func() float64

	Logger *slog.Logger
}

// Server is the stub completion service.
type Server struct {
	source Source
	opts   Options
	logger *slog.Logger
	router *mux.Router
	stats  *counters
	server *http.Server
}

// New creates a Server answering from source.
func New(source Source, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		source: source,
		opts:   opts,
		logger: opts.Logger.With("component", "server"),
		router: mux.NewRouter(),
		stats:  &counters{start: time.Now()},
	}
	s.setupRoutes()
	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      opts.Latency + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.opts.Addr
}

// Stats returns a snapshot of the usage counters.
func (s *Server) Stats() Stats {
	return s.stats.snapshot()
}

// ============================================================================
// ROUTES
// ============================================================================

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/v1/chat/completions", s.handleChatCompletions).Methods(http.MethodPost)
	s.router.HandleFunc("/api/chat", s.handleChatCompletions).Methods(http.MethodPost)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no route for "+r.URL.Path)
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not allowed on "+r.URL.Path)
	})
}

// Handler returns the routes wrapped in the middleware chain and CORS.
func (s *Server) Handler() http.Handler {
	var limiter *RateLimiter
	if s.opts.RequestsPerMinute > 0 {
		limiter = NewRateLimiter(s.opts.RequestsPerMinute)
	}

	handler := Chain(
		RecoveryMiddleware(s.logger),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(s.logger),
		RateLimitMiddleware(limiter, s.logger),
	)(s.router)

	c := cors.New(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	})
	return c.Handler(handler)
}

// ============================================================================
// OPENAI-STYLE TYPES
// ============================================================================

// ChatMessage is a message in the conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the completion request. Locale optionally
// overrides the server locale.
type ChatCompletionRequest struct {
	Model    string        `json:"model,omitempty"`
	Messages []ChatMessage `json:"messages"`
	Locale   string        `json:"locale,omitempty"`
}

// ChatChoice is a single choice in the completion response.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatCompletionResponse is the completion response.
type ChatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
}

// ErrorBody is the error object of a failed request.
type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

// ============================================================================
// CHAT COMPLETIONS HANDLER
// ============================================================================

func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	s.stats.total.Add(1)
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "invalid_request_error",
				fmt.Sprintf("request body exceeds maximum size of %d bytes", MaxRequestBodySize))
			return
		}
		s.logger.Debug("invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid_request_error", "invalid request format")
		return
	}

	if err := validateMessages(req.Messages); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_error", err.Error())
		return
	}

	if s.opts.Latency > 0 {
		select {
		case <-time.After(s.opts.Latency):
		case <-r.Context().Done():
			s.logger.Debug("client went away during latency", "error", r.Context().Err())
			return
		}
	}

	if s.opts.FailureRate > 0 && s.opts.Rand() < s.opts.FailureRate {
		s.stats.failed.Add(1)
		s.logger.Info("injected failure")
		writeError(w, http.StatusServiceUnavailable, "service_unavailable", "the assistant is temporarily unavailable")
		return
	}

	locale := req.Locale
	if locale == "" {
		locale = s.source.Locale()
	}
	c := s.source.Catalog().Resolve(locale)

	question := lastUserMessage(req.Messages)
	reply := Answer(c, question)
	matched := reply != c.Fallback && reply != defaultFallback
	if matched {
		s.stats.answered.Add(1)
	} else {
		s.stats.fallback.Add(1)
	}
	s.logger.Debug("completion", "locale", c.Locale, "messages", len(req.Messages), "matched", matched)

	writeJSON(w, http.StatusOK, ChatCompletionResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   ModelName,
		Choices: []ChatChoice{{
			Index:        0,
			Message:      ChatMessage{Role: "assistant", Content: reply},
			FinishReason: "stop",
		}},
	})
}

// ============================================================================
// HEALTH HANDLER
// ============================================================================

// HealthResponse is the health check response.
type HealthResponse struct {
	Status      string   `json:"status"`
	Version     string   `json:"version"`
	Locales     []string `json:"locales"`
	Pages       int      `json:"pages"`
	FailureRate float64  `json:"failure_rate"`
	LatencyMs   int64    `json:"latency_ms"`
	Stats       Stats    `json:"stats"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cat := s.source.Catalog()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Version:     Version,
		Locales:     cat.LocaleNames(),
		Pages:       len(cat.Paths()),
		FailureRate: s.opts.FailureRate,
		LatencyMs:   s.opts.Latency.Milliseconds(),
		Stats:       s.Stats(),
	})
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start serves until Shutdown. It returns nil after a graceful shutdown,
// including one that happened before Start.
func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", s.opts.Addr, "version", Version,
		"latency", s.opts.Latency, "failure_rate", s.opts.FailureRate)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	st := s.Stats()
	s.logger.Info("server stopping", "requests", st.TotalRequests, "fallbacks", st.Fallbacks)
	return s.server.Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, map[string]ErrorBody{
		"error": {Message: message, Type: kind, Code: status},
	})
}
