// Package gemini implements prreview.Generator on top of Google Gemini.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/prreview"
)

// Compile-time interface verification.
var _ prreview.Generator = (*Generator)(nil)

// DefaultTimeout bounds a single generate call, retries included.
const DefaultTimeout = 60 * time.Second

// DefaultMaxRetries is the number of retries after a retryable API error.
const DefaultMaxRetries = 2

// Generator implements prreview.Generator using Google Gemini.
type Generator struct {
	client     GenerativeClient
	model      string
	timeout    time.Duration
	maxRetries int
	jsonMode   bool
	logger     *slog.Logger

	// BackoffFn returns the wait before retry attempt (1-indexed).
	// If nil, uses exponential backoff (1s, 2s, 4s...).
	BackoffFn func(attempt int) time.Duration
}

// Option configures a Generator.
type Option func(*Generator)

// WithTimeout sets the timeout for API calls.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		g.timeout = d
	}
}

// WithMaxRetries sets how many times a retryable API error is retried.
func WithMaxRetries(n int) Option {
	return func(g *Generator) {
		g.maxRetries = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithJSONResponse asks the model to answer with the application/json MIME type.
func WithJSONResponse() Option {
	return func(g *Generator) {
		g.jsonMode = true
	}
}

// WithBackoff sets the wait between retries.
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(g *Generator) {
		g.BackoffFn = fn
	}
}

// NewGenerator creates a new Generator.
func NewGenerator(client GenerativeClient, model string, opts ...Option) *Generator {
	g := &Generator{
		client:     client,
		model:      model,
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate sends prompt to the model and returns the raw response text.
// Every failure is returned as a *prreview.LLMCallError.
func (g *Generator) Generate(ctx context.Context, prompt string, opts prreview.GenerateOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.generateWithRetry(ctx, prompt, opts)
	if err != nil {
		return "", &prreview.LLMCallError{Err: err}
	}
	return text, nil
}

// generateWithRetry retries retryable API errors with exponential backoff.
func (g *Generator) generateWithRetry(ctx context.Context, prompt string, opts prreview.GenerateOptions) (string, error) {
	backoffFn := g.BackoffFn
	if backoffFn == nil {
		backoffFn = func(attempt int) time.Duration {
			return time.Duration(1<<(attempt-1)) * time.Second
		}
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			wait := backoffFn(attempt)
			g.logger.Warn("retrying gemini call", "attempt", attempt, "backoff", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		text, err := g.generateOnce(ctx, prompt, opts)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return "", err
		}
	}
	return "", lastErr
}

func (g *Generator) generateOnce(ctx context.Context, prompt string, opts prreview.GenerateOptions) (string, error) {
	contents := []*Content{{
		Parts: []*Part{{Text: prompt}},
	}}

	config := BuildConfig(opts)
	if g.jsonMode {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("gemini: returned nil response")
	}
	if resp.Text == "" {
		return "", fmt.Errorf("gemini: %w", prreview.ErrEmptyResult)
	}
	return resp.Text, nil
}

// BuildConfig returns the GenerateContentConfig for a review call.
func BuildConfig(opts prreview.GenerateOptions) *GenerateContentConfig {
	temp := opts.Temperature
	return &GenerateContentConfig{
		SystemInstruction: &Content{
			Parts: []*Part{{
				Text: `You are a senior code reviewer. You review git diffs and answer with a single JSON object in exactly the format requested, without any other text.`,
			}},
		},
		Temperature:     &temp,
		MaxOutputTokens: int32(opts.MaxOutputTokens),
	}
}

// IsRetryable reports whether err is a rate limit or server-side API error.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError
}

// GenerativeClient abstracts the Gemini API for testing.
type GenerativeClient interface {
	GenerateContent(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) (*GenerateContentResponse, error)
}

// Content represents a message in a Gemini conversation.
type Content struct {
	Parts []*Part
}

// Part represents a part of a message.
type Part struct {
	Text string
}

// GenerateContentConfig holds configuration for content generation.
type GenerateContentConfig struct {
	SystemInstruction *Content
	Temperature       *float32
	MaxOutputTokens   int32
	ResponseMIMEType  string
}

// GenerateContentResponse holds the response from content generation.
type GenerateContentResponse struct {
	Text string
}

// MockGenerativeClient is a mock implementation of GenerativeClient for testing.
type MockGenerativeClient struct {
	GenerateContentFn func(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) (*GenerateContentResponse, error)
}

func (m *MockGenerativeClient) GenerateContent(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) (*GenerateContentResponse, error) {
	return m.GenerateContentFn(ctx, model, contents, config)
}

// APIError represents an error from the Gemini API with HTTP status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError with the given status code and message.
func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{StatusCode: statusCode, Message: message}
}
