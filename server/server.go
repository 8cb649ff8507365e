// Package server exposes the reviewer over HTTP using gin.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/prreview"
	"github.com/gin-gonic/gin"
)

// DefaultLocalReviewMaxChars bounds diffs submitted to /local-review.
const DefaultLocalReviewMaxChars = 3000

// Stats is the usage tracker view served by /stats and /metrics.
type Stats interface {
	Snapshot() prreview.UsageStats
	WritePrometheus(w io.Writer) error
}

// Server serves the review endpoints.
type Server struct {
	reviewer  prreview.Reviewer
	stats     Stats
	fetcher   prreview.DiffFetcher
	poster    prreview.CommentPoster
	inline    prreview.ReviewCommenter
	parser    prreview.Parser
	formatter prreview.ReportFormatter
	budget    prreview.Budget
	secret    string
	maxLocal  int
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithGitHub enables the /webhook endpoint.
func WithGitHub(fetcher prreview.DiffFetcher, poster prreview.CommentPoster) Option {
	return func(s *Server) {
		s.fetcher = fetcher
		s.poster = poster
	}
}

// WithInlineComments posts located bug findings as inline review comments.
// The parser maps findings onto lines present in the pull request diff.
func WithInlineComments(commenter prreview.ReviewCommenter, parser prreview.Parser) Option {
	return func(s *Server) {
		s.inline = commenter
		s.parser = parser
	}
}

// WithWebhookSecret sets the secret used to verify webhook signatures.
func WithWebhookSecret(secret string) Option {
	return func(s *Server) {
		s.secret = secret
	}
}

// WithFormatter sets the formatter for pull request comments.
func WithFormatter(f prreview.ReportFormatter) Option {
	return func(s *Server) {
		s.formatter = f
	}
}

// WithBudget sets the budget used to pre-truncate /local-review diffs.
func WithBudget(b prreview.Budget) Option {
	return func(s *Server) {
		s.budget = b
	}
}

// WithLocalReviewMaxChars sets the /local-review diff bound.
func WithLocalReviewMaxChars(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLocal = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a Server.
func New(reviewer prreview.Reviewer, stats Stats, opts ...Option) *Server {
	s := &Server{
		reviewer:  reviewer,
		stats:     stats,
		formatter: &prreview.MarkdownFormatter{},
		budget:    prreview.DefaultBudget(),
		maxLocal:  DefaultLocalReviewMaxChars,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the gin engine with middleware and routes registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(
		RequestID(),
		Logging(s.logger),
		Recovery(s.logger),
	)

	r.GET("/health", s.handleHealth)
	r.POST("/local-review", s.handleLocalReview)
	r.POST("/webhook", s.handleWebhook)
	r.GET("/stats", s.handleStats)
	r.GET("/metrics", s.handleMetrics)
	return r
}

// ListenAndServe serves on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
