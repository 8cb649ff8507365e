// Package pipeline runs the two-stage LLM review of a diff.
package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/fwojciec/prreview"
	"github.com/fwojciec/prreview/jsonrepair"
	"github.com/fwojciec/prreview/prompt"
	"github.com/fwojciec/prreview/stats"
	"golang.org/x/sync/errgroup"
)

// Compile-time interface verification.
var _ prreview.Reviewer = (*Reviewer)(nil)

// DefaultSummaryMaxChars bounds the diff sent with the summary prompt.
const DefaultSummaryMaxChars = 1000

// DefaultConcurrency is the number of detail categories analyzed at once.
const DefaultConcurrency = 3

// Reviewer implements prreview.Reviewer.
type Reviewer struct {
	generator       prreview.Generator
	prompts         prreview.PromptRenderer
	recoverer       prreview.Recoverer
	tracker         prreview.UsageTracker
	budget          prreview.Budget
	summaryMaxChars int
	concurrency     int
	logger          *slog.Logger
}

// Option configures a Reviewer.
type Option func(*Reviewer)

// WithBudget sets the size budget applied to incoming diffs.
func WithBudget(b prreview.Budget) Option {
	return func(r *Reviewer) {
		r.budget = b
	}
}

// WithSummaryMaxChars sets the diff length used for the summary stage.
func WithSummaryMaxChars(n int) Option {
	return func(r *Reviewer) {
		r.summaryMaxChars = n
	}
}

// WithRecoverer sets the engine that turns LLM text into documents.
func WithRecoverer(rec prreview.Recoverer) Option {
	return func(r *Reviewer) {
		r.recoverer = rec
	}
}

// WithTracker sets the usage tracker notified after every category.
func WithTracker(t prreview.UsageTracker) Option {
	return func(r *Reviewer) {
		r.tracker = t
	}
}

// WithConcurrency sets how many detail categories run in parallel.
func WithConcurrency(n int) Option {
	return func(r *Reviewer) {
		r.concurrency = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reviewer) {
		r.logger = logger
	}
}

// NewReviewer creates a Reviewer that calls gen with prompts rendered by prompts.
func NewReviewer(gen prreview.Generator, prompts prreview.PromptRenderer, opts ...Option) *Reviewer {
	r := &Reviewer{
		generator:       gen,
		prompts:         prompts,
		recoverer:       jsonrepair.New(),
		tracker:         stats.New(),
		budget:          prreview.DefaultBudget(),
		summaryMaxChars: DefaultSummaryMaxChars,
		concurrency:     DefaultConcurrency,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tracker returns the usage tracker the Reviewer records into.
func (r *Reviewer) Tracker() prreview.UsageTracker {
	return r.tracker
}

// Review runs the summary stage and then the detail stage over diff.
// Only invalid input is returned as an error; LLM failures are recorded
// per category inside the report.
func (r *Reviewer) Review(ctx context.Context, diff string, categories []prreview.Category) (*prreview.Report, error) {
	categories, err := validate(diff, categories)
	if err != nil {
		return nil, err
	}

	processed, truncated := r.budget.Truncate(diff, 0)
	report := &prreview.Report{
		Status:   prreview.StatusSuccess,
		Analyses: make(map[prreview.Category]prreview.Document, len(categories)),
		Metadata: prreview.Metadata{
			OriginalSize:    len(diff),
			ProcessedSize:   len(processed),
			WasTruncated:    truncated,
			StagesCompleted: []string{},
		},
	}
	r.logger.Info("review starting",
		"categories", categories,
		"original_size", len(diff),
		"processed_size", len(processed),
		"truncated", truncated)

	var details []prreview.Category
	for _, c := range categories {
		if c.IsDetail() {
			details = append(details, c)
		}
	}

	if slices.Contains(categories, prreview.CategorySummary) {
		doc, ok := r.summarize(ctx, processed)
		report.Analyses[prreview.CategorySummary] = doc
		if ok {
			report.Metadata.StagesCompleted = append(report.Metadata.StagesCompleted, prreview.StageSummary)
		}
	}

	if len(details) > 0 {
		for i, doc := range r.detail(ctx, processed, details) {
			report.Analyses[details[i]] = doc
		}
		report.Metadata.StagesCompleted = append(report.Metadata.StagesCompleted, prreview.StageDetail)
	}

	r.logger.Info("review complete",
		"analyses", len(report.Analyses),
		"stages", report.Metadata.StagesCompleted)
	return report, nil
}

// summarize runs stage 1. It reports false when the LLM call failed.
func (r *Reviewer) summarize(ctx context.Context, diff string) (prreview.Document, bool) {
	short, _ := r.budget.Truncate(diff, r.summaryMaxChars)

	text, err := r.call(ctx, prreview.PromptSummary, short)
	if err != nil {
		r.logger.Error("summary stage failed", "error", err)
		r.tracker.RecordAttempt(false)
		return prreview.SummaryCallFailedDocument(), false
	}

	rec := r.recoverer.Recover(text, prreview.CategorySummary)
	r.tracker.RecordAttempt(true)
	return rec.Document, true
}

// detail runs stage 2. The returned documents are indexed like categories.
func (r *Reviewer) detail(ctx context.Context, diff string, categories []prreview.Category) []prreview.Document {
	full, _ := r.budget.Truncate(diff, 0)
	docs := make([]prreview.Document, len(categories))

	// A failed category must not cancel its siblings, so no shared context.
	var g errgroup.Group
	g.SetLimit(max(1, r.concurrency))
	for i, c := range categories {
		g.Go(func() error {
			text, err := r.call(ctx, c.PromptKind(), full)
			if err != nil {
				r.logger.Error("detail category failed", "category", c, "error", err)
				r.tracker.RecordAttempt(false)
				docs[i] = prreview.ErrorDocument(err)
				return nil
			}
			rec := r.recoverer.Recover(text, c)
			r.tracker.RecordAttempt(true)
			docs[i] = rec.Document
			return nil
		})
	}
	_ = g.Wait()
	return docs
}

// call renders the prompt for kind and generates a response for it.
func (r *Reviewer) call(ctx context.Context, kind prreview.PromptKind, diff string) (string, error) {
	text, err := r.prompts.Render(kind, map[string]string{prompt.VarDiff: diff})
	if err != nil {
		return "", &prreview.LLMCallError{Kind: kind, Err: err}
	}

	r.logger.Debug("llm call", "kind", kind, "prompt_chars", len(text))
	out, err := r.generator.Generate(ctx, text, r.prompts.Settings(kind))
	if err != nil {
		var callErr *prreview.LLMCallError
		if errors.As(err, &callErr) {
			if callErr.Kind != "" {
				return "", err
			}
			err = callErr.Err
		}
		return "", &prreview.LLMCallError{Kind: kind, Err: err}
	}
	r.logger.Debug("llm response", "kind", kind, "chars", len(out))
	return strings.TrimSpace(out), nil
}

// validate rejects blank diffs and unknown categories, and applies defaults.
func validate(diff string, categories []prreview.Category) ([]prreview.Category, error) {
	if strings.TrimSpace(diff) == "" {
		return nil, &prreview.ValidationError{
			Field:   "diff",
			Message: "diff text is empty",
			Err:     prreview.ErrEmptyDiff,
		}
	}
	if len(categories) == 0 {
		return append([]prreview.Category(nil), prreview.DefaultCategories...), nil
	}

	out := make([]prreview.Category, 0, len(categories))
	for _, c := range categories {
		if !c.Valid() {
			return nil, &prreview.ValidationError{
				Field:   "categories",
				Message: "unknown category " + string(c),
			}
		}
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out, nil
}
