package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/prreview"
	"github.com/fwojciec/prreview/config"
	"github.com/fwojciec/prreview/fs"
	"github.com/fwojciec/prreview/gemini"
	"github.com/fwojciec/prreview/jsonrepair"
	"github.com/fwojciec/prreview/pipeline"
	"github.com/fwojciec/prreview/prompt"
)

// newGenerator connects to Gemini. With cache set, responses are memoized on disk.
func newGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger, cache bool) (prreview.Generator, func() error, error) {
	if err := cfg.RequireGeminiKey(); err != nil {
		return nil, nil, err
	}
	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	var gen prreview.Generator = gemini.NewGenerator(client, cfg.Model,
		gemini.WithTimeout(cfg.Timeout),
		gemini.WithMaxRetries(cfg.MaxRetries),
		gemini.WithJSONResponse(),
		gemini.WithLogger(logger),
	)
	if cache {
		dir := cfg.CacheDir
		if dir == "" {
			dir = fs.DefaultCacheDir()
		}
		logger.Debug("caching responses", "dir", dir)
		gen = fs.NewGenerator(gen, dir, cfg.Model)
	}
	return gen, client.Close, nil
}

// newReviewer assembles the review pipeline from cfg.
func newReviewer(gen prreview.Generator, cfg *config.Config, tracker prreview.UsageTracker, logger *slog.Logger) *pipeline.Reviewer {
	var promptOpts []prompt.Option
	for kind, s := range cfg.PromptSettings() {
		promptOpts = append(promptOpts, prompt.WithSettings(kind, s))
	}

	return pipeline.NewReviewer(gen, prompt.NewRenderer(promptOpts...),
		pipeline.WithBudget(cfg.ReviewBudget()),
		pipeline.WithSummaryMaxChars(cfg.SummaryMaxChars),
		pipeline.WithRecoverer(jsonrepair.New(jsonrepair.WithLogger(logger))),
		pipeline.WithTracker(tracker),
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithLogger(logger),
	)
}
