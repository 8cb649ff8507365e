package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fwojciec/prreview"
	"github.com/fwojciec/prreview/jsonl"
	"github.com/fwojciec/prreview/stats"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchWorkers is the number of cases reviewed in parallel.
const DefaultBatchWorkers = 4

// BatchApp reviews every case of a JSONL file and appends the results to
// another. Cases whose ID is already present in the output are skipped.
type BatchApp struct {
	CasesPath  string
	OutputPath string

	Loader   prreview.CaseLoader
	Existing prreview.ResultLoader
	Saver    prreview.ResultSaver
	Reviewer prreview.Reviewer

	Workers int
	Logger  *slog.Logger
}

// BatchSummary counts the outcomes of a batch run.
type BatchSummary struct {
	Total    int
	Skipped  int
	Reviewed int
	Failed   int
}

// Run reviews the pending cases and saves their results in input order.
func (a *BatchApp) Run(ctx context.Context) (BatchSummary, error) {
	var summary BatchSummary

	logger := a.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cases, err := a.Loader.Load(a.CasesPath)
	if err != nil {
		return summary, fmt.Errorf("loading cases: %w", err)
	}
	summary.Total = len(cases)

	done := make(map[string]bool)
	if a.Existing != nil {
		existing, err := a.Existing.Load(a.OutputPath)
		if err != nil {
			return summary, fmt.Errorf("loading existing results: %w", err)
		}
		for _, r := range existing {
			done[r.ID] = true
		}
	}

	var pending []prreview.ReviewCase
	for _, c := range cases {
		if done[c.ID] {
			summary.Skipped++
			continue
		}
		pending = append(pending, c)
	}

	workers := a.Workers
	if workers < 1 {
		workers = DefaultBatchWorkers
	}
	results := make([]prreview.ReviewResult, len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range pending {
		g.Go(func() error {
			results[i] = a.review(gctx, c)
			if results[i].Error != "" {
				logger.Warn("case failed", "id", c.ID, "error", results[i].Error)
			} else {
				logger.Info("case reviewed", "id", c.ID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}

	for _, r := range results {
		if err := a.Saver.Save(a.OutputPath, r); err != nil {
			return summary, fmt.Errorf("saving %s: %w", r.ID, err)
		}
		if r.Error != "" {
			summary.Failed++
		} else {
			summary.Reviewed++
		}
	}
	return summary, nil
}

func (a *BatchApp) review(ctx context.Context, c prreview.ReviewCase) prreview.ReviewResult {
	categories, err := prreview.ParseCategories(c.Categories)
	if err != nil {
		return prreview.ReviewResult{ID: c.ID, Error: err.Error()}
	}
	report, err := a.Reviewer.Review(ctx, c.Diff, categories)
	if err != nil {
		return prreview.ReviewResult{ID: c.ID, Error: err.Error()}
	}
	return prreview.ReviewResult{ID: c.ID, Report: report}
}

func newBatchCmd(g *globals) *cobra.Command {
	var (
		output  string
		workers int
		cache   bool
	)

	cmd := &cobra.Command{
		Use:   "batch <cases.jsonl>",
		Short: "Review every diff of a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, closeFn, err := newGenerator(cmd.Context(), g.cfg, g.logger, cache)
			if err != nil {
				return err
			}
			defer closeFn()

			tracker := stats.New()
			app := &BatchApp{
				CasesPath:  args[0],
				OutputPath: output,
				Loader:     jsonl.NewLoader(),
				Existing:   jsonl.NewResultLoader(),
				Saver:      jsonl.NewSaver(),
				Reviewer:   newReviewer(gen, g.cfg, tracker, g.logger),
				Workers:    workers,
				Logger:     g.logger,
			}

			summary, err := app.Run(cmd.Context())
			if err != nil {
				return err
			}
			s := tracker.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "%d cases: %d reviewed, %d failed, %d skipped\n",
				summary.Total, summary.Reviewed, summary.Failed, summary.Skipped)
			fmt.Fprintf(cmd.OutOrStdout(), "Analyses: %d total, %d parsed, %d failed (%.1f%% success)\n",
				s.TotalAttempts, s.SuccessfulParses, s.FailedParses, s.SuccessRate)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "results.jsonl", "results file (appended to, existing IDs are skipped)")
	cmd.Flags().IntVarP(&workers, "workers", "w", DefaultBatchWorkers, "cases reviewed in parallel")
	cmd.Flags().BoolVar(&cache, "cache", false, "cache LLM responses on disk")
	return cmd
}
