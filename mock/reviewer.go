package mock

import (
	"context"

	"github.com/fwojciec/prreview"
)

// Compile-time interface verification.
var (
	_ prreview.Reviewer     = (*Reviewer)(nil)
	_ prreview.Recoverer    = (*Recoverer)(nil)
	_ prreview.UsageTracker = (*UsageTracker)(nil)
)

// Reviewer is a mock implementation of prreview.Reviewer.
type Reviewer struct {
	ReviewFn func(ctx context.Context, diff string, categories []prreview.Category) (*prreview.Report, error)
}

func (r *Reviewer) Review(ctx context.Context, diff string, categories []prreview.Category) (*prreview.Report, error) {
	return r.ReviewFn(ctx, diff, categories)
}

// Recoverer is a mock implementation of prreview.Recoverer.
type Recoverer struct {
	RecoverFn func(text string, category prreview.Category) prreview.Recovery
}

func (r *Recoverer) Recover(text string, category prreview.Category) prreview.Recovery {
	return r.RecoverFn(text, category)
}

// UsageTracker is a mock implementation of prreview.UsageTracker.
type UsageTracker struct {
	RecordAttemptFn func(success bool)
	SuccessRateFn   func() float64
	SnapshotFn      func() prreview.UsageStats
	ResetFn         func()
}

func (u *UsageTracker) RecordAttempt(success bool) {
	u.RecordAttemptFn(success)
}

func (u *UsageTracker) SuccessRate() float64 {
	return u.SuccessRateFn()
}

func (u *UsageTracker) Snapshot() prreview.UsageStats {
	return u.SnapshotFn()
}

func (u *UsageTracker) Reset() {
	u.ResetFn()
}
