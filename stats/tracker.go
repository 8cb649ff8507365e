// Package stats counts per-category analysis outcomes.
package stats

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"sync/atomic"

	"github.com/fwojciec/prreview"
)

// Compile-time interface verification.
var _ prreview.UsageTracker = (*Tracker)(nil)

// Tracker implements prreview.UsageTracker with lock-free counters.
// The total is derived from the two counters so a snapshot can never report
// more successes and failures than attempts.
type Tracker struct {
	successful atomic.Int64
	failed     atomic.Int64
}

// New creates a Tracker with all counters at zero.
func New() *Tracker {
	return &Tracker{}
}

// RecordAttempt counts one category completion.
func (t *Tracker) RecordAttempt(success bool) {
	if success {
		t.successful.Add(1)
		return
	}
	t.failed.Add(1)
}

// SuccessRate returns successful/total as a percentage in [0, 100],
// or 0 when nothing has been recorded.
func (t *Tracker) SuccessRate() float64 {
	return t.Snapshot().SuccessRate
}

// Snapshot returns a copy of the counters.
func (t *Tracker) Snapshot() prreview.UsageStats {
	ok := t.successful.Load()
	failed := t.failed.Load()
	total := ok + failed

	var rate float64
	if total > 0 {
		rate = float64(ok) / float64(total) * 100
	}
	return prreview.UsageStats{
		TotalAttempts:    total,
		SuccessfulParses: ok,
		FailedParses:     failed,
		SuccessRate:      rate,
	}
}

// Reset sets all counters to zero.
func (t *Tracker) Reset() {
	t.successful.Store(0)
	t.failed.Store(0)
}

// WritePrometheus writes the counters in Prometheus text exposition format.
func (t *Tracker) WritePrometheus(w io.Writer) error {
	s := t.Snapshot()

	var buf bytes.Buffer
	writeMetric(&buf, "prreview_analysis_attempts_total", "counter", "Total category analyses attempted", strconv.FormatInt(s.TotalAttempts, 10))
	writeMetric(&buf, "prreview_analysis_parsed_total", "counter", "Category analyses that produced a document", strconv.FormatInt(s.SuccessfulParses, 10))
	writeMetric(&buf, "prreview_analysis_failed_total", "counter", "Category analyses whose LLM call failed", strconv.FormatInt(s.FailedParses, 10))
	writeMetric(&buf, "prreview_analysis_success_rate", "gauge", "Percentage of analyses that produced a document", strconv.FormatFloat(s.SuccessRate, 'f', -1, 64))

	_, err := w.Write(buf.Bytes())
	return err
}

func writeMetric(buf *bytes.Buffer, name, kind, help, value string) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s %s\n", name, kind)
	fmt.Fprintf(buf, "%s %s\n", name, value)
}
