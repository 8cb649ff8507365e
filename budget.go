package prreview

import (
	"strings"
	"unicode/utf8"
)

// TruncationMarker is appended when a diff summary had to be cut.
const TruncationMarker = "\n[... Diff truncated due to size limits ...]"

// truncationReserve is the room kept free for TruncationMarker when cutting.
const truncationReserve = 50

// Budget bounds the diff text handed to the LLM.
type Budget struct {
	MaxInputTokens          int
	ReservedForPromptTokens int
	BufferTokens            int
	TokensPerChar           float64
	SummaryLines            int // signal lines kept when a diff must be summarized
}

// DefaultBudget returns the budget used for Gemini flash models.
func DefaultBudget() Budget {
	return Budget{
		MaxInputTokens:          30000,
		ReservedForPromptTokens: 2000,
		BufferTokens:            500,
		TokensPerChar:           0.25,
		SummaryLines:            20,
	}
}

// EstimateTokens returns a rough token count for text, never less than 1.
func (b Budget) EstimateTokens(text string) int {
	return max(1, int(float64(len(text))*b.TokensPerChar))
}

// MaxAllowedChars returns the largest diff length that fits the token budget.
func (b Budget) MaxAllowedChars() int {
	if b.TokensPerChar <= 0 {
		return 0
	}
	available := b.MaxInputTokens - b.ReservedForPromptTokens - b.BufferTokens
	if available <= 0 {
		return 0
	}
	return int(float64(available) / b.TokensPerChar)
}

// ExceedsLimit reports whether text is longer than MaxAllowedChars.
func (b Budget) ExceedsLimit(text string) bool {
	return len(text) > b.MaxAllowedChars()
}

// Truncate bounds diff to maxLength bytes. A non-positive maxLength means
// MaxAllowedChars. When the diff is too long it is reduced to its signal
// lines, and if that is still too long the summary is cut and marked with
// TruncationMarker. The result never exceeds maxLength.
func (b Budget) Truncate(diff string, maxLength int) (string, bool) {
	if maxLength <= 0 {
		maxLength = b.MaxAllowedChars()
	}
	if len(diff) <= maxLength {
		return diff, false
	}

	summary := DiffSummary(diff, b.summaryLines())
	if len(summary) <= maxLength {
		return summary, true
	}

	if maxLength < truncationReserve {
		return cutAt(summary, maxLength), true
	}
	return cutAt(summary, maxLength-truncationReserve) + TruncationMarker, true
}

func (b Budget) summaryLines() int {
	if b.SummaryLines <= 0 {
		return DefaultBudget().SummaryLines
	}
	return b.SummaryLines
}

// DiffSummary keeps file headers, hunk headers and changed lines of diff, in
// order, up to maxLines lines.
func DiffSummary(diff string, maxLines int) string {
	var kept []string
	for _, line := range strings.Split(diff, "\n") {
		if len(kept) >= maxLines {
			break
		}
		if isSignalLine(line) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// isSignalLine matches "+++", "---", "@@", "+" and "-" prefixed lines.
func isSignalLine(line string) bool {
	return strings.HasPrefix(line, "@@") ||
		strings.HasPrefix(line, "+") ||
		strings.HasPrefix(line, "-")
}

// cutAt returns at most n bytes of s without splitting a UTF-8 sequence.
func cutAt(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
