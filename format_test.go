package prreview_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/fwojciec/prreview"
	"github.com/fwojciec/prreview/mock"
	"github.com/stretchr/testify/assert"
)

func fullReport() *prreview.Report {
	return &prreview.Report{
		Status: prreview.StatusSuccess,
		Analyses: map[prreview.Category]prreview.Document{
			prreview.CategorySecurity: {
				"vulnerabilities": []any{
					map[string]any{"risk": "SQL built from input", "file": "db.go", "recommendation": "use placeholders"},
				},
				"security_level": "dangerous",
			},
			prreview.CategorySummary: {"summary": "Adds a user query", "severity": "medium", "type": "feature"},
			prreview.CategoryBugDetection: {
				"issues":       []any{},
				"overall_risk": "low",
			},
			prreview.CategoryPerformance: prreview.ErrorDocument(&prreview.LLMCallError{Kind: prreview.PromptPerformance, Err: errors.New("timeout")}),
		},
		Metadata: prreview.Metadata{OriginalSize: 5000, ProcessedSize: 3000, WasTruncated: true},
	}
}

func TestMarkdownFormatter_Format(t *testing.T) {
	t.Parallel()

	// Act
	out := (&prreview.MarkdownFormatter{}).Format(prreview.FormatInput{Report: fullReport()})

	// Assert
	assert.True(t, strings.HasPrefix(out, "## 🤖 PR Code Review\n\n"))
	assert.Contains(t, out, "Adds a user query\n\n**Severity:** medium · **Type:** feature")
	assert.Contains(t, out, "**Overall risk:** low\n\nNo issues found.")
	assert.Contains(t, out, "⚠️ Analysis failed: LLM call failed for PERFORMANCE_REVIEW: timeout")
	assert.Contains(t, out, "**Security level:** dangerous")
	assert.Contains(t, out, "- `db.go` SQL built from input\n  - 💡 use placeholders")
	assert.Contains(t, out, "truncated from 5000 to 3000 characters")
	assert.True(t, strings.HasSuffix(out, "*Generated automatically*\n"))
}

func TestMarkdownFormatter_Format_SectionOrder(t *testing.T) {
	t.Parallel()

	out := (&prreview.MarkdownFormatter{}).Format(prreview.FormatInput{Report: fullReport()})

	summary := strings.Index(out, "### Summary")
	bugs := strings.Index(out, "### Bug Detection")
	perf := strings.Index(out, "### Performance")
	security := strings.Index(out, "### Security")
	assert.True(t, summary < bugs && bugs < perf && perf < security, out)
}

func TestMarkdownFormatter_Format_FilesTable(t *testing.T) {
	t.Parallel()

	detector := &mock.LanguageDetector{DetectFromPathFn: func(path string) string { return "Go" }}
	diff := &prreview.Diff{Files: []prreview.FileDiff{{
		NewPath:   "db.go",
		Operation: prreview.FileAdded,
		Hunks:     []prreview.Hunk{{Lines: []prreview.Line{{Type: prreview.LineAdded}, {Type: prreview.LineAdded}}}},
	}}}

	out := (&prreview.MarkdownFormatter{Detector: detector}).Format(prreview.FormatInput{Report: fullReport(), Diff: diff})

	assert.Contains(t, out, "| `db.go` | added | Go | +2/-0 |")
}

func TestMarkdownFormatter_Format_NilReport(t *testing.T) {
	t.Parallel()

	out := (&prreview.MarkdownFormatter{}).Format(prreview.FormatInput{})

	assert.Contains(t, out, "_No analysis available._")
}

func TestMarkdownFormatter_Format_BugLocations(t *testing.T) {
	t.Parallel()

	report := &prreview.Report{Analyses: map[prreview.Category]prreview.Document{
		prreview.CategoryBugDetection: {
			"issues": []any{
				map[string]any{"severity": "high", "description": "nil deref", "file": "a.go", "line": float64(7)},
				"plain text issue",
			},
			"overall_risk": "high",
		},
	}}

	out := (&prreview.MarkdownFormatter{}).Format(prreview.FormatInput{Report: report})

	assert.Contains(t, out, "- `a.go:7` **[high]** nil deref\n")
	assert.Contains(t, out, "- plain text issue\n")
}

func TestOrderedCategories(t *testing.T) {
	t.Parallel()

	analyses := map[prreview.Category]prreview.Document{
		"zeta":                    {},
		prreview.CategorySecurity: {},
		"alpha":                   {},
		prreview.CategorySummary:  {},
	}

	got := prreview.OrderedCategories(analyses)

	assert.Equal(t, []prreview.Category{prreview.CategorySummary, prreview.CategorySecurity, "alpha", "zeta"}, got)
}

func TestCategoryTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Bug Detection", prreview.CategoryTitle(prreview.CategoryBugDetection))
	assert.Equal(t, "custom", prreview.CategoryTitle("custom"))
}
