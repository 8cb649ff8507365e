package prreview

import (
	"fmt"
	"sort"
	"strings"
)

// ReportFormatter renders a report as text for humans.
type ReportFormatter interface {
	Format(input FormatInput) string
}

// FormatInput bundles a report with optional context about the reviewed diff.
type FormatInput struct {
	Report *Report
	Diff   *Diff // optional; adds a changed-files table
}

// LanguageDetector determines the programming language from a file path.
type LanguageDetector interface {
	// DetectFromPath returns the language name for the given path,
	// or an empty string if the language cannot be determined.
	DetectFromPath(path string) string
}

// MarkdownFormatter renders reports as GitHub-flavored Markdown comments.
type MarkdownFormatter struct {
	Detector LanguageDetector // optional
}

// Format renders the report as a Markdown comment body.
func (f *MarkdownFormatter) Format(input FormatInput) string {
	var sb strings.Builder
	sb.WriteString("## 🤖 PR Code Review\n\n")

	if input.Diff != nil && len(input.Diff.Files) > 0 {
		f.writeFiles(&sb, input.Diff)
	}

	report := input.Report
	if report == nil {
		sb.WriteString("_No analysis available._\n")
		return sb.String()
	}

	for _, c := range OrderedCategories(report.Analyses) {
		writeAnalysis(&sb, c, report.Analyses[c])
	}

	if report.Metadata.WasTruncated {
		fmt.Fprintf(&sb, "> Note: the diff was truncated from %d to %d characters before analysis.\n\n",
			report.Metadata.OriginalSize, report.Metadata.ProcessedSize)
	}
	sb.WriteString("---\n*Generated automatically*\n")
	return sb.String()
}

func (f *MarkdownFormatter) writeFiles(sb *strings.Builder, diff *Diff) {
	sb.WriteString("| File | Change | Language | +/- |\n|------|--------|----------|-----|\n")
	for _, file := range diff.Files {
		lang := ""
		if f.Detector != nil {
			lang = f.Detector.DetectFromPath(file.Path())
		}
		adds, dels := file.Stats()
		fmt.Fprintf(sb, "| `%s` | %s | %s | +%d/-%d |\n", file.Path(), file.Operation, lang, adds, dels)
	}
	sb.WriteString("\n")
}

// OrderedCategories returns the keys of analyses with known categories first,
// in pipeline order, followed by any others sorted by name.
func OrderedCategories(analyses map[Category]Document) []Category {
	var out []Category
	for _, c := range Categories {
		if _, ok := analyses[c]; ok {
			out = append(out, c)
		}
	}
	var rest []Category
	for c := range analyses {
		if !c.Valid() {
			rest = append(rest, c)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(out, rest...)
}

// CategoryTitle returns a human-readable heading for c.
func CategoryTitle(c Category) string {
	switch c {
	case CategorySummary:
		return "Summary"
	case CategoryBugDetection:
		return "Bug Detection"
	case CategoryPerformance:
		return "Performance"
	case CategorySecurity:
		return "Security"
	default:
		return string(c)
	}
}

func writeAnalysis(sb *strings.Builder, c Category, doc Document) {
	fmt.Fprintf(sb, "### %s\n\n", CategoryTitle(c))

	if IsErrorDocument(doc) {
		fmt.Fprintf(sb, "⚠️ Analysis failed: %s\n\n", stringField(doc, "error"))
		return
	}

	switch c {
	case CategorySummary:
		fmt.Fprintf(sb, "%s\n\n**Severity:** %s · **Type:** %s\n\n",
			stringField(doc, "summary"), stringField(doc, "severity"), stringField(doc, "type"))
	case CategoryBugDetection:
		fmt.Fprintf(sb, "**Overall risk:** %s\n\n", stringField(doc, "overall_risk"))
		writeItems(sb, doc, "issues", "No issues found.", "severity", "description", "suggestion")
	case CategoryPerformance:
		fmt.Fprintf(sb, "**Optimization potential:** %s\n\n", stringField(doc, "optimization_potential"))
		writeItems(sb, doc, "suggestions", "No suggestions.", "", "issue", "recommendation")
	case CategorySecurity:
		fmt.Fprintf(sb, "**Security level:** %s\n\n", stringField(doc, "security_level"))
		writeItems(sb, doc, "vulnerabilities", "No vulnerabilities found.", "", "risk", "recommendation")
	default:
		keys := make([]string, 0, len(doc))
		for k := range doc {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(sb, "- **%s:** %v\n", k, doc[k])
		}
		sb.WriteString("\n")
	}
}

// writeItems renders a list of finding objects stored under key.
func writeItems(sb *strings.Builder, doc Document, key, empty, severityKey, textKey, fixKey string) {
	items, _ := doc[key].([]any)
	if len(items) == 0 {
		sb.WriteString(empty + "\n\n")
		return
	}
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			fmt.Fprintf(sb, "- %v\n", raw)
			continue
		}
		loc := stringField(item, "file")
		if line := item["line"]; line != nil {
			loc = fmt.Sprintf("%s:%v", loc, line)
		}
		sb.WriteString("- ")
		if loc != "" {
			fmt.Fprintf(sb, "`%s` ", loc)
		}
		if severityKey != "" {
			if sev := stringField(item, severityKey); sev != "" {
				fmt.Fprintf(sb, "**[%s]** ", sev)
			}
		}
		sb.WriteString(stringField(item, textKey))
		if fix := stringField(item, fixKey); fix != "" {
			fmt.Fprintf(sb, "\n  - 💡 %s", fix)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
