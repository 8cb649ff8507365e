package lipgloss

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/prreview"
	"github.com/muesli/termenv"
)

// Compile-time interface verification.
var _ prreview.ReportFormatter = (*Printer)(nil)

// Printer renders reports for a terminal.
type Printer struct {
	renderer *lipgloss.Renderer
	styles   prreview.Styles
	detector prreview.LanguageDetector
	width    int
}

// PrinterOption configures a Printer.
type PrinterOption func(*printerConfig)

type printerConfig struct {
	profile  *termenv.Profile
	detector prreview.LanguageDetector
	width    int
}

// WithColorProfile forces a color profile instead of detecting one from the writer.
// Use termenv.Ascii to disable colors.
func WithColorProfile(p termenv.Profile) PrinterOption {
	return func(c *printerConfig) {
		c.profile = &p
	}
}

// WithDetector sets the language detector used for the changed-files list.
func WithDetector(d prreview.LanguageDetector) PrinterOption {
	return func(c *printerConfig) {
		c.detector = d
	}
}

// WithWidth wraps finding text at the given column. Zero disables wrapping.
func WithWidth(width int) PrinterOption {
	return func(c *printerConfig) {
		c.width = width
	}
}

// NewPrinter creates a Printer that styles output for w.
func NewPrinter(w io.Writer, theme prreview.Theme, opts ...PrinterOption) *Printer {
	var cfg printerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	renderer := lipgloss.NewRenderer(w)
	if cfg.profile != nil {
		renderer.SetColorProfile(*cfg.profile)
	}

	return &Printer{
		renderer: renderer,
		styles:   theme.Styles(),
		detector: cfg.detector,
		width:    cfg.width,
	}
}

// Format renders the report as styled terminal text.
func (p *Printer) Format(input prreview.FormatInput) string {
	var sb strings.Builder
	sb.WriteString(p.style(p.styles.Title).Bold(true).Padding(0, 1).Render("PR Code Review"))
	sb.WriteString("\n\n")

	if input.Diff != nil && len(input.Diff.Files) > 0 {
		p.writeFiles(&sb, input.Diff)
	}

	report := input.Report
	if report == nil {
		sb.WriteString(p.style(p.styles.Muted).Render("No analysis available."))
		sb.WriteString("\n")
		return sb.String()
	}

	for _, c := range prreview.OrderedCategories(report.Analyses) {
		p.writeAnalysis(&sb, c, report.Analyses[c])
	}

	md := report.Metadata
	meta := fmt.Sprintf("%d chars analyzed", md.ProcessedSize)
	if md.WasTruncated {
		meta = fmt.Sprintf("%d of %d chars analyzed (truncated)", md.ProcessedSize, md.OriginalSize)
	}
	if len(md.StagesCompleted) > 0 {
		meta += " · stages: " + strings.Join(md.StagesCompleted, ", ")
	}
	sb.WriteString(p.style(p.styles.Muted).Render(meta))
	sb.WriteString("\n")
	return sb.String()
}

func (p *Printer) style(c prreview.ColorPair) lipgloss.Style {
	s := p.renderer.NewStyle()
	if c.Foreground != "" {
		s = s.Foreground(lipgloss.Color(c.Foreground))
	}
	if c.Background != "" {
		s = s.Background(lipgloss.Color(c.Background))
	}
	return s
}

func (p *Printer) writeFiles(sb *strings.Builder, diff *prreview.Diff) {
	muted := p.style(p.styles.Muted)
	low := p.style(p.styles.Low)
	high := p.style(p.styles.High)
	for _, f := range diff.Files {
		adds, dels := f.Stats()
		line := fmt.Sprintf("  %s %s", f.Path(), muted.Render(f.Operation.String()))
		if p.detector != nil {
			if lang := p.detector.DetectFromPath(f.Path()); lang != "" {
				line += " " + muted.Render("("+lang+")")
			}
		}
		line += " " + low.Render(fmt.Sprintf("+%d", adds)) + " " + high.Render(fmt.Sprintf("-%d", dels))
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n")
}

func (p *Printer) writeAnalysis(sb *strings.Builder, c prreview.Category, doc prreview.Document) {
	sb.WriteString(p.style(p.styles.Heading).Bold(true).Render(prreview.CategoryTitle(c)))
	sb.WriteString("\n")

	if prreview.IsErrorDocument(doc) {
		sb.WriteString("  " + p.style(p.styles.Failed).Render(" FAILED ") + " " + p.text(field(doc, "error")) + "\n\n")
		return
	}

	switch c {
	case prreview.CategorySummary:
		sb.WriteString("  " + p.text(field(doc, "summary")) + "\n")
		sb.WriteString("  " + p.level("Severity", field(doc, "severity")) + "  " + p.label("Type") + " " + p.text(field(doc, "type")) + "\n")
	case prreview.CategoryBugDetection:
		sb.WriteString("  " + p.level("Overall risk", field(doc, "overall_risk")) + "\n")
		p.writeItems(sb, doc, "issues", "No issues found.", "severity", "description", "suggestion")
	case prreview.CategoryPerformance:
		sb.WriteString("  " + p.level("Optimization potential", field(doc, "optimization_potential")) + "\n")
		p.writeItems(sb, doc, "suggestions", "No suggestions.", "", "issue", "recommendation")
	case prreview.CategorySecurity:
		sb.WriteString("  " + p.level("Security level", field(doc, "security_level")) + "\n")
		p.writeItems(sb, doc, "vulnerabilities", "No vulnerabilities found.", "", "risk", "recommendation")
	default:
		keys := make([]string, 0, len(doc))
		for k := range doc {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString("  " + p.label(k) + " " + p.text(fmt.Sprint(doc[k])) + "\n")
		}
	}
	sb.WriteString("\n")
}

func (p *Printer) writeItems(sb *strings.Builder, doc prreview.Document, key, empty, severityKey, textKey, fixKey string) {
	items, _ := doc[key].([]any)
	if len(items) == 0 {
		sb.WriteString("  " + p.style(p.styles.Muted).Render(empty) + "\n")
		return
	}
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			sb.WriteString("  • " + p.text(fmt.Sprint(raw)) + "\n")
			continue
		}
		var parts []string
		if severityKey != "" {
			if sev := field(item, severityKey); sev != "" {
				parts = append(parts, p.style(p.styles.Level(sev)).Bold(true).Render("["+sev+"]"))
			}
		}
		loc := field(item, "file")
		if line := item["line"]; line != nil {
			loc = fmt.Sprintf("%s:%v", loc, line)
		}
		if loc != "" {
			parts = append(parts, p.style(p.styles.Muted).Render(loc))
		}
		parts = append(parts, p.text(field(item, textKey)))
		sb.WriteString("  • " + strings.Join(parts, " ") + "\n")
		if fix := field(item, fixKey); fix != "" {
			sb.WriteString("    " + p.label("fix") + " " + p.text(fix) + "\n")
		}
	}
}

func (p *Printer) label(s string) string {
	return p.style(p.styles.Label).Render(s + ":")
}

func (p *Printer) text(s string) string {
	st := p.style(p.styles.Text)
	if p.width > 0 {
		st = st.Width(p.width)
	}
	return st.Render(s)
}

func (p *Printer) level(name, value string) string {
	if value == "" {
		value = "unknown"
	}
	return p.label(name) + " " + p.style(p.styles.Level(value)).Bold(true).Render(value)
}

func field(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
