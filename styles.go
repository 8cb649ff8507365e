package prreview

import "strings"

// ColorPair represents a foreground and background color combination.
// Colors should be hex strings in "#RRGGBB" format (e.g., "#ff0000" for red).
// Empty strings are valid and indicate no color override (use terminal default).
type ColorPair struct {
	Foreground string
	Background string
}

// Styles contains color pairs for all visual elements of a rendered report.
type Styles struct {
	Title   ColorPair // Report title
	Heading ColorPair // Category headings
	Label   ColorPair // Field labels such as "Severity:"
	Text    ColorPair // Regular text
	Muted   ColorPair // Metadata and locations
	Low     ColorPair // low / safe levels
	Medium  ColorPair // medium / caution levels
	High    ColorPair // high / critical / dangerous levels
	Unknown ColorPair // unknown or degraded results
	Failed  ColorPair // failed categories
}

// Level returns the color pair for a severity or risk level reported by the model.
func (s Styles) Level(level string) ColorPair {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "low", "safe", "none":
		return s.Low
	case "medium", "moderate", "caution":
		return s.Medium
	case "high", "critical", "dangerous":
		return s.High
	default:
		return s.Unknown
	}
}

// Theme provides styles for rendering reports.
// Different implementations can provide light/dark variants.
type Theme interface {
	Styles() Styles
}
