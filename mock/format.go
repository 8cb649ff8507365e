package mock

import "github.com/fwojciec/prreview"

// Compile-time interface verification.
var (
	_ prreview.ReportFormatter  = (*ReportFormatter)(nil)
	_ prreview.LanguageDetector = (*LanguageDetector)(nil)
)

// ReportFormatter is a mock implementation of prreview.ReportFormatter.
type ReportFormatter struct {
	FormatFn func(input prreview.FormatInput) string
}

func (f *ReportFormatter) Format(input prreview.FormatInput) string {
	return f.FormatFn(input)
}

// LanguageDetector is a mock implementation of prreview.LanguageDetector.
type LanguageDetector struct {
	DetectFromPathFn func(path string) string
}

func (d *LanguageDetector) DetectFromPath(path string) string {
	return d.DetectFromPathFn(path)
}
