// Package chroma labels changed files with their programming language.
package chroma

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/fwojciec/prreview"
)

// Compile-time interface verification.
var _ prreview.LanguageDetector = (*Detector)(nil)

// Detector detects programming languages from file paths using chroma.
type Detector struct{}

// NewDetector creates a new chroma-based language detector.
func NewDetector() *Detector {
	return &Detector{}
}

// DetectFromPath returns the language name for the given path,
// or an empty string if the language cannot be determined.
// Strips "a/" or "b/" prefixes common in diff output.
func (d *Detector) DetectFromPath(path string) string {
	path = strings.TrimPrefix(path, "a/")
	path = strings.TrimPrefix(path, "b/")

	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		return ""
	}
	return lexer.Config().Name
}

// Languages returns the distinct languages touched by diff, most files first.
// Ties are broken by name.
func (d *Detector) Languages(diff *prreview.Diff) []string {
	if diff == nil {
		return nil
	}
	counts := make(map[string]int)
	for _, f := range diff.Files {
		if f.IsBinary {
			continue
		}
		if lang := d.DetectFromPath(f.Path()); lang != "" {
			counts[lang]++
		}
	}

	langs := make([]string, 0, len(counts))
	for lang := range counts {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool {
		if counts[langs[i]] != counts[langs[j]] {
			return counts[langs[i]] > counts[langs[j]]
		}
		return langs[i] < langs[j]
	})
	return langs
}
