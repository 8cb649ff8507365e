// Package jsonrepair recovers JSON objects from free-form LLM output.
//
// An Engine runs an ordered chain of independent strategies and commits to
// the first one that yields a JSON object. The last strategy returns a fixed
// per-category template, so recovery always produces a document.
package jsonrepair

import (
	"encoding/json"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/fwojciec/prreview"
)

// Compile-time interface verification.
var _ prreview.Recoverer = (*Engine)(nil)

// strategy returns a document, or false to decline.
type strategy struct {
	ordinal prreview.Strategy
	parse   func(text string) (prreview.Document, bool)
}

// Engine implements prreview.Recoverer.
type Engine struct {
	strategies []strategy
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used to report which strategy resolved a response.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine with the standard strategy chain.
func New(opts ...Option) *Engine {
	e := &Engine{
		strategies: []strategy{
			{prreview.StrategyDirect, ParseStrict},
			{prreview.StrategyFenced, ExtractFenced},
			{prreview.StrategyRepair, Repair},
			{prreview.StrategyExtract, ExtractObject},
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recover converts text into a document for category.
func (e *Engine) Recover(text string, category prreview.Category) prreview.Recovery {
	for _, s := range e.strategies {
		if doc, ok := s.parse(text); ok {
			e.logger.Debug("response recovered",
				"category", category,
				"strategy", int(s.ordinal),
				"strategy_name", s.ordinal.String())
			return prreview.Recovery{Document: doc, Strategy: s.ordinal}
		}
	}

	e.logger.Warn("response not recoverable, using fallback",
		"category", category,
		"strategy", int(prreview.StrategyFallback),
		"preview", preview(text))
	return prreview.Recovery{
		Document: prreview.FallbackDocument(category),
		Strategy: prreview.StrategyFallback,
	}
}

// ParseStrict parses text as a single JSON object.
func ParseStrict(text string) (prreview.Document, bool) {
	var doc prreview.Document
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, false
	}
	// json.Decode leaves trailing data unread; strict parsing rejects it.
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	if doc == nil {
		// "null" decodes into a nil map.
		return nil, false
	}
	for k, v := range doc {
		doc[k] = convertNumbers(v)
	}
	return doc, true
}

// maxExactInt is the largest integer a float64 holds exactly.
const maxExactInt = 1 << 53

// convertNumbers replaces json.Number values with float64, except integers
// beyond float64 precision: those become int64, or stay json.Number when they
// overflow int64.
func convertNumbers(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			v[k] = convertNumbers(e)
		}
		return v
	case []any:
		for i, e := range v {
			v[i] = convertNumbers(e)
		}
		return v
	case json.Number:
		return convertNumber(v)
	default:
		return v
	}
}

func convertNumber(n json.Number) any {
	if !strings.ContainsAny(n.String(), ".eE") {
		i, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return n
		}
		if i > maxExactInt || i < -maxExactInt {
			return i
		}
		return float64(i)
	}
	f, err := n.Float64()
	if err != nil {
		return n
	}
	return f
}

const fence = "```"

// ExtractFenced parses the interior of a ```json block, or of the first
// ``` block when no tagged block exists.
func ExtractFenced(text string) (prreview.Document, bool) {
	if interior, ok := fencedInterior(text, fence+"json"); ok {
		return ParseStrict(strings.TrimSpace(interior))
	}
	if interior, ok := fencedInterior(text, fence); ok {
		return ParseStrict(strings.TrimSpace(interior))
	}
	return nil, false
}

// fencedInterior returns the text between opener and the next closing fence.
func fencedInterior(text, opener string) (string, bool) {
	start := strings.Index(text, opener)
	if start < 0 {
		return "", false
	}
	start += len(opener)
	end := strings.Index(text[start:], fence)
	if end <= 0 {
		return "", false
	}
	return text[start : start+end], true
}

var (
	leadingNoise = []string{fence + "json", fence, "json", "JSON"}

	unquotedKeyAfterBrace = regexp.MustCompile(`\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*:`)
	unquotedKeyAfterComma = regexp.MustCompile(`,\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*:`)
	trailingCommaBracket  = regexp.MustCompile(`,\s*\]`)
	trailingCommaBrace    = regexp.MustCompile(`,\s*\}`)
)

// Normalize applies the textual repairs used by Repair.
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "\ufeff")

	for _, prefix := range leadingNoise {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimSpace(text[len(prefix):])
		}
	}
	text = strings.TrimRight(text, "`")

	// Apostrophes inside valid double-quoted strings must survive.
	if !strings.Contains(text, `"`) && strings.Contains(text, "'") {
		text = strings.ReplaceAll(text, "'", `"`)
	}

	text = unquotedKeyAfterBrace.ReplaceAllString(text, `{"$1":`)
	text = unquotedKeyAfterComma.ReplaceAllString(text, `,"$1":`)

	text = trailingCommaBracket.ReplaceAllString(text, "]")
	text = trailingCommaBrace.ReplaceAllString(text, "}")
	return text
}

// Repair fixes common syntax slips (fences, single quotes, unquoted keys,
// trailing commas) and parses the result.
func Repair(text string) (prreview.Document, bool) {
	return ParseStrict(Normalize(text))
}

// objectPattern matches a brace-delimited object with at most one level of
// nested objects.
var objectPattern = regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)

// ExtractObject parses the first object-looking substring of text.
func ExtractObject(text string) (prreview.Document, bool) {
	match := objectPattern.FindString(text)
	if match == "" {
		return nil, false
	}
	return ParseStrict(match)
}

func preview(text string) string {
	const n = 100
	r := []rune(strings.ToValidUTF8(text, "?"))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
