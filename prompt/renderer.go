// Package prompt renders the review prompts sent to the LLM.
package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/fwojciec/prreview"
)

// Compile-time interface verification.
var _ prreview.PromptRenderer = (*Renderer)(nil)

// VarDiff is the template variable holding the diff under review.
const VarDiff = "diff_text"

// DefaultSettings holds the generation settings for each prompt kind.
var DefaultSettings = map[prreview.PromptKind]prreview.GenerateOptions{
	prreview.PromptSummary:     {MaxOutputTokens: 200, Temperature: 0.7},
	prreview.PromptBugs:        {MaxOutputTokens: 500, Temperature: 0.5},
	prreview.PromptPerformance: {MaxOutputTokens: 400, Temperature: 0.6},
	prreview.PromptSecurity:    {MaxOutputTokens: 400, Temperature: 0.5},
}

// Renderer implements prreview.PromptRenderer using text/template.
type Renderer struct {
	templates map[prreview.PromptKind]*template.Template
	settings  map[prreview.PromptKind]prreview.GenerateOptions
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSettings overrides the generation settings for kind.
func WithSettings(kind prreview.PromptKind, opts prreview.GenerateOptions) Option {
	return func(r *Renderer) {
		r.settings[kind] = opts
	}
}

// WithTemplate replaces the template text for kind.
// It panics if text does not parse, like template.Must.
func WithTemplate(kind prreview.PromptKind, text string) Option {
	return func(r *Renderer) {
		r.templates[kind] = mustParse(kind, text)
	}
}

// NewRenderer creates a Renderer with the built-in templates and settings.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		templates: make(map[prreview.PromptKind]*template.Template, len(builtin)),
		settings:  make(map[prreview.PromptKind]prreview.GenerateOptions, len(DefaultSettings)),
	}
	for kind, text := range builtin {
		r.templates[kind] = mustParse(kind, text)
	}
	for kind, s := range DefaultSettings {
		r.settings[kind] = s
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render fills the template for kind with vars.
// Missing variables are an error rather than an empty substitution.
func (r *Renderer) Render(kind prreview.PromptKind, vars map[string]string) (string, error) {
	tmpl, ok := r.templates[kind]
	if !ok {
		return "", fmt.Errorf("prompt: unknown prompt kind %q", kind)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, vars); err != nil {
		return "", fmt.Errorf("prompt: render %s: %w", kind, err)
	}
	return sb.String(), nil
}

// Settings returns the generation settings for kind. Unknown kinds get the
// summary settings.
func (r *Renderer) Settings(kind prreview.PromptKind) prreview.GenerateOptions {
	if s, ok := r.settings[kind]; ok {
		return s
	}
	return r.settings[prreview.PromptSummary]
}

func mustParse(kind prreview.PromptKind, text string) *template.Template {
	return template.Must(template.New(string(kind)).Option("missingkey=error").Parse(text))
}
