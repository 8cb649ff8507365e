package mock

import (
	"context"

	"github.com/fwojciec/prreview"
)

// Compile-time interface verification.
var (
	_ prreview.Generator      = (*Generator)(nil)
	_ prreview.PromptRenderer = (*PromptRenderer)(nil)
)

// Generator is a mock implementation of prreview.Generator.
type Generator struct {
	GenerateFn func(ctx context.Context, prompt string, opts prreview.GenerateOptions) (string, error)
}

func (g *Generator) Generate(ctx context.Context, prompt string, opts prreview.GenerateOptions) (string, error) {
	return g.GenerateFn(ctx, prompt, opts)
}

// PromptRenderer is a mock implementation of prreview.PromptRenderer.
type PromptRenderer struct {
	RenderFn   func(kind prreview.PromptKind, vars map[string]string) (string, error)
	SettingsFn func(kind prreview.PromptKind) prreview.GenerateOptions
}

func (r *PromptRenderer) Render(kind prreview.PromptKind, vars map[string]string) (string, error) {
	return r.RenderFn(kind, vars)
}

func (r *PromptRenderer) Settings(kind prreview.PromptKind) prreview.GenerateOptions {
	return r.SettingsFn(kind)
}
