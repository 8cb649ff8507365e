package mock

import (
	"context"

	"github.com/fwojciec/prreview"
)

// Compile-time interface verification.
var (
	_ prreview.GitRunner = (*GitRunner)(nil)
	_ prreview.Clipboard = (*Clipboard)(nil)
)

// GitRunner is a mock implementation of prreview.GitRunner.
type GitRunner struct {
	DiffFn func(ctx context.Context, repoPath, base, head string) (string, error)
}

func (g *GitRunner) Diff(ctx context.Context, repoPath, base, head string) (string, error) {
	return g.DiffFn(ctx, repoPath, base, head)
}

// Clipboard is a mock implementation of prreview.Clipboard.
type Clipboard struct {
	CopyFn func(content string) error
}

func (c *Clipboard) Copy(content string) error {
	return c.CopyFn(content)
}
