// Package git provides access to git operations via shell commands.
package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/fwojciec/prreview"
)

// Compile-time interface verification.
var _ prreview.GitRunner = (*Runner)(nil)

// Runner executes git commands via shell.
type Runner struct{}

// NewRunner creates a new git runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Diff returns the unified diff between base and head in the repository at
// repoPath. An empty head compares base against the working tree.
func (r *Runner) Diff(ctx context.Context, repoPath, base, head string) (string, error) {
	if base == "" {
		return "", fmt.Errorf("git diff: base revision required")
	}
	args := []string{"-C", repoPath, "diff", "--no-color", "--no-ext-diff", base}
	if head != "" {
		args = append(args, head)
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("git diff failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git diff failed: %w", err)
	}
	return string(output), nil
}

// ParseRange splits a "base..head" revision range. A bare revision is
// returned as base with an empty head.
func ParseRange(rev string) (base, head string, err error) {
	rev = strings.TrimSpace(rev)
	if rev == "" {
		return "", "", fmt.Errorf("empty revision range")
	}
	if strings.Contains(rev, "...") {
		return "", "", fmt.Errorf("symmetric range %q not supported, use base..head", rev)
	}
	base, head, found := strings.Cut(rev, "..")
	if found && (base == "" || head == "") {
		return "", "", fmt.Errorf("invalid revision range %q", rev)
	}
	return base, head, nil
}
