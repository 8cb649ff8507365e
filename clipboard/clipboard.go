// Package clipboard provides clipboard operations via platform-specific commands.
package clipboard

import (
	"errors"
	"os/exec"
	"runtime"
	"strings"

	"github.com/fwojciec/prreview"
)

// ErrUnavailable is returned when no clipboard command is installed.
var ErrUnavailable = errors.New("no clipboard command available")

// Compile-time interface verification.
var _ prreview.Clipboard = (*Command)(nil)

// Command implements prreview.Clipboard by piping content into a system
// command such as pbcopy, wl-copy or xclip.
type Command struct {
	Name string
	Args []string
}

// New returns the clipboard command for the current platform, or
// ErrUnavailable if none is on PATH.
func New() (*Command, error) {
	for _, c := range candidates(runtime.GOOS) {
		if _, err := exec.LookPath(c.Name); err == nil {
			return c, nil
		}
	}
	return nil, ErrUnavailable
}

func candidates(goos string) []*Command {
	switch goos {
	case "darwin":
		return []*Command{{Name: "pbcopy"}}
	case "windows":
		return []*Command{{Name: "clip"}}
	default:
		return []*Command{
			{Name: "wl-copy"},
			{Name: "xclip", Args: []string{"-selection", "clipboard"}},
			{Name: "xsel", Args: []string{"--clipboard", "--input"}},
		}
	}
}

// Copy writes content to the system clipboard.
func (c *Command) Copy(content string) error {
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Stdin = strings.NewReader(content)
	return cmd.Run()
}
