// Package fs implements file-system backed helpers such as the response cache.
package fs

import (
	"os"
	"path/filepath"
)

// DefaultCacheDir returns the default cache directory for prreview.
// Uses XDG_CACHE_HOME if set, otherwise falls back to ~/.cache/prreview,
// or system temp directory if home is unavailable.
func DefaultCacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "prreview")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "prreview")
	}
	return filepath.Join(home, ".cache", "prreview")
}
