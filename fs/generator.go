package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/prreview"
)

// Compile-time interface verification.
var _ prreview.Generator = (*Generator)(nil)

// Generator wraps a prreview.Generator with file-based caching of raw
// responses, keyed by model, prompt and generation settings.
// Failed calls are never cached.
type Generator struct {
	inner    prreview.Generator
	cacheDir string
	model    string
}

// NewGenerator creates a new caching generator. model is part of the cache
// key so switching models does not return stale responses.
func NewGenerator(inner prreview.Generator, cacheDir, model string) *Generator {
	return &Generator{
		inner:    inner,
		cacheDir: cacheDir,
		model:    model,
	}
}

type cacheEntry struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

// Generate returns a cached response or delegates to the inner generator.
func (g *Generator) Generate(ctx context.Context, prompt string, opts prreview.GenerateOptions) (string, error) {
	key := g.key(prompt, opts)

	if text, err := g.load(key); err == nil {
		return text, nil
	}

	text, err := g.inner.Generate(ctx, prompt, opts)
	if err != nil {
		return "", err
	}

	// Best-effort: a failed write only costs a future cache miss.
	_ = g.save(key, text)

	return text, nil
}

func (g *Generator) key(prompt string, opts prreview.GenerateOptions) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00%g\x00", g.model, opts.MaxOutputTokens, opts.Temperature)
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}

func (g *Generator) path(key string) string {
	return filepath.Join(g.cacheDir, key+".json")
}

func (g *Generator) load(key string) (string, error) {
	data, err := os.ReadFile(g.path(key))
	if err != nil {
		return "", err
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", err
	}
	if entry.Model != g.model || entry.Text == "" {
		return "", os.ErrNotExist
	}
	return entry.Text, nil
}

func (g *Generator) save(key, text string) error {
	if err := os.MkdirAll(g.cacheDir, 0755); err != nil {
		return err
	}
	data, err := json.Marshal(cacheEntry{Model: g.model, Text: text})
	if err != nil {
		return err
	}
	return os.WriteFile(g.path(key), data, 0644)
}
