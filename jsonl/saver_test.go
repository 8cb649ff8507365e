package jsonl_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/prreview"
	"github.com/fwojciec/prreview/jsonl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaver_Save(t *testing.T) {
	t.Parallel()

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "dir", "results.jsonl")

		err := jsonl.NewSaver().Save(path, prreview.ReviewResult{ID: "x", Error: "boom"})

		require.NoError(t, err)
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, `{"id":"x","error":"boom"}`+"\n", string(content))
	})

	t.Run("appends to existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "existing.jsonl")
		require.NoError(t, os.WriteFile(path, []byte(`{"id":"old"}`+"\n"), 0o644))

		err := jsonl.NewSaver().Save(path, prreview.ReviewResult{ID: "new", Error: "e"})

		require.NoError(t, err)
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(content)), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, `{"id":"old"}`, lines[0])
		assert.Contains(t, lines[1], `"id":"new"`)
	})

	t.Run("encodes report with snake case metadata", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "results.jsonl")
		report := &prreview.Report{
			Status:   prreview.StatusSuccess,
			Analyses: map[prreview.Category]prreview.Document{},
			Metadata: prreview.Metadata{OriginalSize: 10, ProcessedSize: 10, StagesCompleted: []string{}},
		}

		err := jsonl.NewSaver().Save(path, prreview.ReviewResult{ID: "r", Report: report})

		require.NoError(t, err)
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"original_size":10`)
		assert.Contains(t, string(content), `"was_truncated":false`)
		assert.Contains(t, string(content), `"status":"success"`)
	})
}
