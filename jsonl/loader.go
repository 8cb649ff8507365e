// Package jsonl provides JSONL file handling for batch review cases and results.
package jsonl

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/prreview"
)

// Compile-time interface verification.
var (
	_ prreview.CaseLoader   = (*Loader)(nil)
	_ prreview.ResultLoader = (*ResultLoader)(nil)
)

// maxLineSize is the maximum size for a single JSONL line (4MB).
// This accommodates large PR-level diffs while preventing memory issues.
const maxLineSize = 4 * 1024 * 1024

// Loader loads ReviewCase records from JSONL files.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads a JSONL file and returns all ReviewCase records.
// Cases without an id are numbered by their line.
func (l *Loader) Load(path string) ([]prreview.ReviewCase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cases []prreview.ReviewCase
	err = decodeLines(f, func(lineNum int, line []byte) error {
		var c prreview.ReviewCase
		if err := json.Unmarshal(line, &c); err != nil {
			return err
		}
		if c.ID == "" {
			c.ID = fmt.Sprintf("line-%d", lineNum)
		}
		cases = append(cases, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cases, nil
}

// ResultLoader reads ReviewResult records written by Saver.
type ResultLoader struct{}

// NewResultLoader creates a new ResultLoader.
func NewResultLoader() *ResultLoader {
	return &ResultLoader{}
}

// Load reads results from a JSONL file. Returns nil if the file doesn't exist.
func (l *ResultLoader) Load(path string) ([]prreview.ReviewResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var results []prreview.ReviewResult
	err = decodeLines(f, func(_ int, line []byte) error {
		var r prreview.ReviewResult
		if err := json.Unmarshal(line, &r); err != nil {
			return err
		}
		results = append(results, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// decodeLines calls fn for every non-blank line of r.
func decodeLines(r io.Reader, fn func(lineNum int, line []byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := fn(lineNum, []byte(line)); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	return scanner.Err()
}
