// Package gitdiff implements diff parsing using bluekeyes/go-gitdiff.
package gitdiff

import (
	"io"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/fwojciec/prreview"
)

// Compile-time interface verification.
var _ prreview.Parser = (*Parser)(nil)

// Parser parses unified diff content using go-gitdiff.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads diff content and returns the parsed result.
func (p *Parser) Parse(r io.Reader) (*prreview.Diff, error) {
	files, _, err := gitdiff.Parse(r)
	if err != nil {
		return nil, err
	}

	result := &prreview.Diff{
		Files: make([]prreview.FileDiff, 0, len(files)),
	}
	for _, f := range files {
		result.Files = append(result.Files, convertFile(f))
	}
	return result, nil
}

// ParseString parses diff text held in memory.
func (p *Parser) ParseString(text string) (*prreview.Diff, error) {
	return p.Parse(strings.NewReader(text))
}

// CommentableLines returns the new-file line numbers of f that can carry an
// inline review comment: added and context lines.
func CommentableLines(f prreview.FileDiff) map[int]bool {
	lines := make(map[int]bool)
	for _, h := range f.Hunks {
		for _, l := range h.Lines {
			if l.NewLineNum > 0 {
				lines[l.NewLineNum] = true
			}
		}
	}
	return lines
}

func convertFile(f *gitdiff.File) prreview.FileDiff {
	fd := prreview.FileDiff{
		OldPath:  f.OldName,
		NewPath:  f.NewName,
		IsBinary: f.IsBinary,
		OldMode:  f.OldMode,
		NewMode:  f.NewMode,
	}

	switch {
	case f.IsNew:
		fd.Operation = prreview.FileAdded
	case f.IsDelete:
		fd.Operation = prreview.FileDeleted
	case f.IsRename:
		fd.Operation = prreview.FileRenamed
	case f.IsCopy:
		fd.Operation = prreview.FileCopied
	default:
		fd.Operation = prreview.FileModified
	}

	fd.Hunks = make([]prreview.Hunk, 0, len(f.TextFragments))
	for _, frag := range f.TextFragments {
		fd.Hunks = append(fd.Hunks, convertFragment(frag))
	}
	return fd
}

func convertFragment(frag *gitdiff.TextFragment) prreview.Hunk {
	hunk := prreview.Hunk{
		OldStart: int(frag.OldPosition),
		OldCount: int(frag.OldLines),
		NewStart: int(frag.NewPosition),
		NewCount: int(frag.NewLines),
		Section:  frag.Comment,
		Lines:    make([]prreview.Line, 0, len(frag.Lines)),
	}

	oldLineNum := int(frag.OldPosition)
	newLineNum := int(frag.NewPosition)

	for _, l := range frag.Lines {
		line := prreview.Line{Content: strings.TrimSuffix(l.Line, "\n")}

		switch l.Op {
		case gitdiff.OpContext:
			line.Type = prreview.LineContext
			line.OldLineNum = oldLineNum
			line.NewLineNum = newLineNum
			oldLineNum++
			newLineNum++
		case gitdiff.OpAdd:
			line.Type = prreview.LineAdded
			line.NewLineNum = newLineNum
			newLineNum++
		case gitdiff.OpDelete:
			line.Type = prreview.LineDeleted
			line.OldLineNum = oldLineNum
			oldLineNum++
		}

		hunk.Lines = append(hunk.Lines, line)
	}
	return hunk
}
