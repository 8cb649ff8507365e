// Package prreview provides domain types for reviewing diffs with an LLM.
package prreview

import (
	"context"
	"io"
	"io/fs"
)

// Diff represents a parsed diff containing one or more file changes.
type Diff struct {
	Files []FileDiff
}

// Stats returns the number of added and deleted lines across all files.
func (d Diff) Stats() (added, deleted int) {
	for _, f := range d.Files {
		a, del := f.Stats()
		added += a
		deleted += del
	}
	return added, deleted
}

// FileDiff represents changes to a single file.
type FileDiff struct {
	OldPath   string      // empty for new files
	NewPath   string      // empty for deleted files
	Operation FileOp      // Added, Deleted, Modified, Renamed, Copied
	IsBinary  bool        // Binary files have no hunks
	OldMode   fs.FileMode // 0 if unchanged
	NewMode   fs.FileMode
	Hunks     []Hunk
}

// Path returns the path that best identifies the file after the change.
func (f FileDiff) Path() string {
	if f.NewPath != "" {
		return f.NewPath
	}
	return f.OldPath
}

// Stats returns the number of added and deleted lines in the file.
func (f FileDiff) Stats() (added, deleted int) {
	for _, hunk := range f.Hunks {
		for _, line := range hunk.Lines {
			switch line.Type {
			case LineAdded:
				added++
			case LineDeleted:
				deleted++
			}
		}
	}
	return added, deleted
}

// FileOp represents the type of operation performed on a file.
type FileOp int

// File operation types.
const (
	FileModified FileOp = iota
	FileAdded
	FileDeleted
	FileRenamed
	FileCopied
)

// String returns the lower-case name of the operation.
func (op FileOp) String() string {
	switch op {
	case FileAdded:
		return "added"
	case FileDeleted:
		return "deleted"
	case FileRenamed:
		return "renamed"
	case FileCopied:
		return "copied"
	default:
		return "modified"
	}
}

// Hunk represents a contiguous block of changes within a file.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Section  string // Optional function name after @@ ... @@
	Lines    []Line
}

// Line represents a single line within a hunk.
type Line struct {
	Type       LineType
	Content    string
	OldLineNum int // 0 if line is Added
	NewLineNum int // 0 if line is Deleted
}

// LineType represents the type of a diff line.
type LineType int

// Line types.
const (
	LineContext LineType = iota
	LineAdded
	LineDeleted
)

// Parser parses unified diff text into a Diff.
type Parser interface {
	Parse(r io.Reader) (*Diff, error)
}

// GitRunner provides access to local git history.
type GitRunner interface {
	// Diff returns the unified diff between two revisions of the repository at repoPath.
	Diff(ctx context.Context, repoPath, base, head string) (string, error)
}

// Clipboard provides copy-to-clipboard functionality.
type Clipboard interface {
	Copy(content string) error
}
