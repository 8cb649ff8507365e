package github

import (
	"fmt"
	"strings"

	"github.com/fwojciec/prreview"
)

// InlineComments converts the located issues of a bug detection document into
// inline comments. commentable maps a file path to the new-side lines that
// the pull request diff touches; issues outside it are skipped.
func InlineComments(doc prreview.Document, commitID string, commentable map[string]map[int]bool) []prreview.InlineComment {
	if prreview.IsErrorDocument(doc) {
		return nil
	}
	items, _ := doc["issues"].([]any)

	var out []prreview.InlineComment
	for _, raw := range items {
		issue, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		path, _ := issue["file"].(string)
		line, ok := lineNumber(issue["line"])
		if path == "" || !ok || !commentable[path][line] {
			continue
		}
		out = append(out, prreview.InlineComment{
			CommitID: commitID,
			Path:     path,
			Line:     line,
			Body:     issueBody(issue),
		})
	}
	return out
}

func lineNumber(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n < 1 || n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, n > 0
	default:
		return 0, false
	}
}

func issueBody(issue map[string]any) string {
	var sb strings.Builder
	if sev, _ := issue["severity"].(string); sev != "" {
		fmt.Fprintf(&sb, "**[%s]** ", sev)
	}
	desc, _ := issue["description"].(string)
	sb.WriteString(desc)
	if fix, _ := issue["suggestion"].(string); fix != "" {
		fmt.Fprintf(&sb, "\n\n💡 %s", fix)
	}
	return sb.String()
}
