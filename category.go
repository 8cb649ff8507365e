package prreview

import (
	"fmt"
	"strings"
)

// Category identifies one kind of requested analysis.
type Category string

// Analysis categories.
const (
	CategorySummary      Category = "short_summary"
	CategoryBugDetection Category = "bug_detection"
	CategoryPerformance  Category = "performance"
	CategorySecurity     Category = "security"
)

// DefaultCategories is used when a request does not name any category.
var DefaultCategories = []Category{CategorySummary, CategoryBugDetection}

// Categories lists every known category in pipeline order.
var Categories = []Category{
	CategorySummary,
	CategoryBugDetection,
	CategoryPerformance,
	CategorySecurity,
}

// PromptKind names a prompt template.
type PromptKind string

// Prompt kinds, one per category.
const (
	PromptSummary     PromptKind = "SHORT_SUMMARY"
	PromptBugs        PromptKind = "BUG_DETECTION"
	PromptPerformance PromptKind = "PERFORMANCE_REVIEW"
	PromptSecurity    PromptKind = "SECURITY_REVIEW"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategorySummary, CategoryBugDetection, CategoryPerformance, CategorySecurity:
		return true
	}
	return false
}

// IsDetail reports whether c belongs to the detailed (second) stage.
func (c Category) IsDetail() bool {
	switch c {
	case CategoryBugDetection, CategoryPerformance, CategorySecurity:
		return true
	}
	return false
}

// PromptKind returns the prompt template used for c, or "" for unknown categories.
func (c Category) PromptKind() PromptKind {
	switch c {
	case CategorySummary:
		return PromptSummary
	case CategoryBugDetection:
		return PromptBugs
	case CategoryPerformance:
		return PromptPerformance
	case CategorySecurity:
		return PromptSecurity
	}
	return ""
}

// ParseCategory converts a category name into a Category.
// "summary" is accepted as an alias of "short_summary".
func ParseCategory(name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "summary" {
		return CategorySummary, nil
	}
	c := Category(name)
	if !c.Valid() {
		return "", &ValidationError{
			Field:   "categories",
			Message: fmt.Sprintf("unknown category %q", name),
		}
	}
	return c, nil
}

// ParseCategories converts names into categories, dropping duplicates.
// An empty list yields DefaultCategories.
func ParseCategories(names []string) ([]Category, error) {
	if len(names) == 0 {
		return append([]Category(nil), DefaultCategories...), nil
	}
	seen := make(map[Category]bool, len(names))
	out := make([]Category, 0, len(names))
	for _, name := range names {
		c, err := ParseCategory(name)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}
