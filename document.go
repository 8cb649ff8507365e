package prreview

// Document is a JSON object recovered from an LLM response.
// A Document is built once per call and never mutated afterwards.
type Document map[string]any

// Strategy is the 1-based ordinal of the recovery strategy that produced a Document.
type Strategy int

// Recovery strategies in priority order.
const (
	StrategyDirect Strategy = iota + 1
	StrategyFenced
	StrategyRepair
	StrategyExtract
	StrategyFallback
)

// String returns a short name for the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyDirect:
		return "direct"
	case StrategyFenced:
		return "fenced"
	case StrategyRepair:
		return "repair"
	case StrategyExtract:
		return "extract"
	case StrategyFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Degraded reports whether the document is a fallback template rather than model output.
func (s Strategy) Degraded() bool {
	return s == StrategyFallback
}

// Recovery is the outcome of recovering a Document from free-form text.
type Recovery struct {
	Document Document
	Strategy Strategy
}

// Recoverer turns arbitrary text into a Document. It never fails.
type Recoverer interface {
	Recover(text string, category Category) Recovery
}

// FallbackDocument returns the safe default document for category.
// Unknown categories get a generic degraded marker.
func FallbackDocument(category Category) Document {
	switch category {
	case CategorySummary:
		return Document{
			"summary":  "Unable to analyze - parsing error",
			"severity": "unknown",
			"type":     "unknown",
		}
	case CategoryBugDetection:
		return Document{
			"issues":       []any{},
			"has_bugs":     false,
			"overall_risk": "unknown",
		}
	case CategoryPerformance:
		return Document{
			"suggestions":            []any{},
			"optimization_potential": "unknown",
		}
	case CategorySecurity:
		return Document{
			"vulnerabilities":     []any{},
			"has_security_issues": false,
			"security_level":      "unknown",
		}
	default:
		return Document{
			"error":  "Parsing failed",
			"status": "degraded",
		}
	}
}

// SummaryCallFailedDocument is stored for the summary when the LLM call itself fails.
func SummaryCallFailedDocument() Document {
	return Document{
		"summary":  "Analysis failed",
		"severity": "unknown",
		"type":     "unknown",
	}
}

// ErrorDocument is stored for a detail category whose LLM call failed.
func ErrorDocument(err error) Document {
	return Document{
		"error":  err.Error(),
		"status": "failed",
	}
}

// IsErrorDocument reports whether doc marks a failed category.
func IsErrorDocument(doc Document) bool {
	status, _ := doc["status"].(string)
	_, hasErr := doc["error"]
	return hasErr && status == "failed"
}
