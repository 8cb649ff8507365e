package prreview

// ReviewCase is one diff to review in a batch run.
type ReviewCase struct {
	ID         string   `json:"id"`
	Diff       string   `json:"diff"`
	Categories []string `json:"categories,omitempty"`
}

// ReviewResult is the outcome of reviewing one ReviewCase.
// Exactly one of Report and Error is set.
type ReviewResult struct {
	ID     string  `json:"id"`
	Report *Report `json:"report,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// CaseLoader loads review cases from storage.
type CaseLoader interface {
	Load(path string) ([]ReviewCase, error)
}

// ResultSaver appends review results to storage.
type ResultSaver interface {
	Save(path string, r ReviewResult) error
}

// ResultLoader loads previously saved review results.
type ResultLoader interface {
	// Load returns nil, nil if the file does not exist.
	Load(path string) ([]ReviewResult, error)
}
