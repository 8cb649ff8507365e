package prreview

import "context"

// Status is the top-level outcome of a review.
type Status string

// StatusSuccess is the only status a review produces; category failures are
// embedded in the analyses instead.
const StatusSuccess Status = "success"

// Stage names recorded in Metadata.StagesCompleted.
const (
	StageSummary = "stage1_summary"
	StageDetail  = "stage2_detail"
)

// Metadata describes how the diff was processed.
type Metadata struct {
	OriginalSize    int      `json:"original_size" yaml:"original_size"`
	ProcessedSize   int      `json:"processed_size" yaml:"processed_size"`
	WasTruncated    bool     `json:"was_truncated" yaml:"was_truncated"`
	StagesCompleted []string `json:"stages_completed" yaml:"stages_completed"`
}

// Report is the aggregated result of one review request.
type Report struct {
	Status   Status                `json:"status" yaml:"status"`
	Analyses map[Category]Document `json:"analyses" yaml:"analyses"`
	Metadata Metadata              `json:"metadata" yaml:"metadata"`
}

// Reviewer runs the staged review of a diff.
type Reviewer interface {
	Review(ctx context.Context, diff string, categories []Category) (*Report, error)
}

// GenerateOptions holds per-call generation settings.
type GenerateOptions struct {
	MaxOutputTokens int
	Temperature     float32
}

// Generator produces raw text from a prompt using an LLM.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// PromptRenderer renders prompt templates and exposes their generation settings.
type PromptRenderer interface {
	Render(kind PromptKind, vars map[string]string) (string, error)
	Settings(kind PromptKind) GenerateOptions
}

// UsageStats is a point-in-time copy of usage counters.
type UsageStats struct {
	TotalAttempts    int64   `json:"total_attempts"`
	SuccessfulParses int64   `json:"successful_parses"`
	FailedParses     int64   `json:"failed_parses"`
	SuccessRate      float64 `json:"success_rate"`
}

// UsageTracker counts category completions across the process lifetime.
// Implementations must be safe for concurrent use.
type UsageTracker interface {
	RecordAttempt(success bool)
	SuccessRate() float64
	Snapshot() UsageStats
	Reset()
}

// CommentAck identifies a comment created on the hosting platform.
type CommentAck struct {
	ID  int64  `json:"id"`
	URL string `json:"html_url"`
}

// DiffFetcher retrieves the diff of a pull request.
type DiffFetcher interface {
	FetchDiff(ctx context.Context, owner, repo string, number int) (string, error)
}

// CommentPoster publishes a comment on a pull request.
type CommentPoster interface {
	PostComment(ctx context.Context, owner, repo string, number int, body string) (*CommentAck, error)
}

// InlineComment is a review comment anchored to a line of a pull request.
type InlineComment struct {
	CommitID string `json:"commit_id"`
	Path     string `json:"path"`
	Line     int    `json:"line"`
	Body     string `json:"body"`
}

// ReviewCommenter publishes inline comments on a pull request.
type ReviewCommenter interface {
	PostReviewComment(ctx context.Context, owner, repo string, number int, c InlineComment) (*CommentAck, error)
}
