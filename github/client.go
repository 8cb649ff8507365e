// Package github implements the pull request capabilities on the GitHub REST v3 API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/prreview"
)

// Compile-time interface verification.
var (
	_ prreview.DiffFetcher     = (*Client)(nil)
	_ prreview.CommentPoster   = (*Client)(nil)
	_ prreview.ReviewCommenter = (*Client)(nil)
)

// DefaultBaseURL is the public GitHub API endpoint.
const DefaultBaseURL = "https://api.github.com"

// DefaultTimeout bounds each API request.
const DefaultTimeout = 10 * time.Second

const (
	acceptJSON = "application/vnd.github.v3+json"
	acceptDiff = "application/vnd.github.v3.diff"
)

// Client provides access to pull requests on GitHub.
type Client struct {
	token   string
	baseURL string
	httpCli *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a GitHub Enterprise or test server.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpCli = h
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client authenticated with token.
func NewClient(token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, &prreview.ConfigError{Field: "github_token", Message: "GitHub token is required"}
	}
	c := &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		httpCli: &http.Client{Timeout: DefaultTimeout},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchDiff returns the unified diff of a pull request.
func (c *Client) FetchDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	const op = "fetch diff"
	body, err := c.do(ctx, op, http.MethodGet, c.pullURL(owner, repo, number, ""), acceptDiff, nil)
	if err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", &prreview.TransportError{Op: op, Err: prreview.ErrEmptyResult}
	}
	c.logger.Debug("fetched pull request diff", "repo", owner+"/"+repo, "number", number, "bytes", len(body))
	return string(body), nil
}

// File is a file changed in a pull request.
type File struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
}

// ListFiles returns the files changed in a pull request.
func (c *Client) ListFiles(ctx context.Context, owner, repo string, number int) ([]File, error) {
	const op = "list files"
	body, err := c.do(ctx, op, http.MethodGet, c.pullURL(owner, repo, number, "/files"), acceptJSON, nil)
	if err != nil {
		return nil, err
	}
	var files []File
	if err := json.Unmarshal(body, &files); err != nil {
		return nil, &prreview.TransportError{Op: op, Err: fmt.Errorf("parsing response: %w", err)}
	}
	return files, nil
}

// PostComment adds a conversation comment to a pull request.
func (c *Client) PostComment(ctx context.Context, owner, repo string, number int, body string) (*prreview.CommentAck, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments", c.baseURL, owner, repo, number)
	return c.postJSON(ctx, "post comment", url, map[string]string{"body": body})
}

// PostReviewComment adds an inline comment on a line of a pull request.
func (c *Client) PostReviewComment(ctx context.Context, owner, repo string, number int, comment prreview.InlineComment) (*prreview.CommentAck, error) {
	return c.postJSON(ctx, "post review comment", c.pullURL(owner, repo, number, "/comments"), comment)
}

func (c *Client) postJSON(ctx context.Context, op, url string, payload any) (*prreview.CommentAck, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &prreview.TransportError{Op: op, Err: fmt.Errorf("marshaling payload: %w", err)}
	}
	body, err := c.do(ctx, op, http.MethodPost, url, acceptJSON, data)
	if err != nil {
		return nil, err
	}
	var ack prreview.CommentAck
	if err := json.Unmarshal(body, &ack); err != nil {
		return nil, &prreview.TransportError{Op: op, Err: fmt.Errorf("parsing response: %w", err)}
	}
	return &ack, nil
}

func (c *Client) pullURL(owner, repo string, number int, suffix string) string {
	return fmt.Sprintf("%s/repos/%s/%s/pulls/%d%s", c.baseURL, owner, repo, number, suffix)
}

// do performs one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, op, method, url, accept string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, &prreview.TransportError{Op: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", accept)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, &prreview.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &prreview.TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("github request failed", "op", op, "status", resp.StatusCode)
		return nil, &prreview.TransportError{Op: op, StatusCode: resp.StatusCode, Err: apiError(body)}
	}
	return body, nil
}

// apiError extracts the message of a GitHub error body.
func apiError(body []byte) error {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return fmt.Errorf("github: %s", payload.Message)
	}
	return fmt.Errorf("github: %s", strings.TrimSpace(string(body)))
}
