package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fwojciec/prreview"
	"github.com/fwojciec/prreview/gitdiff"
	"github.com/fwojciec/prreview/github"
	"github.com/gin-gonic/gin"
)

// EventHeader names the GitHub event of a webhook delivery.
const EventHeader = "X-GitHub-Event"

// PullRequestEvent is the subset of a GitHub pull_request payload the server reads.
type PullRequestEvent struct {
	Action      string `json:"action"`
	Number      int    `json:"number"`
	PullRequest struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
		Head   struct {
			SHA string `json:"sha"`
		} `json:"head"`
	} `json:"pull_request"`
	Repository struct {
		Name     string `json:"name"`
		FullName string `json:"full_name"`
		Owner    struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"repository"`
}

// WebhookResponse is returned by POST /webhook.
type WebhookResponse struct {
	Status         string `json:"status"`
	Reason         string `json:"reason,omitempty"`
	CommentID      int64  `json:"comment_id,omitempty"`
	CommentURL     string `json:"comment_url,omitempty"`
	InlineComments int    `json:"inline_comments,omitempty"`
}

var reviewedActions = map[string]bool{
	"opened":      true,
	"synchronize": true,
	"reopened":    true,
}

func (s *Server) handleWebhook(c *gin.Context) {
	logger := requestLogger(c, s.logger)
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, logger, http.StatusBadRequest, "invalid_body", "Could not read request body", nil)
		return
	}
	if !VerifySignature(body, c.GetHeader(SignatureHeader), s.secret) {
		respondError(c, logger, http.StatusForbidden, "invalid_signature", "Invalid webhook signature", nil)
		return
	}

	switch event := c.GetHeader(EventHeader); event {
	case "ping":
		c.JSON(http.StatusOK, WebhookResponse{Status: "pong"})
		return
	case "pull_request":
	default:
		c.JSON(http.StatusOK, WebhookResponse{Status: "ignored", Reason: "event " + event})
		return
	}

	var ev PullRequestEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		respondError(c, logger, http.StatusBadRequest, "invalid_payload", "Malformed pull_request payload", err.Error())
		return
	}
	if !reviewedActions[ev.Action] {
		c.JSON(http.StatusOK, WebhookResponse{Status: "ignored", Reason: "action " + ev.Action})
		return
	}
	if s.fetcher == nil || s.poster == nil {
		respondError(c, logger, http.StatusServiceUnavailable, "github_disabled", "GitHub integration is not configured", nil)
		return
	}

	owner, repo, number := ev.Repository.Owner.Login, ev.Repository.Name, ev.PullRequest.Number
	if number == 0 {
		number = ev.Number
	}
	if owner == "" || repo == "" || number == 0 {
		respondError(c, logger, http.StatusBadRequest, "invalid_payload", "Payload does not identify a pull request", nil)
		return
	}
	logger = logger.With("repo", owner+"/"+repo, "number", number)
	ctx := c.Request.Context()

	diffText, err := s.fetcher.FetchDiff(ctx, owner, repo, number)
	if err != nil {
		respondError(c, logger, http.StatusBadGateway, "fetch_failed", err.Error(), nil)
		return
	}

	report, err := s.reviewer.Review(ctx, diffText, nil)
	if err != nil {
		respondError(c, logger, http.StatusInternalServerError, "review_failed", err.Error(), nil)
		return
	}

	var parsed *prreview.Diff
	if s.parser != nil {
		if parsed, err = s.parser.Parse(strings.NewReader(diffText)); err != nil {
			logger.Warn("parsing pull request diff", "error", err)
			parsed = nil
		}
	}

	ack, err := s.poster.PostComment(ctx, owner, repo, number, s.formatter.Format(prreview.FormatInput{Report: report, Diff: parsed}))
	if err != nil {
		respondError(c, logger, http.StatusBadGateway, "comment_failed", err.Error(), nil)
		return
	}
	logger.Info("posted review comment", "comment_id", ack.ID)

	resp := WebhookResponse{Status: "reviewed", CommentID: ack.ID, CommentURL: ack.URL}
	if s.inline != nil && parsed != nil && ev.PullRequest.Head.SHA != "" {
		resp.InlineComments = s.postInline(c, logger, report, parsed, ev, owner, repo, number)
	}
	c.JSON(http.StatusOK, resp)
}

// postInline posts located bug findings and returns how many were accepted.
func (s *Server) postInline(c *gin.Context, logger *slog.Logger, report *prreview.Report, diff *prreview.Diff, ev PullRequestEvent, owner, repo string, number int) int {
	doc, ok := report.Analyses[prreview.CategoryBugDetection]
	if !ok {
		return 0
	}
	commentable := make(map[string]map[int]bool, len(diff.Files))
	for _, f := range diff.Files {
		commentable[f.Path()] = gitdiff.CommentableLines(f)
	}

	posted := 0
	for _, comment := range github.InlineComments(doc, ev.PullRequest.Head.SHA, commentable) {
		if _, err := s.inline.PostReviewComment(c.Request.Context(), owner, repo, number, comment); err != nil {
			logger.Warn("posting inline comment", "path", comment.Path, "line", comment.Line, "error", err)
			continue
		}
		posted++
	}
	return posted
}
