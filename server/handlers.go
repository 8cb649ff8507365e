package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fwojciec/prreview"
	"github.com/gin-gonic/gin"
)

// LocalReviewRequest is the body of POST /local-review.
type LocalReviewRequest struct {
	DiffText    string   `json:"diff_text"`
	FileName    string   `json:"file_name,omitempty"`
	ReviewTypes []string `json:"review_types,omitempty"`
}

// LocalReviewResponse is returned by POST /local-review.
type LocalReviewResponse struct {
	Status     prreview.Status                         `json:"status"`
	FileName   string                                  `json:"file_name,omitempty"`
	DiffLength int                                     `json:"diff_length"`
	Analyses   map[prreview.Category]prreview.Document `json:"analyses"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleLocalReview(c *gin.Context) {
	logger := requestLogger(c, s.logger)
	var req LocalReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, logger, http.StatusBadRequest, "invalid_body", "Request body must be a JSON object", err.Error())
		return
	}
	if strings.TrimSpace(req.DiffText) == "" {
		respondError(c, logger, http.StatusBadRequest, "empty_diff", "diff_text must not be empty", nil)
		return
	}

	categories, err := prreview.ParseCategories(req.ReviewTypes)
	if err != nil {
		respondError(c, logger, http.StatusBadRequest, "invalid_review_type", err.Error(), nil)
		return
	}

	diff, truncated := s.budget.Truncate(req.DiffText, s.maxLocal)
	if truncated {
		logger.Info("local review diff truncated",
			"request_id", RequestIDFromContext(c),
			"original_size", len(req.DiffText),
			"processed_size", len(diff))
	}

	report, err := s.reviewer.Review(c.Request.Context(), diff, categories)
	if err != nil {
		var vErr *prreview.ValidationError
		if errors.As(err, &vErr) {
			respondError(c, logger, http.StatusBadRequest, "invalid_request", err.Error(), nil)
			return
		}
		respondError(c, logger, http.StatusInternalServerError, "review_failed", "LLM error: "+err.Error(), nil)
		return
	}

	c.JSON(http.StatusOK, LocalReviewResponse{
		Status:     report.Status,
		FileName:   req.FileName,
		DiffLength: len(req.DiffText),
		Analyses:   report.Analyses,
	})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.stats.Snapshot())
}

func (s *Server) handleMetrics(c *gin.Context) {
	c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	c.Status(http.StatusOK)
	if err := s.stats.WritePrometheus(c.Writer); err != nil {
		s.logger.Error("writing metrics", "error", err)
	}
}
