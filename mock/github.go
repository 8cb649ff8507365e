package mock

import (
	"context"

	"github.com/fwojciec/prreview"
)

// Compile-time interface verification.
var (
	_ prreview.DiffFetcher   = (*DiffFetcher)(nil)
	_ prreview.CommentPoster = (*CommentPoster)(nil)

	_ prreview.ReviewCommenter = (*ReviewCommenter)(nil)
)

// DiffFetcher is a mock implementation of prreview.DiffFetcher.
type DiffFetcher struct {
	FetchDiffFn func(ctx context.Context, owner, repo string, number int) (string, error)
}

func (f *DiffFetcher) FetchDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	return f.FetchDiffFn(ctx, owner, repo, number)
}

// CommentPoster is a mock implementation of prreview.CommentPoster.
type CommentPoster struct {
	PostCommentFn func(ctx context.Context, owner, repo string, number int, body string) (*prreview.CommentAck, error)
}

func (p *CommentPoster) PostComment(ctx context.Context, owner, repo string, number int, body string) (*prreview.CommentAck, error) {
	return p.PostCommentFn(ctx, owner, repo, number, body)
}

// ReviewCommenter is a mock implementation of prreview.ReviewCommenter.
type ReviewCommenter struct {
	PostReviewCommentFn func(ctx context.Context, owner, repo string, number int, c prreview.InlineComment) (*prreview.CommentAck, error)
}

func (r *ReviewCommenter) PostReviewComment(ctx context.Context, owner, repo string, number int, c prreview.InlineComment) (*prreview.CommentAck, error) {
	return r.PostReviewCommentFn(ctx, owner, repo, number, c)
}
