package github_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/prreview"
	"github.com/fwojciec/prreview/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler http.HandlerFunc) *github.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := github.NewClient("test-token", github.WithBaseURL(srv.URL+"/"))
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresToken(t *testing.T) {
	t.Parallel()

	_, err := github.NewClient("  ")

	var cfgErr *prreview.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "github_token", cfgErr.Field)
}

func TestClient_FetchDiff(t *testing.T) {
	t.Parallel()

	// Arrange
	var gotPath, gotAccept, gotAuth string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, "diff --git a/x b/x\n")
	})

	// Act
	diff, err := c.FetchDiff(context.Background(), "octo", "repo", 7)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "diff --git a/x b/x\n", diff)
	assert.Equal(t, "/repos/octo/repo/pulls/7", gotPath)
	assert.Equal(t, "application/vnd.github.v3.diff", gotAccept)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestClient_FetchDiff_EmptyBody(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := c.FetchDiff(context.Background(), "octo", "repo", 7)

	assert.ErrorIs(t, err, prreview.ErrEmptyResult)
}

func TestClient_FetchDiff_NotFound(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message": "Not Found"}`)
	})

	_, err := c.FetchDiff(context.Background(), "octo", "repo", 7)

	var tErr *prreview.TransportError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, http.StatusNotFound, tErr.StatusCode)
	assert.Equal(t, "fetch diff", tErr.Op)
	assert.Contains(t, err.Error(), "Not Found")
}

func TestClient_ListFiles(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/repo/pulls/3/files", r.URL.Path)
		_, _ = io.WriteString(w, `[{"filename": "main.go", "status": "modified", "additions": 3, "deletions": 1, "changes": 4}]`)
	})

	files, err := c.ListFiles(context.Background(), "octo", "repo", 3)

	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, github.File{Filename: "main.go", Status: "modified", Additions: 3, Deletions: 1, Changes: 4}, files[0])
}

func TestClient_PostComment(t *testing.T) {
	t.Parallel()

	// Arrange
	var gotBody map[string]string
	var gotMethod, gotPath string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": 99, "html_url": "https://github.com/octo/repo/pull/5#issuecomment-99"}`)
	})

	// Act
	ack, err := c.PostComment(context.Background(), "octo", "repo", 5, "## Review")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/repos/octo/repo/issues/5/comments", gotPath)
	assert.Equal(t, "## Review", gotBody["body"])
	assert.Equal(t, int64(99), ack.ID)
	assert.Equal(t, "https://github.com/octo/repo/pull/5#issuecomment-99", ack.URL)
}

func TestClient_PostReviewComment(t *testing.T) {
	t.Parallel()

	var got prreview.InlineComment
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/repo/pulls/5/comments", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": 1}`)
	})

	comment := prreview.InlineComment{CommitID: "abc123", Path: "main.go", Line: 12, Body: "nil check"}
	ack, err := c.PostReviewComment(context.Background(), "octo", "repo", 5, comment)

	require.NoError(t, err)
	assert.Equal(t, int64(1), ack.ID)
	assert.Equal(t, comment, got)
}

func TestClient_PostComment_Unprocessable(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, "bad line")
	})

	_, err := c.PostComment(context.Background(), "octo", "repo", 5, "x")

	var tErr *prreview.TransportError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, http.StatusUnprocessableEntity, tErr.StatusCode)
	assert.Contains(t, err.Error(), "bad line")
}

func TestClient_TransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c, err := github.NewClient("t", github.WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.FetchDiff(context.Background(), "o", "r", 1)

	var tErr *prreview.TransportError
	require.ErrorAs(t, err, &tErr)
	assert.Zero(t, tErr.StatusCode)
}
