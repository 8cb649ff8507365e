package gemini_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/prreview"
	"github.com/fwojciec/prreview/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noBackoff(int) time.Duration { return 0 }

func TestGenerator_Generate_ReturnsResponseText(t *testing.T) {
	t.Parallel()

	// Arrange
	var gotModel string
	var gotConfig *gemini.GenerateContentConfig
	var gotPrompt string
	mockClient := &gemini.MockGenerativeClient{
		GenerateContentFn: func(ctx context.Context, model string, contents []*gemini.Content, config *gemini.GenerateContentConfig) (*gemini.GenerateContentResponse, error) {
			gotModel = model
			gotConfig = config
			gotPrompt = contents[0].Parts[0].Text
			return &gemini.GenerateContentResponse{Text: `{"summary": "ok"}`}, nil
		},
	}
	gen := gemini.NewGenerator(mockClient, gemini.DefaultModel)

	// Act
	text, err := gen.Generate(context.Background(), "review this", prreview.GenerateOptions{MaxOutputTokens: 500, Temperature: 0.5})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, `{"summary": "ok"}`, text)
	assert.Equal(t, gemini.DefaultModel, gotModel)
	assert.Equal(t, "review this", gotPrompt)
	require.NotNil(t, gotConfig)
	assert.Equal(t, int32(500), gotConfig.MaxOutputTokens)
	require.NotNil(t, gotConfig.Temperature)
	assert.InDelta(t, 0.5, *gotConfig.Temperature, 0.001)
	assert.Empty(t, gotConfig.ResponseMIMEType)
}

func TestGenerator_Generate_JSONResponseMode(t *testing.T) {
	t.Parallel()

	var mime string
	mockClient := &gemini.MockGenerativeClient{
		GenerateContentFn: func(ctx context.Context, model string, contents []*gemini.Content, config *gemini.GenerateContentConfig) (*gemini.GenerateContentResponse, error) {
			mime = config.ResponseMIMEType
			return &gemini.GenerateContentResponse{Text: "{}"}, nil
		},
	}
	gen := gemini.NewGenerator(mockClient, gemini.DefaultModel, gemini.WithJSONResponse())

	_, err := gen.Generate(context.Background(), "p", prreview.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "application/json", mime)
}

func TestGenerator_Generate_WrapsErrorsAsLLMCallError(t *testing.T) {
	t.Parallel()

	expectedErr := errors.New("connection reset")
	mockClient := &gemini.MockGenerativeClient{
		GenerateContentFn: func(ctx context.Context, model string, contents []*gemini.Content, config *gemini.GenerateContentConfig) (*gemini.GenerateContentResponse, error) {
			return nil, expectedErr
		},
	}
	gen := gemini.NewGenerator(mockClient, gemini.DefaultModel)

	_, err := gen.Generate(context.Background(), "p", prreview.GenerateOptions{})

	require.Error(t, err)
	var callErr *prreview.LLMCallError
	require.ErrorAs(t, err, &callErr)
	assert.ErrorIs(t, err, expectedErr)
}

func TestGenerator_Generate_ReturnsErrorOnNilResponse(t *testing.T) {
	t.Parallel()

	mockClient := &gemini.MockGenerativeClient{
		GenerateContentFn: func(ctx context.Context, model string, contents []*gemini.Content, config *gemini.GenerateContentConfig) (*gemini.GenerateContentResponse, error) {
			return nil, nil
		},
	}
	gen := gemini.NewGenerator(mockClient, gemini.DefaultModel)

	_, err := gen.Generate(context.Background(), "p", prreview.GenerateOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil response")
}

func TestGenerator_Generate_ReturnsErrorOnEmptyText(t *testing.T) {
	t.Parallel()

	mockClient := &gemini.MockGenerativeClient{
		GenerateContentFn: func(ctx context.Context, model string, contents []*gemini.Content, config *gemini.GenerateContentConfig) (*gemini.GenerateContentResponse, error) {
			return &gemini.GenerateContentResponse{}, nil
		},
	}
	gen := gemini.NewGenerator(mockClient, gemini.DefaultModel)

	_, err := gen.Generate(context.Background(), "p", prreview.GenerateOptions{})

	assert.ErrorIs(t, err, prreview.ErrEmptyResult)
}

func TestGenerator_Generate_RetriesRetryableErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	mockClient := &gemini.MockGenerativeClient{
		GenerateContentFn: func(ctx context.Context, model string, contents []*gemini.Content, config *gemini.GenerateContentConfig) (*gemini.GenerateContentResponse, error) {
			if calls.Add(1) < 3 {
				return nil, gemini.NewAPIError(429, "rate limited")
			}
			return &gemini.GenerateContentResponse{Text: "{}"}, nil
		},
	}
	gen := gemini.NewGenerator(mockClient, gemini.DefaultModel, gemini.WithBackoff(noBackoff))

	text, err := gen.Generate(context.Background(), "p", prreview.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "{}", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGenerator_Generate_GivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	mockClient := &gemini.MockGenerativeClient{
		GenerateContentFn: func(ctx context.Context, model string, contents []*gemini.Content, config *gemini.GenerateContentConfig) (*gemini.GenerateContentResponse, error) {
			calls.Add(1)
			return nil, gemini.NewAPIError(503, "unavailable")
		},
	}
	gen := gemini.NewGenerator(mockClient, gemini.DefaultModel,
		gemini.WithBackoff(noBackoff),
		gemini.WithMaxRetries(1))

	_, err := gen.Generate(context.Background(), "p", prreview.GenerateOptions{})

	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
	var apiErr *gemini.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 503, apiErr.StatusCode)
}

func TestGenerator_Generate_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	mockClient := &gemini.MockGenerativeClient{
		GenerateContentFn: func(ctx context.Context, model string, contents []*gemini.Content, config *gemini.GenerateContentConfig) (*gemini.GenerateContentResponse, error) {
			calls.Add(1)
			return nil, gemini.NewAPIError(400, "bad request")
		},
	}
	gen := gemini.NewGenerator(mockClient, gemini.DefaultModel, gemini.WithBackoff(noBackoff))

	_, err := gen.Generate(context.Background(), "p", prreview.GenerateOptions{})

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerator_Generate_AppliesTimeout(t *testing.T) {
	t.Parallel()

	mockClient := &gemini.MockGenerativeClient{
		GenerateContentFn: func(ctx context.Context, model string, contents []*gemini.Content, config *gemini.GenerateContentConfig) (*gemini.GenerateContentResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	gen := gemini.NewGenerator(mockClient, gemini.DefaultModel, gemini.WithTimeout(10*time.Millisecond))

	_, err := gen.Generate(context.Background(), "p", prreview.GenerateOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", gemini.NewAPIError(429, "x"), true},
		{"server error", gemini.NewAPIError(500, "x"), true},
		{"bad gateway", gemini.NewAPIError(502, "x"), true},
		{"bad request", gemini.NewAPIError(400, "x"), false},
		{"forbidden", gemini.NewAPIError(403, "x"), false},
		{"plain error", errors.New("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, gemini.IsRetryable(tt.err))
		})
	}
}

func TestBuildConfig_SetsSystemInstruction(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig(prreview.GenerateOptions{MaxOutputTokens: 200, Temperature: 0.7})

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "JSON")
	assert.Equal(t, int32(200), config.MaxOutputTokens)
}
