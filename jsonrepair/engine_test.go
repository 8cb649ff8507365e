package jsonrepair_test

import (
	"encoding/json"
	"testing"

	"github.com/fwojciec/prreview"
	"github.com/fwojciec/prreview/jsonrepair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Recover_StrategySelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		want     prreview.Document
		strategy prreview.Strategy
	}{
		{
			name:     "valid JSON resolves directly",
			input:    `{"summary": "Added validation", "severity": "low", "type": "feature"}`,
			want:     prreview.Document{"summary": "Added validation", "severity": "low", "type": "feature"},
			strategy: prreview.StrategyDirect,
		},
		{
			name:     "json fenced block",
			input:    "```json\n{\"a\":1}\n```",
			want:     prreview.Document{"a": float64(1)},
			strategy: prreview.StrategyFenced,
		},
		{
			name:     "plain fenced block with surrounding prose",
			input:    "Here you go:\n```\n{\"type\": \"bugfix\"}\n```\nThanks",
			want:     prreview.Document{"type": "bugfix"},
			strategy: prreview.StrategyFenced,
		},
		{
			name:     "single quotes",
			input:    "{'a': 'b'}",
			want:     prreview.Document{"a": "b"},
			strategy: prreview.StrategyRepair,
		},
		{
			name:     "unquoted keys",
			input:    `{a: "b"}`,
			want:     prreview.Document{"a": "b"},
			strategy: prreview.StrategyRepair,
		},
		{
			name:     "trailing comma",
			input:    `{"a": "b",}`,
			want:     prreview.Document{"a": "b"},
			strategy: prreview.StrategyRepair,
		},
		{
			name:     "trailing comma in array",
			input:    `{"issues": [1, 2,], "has_bugs": true}`,
			want:     prreview.Document{"issues": []any{float64(1), float64(2)}, "has_bugs": true},
			strategy: prreview.StrategyRepair,
		},
		{
			name:     "multiple slips inside a broken fence",
			input:    "```json\n{summary: 'tests', severity: 'low',}\n```",
			want:     prreview.Document{"summary": "tests", "severity": "low"},
			strategy: prreview.StrategyRepair,
		},
		{
			name:     "byte order mark",
			input:    "\ufeff{\"a\": 1}",
			want:     prreview.Document{"a": float64(1)},
			strategy: prreview.StrategyRepair,
		},
		{
			name:     "text before object",
			input:    "The code has been analyzed.\n\n{\"summary\": \"Code improvement\", \"severity\": \"medium\"}\n",
			want:     prreview.Document{"summary": "Code improvement", "severity": "medium"},
			strategy: prreview.StrategyExtract,
		},
		{
			name:     "text after object with one nested level",
			input:    "{\"a\": {\"b\": 2}}\nMore explanation",
			want:     prreview.Document{"a": map[string]any{"b": float64(2)}},
			strategy: prreview.StrategyExtract,
		},
	}

	engine := jsonrepair.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := engine.Recover(tt.input, "generic")

			assert.Equal(t, tt.strategy, got.Strategy)
			assert.Equal(t, tt.want, got.Document)
			assert.False(t, got.Strategy.Degraded())
		})
	}
}

func TestEngine_Recover_Fallback(t *testing.T) {
	t.Parallel()

	t.Run("bug detection template", func(t *testing.T) {
		t.Parallel()

		got := jsonrepair.New().Recover("###not json###", prreview.CategoryBugDetection)

		assert.Equal(t, prreview.StrategyFallback, got.Strategy)
		assert.True(t, got.Strategy.Degraded())
		assert.Equal(t, prreview.Document{
			"issues":       []any{},
			"has_bugs":     false,
			"overall_risk": "unknown",
		}, got.Document)
	})

	t.Run("summary template", func(t *testing.T) {
		t.Parallel()

		got := jsonrepair.New().Recover("completely invalid @#$%", prreview.CategorySummary)

		assert.Equal(t, "Unable to analyze - parsing error", got.Document["summary"])
		assert.Equal(t, "unknown", got.Document["severity"])
		assert.Equal(t, "unknown", got.Document["type"])
	})

	t.Run("unknown category gets generic template", func(t *testing.T) {
		t.Parallel()

		got := jsonrepair.New().Recover("nope", "generic")

		assert.Equal(t, prreview.Document{"error": "Parsing failed", "status": "degraded"}, got.Document)
	})

	t.Run("fallback documents are not shared", func(t *testing.T) {
		t.Parallel()

		engine := jsonrepair.New()
		first := engine.Recover("x", prreview.CategorySecurity)
		first.Document["security_level"] = "mutated"

		second := engine.Recover("x", prreview.CategorySecurity)
		assert.Equal(t, "unknown", second.Document["security_level"])
	})
}

func TestEngine_Recover_IsTotal(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"   ",
		"null",
		"[1, 2, 3]",
		"42",
		`"just a string"`,
		"\x00\xff\xfe binary garbage \x80",
		"{",
		"}{",
		"```",
		"```json\n```",
		"```json\n{broken\n```",
		"The change looks fine to me.",
		"{{{{{{}}}}}}",
	}

	categories := []prreview.Category{"generic"}
	categories = append(categories, prreview.Categories...)

	engine := jsonrepair.New()
	for _, input := range inputs {
		for _, c := range categories {
			got := engine.Recover(input, c)
			require.NotNil(t, got.Document, "input %q category %s", input, c)
			assert.NotZero(t, got.Strategy)
		}
	}
}

func TestEngine_Recover_RoundTrip(t *testing.T) {
	t.Parallel()

	docs := []prreview.Document{
		{},
		{"summary": "Fix nil check", "severity": "medium", "type": "bugfix"},
		{
			"issues": []any{
				map[string]any{"file": "auth.go", "line": float64(42), "severity": "high", "description": "it's nil"},
			},
			"has_bugs":     true,
			"overall_risk": "high",
		},
		{"nested": map[string]any{"deep": map[string]any{"deeper": []any{"a", nil, false}}}},
		{"id": int64(9007199254740993), "ratio": 0.25, "lines": []any{float64(-3), int64(-9007199254740993)}},
		{"huge": json.Number("123456789012345678901234567890")},
	}

	engine := jsonrepair.New()
	for _, doc := range docs {
		data, err := json.Marshal(doc)
		require.NoError(t, err)

		got := engine.Recover(string(data), prreview.CategorySummary)

		assert.Equal(t, prreview.StrategyDirect, got.Strategy)
		assert.Equal(t, doc, got.Document)
	}
}

func TestParseStrict(t *testing.T) {
	t.Parallel()

	t.Run("rejects trailing data", func(t *testing.T) {
		t.Parallel()
		_, ok := jsonrepair.ParseStrict(`{"a": 1} trailing`)
		assert.False(t, ok)
	})

	t.Run("rejects non-object JSON", func(t *testing.T) {
		t.Parallel()
		_, ok := jsonrepair.ParseStrict(`["a"]`)
		assert.False(t, ok)
	})

	t.Run("rejects null", func(t *testing.T) {
		t.Parallel()
		_, ok := jsonrepair.ParseStrict(`null`)
		assert.False(t, ok)
	})

	t.Run("keeps integers beyond float64 precision", func(t *testing.T) {
		t.Parallel()
		doc, ok := jsonrepair.ParseStrict(`{"id": 9007199254740993, "line": 42, "score": 1.5, "exp": 1e3}`)
		require.True(t, ok)
		assert.Equal(t, int64(9007199254740993), doc["id"])
		assert.Equal(t, float64(42), doc["line"])
		assert.Equal(t, 1.5, doc["score"])
		assert.Equal(t, float64(1000), doc["exp"])
	})

	t.Run("accepts surrounding whitespace", func(t *testing.T) {
		t.Parallel()
		doc, ok := jsonrepair.ParseStrict("\n  {\"a\": true}  \n")
		require.True(t, ok)
		assert.Equal(t, true, doc["a"])
	})
}

func TestExtractFenced(t *testing.T) {
	t.Parallel()

	t.Run("prefers json tagged block", func(t *testing.T) {
		t.Parallel()
		doc, ok := jsonrepair.ExtractFenced("```\nnot json\n```\n```json\n{\"a\": 1}\n```")
		require.True(t, ok)
		assert.Equal(t, float64(1), doc["a"])
	})

	t.Run("declines without fences", func(t *testing.T) {
		t.Parallel()
		_, ok := jsonrepair.ExtractFenced(`{"a": 1}`)
		assert.False(t, ok)
	})

	t.Run("declines unclosed fence", func(t *testing.T) {
		t.Parallel()
		_, ok := jsonrepair.ExtractFenced("```json\n{\"a\": 1}")
		assert.False(t, ok)
	})
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("keeps apostrophes when double quotes exist", func(t *testing.T) {
		t.Parallel()
		got := jsonrepair.Normalize(`{"summary": "it's fine"}`)
		assert.Equal(t, `{"summary": "it's fine"}`, got)
	})

	t.Run("strips leading json word and trailing fence", func(t *testing.T) {
		t.Parallel()
		got := jsonrepair.Normalize("json {\"a\": 1}```")
		assert.Equal(t, `{"a": 1}`, got)
	})

	t.Run("quotes keys after brace and comma", func(t *testing.T) {
		t.Parallel()
		got := jsonrepair.Normalize(`{ a: 1, b_2: 2}`)
		assert.Equal(t, `{"a": 1,"b_2": 2}`, got)
	})
}

func TestExtractObject(t *testing.T) {
	t.Parallel()

	t.Run("matches innermost object under deeper nesting", func(t *testing.T) {
		t.Parallel()
		// Only the innermost one-level object matches, which is valid on its own.
		doc, ok := jsonrepair.ExtractObject(`prefix {"a": {"b": {"c": 1}}}`)
		require.True(t, ok)
		assert.Equal(t, prreview.Document{"b": map[string]any{"c": float64(1)}}, doc)
	})

	t.Run("declines when no braces", func(t *testing.T) {
		t.Parallel()
		_, ok := jsonrepair.ExtractObject("no object here")
		assert.False(t, ok)
	})
}
