package lipgloss_test

import (
	"regexp"
	"testing"

	"github.com/fwojciec/prreview"
	"github.com/fwojciec/prreview/lipgloss"
	"github.com/stretchr/testify/assert"
)

var hexColor = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func TestThemes(t *testing.T) {
	t.Parallel()

	themes := map[string]prreview.Theme{
		"default": lipgloss.DefaultTheme(),
		"dark":    lipgloss.DarkTheme(),
		"light":   lipgloss.LightTheme(),
	}

	for name, theme := range themes {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := theme.Styles()
			for field, pair := range map[string]prreview.ColorPair{
				"title":   s.Title,
				"heading": s.Heading,
				"label":   s.Label,
				"text":    s.Text,
				"muted":   s.Muted,
				"low":     s.Low,
				"medium":  s.Medium,
				"high":    s.High,
				"unknown": s.Unknown,
				"failed":  s.Failed,
			} {
				assert.Regexp(t, hexColor, pair.Foreground, field)
				if pair.Background != "" {
					assert.Regexp(t, hexColor, pair.Background, field)
				}
			}
		})
	}
}

func TestThemes_LevelsAreDistinct(t *testing.T) {
	t.Parallel()

	for _, theme := range []prreview.Theme{lipgloss.DarkTheme(), lipgloss.LightTheme()} {
		s := theme.Styles()
		assert.NotEqual(t, s.Low, s.Medium)
		assert.NotEqual(t, s.Medium, s.High)
		assert.NotEqual(t, s.Low, s.High)
		assert.Equal(t, s.High, s.Level("critical"))
	}
}

func TestDefaultTheme_IsDark(t *testing.T) {
	t.Parallel()

	assert.Equal(t, lipgloss.DarkTheme().Styles(), lipgloss.DefaultTheme().Styles())
}
