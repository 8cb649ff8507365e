// Package lipgloss provides terminal rendering of review reports using the Lipgloss styling library.
package lipgloss

import "github.com/fwojciec/prreview"

// Compile-time interface verification.
var _ prreview.Theme = (*Theme)(nil)

// Theme implements prreview.Theme with Lipgloss-compatible colors.
type Theme struct {
	styles prreview.Styles
}

// Styles returns the color styles for this theme.
func (t *Theme) Styles() prreview.Styles {
	return t.styles
}

// DefaultTheme returns the default theme (dark background optimized).
func DefaultTheme() *Theme {
	return DarkTheme()
}

// DarkTheme returns a theme optimized for dark terminal backgrounds (Catppuccin Mocha).
func DarkTheme() *Theme {
	return &Theme{
		styles: prreview.Styles{
			Title: prreview.ColorPair{
				Foreground: "#f9e2af", // Yellow
				Background: "#313244", // Dark surface
			},
			Heading: prreview.ColorPair{Foreground: "#89b4fa"}, // Blue
			Label:   prreview.ColorPair{Foreground: "#cba6f7"}, // Mauve
			Text:    prreview.ColorPair{Foreground: "#cdd6f4"},
			Muted:   prreview.ColorPair{Foreground: "#6c7086"},
			Low:     prreview.ColorPair{Foreground: "#a6e3a1"}, // Green
			Medium:  prreview.ColorPair{Foreground: "#f9e2af"}, // Yellow
			High:    prreview.ColorPair{Foreground: "#f38ba8"}, // Red
			Unknown: prreview.ColorPair{Foreground: "#6c7086"},
			Failed: prreview.ColorPair{
				Foreground: "#1e1e2e",
				Background: "#f38ba8",
			},
		},
	}
}

// LightTheme returns a theme optimized for light terminal backgrounds (Catppuccin Latte).
func LightTheme() *Theme {
	return &Theme{
		styles: prreview.Styles{
			Title: prreview.ColorPair{
				Foreground: "#4c4f69",
				Background: "#e6e9ef",
			},
			Heading: prreview.ColorPair{Foreground: "#1e66f5"},
			Label:   prreview.ColorPair{Foreground: "#8839ef"},
			Text:    prreview.ColorPair{Foreground: "#4c4f69"},
			Muted:   prreview.ColorPair{Foreground: "#9ca0b0"},
			Low:     prreview.ColorPair{Foreground: "#40a02b"},
			Medium:  prreview.ColorPair{Foreground: "#df8e1d"},
			High:    prreview.ColorPair{Foreground: "#d20f39"},
			Unknown: prreview.ColorPair{Foreground: "#9ca0b0"},
			Failed: prreview.ColorPair{
				Foreground: "#eff1f5",
				Background: "#d20f39",
			},
		},
	}
}
