package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/prreview"
	"github.com/fwojciec/prreview/chroma"
	"github.com/fwojciec/prreview/clipboard"
	"github.com/fwojciec/prreview/git"
	"github.com/fwojciec/prreview/gitdiff"
	"github.com/fwojciec/prreview/lipgloss"
	"github.com/fwojciec/prreview/stats"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// ErrNoChanges is returned when the diff contains no changes to review.
var ErrNoChanges = errors.New("no changes to review")

// ErrNoInput is returned when no diff input is provided.
var ErrNoInput = errors.New("no input: pipe a diff, provide a file path or use --git")

// Output formats.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

// ReviewApp encapsulates a single review for testing.
type ReviewApp struct {
	Input    io.Reader // Read diff from stdin (if FilePath and Range are empty)
	FilePath string    // Read diff from file (takes precedence over Input)

	Git      prreview.GitRunner // Read diff from git (takes precedence over FilePath)
	RepoPath string
	Range    string // "base..head" or a single revision

	Reviewer   prreview.Reviewer
	Categories []prreview.Category
	Parser     prreview.Parser          // optional; adds changed files to the output
	Formatter  prreview.ReportFormatter // used unless Format is FormatJSON or FormatYAML
	Format     string

	Output    io.Writer
	Clipboard prreview.Clipboard // optional; receives the rendered output
	Tracker   prreview.UsageTracker
	ShowStats bool

	// StatsOutput receives the statistics line. When nil it goes to Output,
	// except for the json and yaml formats where it is dropped.
	StatsOutput io.Writer
}

// Run reads the diff, reviews it and writes the rendered report.
func (a *ReviewApp) Run(ctx context.Context) error {
	diffText, err := a.readDiff(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(diffText) == "" {
		return ErrNoChanges
	}

	report, err := a.Reviewer.Review(ctx, diffText, a.Categories)
	if err != nil {
		return err
	}

	var parsed *prreview.Diff
	if a.Parser != nil {
		// Unparseable diffs are still reviewed; only the file list is lost.
		parsed, _ = a.Parser.Parse(strings.NewReader(diffText))
	}

	out, err := a.render(report, parsed)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(a.Output, out); err != nil {
		return err
	}

	if a.Clipboard != nil {
		if err := a.Clipboard.Copy(out); err != nil {
			return fmt.Errorf("copying to clipboard: %w", err)
		}
	}

	if w := a.statsOutput(); a.ShowStats && a.Tracker != nil && w != nil {
		s := a.Tracker.Snapshot()
		fmt.Fprintf(w, "\nAnalyses: %d total, %d parsed, %d failed (%.1f%% success)\n",
			s.TotalAttempts, s.SuccessfulParses, s.FailedParses, s.SuccessRate)
	}
	return nil
}

func (a *ReviewApp) statsOutput() io.Writer {
	if a.StatsOutput != nil {
		return a.StatsOutput
	}
	if a.Format == FormatJSON || a.Format == FormatYAML {
		return nil
	}
	return a.Output
}

func (a *ReviewApp) readDiff(ctx context.Context) (string, error) {
	if a.Range != "" {
		base, head, err := git.ParseRange(a.Range)
		if err != nil {
			return "", err
		}
		return a.Git.Diff(ctx, a.RepoPath, base, head)
	}

	input := a.Input
	if a.FilePath != "" {
		f, err := os.Open(a.FilePath)
		if err != nil {
			return "", err
		}
		defer f.Close()
		input = f
	}
	if input == nil {
		return "", ErrNoInput
	}

	data, err := io.ReadAll(input)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (a *ReviewApp) render(report *prreview.Report, diff *prreview.Diff) (string, error) {
	switch a.Format {
	case FormatJSON:
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	case FormatYAML:
		data, err := yaml.Marshal(report)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return a.Formatter.Format(prreview.FormatInput{Report: report, Diff: diff}), nil
}

type reviewFlags struct {
	gitRange   string
	repoPath   string
	format     string
	categories []string
	copy       bool
	cache      bool
	stats      bool
	noColor    bool
	theme      string
}

func newReviewCmd(g *globals) *cobra.Command {
	var f reviewFlags

	cmd := &cobra.Command{
		Use:   "review [file]",
		Short: "Review a diff from a file, stdin or a git range",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := prreview.ParseCategories(f.categories)
			if err != nil {
				return err
			}
			formatter, err := f.formatter(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			app := &ReviewApp{
				Categories: categories,
				Parser:     gitdiff.NewParser(),
				Formatter:  formatter,
				Format:     f.format,
				Output:     cmd.OutOrStdout(),
				ShowStats:  f.stats,
			}
			if f.format == FormatJSON || f.format == FormatYAML {
				app.StatsOutput = cmd.ErrOrStderr()
			}
			switch {
			case f.gitRange != "":
				app.Git = git.NewRunner()
				app.RepoPath = f.repoPath
				app.Range = f.gitRange
			case len(args) == 1:
				app.FilePath = args[0]
			default:
				if isTerminal(g.stdin) {
					return ErrNoInput
				}
				app.Input = g.stdin
			}
			if f.copy {
				cb, err := clipboard.New()
				if err != nil {
					return err
				}
				app.Clipboard = cb
			}

			gen, closeFn, err := newGenerator(cmd.Context(), g.cfg, g.logger, f.cache)
			if err != nil {
				return err
			}
			defer closeFn()

			tracker := stats.New()
			app.Tracker = tracker
			app.Reviewer = newReviewer(gen, g.cfg, tracker, g.logger)
			return app.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&f.gitRange, "git", "", "review a git revision range (base..head, or base against the working tree)")
	cmd.Flags().StringVar(&f.repoPath, "repo", ".", "repository for --git")
	cmd.Flags().StringVarP(&f.format, "format", "f", FormatText, "output format: text, markdown, json, yaml")
	cmd.Flags().StringSliceVarP(&f.categories, "categories", "c", nil, "analyses to run: short_summary, bug_detection, performance, security")
	cmd.Flags().BoolVar(&f.copy, "copy", false, "copy the rendered review to the clipboard")
	cmd.Flags().BoolVar(&f.cache, "cache", false, "cache LLM responses on disk")
	cmd.Flags().BoolVar(&f.stats, "stats", false, "print analysis statistics after the review")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "disable colors in text output")
	cmd.Flags().StringVar(&f.theme, "theme", "dark", "text output theme: dark, light")
	return cmd
}

// formatter validates the output flags and returns the formatter they select.
func (f reviewFlags) formatter(w io.Writer) (prreview.ReportFormatter, error) {
	switch f.format {
	case FormatJSON, FormatYAML:
		return nil, nil
	case FormatMarkdown:
		return &prreview.MarkdownFormatter{Detector: chroma.NewDetector()}, nil
	case FormatText:
	default:
		return nil, fmt.Errorf("unknown format %q (want text, markdown, json or yaml)", f.format)
	}

	var theme prreview.Theme
	switch f.theme {
	case "dark":
		theme = lipgloss.DarkTheme()
	case "light":
		theme = lipgloss.LightTheme()
	default:
		return nil, fmt.Errorf("unknown theme %q (want dark or light)", f.theme)
	}

	opts := []lipgloss.PrinterOption{lipgloss.WithDetector(chroma.NewDetector())}
	if f.noColor {
		opts = append(opts, lipgloss.WithColorProfile(termenv.Ascii))
	}
	return lipgloss.NewPrinter(w, theme, opts...), nil
}

// isTerminal reports whether r is an interactive terminal rather than a pipe.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
