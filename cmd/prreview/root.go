package main

import (
	"io"
	"log/slog"

	"github.com/fwojciec/prreview/config"
	"github.com/spf13/cobra"
)

// globals holds state shared by all subcommands.
type globals struct {
	configPath string
	logLevel   string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	g := &globals{stdin: stdin, stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:           "prreview",
		Short:         "Review diffs with an LLM",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load()
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default ./prreview.{yaml,json,toml})")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newReviewCmd(g),
		newServeCmd(g),
		newBatchCmd(g),
	)
	return cmd
}

// load reads the configuration and builds the logger.
func (g *globals) load() error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := newLogger(g.stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	g.cfg = cfg
	g.logger = logger
	return nil
}
