package main

import (
	"fmt"

	"github.com/fwojciec/prreview"
	"github.com/fwojciec/prreview/chroma"
	"github.com/fwojciec/prreview/github"
	"github.com/fwojciec/prreview/gitdiff"
	"github.com/fwojciec/prreview/server"
	"github.com/fwojciec/prreview/stats"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd(g *globals) *cobra.Command {
	var (
		port   int
		inline bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the review API and GitHub webhook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.cfg
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			gen, closeFn, err := newGenerator(cmd.Context(), cfg, g.logger, false)
			if err != nil {
				return err
			}
			defer closeFn()

			tracker := stats.New()
			reviewer := newReviewer(gen, cfg, tracker, g.logger)

			opts := []server.Option{
				server.WithBudget(cfg.ReviewBudget()),
				server.WithLocalReviewMaxChars(cfg.LocalReviewMaxChars),
				server.WithWebhookSecret(cfg.GitHub.WebhookSecret),
				server.WithFormatter(&prreview.MarkdownFormatter{Detector: chroma.NewDetector()}),
				server.WithLogger(g.logger),
			}
			if cfg.GitHub.Token != "" {
				client, err := github.NewClient(cfg.GitHub.Token,
					github.WithBaseURL(cfg.GitHub.APIURL),
					github.WithLogger(g.logger))
				if err != nil {
					return err
				}
				opts = append(opts, server.WithGitHub(client, client))
				if inline {
					opts = append(opts, server.WithInlineComments(client, gitdiff.NewParser()))
				}
			} else {
				g.logger.Warn("GITHUB_TOKEN not set, webhook reviews disabled")
			}
			if cfg.GitHub.WebhookSecret == "" {
				g.logger.Warn("GITHUB_WEBHOOK_SECRET not set, webhook signatures are not verified")
			}

			gin.SetMode(gin.ReleaseMode)
			srv := server.New(reviewer, tracker, opts...)
			return srv.ListenAndServe(cmd.Context(), fmt.Sprintf(":%d", cfg.Port))
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8000, "listen port (overrides config)")
	cmd.Flags().BoolVar(&inline, "inline-comments", false, "also post located bug findings as inline review comments")
	return cmd
}
