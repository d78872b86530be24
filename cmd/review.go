package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/alantheprice/canvasreview/pkg/capture"
	"github.com/alantheprice/canvasreview/pkg/checks"
	"github.com/alantheprice/canvasreview/pkg/config"
	"github.com/alantheprice/canvasreview/pkg/events"
	"github.com/alantheprice/canvasreview/pkg/review"
	"github.com/alantheprice/canvasreview/pkg/spec"
)

var (
	reviewSelector         string
	reviewAnnotate         bool
	reviewCompact          bool
	reviewGenerateTasks    bool
	reviewGenerateMarkdown bool
	reviewSpecID           string
	reviewSessionID        string
)

var reviewCmd = &cobra.Command{
	Use:   "review <url>",
	Short: "Run a spec-driven design review against a live URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runReview,
}

func init() {
	reviewCmd.Flags().StringVar(&reviewSpecID, "spec", "DESIGN-SPEC", "spec id or path to resolve")
	reviewCmd.Flags().StringVar(&reviewSelector, "selector", "", "scope the review to elements under this CSS selector")
	reviewCmd.Flags().BoolVar(&reviewAnnotate, "annotate", true, "render an annotated screenshot with numbered markers")
	reviewCmd.Flags().BoolVar(&reviewCompact, "compact", false, "emit a token-bounded compact response instead of the full report")
	reviewCmd.Flags().BoolVar(&reviewGenerateTasks, "tasks", false, "write tasks.md grouping issues by pillar and severity")
	reviewCmd.Flags().BoolVar(&reviewGenerateMarkdown, "markdown", true, "write issues.md with a human-readable per-issue writeup")
	reviewCmd.Flags().StringVar(&reviewSessionID, "session-id", "", "reuse an existing session id instead of generating one")
}

func runReview(c *cobra.Command, args []string) error {
	url := args[0]

	cfg, err := config.LoadOrInitConfig()
	if err != nil {
		fatal("failed to load configuration: %v", err)
	}

	orch := review.New(
		spec.NewLoader(cfg.SpecSearchRoots),
		checks.NewRegistry(),
		events.NewBus(),
		cfg.ArtifactRoot,
		capture.Viewport{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight},
		func(ctx context.Context) (capture.BrowserDriver, error) {
			return capture.Open(ctx, cfg.BrowserBinary, cfg.BrowserRemotePort)
		},
	)
	orch.SourceSearchRoot = cfg.SourceSearchRoot

	result := orch.Review(c.Context(), url, reviewSpecID, review.Options{
		Selector:         reviewSelector,
		Annotate:         reviewAnnotate,
		Compact:          reviewCompact,
		GenerateTasks:    reviewGenerateTasks,
		GenerateMarkdown: reviewGenerateMarkdown,
		SessionID:        reviewSessionID,
	})

	printReviewResult(result)
	os.Exit(exitCode(result.OK))
	return nil
}
