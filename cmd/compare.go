package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/alantheprice/canvasreview/pkg/capture"
	"github.com/alantheprice/canvasreview/pkg/checks"
	"github.com/alantheprice/canvasreview/pkg/compare"
	"github.com/alantheprice/canvasreview/pkg/config"
	"github.com/alantheprice/canvasreview/pkg/events"
	"github.com/alantheprice/canvasreview/pkg/review"
	"github.com/alantheprice/canvasreview/pkg/spec"
)

var (
	compareReference      string
	comparePixelThreshold float64
	compareSSIMThreshold  float64
	compareDiffStyle      string
	compareMethod         string
	compareSessionID      string
)

var compareCmd = &cobra.Command{
	Use:   "compare <url>",
	Short: "Diff a live page against a reference image",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareReference, "reference", "", "path to the reference PNG/JPEG/WebP image")
	compareCmd.Flags().Float64Var(&comparePixelThreshold, "pixel-threshold", 5.0, "maximum acceptable pixel diff percentage")
	compareCmd.Flags().Float64Var(&compareSSIMThreshold, "ssim-threshold", 0.95, "minimum acceptable SSIM score")
	compareCmd.Flags().StringVar(&compareDiffStyle, "diff-style", "overlay", "overlay | sidebyside | heatmap")
	compareCmd.Flags().StringVar(&compareMethod, "method", "hybrid", "pixel | ssim | hybrid")
	compareCmd.Flags().StringVar(&compareSessionID, "session-id", "", "reuse an existing session id instead of generating one")
	_ = compareCmd.MarkFlagRequired("reference")
}

func runCompare(c *cobra.Command, args []string) error {
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

	result := orch.Compare(c.Context(), url, compareReference, review.CompareOptions{
		PixelThreshold: comparePixelThreshold,
		SSIMThreshold:  compareSSIMThreshold,
		DiffStyle:      compare.DiffStyle(compareDiffStyle),
		Method:         compare.Method(compareMethod),
		SessionID:      compareSessionID,
	})

	printCompareResult(result)
	os.Exit(exitCode(result.OK))
	return nil
}
