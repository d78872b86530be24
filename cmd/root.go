// Package cmd implements the canvasreview CLI: a thin cobra wrapper
// around pkg/review's orchestrator. Command handlers parse flags,
// build an Orchestrator from pkg/config defaults, and render the
// result either as colorized human-readable text or as the machine
// JSON body described by the engine's error handling design.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alantheprice/canvasreview/pkg/logging"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "canvasreview",
	Short: "Spec-driven visual design review for live web pages",
	Long: "canvasreview drives a headless browser against a URL, runs a configurable\n" +
		"suite of visual and accessibility checks, and writes an annotated screenshot\n" +
		"plus a structured issue report. A compare mode diffs a live page against a\n" +
		"reference image.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command, returning any error cobra surfaces.
func Execute() error {
	defer logging.Get().Close()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON instead of a colorized summary")
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(validateSpecCmd)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
