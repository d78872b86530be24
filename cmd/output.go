package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/alantheprice/canvasreview/pkg/review"
)

var severityAnsi = map[string]string{
	"blocking": "\x1b[31m", // red
	"major":    "\x1b[33m", // yellow
	"minor":    "\x1b[90m", // gray
}

const ansiReset = "\x1b[0m"

func isColorTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func colorize(severity, text string) string {
	if !isColorTerminal() {
		return text
	}
	code, ok := severityAnsi[severity]
	if !ok {
		return text
	}
	return code + text + ansiReset
}

// printReviewResult renders r either as the machine JSON body or as a
// severity-colored human-readable summary, per spec.md §7's
// user-visible-behavior rule.
func printReviewResult(r *review.Result) {
	if jsonOutput {
		emitJSON(r)
		return
	}

	if !r.OK {
		fmt.Printf("%s: %s\n", colorize("blocking", r.ErrorKind), r.Message)
		return
	}

	fmt.Printf("Session %s — %s\n", r.SessionID, r.URL)
	fmt.Printf("  %s blocking, %s major, %s minor, %d passing\n",
		colorize("blocking", fmt.Sprintf("%d", r.Summary.Blocking)),
		colorize("major", fmt.Sprintf("%d", r.Summary.Major)),
		colorize("minor", fmt.Sprintf("%d", r.Summary.Minor)),
		r.Summary.Passing)

	for pillar, grade := range r.PillarGrades {
		fmt.Printf("  %s: %s\n", pillar, grade.Grade)
	}
	for _, iss := range r.Issues {
		fmt.Printf("  %s #%d %s — %s\n", colorize(iss.Severity, iss.Severity), iss.ID, iss.CSSSelector, iss.Description)
	}

	if r.Artifacts.Annotated != "" {
		fmt.Printf("Annotated screenshot: %s\n", r.Artifacts.Annotated)
	}
	fmt.Printf("Report: %s\n", r.Artifacts.Report)
}

func printCompareResult(r *review.CompareResult) {
	if jsonOutput {
		emitJSON(r)
		return
	}

	if !r.OK {
		fmt.Printf("%s: %s\n", colorize("blocking", r.ErrorKind), r.Message)
		return
	}

	fmt.Printf("Session %s\n", r.SessionID)
	fmt.Printf("  pixelDiff: %.2f%%  ssim: %.4f  match: %v\n", r.Result.PixelDiffPercent, r.Result.SSIMScore, r.Result.Match)
	for _, region := range r.Result.DiffRegions {
		fmt.Printf("  region (%d,%d) %dx%d — %s\n", region.X, region.Y, region.W, region.H, region.Severity)
	}
	if r.Artifacts.Diff != "" {
		fmt.Printf("Diff image: %s\n", r.Artifacts.Diff)
	}
}

func emitJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func exitCode(ok bool) int {
	if ok {
		return 0
	}
	return 1
}
