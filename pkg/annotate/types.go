// Package annotate renders numbered, severity-colored markers and a
// legend onto a screenshot, with a per-marker contrast fallback.
package annotate

import "github.com/alantheprice/canvasreview/pkg/capture"

// Severity mirrors the closed severity vocabulary used throughout the
// engine.
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// Issue is the resolved, annotator-ready view of one review issue:
// a sequential display number, severity, selector and bounding box.
// BackgroundHex, when non-empty, is the sampled element background
// used by the contrast fallback; an empty string means "unknown",
// which skips the fallback check for that marker.
type Issue struct {
	Number        int
	CheckID       string
	Severity      Severity
	Selector      string
	Description   string
	BoundingBox   capture.BoundingBox
	BackgroundHex string
}

// Marker geometry and severity palette, per spec.md §4.5.
const (
	MarkerDiameter   = 32
	MarkerRadius     = MarkerDiameter / 2
	MarkerBorder     = 2
	ElementBorder    = 3
	ClampMargin      = 5
	StackShiftX      = 20
	StackShiftY      = 20
	LegendPadding    = 20
	LegendLineHeight = 28
	FallbackContrastThreshold = 3.0
)

var severityColorHex = map[Severity]string{
	SeverityBlocking: "#DC3545",
	SeverityMajor:    "#FF9100",
	SeverityMinor:    "#FFC107",
}

var severityEmoji = map[Severity]string{
	SeverityBlocking: "⚫",
	SeverityMajor:    "🟠",
	SeverityMinor:    "🟡",
}

const (
	legendBackgroundHex = "#F8F9FA"
	fallbackColorHex    = "#000000"
)
