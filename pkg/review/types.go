// Package review implements the orchestrator: the 8-step review
// algorithm and the compare algorithm tying together the spec loader,
// browser driver, check registry, selector synthesizer, annotator,
// image comparator and artifact store.
package review

import (
	"github.com/alantheprice/canvasreview/pkg/compare"
	"github.com/alantheprice/canvasreview/pkg/session"
)

// Options configures one review() call.
type Options struct {
	Selector         string // optional CSS selector to scope the review
	Annotate         bool
	Compact          bool
	GenerateTasks    bool
	GenerateMarkdown bool
	SessionID        string // explicit override; generated if empty
}

// Result is the outcome of one review() call.
type Result struct {
	OK            bool                           `json:"ok"`
	ErrorKind     string                         `json:"errorKind,omitempty"`
	Message       string                         `json:"message,omitempty"`
	SessionID     string                         `json:"sessionId,omitempty"`
	URL           string                         `json:"url,omitempty"`
	Summary       session.Summary                `json:"summary,omitempty"`
	PillarGrades  map[string]session.PillarGrade  `json:"pillarGrades,omitempty"`
	Issues        []session.Issue                `json:"issues,omitempty"`
	Artifacts     session.Artifacts               `json:"artifacts,omitempty"`
	Compact       *session.CompactResult          `json:"compact,omitempty"`
	Diagnostics   []session.Diagnostic            `json:"diagnostics,omitempty"`
	TokenEstimate int                             `json:"tokenEstimate,omitempty"`
}

// CompareOptions configures one compare() call.
type CompareOptions struct {
	PixelThreshold float64
	SSIMThreshold  float64
	DiffStyle      compare.DiffStyle
	ViewportOnly   bool
	Method         compare.Method
	SessionID      string
}

// CompareResult is the outcome of one compare() call.
type CompareResult struct {
	OK        bool            `json:"ok"`
	ErrorKind string          `json:"errorKind,omitempty"`
	Message   string          `json:"message,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	Result    *compare.Result `json:"result,omitempty"`
	Artifacts session.Artifacts `json:"artifacts,omitempty"`
}
