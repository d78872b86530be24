// Package session owns the durable, per-review artifact directory: it
// never embeds screenshot bytes inline, only path references, and
// writes session.json / report.json / the generated markdown
// documents.
package session

import "github.com/alantheprice/canvasreview/pkg/capture"

// Issue is the fully-resolved, id-assigned view of one review finding:
// a ProtoIssue after sequential numbering and selector resolution.
type Issue struct {
	ID             int                  `json:"id"`
	CheckID        string               `json:"checkId"`
	Pillar         string               `json:"pillar"`
	Severity       string               `json:"severity"`
	CSSSelector    string               `json:"cssSelector,omitempty"`
	Description    string               `json:"description"`
	Recommendation string               `json:"recommendation,omitempty"`
	BoundingBox    *capture.BoundingBox `json:"boundingBox,omitempty"`
	Details        map[string]any       `json:"details,omitempty"`
	SourceFile     string               `json:"sourceFile,omitempty"`
}

// Diagnostic records a non-fatal per-check failure: an unknown check
// id (Skipped) or an evaluator error (EvaluatorError), or a failed
// a11y scan (A11yScanFailed).
type Diagnostic struct {
	CheckID   string `json:"checkId"`
	ErrorKind string `json:"errorKind"`
	Message   string `json:"message"`
}

// PillarGrade is one pillar's letter grade plus the outcome counts
// that produced it.
type PillarGrade struct {
	Grade     string `json:"grade"`
	Passing   int    `json:"passing"`
	Attention int    `json:"attention"`
	Blocking  int    `json:"blocking"`
}

// Summary is the session-wide issue count by severity, plus the
// number of checks that raised no issue at all.
type Summary struct {
	Blocking int `json:"blocking"`
	Major    int `json:"major"`
	Minor    int `json:"minor"`
	Passing  int `json:"passing"`
}

// SpecRef is the resolved spec's identity, embedded in session.json.
type SpecRef struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	ResolvedFrom string `json:"resolvedFrom"`
}

// Artifacts holds the project-root-relative paths of every file this
// session wrote. Empty fields mean that artifact wasn't produced.
type Artifacts struct {
	Screenshot string `json:"screenshot,omitempty"`
	Annotated  string `json:"annotated,omitempty"`
	Report     string `json:"report,omitempty"`
	Markdown   string `json:"markdown,omitempty"`
	Tasks      string `json:"tasks,omitempty"`
	Diff       string `json:"diff,omitempty"`
}

// File is session.json, schemaVersion "1.1": metadata, issue
// summaries, and artifact paths. It never carries a raw screenshot
// blob field.
type File struct {
	SchemaVersion string                 `json:"schemaVersion"`
	SessionID     string                 `json:"sessionId"`
	URL           string                 `json:"url"`
	StartTime     string                 `json:"startTime"`
	EndTime       string                 `json:"endTime"`
	Spec          SpecRef                `json:"spec"`
	Summary       Summary                `json:"summary"`
	PillarGrades  map[string]PillarGrade `json:"pillarGrades"`
	Issues        []Issue                `json:"issues"`
	Artifacts     Artifacts              `json:"artifacts"`
}

// Report is report.json: the full typed report, one record per issue,
// plus accumulated diagnostics.
type Report struct {
	SessionID    string                 `json:"sessionId"`
	URL          string                 `json:"url"`
	Issues       []Issue                `json:"issues"`
	Diagnostics  []Diagnostic           `json:"diagnostics"`
	PillarGrades map[string]PillarGrade `json:"pillarGrades"`
}

const SchemaVersion = "1.1"
