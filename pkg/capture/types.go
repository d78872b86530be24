// Package capture drives a headless browser over the Chrome DevTools
// Protocol to produce a bounded, serializable snapshot of a page:
// screenshot, DOM tree, accessibility violations and per-element
// computed styles. Evaluators (pkg/checks) consume only this snapshot
// and never talk to the browser directly.
package capture

import "time"

// Viewport is the captured browser window size.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DOMNode is one bounded node in the captured DOM tree: depth ≤ 3
// (compact) or ≤ 5 (full); ≤ 10 (compact) or ≤ 20 (full) children per
// node; text truncated to 50 (compact) or 100 (full) characters.
type DOMNode struct {
	Tag      string     `json:"tag"`
	ID       string     `json:"id,omitempty"`
	Classes  []string   `json:"classes,omitempty"`
	Text     string     `json:"text,omitempty"`
	Children []*DOMNode `json:"children,omitempty"`
}

// A11yImpact is the closed vocabulary an accessibility violation's
// impact belongs to, mirroring the industry-standard a11y engine's
// wire schema.
type A11yImpact string

const (
	A11yCritical A11yImpact = "critical"
	A11ySerious  A11yImpact = "serious"
	A11yModerate A11yImpact = "moderate"
	A11yMinor    A11yImpact = "minor"
)

// A11yNode is one offending DOM node referenced by a violation.
type A11yNode struct {
	HTML string `json:"html"`
}

// A11yViolation is one entry from the accessibility engine's scan
// output: {id, impact, description, nodes[].{html}}.
type A11yViolation struct {
	ID          string     `json:"id"`
	Impact      A11yImpact `json:"impact"`
	Description string     `json:"description"`
	Nodes       []A11yNode `json:"nodes"`
}

// ComputedStyles holds the subset of CSS properties evaluators need.
type ComputedStyles struct {
	Color           string `json:"color"`
	BackgroundColor string `json:"backgroundColor"`
	FontSize        string `json:"fontSize"`
	FontWeight      string `json:"fontWeight"`
	OutlineStyle    string `json:"outlineStyle"`
	BoxShadow       string `json:"boxShadow"`
	Display         string `json:"display"`
}

// BoundingBox is a viewport-relative element rectangle.
type BoundingBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// ElementInfo is a capture-scoped element: tag, optional id, classes,
// selected computed styles, bounding box, up to 3 ancestors, and
// truncated text content.
type ElementInfo struct {
	Handle         int            `json:"handle"`
	Tag            string         `json:"tag"`
	ID             string         `json:"id,omitempty"`
	Classes        []string       `json:"classes,omitempty"`
	Role           string         `json:"role,omitempty"`
	AttrAlt        *string        `json:"alt,omitempty"`
	Type           string         `json:"type,omitempty"`
	ComputedStyles ComputedStyles `json:"computedStyles"`
	BoundingBox    BoundingBox    `json:"boundingBox"`
	ParentChain    []ElementInfo  `json:"parentChain,omitempty"` // ≤3, nearest first
	TextContent    string         `json:"textContent,omitempty"` // truncated
}

// Capture is the read-only snapshot of a page at review time, per
// spec.md §3.2. ScreenshotPath is a file on disk — the snapshot never
// carries inline base64 image bytes.
type Capture struct {
	URL            string                `json:"url"`
	Viewport       Viewport              `json:"viewport"`
	Timestamp      time.Time             `json:"timestamp"`
	ScreenshotPath string                `json:"screenshotPath"`
	DOMTree        *DOMNode              `json:"domTree"`
	A11yReport     []A11yViolation       `json:"a11yReport"`
	A11yScanFailed bool                  `json:"a11yScanFailed,omitempty"`
	Elements       map[int]*ElementInfo  `json:"elements"`
}
