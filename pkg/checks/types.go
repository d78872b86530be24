// Package checks implements the built-in check evaluators and the
// id→evaluator registry. An evaluator is a pure function of
// (capture, config); it never calls back into the browser, per
// spec.md §4.3's contract boundary.
package checks

import "github.com/alantheprice/canvasreview/pkg/capture"

// Severity mirrors spec.md's closed severity vocabulary.
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// ProtoIssue is an evaluator's output before id assignment and
// selector resolution (§4.2 steps 4-5).
type ProtoIssue struct {
	CheckID        string
	Pillar         string
	Severity       Severity
	// IntrinsicSeverity marks an evaluator's classification as a
	// property of the outcome itself (e.g. alt-text's missing-vs-short
	// split, §4.3) rather than a tunable default. A check's declared
	// severity may override Severity when this is false; it must never
	// override it when true.
	IntrinsicSeverity bool
	ElementHandle     *int
	Description       string
	Recommendation    string
	BoundingBox       capture.BoundingBox
	Details           map[string]interface{}
}

// Evaluator maps one capture and a check's config to zero or more
// proto-issues. Evaluators iterate the capture's element list in
// document order and must be deterministic given the same capture.
type Evaluator func(cap *capture.Capture, config map[string]interface{}) ([]ProtoIssue, error)

// configFloat reads a numeric config value, falling back to def when
// absent or of an unexpected type.
func configFloat(config map[string]interface{}, key string, def float64) float64 {
	v, ok := config[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return def
}

func configString(config map[string]interface{}, key, def string) string {
	v, ok := config[key]
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

// orderedHandles returns capture element handles sorted for
// deterministic, document-order iteration.
func orderedHandles(cap *capture.Capture) []int {
	handles := make([]int, 0, len(cap.Elements))
	for h := range cap.Elements {
		handles = append(handles, h)
	}
	// document order approximates ascending handle order since
	// ExtractElements assigns handles via querySelectorAll('*'), which
	// yields elements in document order.
	for i := 1; i < len(handles); i++ {
		for j := i; j > 0 && handles[j-1] > handles[j]; j-- {
			handles[j-1], handles[j] = handles[j], handles[j-1]
		}
	}
	return handles
}
