package review

import (
	"sort"

	"github.com/alantheprice/canvasreview/pkg/capture"
	"github.com/alantheprice/canvasreview/pkg/checks"
	canvaserrors "github.com/alantheprice/canvasreview/pkg/errors"
	"github.com/alantheprice/canvasreview/pkg/selector"
	"github.com/alantheprice/canvasreview/pkg/session"
	"github.com/alantheprice/canvasreview/pkg/spec"
)

// runChecks invokes every check's evaluator in spec order, assigns
// sequential issue ids in spec-order-then-emission-order, and resolves
// each proto-issue's element handle to a CSS selector, per spec.md
// §4.2 steps 4-5.
func (o *Orchestrator) runChecks(sp *spec.Spec, cap *capture.Capture, scopeSelector string) ([]session.Issue, []session.Diagnostic, map[int]*int) {
	var issues []session.Issue
	var diagnostics []session.Diagnostic
	handles := make(map[int]*int)
	nextID := 1

	for _, pillar := range sp.Pillars {
		for _, check := range pillar.Checks {
			eval, ok := o.Registry.Lookup(check.ID)
			if !ok {
				diagnostics = append(diagnostics, session.Diagnostic{
					CheckID:   check.ID,
					ErrorKind: "Skipped",
					Message:   "no evaluator registered for this check id",
				})
				continue
			}

			protos, err := eval(cap, check.Config)
			if err != nil {
				diagnostics = append(diagnostics, session.Diagnostic{
					CheckID:   check.ID,
					ErrorKind: string(canvaserrors.EvaluatorError),
					Message:   err.Error(),
				})
				continue
			}

			for _, proto := range protos {
				if scopeSelector != "" && !elementWithinScope(cap, proto.ElementHandle, scopeSelector) {
					continue
				}

				sel := ""
				if proto.ElementHandle != nil {
					if el, ok := cap.Elements[*proto.ElementHandle]; ok {
						sel = selector.Build(toSelectorElement(el))
					}
				}

				// An evaluator marks a proto-issue IntrinsicSeverity
				// when its severity is a property of the outcome
				// itself (alt-text's missing-vs-short-alt split,
				// §4.3); only a tunable default is overridable by the
				// check's declared severity.
				severity := string(proto.Severity)
				if !proto.IntrinsicSeverity && check.Severity != "" {
					severity = string(check.Severity)
				}

				issues = append(issues, session.Issue{
					ID:             nextID,
					CheckID:        check.ID,
					Pillar:         pillar.Name,
					Severity:       severity,
					CSSSelector:    sel,
					Description:    proto.Description,
					Recommendation: proto.Recommendation,
					BoundingBox:    boundingBoxPtr(proto),
					Details:        proto.Details,
				})
				handles[nextID] = proto.ElementHandle
				nextID++
			}
		}
	}

	return issues, diagnostics, handles
}

func boundingBoxPtr(proto checks.ProtoIssue) *capture.BoundingBox {
	if proto.ElementHandle == nil {
		return nil
	}
	box := proto.BoundingBox
	return &box
}

// toSelectorElement converts a capture element (and up to 3 ancestors)
// into the shape the selector synthesizer needs.
func toSelectorElement(el *capture.ElementInfo) selector.ElementInfo {
	parents := make([]selector.ElementInfo, 0, len(el.ParentChain))
	for _, p := range el.ParentChain {
		parents = append(parents, selector.ElementInfo{Tag: p.Tag, ID: p.ID, Classes: p.Classes})
	}
	return selector.ElementInfo{Tag: el.Tag, ID: el.ID, Classes: el.Classes, Parents: parents}
}

// elementWithinScope reports whether handle's element (or one of its
// ancestors) matches scopeSelector by id or class — a best-effort
// narrowing, not a full CSS query engine.
func elementWithinScope(cap *capture.Capture, handle *int, scopeSelector string) bool {
	if handle == nil {
		return false
	}
	el, ok := cap.Elements[*handle]
	if !ok {
		return false
	}
	if matchesScope(el.ID, el.Classes, el.Tag, scopeSelector) {
		return true
	}
	for _, p := range el.ParentChain {
		if matchesScope(p.ID, p.Classes, p.Tag, scopeSelector) {
			return true
		}
	}
	return false
}

func matchesScope(id string, classes []string, tag, scopeSelector string) bool {
	switch {
	case len(scopeSelector) > 0 && scopeSelector[0] == '#':
		return id == scopeSelector[1:]
	case len(scopeSelector) > 0 && scopeSelector[0] == '.':
		want := scopeSelector[1:]
		for _, c := range classes {
			if c == want {
				return true
			}
		}
		return false
	default:
		return tag == scopeSelector
	}
}

// stableSortByID sorts issues by ascending ID, keeping the relative
// order of equal IDs.
func stableSortByID(issues []session.Issue) {
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].ID < issues[j].ID })
}
