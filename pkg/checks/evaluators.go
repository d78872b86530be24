package checks

import (
	"fmt"
	"strings"

	"github.com/alantheprice/canvasreview/pkg/capture"
)

// interactiveTags are tags touch-targets treats as actionable by
// default, independent of ARIA role.
var interactiveTags = map[string]bool{
	"button": true, "a": true, "select": true,
}

var interactiveRoles = map[string]bool{
	"button": true, "link": true, "menuitem": true,
}

var focusableTags = map[string]bool{
	"a": true, "button": true, "input": true, "select": true, "textarea": true,
}

// ColorContrast implements spec.md §4.3's color-contrast evaluator:
// for every visible text-bearing element, compute the WCAG contrast
// ratio of foreground vs. effective background and compare against
// config.minimum_ratio (default 4.5).
func ColorContrast(cap *capture.Capture, config map[string]interface{}) ([]ProtoIssue, error) {
	minimumRatio := configFloat(config, "minimum_ratio", 4.5)

	var issues []ProtoIssue
	for _, h := range orderedHandles(cap) {
		el := cap.Elements[h]
		if el.ComputedStyles.Display == "none" || strings.TrimSpace(el.TextContent) == "" {
			continue
		}

		fr, fg, fb, _ := ParseRGBA(el.ComputedStyles.Color)
		br, bg, bb, ba := ParseRGBA(el.ComputedStyles.BackgroundColor)
		if ba == 0 {
			// transparent background: fall back to page default (white),
			// approximating the "walk ancestor stack" rule without
			// requiring computed styles on every ancestor.
			br, bg, bb = 255, 255, 255
		}

		ratio := ContrastRatio(fr, fg, fb, br, bg, bb)
		if ratio >= minimumRatio {
			continue
		}

		handle := h
		issues = append(issues, ProtoIssue{
			CheckID:     "color-contrast",
			Severity:    SeverityMajor,
			ElementHandle: &handle,
			Description: fmt.Sprintf("Text contrast ratio %.1f:1 is below the required %.1f:1", ratio, minimumRatio),
			BoundingBox: el.BoundingBox,
			Details: map[string]interface{}{
				"ratio":   round1(ratio),
				"minimum": minimumRatio,
				"fg":      FormatRGBHex(fr, fg, fb),
				"bg":      FormatRGBHex(br, bg, bb),
			},
		})
	}
	return issues, nil
}

// TouchTargets implements spec.md §4.3's touch-targets evaluator.
func TouchTargets(cap *capture.Capture, config map[string]interface{}) ([]ProtoIssue, error) {
	minimumSize := configFloat(config, "minimum_size", 44)

	var issues []ProtoIssue
	for _, h := range orderedHandles(cap) {
		el := cap.Elements[h]
		if !isTouchTargetCandidate(el) {
			continue
		}

		w, hgt := el.BoundingBox.W, el.BoundingBox.H
		small := w
		if hgt < small {
			small = hgt
		}
		if small >= minimumSize {
			continue
		}

		handle := h
		issues = append(issues, ProtoIssue{
			CheckID:     "touch-targets",
			Severity:    SeverityMajor,
			ElementHandle: &handle,
			Description: fmt.Sprintf("Touch target %.0fx%.0f is smaller than the minimum %.0fpx", w, hgt, minimumSize),
			BoundingBox: el.BoundingBox,
			Details: map[string]interface{}{
				"width":   w,
				"height":  hgt,
				"minimum": minimumSize,
			},
		})
	}
	return issues, nil
}

func isTouchTargetCandidate(el *capture.ElementInfo) bool {
	tag := strings.ToLower(el.Tag)
	if tag == "input" {
		t := strings.ToLower(el.Type)
		return t == "button" || t == "submit"
	}
	if interactiveTags[tag] {
		return true
	}
	return interactiveRoles[strings.ToLower(el.Role)]
}

// FocusIndicators implements spec.md §4.3's focus-indicators evaluator:
// fails when both computed outlineStyle and boxShadow are "none" on a
// focusable element.
func FocusIndicators(cap *capture.Capture, config map[string]interface{}) ([]ProtoIssue, error) {
	var issues []ProtoIssue
	for _, h := range orderedHandles(cap) {
		el := cap.Elements[h]
		if !focusableTags[strings.ToLower(el.Tag)] {
			continue
		}

		outline := strings.ToLower(el.ComputedStyles.OutlineStyle)
		shadow := strings.ToLower(el.ComputedStyles.BoxShadow)
		if outline != "none" || (shadow != "none" && shadow != "") {
			continue
		}

		handle := h
		issues = append(issues, ProtoIssue{
			CheckID:     "focus-indicators",
			Severity:    SeverityMajor,
			ElementHandle: &handle,
			Description: "Focusable element has no visible focus indicator (outline or box-shadow)",
			BoundingBox: el.BoundingBox,
		})
	}
	return issues, nil
}

// AltText implements spec.md §4.3's alt-text evaluator: missing alt is
// blocking, present-but-short alt is a minor warning.
func AltText(cap *capture.Capture, config map[string]interface{}) ([]ProtoIssue, error) {
	var issues []ProtoIssue
	for _, h := range orderedHandles(cap) {
		el := cap.Elements[h]
		if strings.ToLower(el.Tag) != "img" {
			continue
		}

		handle := h
		switch {
		case el.AttrAlt == nil:
			issues = append(issues, ProtoIssue{
				CheckID:           "alt-text",
				Severity:          SeverityBlocking,
				IntrinsicSeverity: true,
				ElementHandle:     &handle,
				Description:       "Image is missing an alt attribute",
				BoundingBox:       el.BoundingBox,
			})
		case len(strings.TrimSpace(*el.AttrAlt)) < 5:
			issues = append(issues, ProtoIssue{
				CheckID:           "alt-text",
				Severity:          SeverityMinor,
				IntrinsicSeverity: true,
				ElementHandle:     &handle,
				Description:       fmt.Sprintf("Image alt text %q is very short", *el.AttrAlt),
				BoundingBox:       el.BoundingBox,
			})
		}
	}
	return issues, nil
}

// accessibilityGrade computes the letter grade from weighted a11y
// violation counts, per spec.md §4.3: critical*4 + serious*2 + moderate*1,
// mapped A≤0, B≤3, C≤10, F otherwise. It is used only by the
// accessibility-grade check; the review orchestrator's pillar grading
// (§4.2) is a separate outcome-based grade.
func accessibilityGrade(violations []capture.A11yViolation) string {
	score := 0
	for _, v := range violations {
		switch v.Impact {
		case capture.A11yCritical:
			score += 4
		case capture.A11ySerious:
			score += 2
		case capture.A11yModerate:
			score += 1
		}
	}
	switch {
	case score <= 0:
		return "A"
	case score <= 3:
		return "B"
	case score <= 10:
		return "C"
	default:
		return "F"
	}
}

var gradeRank = map[string]int{"A": 0, "B": 1, "C": 2, "F": 3}

// AccessibilityGrade implements spec.md §4.3's accessibility-grade
// evaluator: aggregates the a11y scan into a weighted letter grade and
// fails if it is worse than config.minimum_grade.
func AccessibilityGrade(cap *capture.Capture, config map[string]interface{}) ([]ProtoIssue, error) {
	if cap.A11yScanFailed {
		return nil, nil // no issues; the orchestrator records one A11yScanFailed diagnostic per capture, not a per-check Skipped entry
	}

	minimumGrade := configString(config, "minimum_grade", "C")
	grade := accessibilityGrade(cap.A11yReport)

	if gradeRank[grade] <= gradeRank[minimumGrade] {
		return nil, nil
	}

	return []ProtoIssue{{
		CheckID:     "accessibility-grade",
		Severity:    SeverityMajor,
		Description: fmt.Sprintf("Accessibility grade %s is worse than the required %s", grade, minimumGrade),
		Details: map[string]interface{}{
			"grade":        grade,
			"minimumGrade": minimumGrade,
			"violations":   len(cap.A11yReport),
		},
	}}, nil
}

// KeyboardNavigation is the supplemental opt-in evaluator: it surfaces
// a11y violations whose id concerns focus order or tabindex. Spec
// authors must reference "keyboard-navigation" explicitly; it is not
// invoked by specs that don't name it, per SPEC_FULL.md §4.3.
func KeyboardNavigation(cap *capture.Capture, config map[string]interface{}) ([]ProtoIssue, error) {
	if cap.A11yScanFailed {
		return nil, nil
	}

	var issues []ProtoIssue
	for _, v := range cap.A11yReport {
		id := strings.ToLower(v.ID)
		if !strings.Contains(id, "focus-order-semantics") && !strings.Contains(id, "tabindex") {
			continue
		}
		issues = append(issues, ProtoIssue{
			CheckID:     "keyboard-navigation",
			Severity:    severityFromImpact(v.Impact),
			Description: v.Description,
			Details: map[string]interface{}{
				"a11yId": v.ID,
				"impact": v.Impact,
			},
		})
	}
	return issues, nil
}

func severityFromImpact(impact capture.A11yImpact) Severity {
	switch impact {
	case capture.A11yCritical:
		return SeverityBlocking
	case capture.A11ySerious:
		return SeverityMajor
	default:
		return SeverityMinor
	}
}

func round1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}
