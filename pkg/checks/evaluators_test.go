package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alantheprice/canvasreview/pkg/capture"
)

func newCapture(elements map[int]*capture.ElementInfo) *capture.Capture {
	return &capture.Capture{Elements: elements}
}

// Scenario A from spec.md §8: <p style="color:#bbb;background:#fff">hi</p>
func TestColorContrastDetectsLowRatio(t *testing.T) {
	cap := newCapture(map[int]*capture.ElementInfo{
		0: {
			Tag:         "p",
			TextContent: "hi",
			ComputedStyles: capture.ComputedStyles{
				Color:           "rgb(187, 187, 187)",
				BackgroundColor: "rgb(255, 255, 255)",
			},
		},
	})

	issues, err := ColorContrast(cap, map[string]interface{}{"minimum_ratio": 4.5})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "color-contrast", issues[0].CheckID)
	assert.Equal(t, SeverityMajor, issues[0].Severity)
	ratio := issues[0].Details["ratio"].(float64)
	assert.InDelta(t, 1.9, ratio, 0.2) // WCAG ratio of #bbb on #fff is 1.92
}

func TestColorContrastPassesHighRatio(t *testing.T) {
	cap := newCapture(map[int]*capture.ElementInfo{
		0: {
			Tag:         "p",
			TextContent: "hi",
			ComputedStyles: capture.ComputedStyles{
				Color:           "rgb(0, 0, 0)",
				BackgroundColor: "rgb(255, 255, 255)",
			},
		},
	})

	issues, err := ColorContrast(cap, map[string]interface{}{"minimum_ratio": 4.5})
	require.NoError(t, err)
	assert.Empty(t, issues)
}

// Scenario B from spec.md §8: <button style="width:24px;height:24px">
func TestTouchTargetsDetectsSmallButton(t *testing.T) {
	cap := newCapture(map[int]*capture.ElementInfo{
		0: {
			Tag:         "button",
			BoundingBox: capture.BoundingBox{W: 24, H: 24},
		},
	})

	issues, err := TouchTargets(cap, map[string]interface{}{"minimum_size": 44})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, float64(24), issues[0].Details["width"])
	assert.Equal(t, float64(24), issues[0].Details["height"])
	assert.Equal(t, float64(44), issues[0].Details["minimum"])
}

func TestTouchTargetsIgnoresNonInteractiveElements(t *testing.T) {
	cap := newCapture(map[int]*capture.ElementInfo{
		0: {Tag: "div", BoundingBox: capture.BoundingBox{W: 10, H: 10}},
	})

	issues, err := TouchTargets(cap, nil)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestFocusIndicatorsFailsWhenBothOutlineAndShadowNone(t *testing.T) {
	cap := newCapture(map[int]*capture.ElementInfo{
		0: {Tag: "a", ComputedStyles: capture.ComputedStyles{OutlineStyle: "none", BoxShadow: "none"}},
	})

	issues, err := FocusIndicators(cap, nil)
	require.NoError(t, err)
	require.Len(t, issues, 1)
}

func TestFocusIndicatorsPassesWithOutline(t *testing.T) {
	cap := newCapture(map[int]*capture.ElementInfo{
		0: {Tag: "a", ComputedStyles: capture.ComputedStyles{OutlineStyle: "solid", BoxShadow: "none"}},
	})

	issues, err := FocusIndicators(cap, nil)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestAltTextMissingIsBlocking(t *testing.T) {
	cap := newCapture(map[int]*capture.ElementInfo{
		0: {Tag: "img", AttrAlt: nil},
	})

	issues, err := AltText(cap, nil)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityBlocking, issues[0].Severity)
}

func TestAltTextShortIsMinorWarning(t *testing.T) {
	short := "abc"
	cap := newCapture(map[int]*capture.ElementInfo{
		0: {Tag: "img", AttrAlt: &short},
	})

	issues, err := AltText(cap, nil)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityMinor, issues[0].Severity)
}

func TestAltTextSufficientLengthPasses(t *testing.T) {
	good := "a descriptive caption"
	cap := newCapture(map[int]*capture.ElementInfo{
		0: {Tag: "img", AttrAlt: &good},
	})

	issues, err := AltText(cap, nil)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestAccessibilityGradeWeightedFormula(t *testing.T) {
	assert.Equal(t, "A", accessibilityGrade(nil))
	assert.Equal(t, "B", accessibilityGrade([]capture.A11yViolation{
		{Impact: capture.A11yModerate}, {Impact: capture.A11yModerate},
	}))
	assert.Equal(t, "C", accessibilityGrade([]capture.A11yViolation{
		{Impact: capture.A11ySerious}, {Impact: capture.A11ySerious},
	}))
	assert.Equal(t, "F", accessibilityGrade([]capture.A11yViolation{
		{Impact: capture.A11yCritical}, {Impact: capture.A11yCritical}, {Impact: capture.A11yCritical},
	}))
}

func TestAccessibilityGradeFailsBelowMinimum(t *testing.T) {
	cap := &capture.Capture{
		A11yReport: []capture.A11yViolation{
			{Impact: capture.A11yCritical}, {Impact: capture.A11yCritical}, {Impact: capture.A11yCritical},
		},
	}

	issues, err := AccessibilityGrade(cap, map[string]interface{}{"minimum_grade": "C"})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "F", issues[0].Details["grade"])
}

func TestAccessibilityGradeSkippedOnScanFailure(t *testing.T) {
	cap := &capture.Capture{A11yScanFailed: true}
	issues, err := AccessibilityGrade(cap, nil)
	require.NoError(t, err)
	assert.Nil(t, issues)
}

func TestMonotonicAccessibilityGrade(t *testing.T) {
	// Testable property #10: subset violations ⇒ grade(B) ≥ grade(A).
	full := []capture.A11yViolation{
		{Impact: capture.A11yCritical}, {Impact: capture.A11ySerious}, {Impact: capture.A11yModerate},
	}
	subset := full[:1]

	gradeFull := accessibilityGrade(full)
	gradeSubset := accessibilityGrade(subset)

	assert.LessOrEqual(t, gradeRank[gradeSubset], gradeRank[gradeFull])
}

func TestRegistryLookupKnownAndUnknown(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Lookup("color-contrast")
	assert.True(t, ok)

	_, ok = r.Lookup("not-a-real-check")
	assert.False(t, ok)
}
