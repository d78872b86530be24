package review

import (
	"github.com/alantheprice/canvasreview/pkg/annotate"
	"github.com/alantheprice/canvasreview/pkg/capture"
	"github.com/alantheprice/canvasreview/pkg/checks"
	"github.com/alantheprice/canvasreview/pkg/session"
)

// renderAnnotation converts the assembled issue list into the
// annotator's input shape and writes the combined marker+legend image
// to outPath. Only issues with a resolved bounding box get a marker,
// per the annotator fidelity invariant in spec.md §8. handles maps
// each issue's id back to the capture element it was raised against,
// so the sampled background color can feed the annotator's contrast
// fallback (§4.5).
func renderAnnotation(screenshotPath string, issues []session.Issue, handles map[int]*int, cap *capture.Capture, outPath string) error {
	var annotated []annotate.Issue
	number := 1
	for _, iss := range issues {
		if iss.BoundingBox == nil {
			continue
		}
		annotated = append(annotated, annotate.Issue{
			Number:        number,
			CheckID:       iss.CheckID,
			Severity:      annotate.Severity(iss.Severity),
			Selector:      iss.CSSSelector,
			Description:   iss.Description,
			BoundingBox:   *iss.BoundingBox,
			BackgroundHex: elementBackgroundHex(cap, handles[iss.ID]),
		})
		number++
	}
	return annotate.Annotate(screenshotPath, annotated, outPath)
}

// elementBackgroundHex samples an element's effective background
// color for the annotator's contrast fallback. It returns "" (meaning
// "unknown", which skips the fallback) when there is no handle or the
// background is transparent.
func elementBackgroundHex(cap *capture.Capture, handle *int) string {
	if handle == nil || cap == nil {
		return ""
	}
	el, ok := cap.Elements[*handle]
	if !ok || el.ComputedStyles.BackgroundColor == "" {
		return ""
	}
	r, g, b, a := checks.ParseRGBA(el.ComputedStyles.BackgroundColor)
	if a == 0 {
		return ""
	}
	return checks.FormatRGBHex(r, g, b)
}
