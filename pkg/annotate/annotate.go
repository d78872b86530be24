package annotate

import (
	"image"
	"image/color"
	"image/png"
	"os"

	canvaserrors "github.com/alantheprice/canvasreview/pkg/errors"
)

type placedMarker struct {
	cx, cy int
}

// Annotate reads the PNG at screenshotPath, draws an element border +
// numbered severity-colored marker for every issue with a non-null
// bounding box, appends a legend, and writes the result to outPath.
// Annotating zero issues yields the original image plus an empty-
// legend strip, per spec.md §8's round-trip law.
func Annotate(screenshotPath string, issues []Issue, outPath string) error {
	src, err := loadPNG(screenshotPath)
	if err != nil {
		return canvaserrors.Wrap(canvaserrors.AnnotationError, "failed to load screenshot", err)
	}

	bounds := src.Bounds()
	legendH := legendHeight(issues)
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()+legendH))

	// copy original screenshot in
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.Set(x-bounds.Min.X, y-bounds.Min.Y, src.At(x, y))
		}
	}

	var placed []placedMarker
	for _, iss := range issues {
		if iss.BoundingBox.W == 0 && iss.BoundingBox.H == 0 {
			continue
		}
		drawIssueMarker(out, iss, &placed)
	}

	drawLegend(out, bounds.Dy(), bounds.Dx(), issues)

	if err := savePNG(outPath, out); err != nil {
		return canvaserrors.Wrap(canvaserrors.ArtifactWriteError, "failed to write annotated image", err)
	}
	return nil
}

func drawIssueMarker(img *image.RGBA, iss Issue, placed *[]placedMarker) {
	x0 := int(iss.BoundingBox.X)
	y0 := int(iss.BoundingBox.Y)
	x1 := int(iss.BoundingBox.X + iss.BoundingBox.W)
	y1 := int(iss.BoundingBox.Y + iss.BoundingBox.H)

	markerColor, borderColor := resolveMarkerColor(iss)

	strokeRect(img, x0, y0, x1, y1, ElementBorder, markerColor)

	cx, cy := clampMarkerPosition(img.Bounds(), x1+MarkerRadius, y0-MarkerRadius)
	cx, cy = resolveStacking(cx, cy, placed)
	*placed = append(*placed, placedMarker{cx: cx, cy: cy})

	fillCircle(img, cx, cy, MarkerRadius, markerColor, borderColor, MarkerBorder)

	label := markerLabel(iss.Number)
	lw := textWidth(label)
	drawString(img, cx-lw/2, cy+5, label, color.RGBA{R: 255, G: 255, B: 255, A: 255})
}

// resolveMarkerColor applies the per-marker contrast fallback: per
// spec.md §4.5, this checks red (the blocking-severity color) against
// the sampled element background, not the marker's own severity
// color, and substitutes black for both fill and border on failure.
func resolveMarkerColor(iss Issue) (fill, border color.RGBA) {
	hex, ok := severityColorHex[iss.Severity]
	if !ok {
		hex = severityColorHex[SeverityMinor]
	}

	if iss.BackgroundHex != "" && contrastAgainstBackground(severityColorHex[SeverityBlocking], iss.BackgroundHex) < FallbackContrastThreshold {
		hex = fallbackColorHex
	}

	fill = hexToRGBA(hex)
	border = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	return
}

func clampMarkerPosition(bounds image.Rectangle, cx, cy int) (int, int) {
	minX := bounds.Min.X + MarkerRadius + ClampMargin
	maxX := bounds.Max.X - MarkerRadius - ClampMargin
	minY := bounds.Min.Y + MarkerRadius + ClampMargin
	maxY := bounds.Max.Y - MarkerRadius - ClampMargin

	if cx < minX {
		cx = minX
	}
	if cx > maxX {
		cx = maxX
	}
	if cy < minY {
		cy = minY
	}
	if cy > maxY {
		cy = maxY
	}
	return cx, cy
}

// resolveStacking shifts (cx, cy) right+down by a fixed step for every
// already-placed marker whose bounding circle it overlaps, applied in
// issue order, per spec.md §4.5's deterministic stacking policy.
func resolveStacking(cx, cy int, placed *[]placedMarker) (int, int) {
	for _, p := range *placed {
		dx, dy := cx-p.cx, cy-p.cy
		distSq := dx*dx + dy*dy
		if distSq < (MarkerDiameter)*(MarkerDiameter) {
			cx += StackShiftX
			cy += StackShiftY
		}
	}
	return cx, cy
}

func loadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
