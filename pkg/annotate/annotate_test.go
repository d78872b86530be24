package annotate

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alantheprice/canvasreview/pkg/capture"
)

func writeTestPNG(t *testing.T, path string, w, h int, fill color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

// Testable property #6: every issue with a non-null bounding box gets a
// marker in its severity color, and a legend strip is appended below
// the screenshot.
func TestAnnotateProducesOneMarkerPerIssue(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "screenshot.png")
	out := filepath.Join(dir, "annotated.png")
	writeTestPNG(t, src, 200, 100, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	issues := []Issue{
		{Number: 1, Severity: SeverityMajor, Selector: "p", Description: "low contrast", BoundingBox: capture.BoundingBox{X: 10, Y: 10, W: 20, H: 20}},
		{Number: 2, Severity: SeverityBlocking, Selector: "img", Description: "missing alt", BoundingBox: capture.BoundingBox{X: 50, Y: 50, W: 30, H: 30}},
	}

	err := Annotate(src, issues, out)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Greater(t, img.Bounds().Dy(), 100) // original height plus legend

	// marker 1 is centered at (46,21) after clamping, marker 2 at (96,34);
	// sample each fill 10px right of its center, clear of the label digit.
	assert.Equal(t, hexToRGBA(severityColorHex[SeverityMajor]), color.RGBAModel.Convert(img.At(56, 21)))
	assert.Equal(t, hexToRGBA(severityColorHex[SeverityBlocking]), color.RGBAModel.Convert(img.At(106, 34)))
}

// Scenario: annotating zero issues yields the original image plus an
// empty-legend strip (round-trip law in spec.md §8).
func TestAnnotateZeroIssuesKeepsOriginalPixels(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "screenshot.png")
	out := filepath.Join(dir, "annotated.png")
	writeTestPNG(t, src, 50, 50, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	err := Annotate(src, nil, out)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(10*257), r)
	assert.Equal(t, uint32(20*257), g)
	assert.Equal(t, uint32(30*257), b)
}

// Testable property #7: given a synthetic red background, the
// annotator substitutes black for every marker.
func TestContrastFallbackSubstitutesBlackOnRedBackground(t *testing.T) {
	iss := Issue{Severity: SeverityBlocking, BackgroundHex: "#DC3545"}
	fill, _ := resolveMarkerColor(iss)
	assert.Equal(t, hexToRGBA(fallbackColorHex), fill)
}

func TestContrastFallbackKeepsSeverityColorOnNeutralBackground(t *testing.T) {
	iss := Issue{Severity: SeverityMinor, BackgroundHex: "#FFFFFF"}
	fill, _ := resolveMarkerColor(iss)
	assert.Equal(t, hexToRGBA(severityColorHex[SeverityMinor]), fill)
}

func TestMarkerLabelParenthesizesAboveTwenty(t *testing.T) {
	assert.Equal(t, "20", markerLabel(20))
	assert.Equal(t, "(21)", markerLabel(21))
}

func TestLegendHeightGrowsWithIssueCount(t *testing.T) {
	h0 := legendHeight(nil)
	h1 := legendHeight([]Issue{{Selector: "p"}})
	assert.Greater(t, h1, h0)
}

func TestStackingShiftsOverlappingMarkers(t *testing.T) {
	var placed []placedMarker
	cx1, cy1 := resolveStacking(100, 100, &placed)
	placed = append(placed, placedMarker{cx: cx1, cy: cy1})

	cx2, cy2 := resolveStacking(100, 100, &placed)
	assert.NotEqual(t, cx1, cx2)
	assert.NotEqual(t, cy1, cy2)
}
