package compare

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int, fill color.RGBA, patch *image.Rectangle, patchColor color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	if patch != nil {
		for y := patch.Min.Y; y < patch.Max.Y; y++ {
			for x := patch.Min.X; x < patch.Max.X; x++ {
				img.SetRGBA(x, y, patchColor)
			}
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

// Scenario D: comparing an image against itself yields zero pixel
// diff, perfect SSIM, no diff regions, and a match.
func TestCompareIdenticalImagesMatch(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "ref.png")
	cur := filepath.Join(dir, "cur.png")
	writePNG(t, ref, 120, 80, color.RGBA{R: 255, G: 255, B: 255, A: 255}, nil, color.RGBA{})
	writePNG(t, cur, 120, 80, color.RGBA{R: 255, G: 255, B: 255, A: 255}, nil, color.RGBA{})

	result, err := Compare(ref, cur, DefaultOptions(), "")
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.PixelDiffPercent)
	assert.InDelta(t, 1.0, result.SSIMScore, 1e-6)
	assert.Empty(t, result.DiffRegions)
	assert.True(t, result.Match)
	assert.False(t, result.SizeMismatch)
}

// Scenario E: a single large rectangular drift produces exactly one
// diff region at moderate severity, and the images fail to match.
func TestCompareSingleDriftProducesOneModerateRegion(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "ref.png")
	cur := filepath.Join(dir, "cur.png")
	writePNG(t, ref, 400, 300, color.RGBA{R: 255, G: 255, B: 255, A: 255}, nil, color.RGBA{})
	patch := image.Rect(50, 50, 150, 100) // 100x50 = 5000px
	writePNG(t, cur, 400, 300, color.RGBA{R: 255, G: 255, B: 255, A: 255}, &patch, color.RGBA{R: 255, G: 0, B: 0, A: 255})

	opts := DefaultOptions()
	result, err := Compare(ref, cur, opts, "")
	require.NoError(t, err)

	require.Len(t, result.DiffRegions, 1)
	assert.Equal(t, SeverityModerate, result.DiffRegions[0].Severity)
	assert.Equal(t, 5000, result.DiffRegions[0].PixelCount)
	assert.False(t, result.Match)
	assert.Greater(t, result.PixelDiffPercent, 0.0)
	assert.Less(t, result.SSIMScore, 1.0)
}

// A size-mismatched pair is resized to the reference's dimensions
// before diffing (§4.6); once resized, content that matches should
// still report match=true — SizeMismatch is informational, not itself
// a match criterion.
func TestCompareResizedContentCanStillMatchDespiteSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "ref.png")
	cur := filepath.Join(dir, "cur.png")
	writePNG(t, ref, 200, 100, color.RGBA{R: 255, G: 255, B: 255, A: 255}, nil, color.RGBA{})
	writePNG(t, cur, 220, 110, color.RGBA{R: 255, G: 255, B: 255, A: 255}, nil, color.RGBA{})

	result, err := Compare(ref, cur, DefaultOptions(), "")
	require.NoError(t, err)
	assert.True(t, result.SizeMismatch)
	assert.True(t, result.Match)
}

func TestCompareWritesRequestedDiffStyle(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "ref.png")
	cur := filepath.Join(dir, "cur.png")
	diffOut := filepath.Join(dir, "diff.png")
	writePNG(t, ref, 100, 60, color.RGBA{R: 255, G: 255, B: 255, A: 255}, nil, color.RGBA{})
	patch := image.Rect(10, 10, 40, 40)
	writePNG(t, cur, 100, 60, color.RGBA{R: 255, G: 255, B: 255, A: 255}, &patch, color.RGBA{R: 0, G: 255, B: 0, A: 255})

	opts := DefaultOptions()
	opts.DiffStyle = StyleSideBySide
	result, err := Compare(ref, cur, opts, diffOut)
	require.NoError(t, err)
	assert.Equal(t, diffOut, result.DiffImagePath)

	f, err := os.Open(diffOut)
	require.NoError(t, err)
	defer f.Close()
	img, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Greater(t, img.Width, 100) // reference + gap + current
}

func TestRegionSeverityThresholds(t *testing.T) {
	assert.Equal(t, SeverityMinor, regionSeverity(500))
	assert.Equal(t, SeverityModerate, regionSeverity(5000))
	assert.Equal(t, SeverityMajor, regionSeverity(20000))
}

func TestExtractRegionsDropsSubMinimumComponents(t *testing.T) {
	mask := newDiffMask(50, 50)
	mask.set(0, 0, true) // a single isolated pixel, well under 100px^2

	regions := extractRegions(mask)
	assert.Empty(t, regions)
}
