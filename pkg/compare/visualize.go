package compare

import (
	"image"
	"image/color"
	"image/png"
	"os"

	canvaserrors "github.com/alantheprice/canvasreview/pkg/errors"
)

var regionOutlineColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}

// renderDiff produces the requested visualization and writes it to
// outPath, mirroring the source comparator's three rendering modes.
func renderDiff(style DiffStyle, reference, current *image.RGBA, mask *diffMask, regions []DiffRegion, outPath string) error {
	var out *image.RGBA
	switch style {
	case StyleSideBySide:
		out = renderSideBySide(reference, current)
	case StyleHeatmap:
		out = renderHeatmap(reference, mask)
	default:
		out = renderOverlay(current, regions)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return canvaserrors.Wrap(canvaserrors.ArtifactWriteError, "failed to create diff image", err)
	}
	defer f.Close()
	if err := png.Encode(f, out); err != nil {
		return canvaserrors.Wrap(canvaserrors.ArtifactWriteError, "failed to encode diff image", err)
	}
	return nil
}

// renderOverlay draws the current screenshot with a red rectangle
// outlining each surviving diff region.
func renderOverlay(current *image.RGBA, regions []DiffRegion) *image.RGBA {
	bounds := current.Bounds()
	out := image.NewRGBA(bounds)
	drawCopy(out, current)

	for _, r := range regions {
		strokeRegion(out, r.X, r.Y, r.W, r.H, regionOutlineColor)
	}
	return out
}

// renderSideBySide places reference and current next to each other
// with a thin separator column.
func renderSideBySide(reference, current *image.RGBA) *image.RGBA {
	rb, cb := reference.Bounds(), current.Bounds()
	gap := 4
	h := rb.Dy()
	if cb.Dy() > h {
		h = cb.Dy()
	}
	out := image.NewRGBA(image.Rect(0, 0, rb.Dx()+gap+cb.Dx(), h))

	for y := 0; y < h; y++ {
		for x := 0; x < gap; x++ {
			out.SetRGBA(rb.Dx()+x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	drawAt(out, reference, 0, 0)
	drawAt(out, current, rb.Dx()+gap, 0)
	return out
}

// renderHeatmap shades every changed pixel in translucent red over a
// grayscale rendition of the mask's source dimensions.
func renderHeatmap(reference *image.RGBA, mask *diffMask) *image.RGBA {
	bounds := reference.Bounds()
	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := reference.At(x, y).RGBA()
			gray := uint8((float64(r>>8)*0.299 + float64(g>>8)*0.587 + float64(b>>8)*0.114))
			out.SetRGBA(x, y, color.RGBA{R: gray, G: gray, B: gray, A: 255})
		}
	}

	for y := 0; y < mask.h; y++ {
		for x := 0; x < mask.w; x++ {
			if !mask.get(x, y) {
				continue
			}
			px := bounds.Min.X + x
			py := bounds.Min.Y + y
			if !(image.Point{X: px, Y: py}.In(bounds)) {
				continue
			}
			base := out.RGBAAt(px, py)
			out.SetRGBA(px, py, color.RGBA{
				R: blendChannel(base.R, 255, 0.5),
				G: blendChannel(base.G, 0, 0.5),
				B: blendChannel(base.B, 0, 0.5),
				A: 255,
			})
		}
	}
	return out
}

func blendChannel(base, overlay uint8, alpha float64) uint8 {
	return uint8(float64(base)*(1-alpha) + float64(overlay)*alpha)
}

func drawCopy(dst, src *image.RGBA) {
	drawAt(dst, src, 0, 0)
}

func drawAt(dst, src *image.RGBA, ox, oy int) {
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(ox+x-b.Min.X, oy+y-b.Min.Y, src.At(x, y))
		}
	}
}

func strokeRegion(img *image.RGBA, x, y, w, h int, c color.RGBA) {
	for i := 0; i < w; i++ {
		img.SetRGBA(x+i, y, c)
		img.SetRGBA(x+i, y+h-1, c)
	}
	for i := 0; i < h; i++ {
		img.SetRGBA(x, y+i, c)
		img.SetRGBA(x+w-1, y+i, c)
	}
}
