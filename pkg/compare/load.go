package compare

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	canvaserrors "github.com/alantheprice/canvasreview/pkg/errors"
)

// loadImage decodes a PNG/JPEG/WebP file and flattens any alpha
// channel onto a white background, mirroring the source comparator's
// RGBA/LA/P-to-RGB compositing rule.
func loadImage(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, canvaserrors.Wrap(canvaserrors.ReferenceNotFound, "reference image not found", err)
	}
	defer f.Close()

	var src image.Image
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".png"):
		src, err = png.Decode(f)
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		src, err = jpeg.Decode(f)
	case strings.HasSuffix(lower, ".webp"):
		src, err = webp.Decode(f)
	default:
		src, _, err = image.Decode(f)
	}
	if err != nil {
		return nil, canvaserrors.Wrap(canvaserrors.ReferenceUnreadable, "failed to decode reference image", err)
	}

	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := src.At(x, y).RGBA()
			if a == 0xffff {
				dst.Set(x, y, color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255})
				continue
			}
			alpha := float64(a) / 0xffff
			cr := uint8(float64(r>>8)*alpha + 255*(1-alpha))
			cg := uint8(float64(g>>8)*alpha + 255*(1-alpha))
			cb := uint8(float64(b>>8)*alpha + 255*(1-alpha))
			dst.Set(x, y, color.RGBA{R: cr, G: cg, B: cb, A: 255})
		}
	}
	return dst, nil
}

// resizeToMatch resizes current to reference's dimensions using a
// high-quality resampling filter, when dimensions differ.
func resizeToMatch(reference, current *image.RGBA) (*image.RGBA, bool) {
	rb, cb := reference.Bounds(), current.Bounds()
	if rb.Dx() == cb.Dx() && rb.Dy() == cb.Dy() {
		return current, false
	}

	resized := image.NewRGBA(rb)
	draw.CatmullRom.Scale(resized, rb, current, cb, draw.Over, nil)
	return resized, true
}
