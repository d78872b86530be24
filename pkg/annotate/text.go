package annotate

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawString renders s onto img at (x, y) (baseline) in c using the
// package's bitmap font. basicfont has no bold weight, so the 18px
// "bold" requirement from spec.md is approximated by drawing the
// glyphs twice with a one-pixel horizontal offset.
func drawString(img *image.RGBA, x, y int, s string, c color.RGBA) {
	face := basicfont.Face7x13
	drawOnce := func(offset int) {
		d := &font.Drawer{
			Dst:  img,
			Src:  &image.Uniform{C: c},
			Face: face,
			Dot:  fixed.P(x+offset, y),
		}
		d.DrawString(s)
	}
	drawOnce(0)
	drawOnce(1)
}

// markerLabel returns the digit form for n, or "(n)" once n exceeds
// 20, per spec.md §4.5.
func markerLabel(n int) string {
	if n > 20 {
		return fmt.Sprintf("(%d)", n)
	}
	return fmt.Sprintf("%d", n)
}

// textWidth approximates the pixel width of s under the package font.
func textWidth(s string) int {
	face := basicfont.Face7x13
	w := font.MeasureString(face, s)
	return w.Ceil()
}
