package annotate

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// fillCircle draws a filled circle of the given radius centered at
// (cx, cy) in fill, with an optional border ring of borderWidth in
// borderColor.
func fillCircle(img *image.RGBA, cx, cy, radius int, fill, borderColor color.RGBA, borderWidth int) {
	bounds := img.Bounds()
	outer := radius
	inner := radius - borderWidth

	for y := cy - outer; y <= cy+outer; y++ {
		for x := cx - outer; x <= cx+outer; x++ {
			if !(image.Pt(x, y).In(bounds)) {
				continue
			}
			dx, dy := float64(x-cx), float64(y-cy)
			dist := math.Sqrt(dx*dx + dy*dy)
			switch {
			case dist <= float64(inner):
				img.SetRGBA(x, y, fill)
			case dist <= float64(outer):
				img.SetRGBA(x, y, borderColor)
			}
		}
	}
}

// strokeRect draws an unfilled rectangle outline of the given stroke
// width hugging (x0,y0)-(x1,y1).
func strokeRect(img *image.RGBA, x0, y0, x1, y1, width int, c color.RGBA) {
	for w := 0; w < width; w++ {
		drawHLine(img, x0, x1, y0+w, c)
		drawHLine(img, x0, x1, y1-w, c)
		drawVLine(img, x0+w, y0, y1, c)
		drawVLine(img, x1-w, y0, y1, c)
	}
}

func drawHLine(img *image.RGBA, x0, x1, y int, c color.RGBA) {
	bounds := img.Bounds()
	if y < bounds.Min.Y || y >= bounds.Max.Y {
		return
	}
	for x := x0; x <= x1; x++ {
		if x < bounds.Min.X || x >= bounds.Max.X {
			continue
		}
		img.SetRGBA(x, y, c)
	}
}

func drawVLine(img *image.RGBA, x, y0, y1 int, c color.RGBA) {
	bounds := img.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X {
		return
	}
	for y := y0; y <= y1; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		img.SetRGBA(x, y, c)
	}
}

// fillRect fills a solid rectangle with c.
func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	draw.Draw(img, image.Rect(x0, y0, x1, y1), &image.Uniform{C: c}, image.Point{}, draw.Src)
}
