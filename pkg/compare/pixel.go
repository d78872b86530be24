package compare

import "image"

// pixelChangedThreshold is the per-pixel normalized delta above which
// a pixel counts as "changed", per spec.md §4.6.
const pixelChangedThreshold = 0.1

// diffMask is a binary per-pixel change mask the same size as the
// compared images: true where the pixel is "changed".
type diffMask struct {
	w, h int
	data []bool
}

func newDiffMask(w, h int) *diffMask {
	return &diffMask{w: w, h: h, data: make([]bool, w*h)}
}

func (m *diffMask) get(x, y int) bool {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return false
	}
	return m.data[y*m.w+x]
}

func (m *diffMask) set(x, y int, v bool) {
	m.data[y*m.w+x] = v
}

// computePixelDiff computes the per-pixel absolute delta summed
// across channels and normalized to [0,1], returning the fraction of
// "changed" pixels as a percentage plus the binary change mask used
// for region extraction.
func computePixelDiff(a, b *image.RGBA) (percent float64, mask *diffMask) {
	bounds := a.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	mask = newDiffMask(w, h)

	changed := 0
	total := w * h
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ar, ag, ab, _ := a.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			br, bg, bb, _ := b.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()

			delta := absDelta(ar, br) + absDelta(ag, bg) + absDelta(ab, bb)
			normalized := delta / (3 * 65535)

			if normalized > pixelChangedThreshold {
				mask.set(x, y, true)
				changed++
			}
		}
	}

	if total == 0 {
		return 0, mask
	}
	return float64(changed) / float64(total) * 100, mask
}

func absDelta(a, b uint32) float64 {
	if a > b {
		return float64(a - b)
	}
	return float64(b - a)
}
