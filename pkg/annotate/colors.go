package annotate

import (
	"fmt"
	"image/color"

	"github.com/alantheprice/canvasreview/pkg/checks"
)

// hexToRGBA parses a "#rrggbb" string into a color.RGBA with full
// opacity. Malformed input falls back to opaque black.
func hexToRGBA(hex string) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func hexToFloatRGB(hex string) (r, g, b float64) {
	c := hexToRGBA(hex)
	return float64(c.R), float64(c.G), float64(c.B)
}

// contrastAgainstBackground computes the WCAG contrast ratio between
// two "#rrggbb" colors, reusing the engine's single luminance/ratio
// implementation in pkg/checks.
func contrastAgainstBackground(fgHex, bgHex string) float64 {
	fr, fg, fb := hexToFloatRGB(fgHex)
	br, bgc, bb := hexToFloatRGB(bgHex)
	return checks.ContrastRatio(fr, fg, fb, br, bgc, bb)
}
