package checks

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// rgbPattern matches both rgb(...) and rgba(...) computed-style forms.
var rgbPattern = regexp.MustCompile(`rgba?\(\s*([\d.]+)\s*,\s*([\d.]+)\s*,\s*([\d.]+)(?:\s*,\s*([\d.]+))?\s*\)`)

// ParseRGBA extracts r,g,b ∈ [0,255] and alpha ∈ [0,1] from a
// computed-style color string. Unparseable input returns opaque black.
func ParseRGBA(s string) (r, g, b, a float64) {
	m := rgbPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, 0, 1
	}
	r, _ = strconv.ParseFloat(m[1], 64)
	g, _ = strconv.ParseFloat(m[2], 64)
	b, _ = strconv.ParseFloat(m[3], 64)
	a = 1
	if m[4] != "" {
		a, _ = strconv.ParseFloat(m[4], 64)
	}
	return
}

// channelLuminance applies the WCAG sRGB gamma-correction step to one
// 0-255 color channel.
func channelLuminance(c float64) float64 {
	cNorm := c / 255
	if cNorm <= 0.03928 {
		return cNorm / 12.92
	}
	return math.Pow((cNorm+0.055)/1.055, 2.4)
}

// RelativeLuminance computes the WCAG relative luminance of an RGB
// color (0-255 per channel).
func RelativeLuminance(r, g, b float64) float64 {
	return 0.2126*channelLuminance(r) + 0.7152*channelLuminance(g) + 0.0722*channelLuminance(b)
}

// ContrastRatio computes the WCAG contrast ratio between two colors,
// each given as 0-255 RGB triples.
func ContrastRatio(r1, g1, b1, r2, g2, b2 float64) float64 {
	l1 := RelativeLuminance(r1, g1, b1)
	l2 := RelativeLuminance(r2, g2, b2)
	lighter, darker := l1, l2
	if darker > lighter {
		lighter, darker = darker, lighter
	}
	return (lighter + 0.05) / (darker + 0.05)
}

// FormatRGBHex renders r,g,b (0-255) as a "#rrggbb" string, used when
// recording the contrast fallback check and for annotator diagnostics.
func FormatRGBHex(r, g, b float64) string {
	return fmt.Sprintf("#%02x%02x%02x", clampByte(r), clampByte(g), clampByte(b))
}

func clampByte(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return int(v)
}
