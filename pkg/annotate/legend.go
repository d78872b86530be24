package annotate

import (
	"fmt"
	"image"
	"image/color"
)

// legendHeight computes the pixel height of the legend strip appended
// below the screenshot, mirroring the source skill's formula: padding
// on both edges, one header line, one line per issue, plus an extra
// shorter line for every issue that carries a selector.
func legendHeight(issues []Issue) int {
	withSelector := 0
	for _, iss := range issues {
		if iss.Selector != "" {
			withSelector++
		}
	}
	return LegendPadding*2 + LegendLineHeight + len(issues)*LegendLineHeight + withSelector*(LegendLineHeight-8)
}

// drawLegend renders the legend strip into img starting at yOffset.
func drawLegend(img *image.RGBA, yOffset, width int, issues []Issue) {
	bg := hexToRGBA(legendBackgroundHex)
	fillRect(img, 0, yOffset, width, img.Bounds().Max.Y, bg)

	// top separator
	separator := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	drawHLine(img, 0, width, yOffset+1, separator)
	drawHLine(img, 0, width, yOffset+2, separator)

	y := yOffset + LegendPadding + 13 // baseline offset for first text line

	header := color.RGBA{R: 33, G: 37, B: 41, A: 255}
	drawString(img, LegendPadding, y, fmt.Sprintf("%d issues found", len(issues)), header)
	y += LegendLineHeight

	textColor := color.RGBA{R: 33, G: 37, B: 41, A: 255}
	selectorColor := color.RGBA{R: 108, G: 117, B: 125, A: 255}

	for _, iss := range issues {
		line1 := fmt.Sprintf("%s #%s: %s", severityEmoji[iss.Severity], markerLabel(iss.Number), ellipsize(iss.Description, 60))
		drawString(img, LegendPadding, y, line1, textColor)
		y += LegendLineHeight

		if iss.Selector != "" {
			line2 := fmt.Sprintf("-> %s", iss.Selector)
			drawString(img, LegendPadding+24, y-8, line2, selectorColor)
			y += LegendLineHeight - 8
		}
	}
}

func ellipsize(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
