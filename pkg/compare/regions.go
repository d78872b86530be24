package compare

// minRegionPixels filters out connected components below this area,
// per spec.md §4.6 ("ignore components under 100px^2").
const minRegionPixels = 100

const (
	majorPixelCount    = 10000
	moderatePixelCount = 1000
)

// extractRegions labels the mask's 4-connected components with a
// flood fill, discards components under minRegionPixels, and assigns
// each survivor a severity by its pixel count.
func extractRegions(mask *diffMask) []DiffRegion {
	visited := make([]bool, mask.w*mask.h)
	var regions []DiffRegion

	for y := 0; y < mask.h; y++ {
		for x := 0; x < mask.w; x++ {
			idx := y*mask.w + x
			if visited[idx] || !mask.get(x, y) {
				continue
			}
			region := floodFill(mask, visited, x, y)
			if region.PixelCount < minRegionPixels {
				continue
			}
			region.Severity = regionSeverity(region.PixelCount)
			regions = append(regions, region)
		}
	}
	return regions
}

// floodFill walks the 4-connected component rooted at (sx,sy) using
// an explicit stack, tracking its bounding box and pixel count.
func floodFill(mask *diffMask, visited []bool, sx, sy int) DiffRegion {
	type point struct{ x, y int }
	stack := []point{{sx, sy}}
	visited[sy*mask.w+sx] = true

	minX, minY, maxX, maxY := sx, sy, sx, sy
	count := 0

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++

		if p.x < minX {
			minX = p.x
		}
		if p.x > maxX {
			maxX = p.x
		}
		if p.y < minY {
			minY = p.y
		}
		if p.y > maxY {
			maxY = p.y
		}

		neighbors := [4]point{
			{p.x + 1, p.y},
			{p.x - 1, p.y},
			{p.x, p.y + 1},
			{p.x, p.y - 1},
		}
		for _, n := range neighbors {
			if n.x < 0 || n.y < 0 || n.x >= mask.w || n.y >= mask.h {
				continue
			}
			nIdx := n.y*mask.w + n.x
			if visited[nIdx] || !mask.get(n.x, n.y) {
				continue
			}
			visited[nIdx] = true
			stack = append(stack, n)
		}
	}

	return DiffRegion{
		X:          minX,
		Y:          minY,
		W:          maxX - minX + 1,
		H:          maxY - minY + 1,
		PixelCount: count,
	}
}

func regionSeverity(pixelCount int) Severity {
	switch {
	case pixelCount > majorPixelCount:
		return SeverityMajor
	case pixelCount > moderatePixelCount:
		return SeverityModerate
	default:
		return SeverityMinor
	}
}
