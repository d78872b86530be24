package compare

import "path/filepath"

// Compare loads the reference and current screenshots, resizes the
// current image to the reference's dimensions if they differ, runs
// the pixel and/or SSIM metrics per opts.Method, extracts diff
// regions, renders the requested visualization alongside outPath, and
// decides match by opts's thresholds (both must pass under hybrid).
func Compare(referencePath, currentPath string, opts Options, diffOutPath string) (*Result, error) {
	reference, err := loadImage(referencePath)
	if err != nil {
		return nil, err
	}
	current, err := loadImage(currentPath)
	if err != nil {
		return nil, err
	}

	resized, sizeMismatch := resizeToMatch(reference, current)

	result := &Result{
		Method:         opts.Method,
		PixelThreshold: opts.PixelThreshold,
		SSIMThreshold:  opts.SSIMThreshold,
		SizeMismatch:   sizeMismatch,
	}

	var mask *diffMask
	pixelOK, ssimOK := true, true

	if opts.Method == MethodPixel || opts.Method == MethodHybrid {
		result.PixelDiffPercent, mask = computePixelDiff(reference, resized)
		pixelOK = result.PixelDiffPercent <= opts.PixelThreshold
	}
	if opts.Method == MethodSSIM || opts.Method == MethodHybrid {
		result.SSIMScore = computeSSIM(reference, resized)
		ssimOK = result.SSIMScore >= opts.SSIMThreshold
	}

	if mask == nil {
		// SSIM-only mode still needs a mask for visualization and
		// region extraction, so compute it unconditionally.
		_, mask = computePixelDiff(reference, resized)
	}

	result.DiffRegions = extractRegions(mask)
	result.Match = pixelOK && ssimOK

	if diffOutPath != "" {
		style := opts.DiffStyle
		if style == "" {
			style = StyleOverlay
		}
		if err := renderDiff(style, reference, resized, mask, result.DiffRegions, diffOutPath); err != nil {
			return nil, err
		}
		result.DiffImagePath = filepath.Clean(diffOutPath)
	}

	return result, nil
}
