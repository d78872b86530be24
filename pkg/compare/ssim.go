package compare

import (
	"image"
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	ssimWindow = 11
	ssimSigma  = 1.5
	ssimC1     = 0.01 * 0.01
	ssimC2     = 0.03 * 0.03
)

// gaussianWeights returns a normalized 1D Gaussian kernel of size n
// flattened to n*n for a square window, used to weight each window's
// pixel statistics (mean via gonum/stat's weighted Mean, variance and
// covariance as weighted population moments in computeSSIM).
func gaussianWeights(n int, sigma float64) []float64 {
	weights1D := make([]float64, n)
	center := float64(n-1) / 2
	sum := 0.0
	for i := 0; i < n; i++ {
		d := float64(i) - center
		weights1D[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += weights1D[i]
	}
	for i := range weights1D {
		weights1D[i] /= sum
	}

	weights2D := make([]float64, n*n)
	total := 0.0
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			w := weights1D[y] * weights1D[x]
			weights2D[y*n+x] = w
			total += w
		}
	}
	for i := range weights2D {
		weights2D[i] /= total
	}
	return weights2D
}

func luminance(img *image.RGBA) []float64 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// ITU-R BT.601 luma, normalized to [0,1]
			l := (0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)) / 255
			out[y*w+x] = l
		}
	}
	return out
}

// computeSSIM returns the mean structural similarity index between a
// and b's luminance channels using an 11x11 Gaussian window, per
// spec.md §4.6.
func computeSSIM(a, b *image.RGBA) float64 {
	bounds := a.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	la := luminance(a)
	lb := luminance(b)
	weights := gaussianWeights(ssimWindow, ssimSigma)

	half := ssimWindow / 2
	var ssimSum float64
	var windows int

	for cy := half; cy < h-half; cy++ {
		for cx := half; cx < w-half; cx++ {
			wa := make([]float64, 0, ssimWindow*ssimWindow)
			wb := make([]float64, 0, ssimWindow*ssimWindow)
			for dy := -half; dy <= half; dy++ {
				for dx := -half; dx <= half; dx++ {
					idx := (cy+dy)*w + (cx + dx)
					wa = append(wa, la[idx])
					wb = append(wb, lb[idx])
				}
			}

			muA := stat.Mean(wa, weights)
			muB := stat.Mean(wb, weights)
			// weights sum to 1, so these are the weighted population moments
			var varA, varB, covAB float64
			for i, wt := range weights {
				da, db := wa[i]-muA, wb[i]-muB
				varA += wt * da * da
				varB += wt * db * db
				covAB += wt * da * db
			}

			numerator := (2*muA*muB + ssimC1) * (2*covAB + ssimC2)
			denominator := (muA*muA + muB*muB + ssimC1) * (varA + varB + ssimC2)

			ssimSum += numerator / denominator
			windows++
		}
	}

	if windows == 0 {
		// image smaller than the window: fall back to a single
		// whole-image comparison.
		muA := stat.Mean(la, nil)
		muB := stat.Mean(lb, nil)
		varA := stat.Variance(la, nil)
		varB := stat.Variance(lb, nil)
		covAB := stat.Covariance(la, lb, nil)
		numerator := (2*muA*muB + ssimC1) * (2*covAB + ssimC2)
		denominator := (muA*muA + muB*muB + ssimC1) * (varA + varB + ssimC2)
		return numerator / denominator
	}

	return ssimSum / float64(windows)
}
