// Per-pixel intensity remapping
package algorithms

import (
	"fmt"
	"math"

	"image-signal-processing/internal/core"
)

// HistogramBins is the number of intensity levels in an 8-bit buffer.
const HistogramBins = 256

// Brightness scales every intensity by factor and clamps into [0,255].
// Non-positive factors are accepted and produce black output.
func Brightness(src *core.Gray, factor float64) (*core.Gray, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := requireFinite("factor", factor); err != nil {
		return nil, err
	}
	return applyLUT(src, buildLUT(func(v float64) float64 {
		return v * factor
	})), nil
}

// Contrast stretches (alpha > 1) or compresses (alpha < 1) intensities
// around center.
func Contrast(src *core.Gray, alpha, center float64) (*core.Gray, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := requireFinite("alpha", alpha); err != nil {
		return nil, err
	}
	if err := requireFinite("center", center); err != nil {
		return nil, err
	}
	return applyLUT(src, buildLUT(func(v float64) float64 {
		return (v-center)*alpha + center
	})), nil
}

// Gamma applies out = c * (v/255)^gamma on normalized intensities and
// rescales to [0,255].
func Gamma(src *core.Gray, c, gamma float64) (*core.Gray, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := requireFinite("c", c); err != nil {
		return nil, err
	}
	if err := requireFinite("gamma", gamma); err != nil {
		return nil, err
	}
	if gamma <= 0 {
		return nil, fmt.Errorf("%w: gamma must be positive, got %g", core.ErrInvalidParameter, gamma)
	}
	return applyLUT(src, buildLUT(func(v float64) float64 {
		return c * math.Pow(v/255.0, gamma) * 255.0
	})), nil
}

// Histogram counts the occurrences of every intensity level.
func Histogram(src *core.Gray) [HistogramBins]int {
	var hist [HistogramBins]int
	for _, v := range src.Pix {
		hist[v]++
	}
	return hist
}

// HistogramEqualize remaps levels through the normalized cumulative
// distribution. A constant image has no spread to redistribute and is
// returned unchanged.
func HistogramEqualize(src *core.Gray) (*core.Gray, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	hist := Histogram(src)

	var cdf [HistogramBins]int
	running := 0
	cdfMin := 0
	for v, count := range hist {
		running += count
		cdf[v] = running
		if cdfMin == 0 && running > 0 {
			cdfMin = running
		}
	}

	total := src.Len()
	if total == cdfMin {
		return src.Clone(), nil
	}

	scale := 255.0 / float64(total-cdfMin)
	var lut [HistogramBins]uint8
	for v := range lut {
		level := math.Round(float64(cdf[v]-cdfMin) * scale)
		lut[v] = core.ClampByte(level)
	}
	return applyLUT(src, lut), nil
}

// IsConstant reports whether every sample has the same intensity.
func IsConstant(src *core.Gray) bool {
	for _, v := range src.Pix {
		if v != src.Pix[0] {
			return false
		}
	}
	return true
}

// BitPlane extracts bit b of every sample as a {0,255} binary image.
func BitPlane(src *core.Gray, b int) (*core.Gray, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if b < 0 || b > 7 {
		return nil, fmt.Errorf("%w: bit plane must be in [0,7], got %d", core.ErrInvalidParameter, b)
	}
	var lut [HistogramBins]uint8
	for v := range lut {
		if (v>>b)&1 == 1 {
			lut[v] = 255
		}
	}
	return applyLUT(src, lut), nil
}

// BitPlanes decomposes src into its eight bit planes, least significant first.
func BitPlanes(src *core.Gray) ([8]*core.Gray, error) {
	var planes [8]*core.Gray
	for b := range planes {
		plane, err := BitPlane(src, b)
		if err != nil {
			return planes, err
		}
		planes[b] = plane
	}
	return planes, nil
}

func buildLUT(fn func(v float64) float64) [HistogramBins]uint8 {
	var lut [HistogramBins]uint8
	for v := range lut {
		lut[v] = core.ClampByte(fn(float64(v)))
	}
	return lut
}

func applyLUT(src *core.Gray, lut [HistogramBins]uint8) *core.Gray {
	out := core.NewGray(src.Width, src.Height)
	for i, v := range src.Pix {
		out.Pix[i] = lut[v]
	}
	return out
}
