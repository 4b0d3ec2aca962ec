// Histogram-based global thresholding
package algorithms

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"image-signal-processing/internal/core"
)

// MaxOtsuLevels bounds the exhaustive multi-level search.
const MaxOtsuLevels = 4

// OtsuThresholds returns the levels-1 thresholds that maximize the
// between-class variance of hist. Class k holds intensities in
// (t[k-1], t[k]]. Constant histograms yield all thresholds equal to the
// single occupied bin.
func OtsuThresholds(hist [HistogramBins]int, levels int) ([]int, error) {
	if levels < 2 || levels > MaxOtsuLevels {
		return nil, fmt.Errorf("%w: levels must be in [2,%d], got %d", core.ErrInvalidParameter, MaxOtsuLevels, levels)
	}

	counts := make([]float64, HistogramBins)
	moments := make([]float64, HistogramBins)
	for i, c := range hist {
		counts[i] = float64(c)
		moments[i] = float64(i) * float64(c)
	}
	// prefix sums of weight and first moment; index i covers bins [0,i)
	w := make([]float64, HistogramBins+1)
	m := make([]float64, HistogramBins+1)
	floats.CumSum(w[1:], counts)
	floats.CumSum(m[1:], moments)
	classScore := func(lo, hi int) float64 {
		weight := w[hi] - w[lo]
		if weight == 0 {
			return 0
		}
		moment := m[hi] - m[lo]
		return moment * moment / weight
	}

	best := make([]int, levels-1)
	current := make([]int, levels-1)
	bestScore := math.Inf(-1)

	var search func(k, lo int, score float64)
	search = func(k, lo int, score float64) {
		if k == levels-1 {
			score += classScore(lo, HistogramBins)
			if score > bestScore {
				bestScore = score
				copy(best, current)
			}
			return
		}
		for t := lo; t < HistogramBins-(levels-1-k); t++ {
			current[k] = t
			search(k+1, t+1, score+classScore(lo, t+1))
		}
	}
	search(0, 0, 0)

	if lo, hi, ok := occupiedRange(hist); ok && lo == hi {
		for i := range best {
			best[i] = lo
		}
	}
	return best, nil
}

// Otsu binarizes src at its Otsu threshold: samples above it become
// maxValue, the rest 0.
func Otsu(src *core.Gray, maxValue uint8) (*core.Gray, int, error) {
	if err := src.Validate(); err != nil {
		return nil, 0, err
	}
	t, err := OtsuThresholds(Histogram(src), 2)
	if err != nil {
		return nil, 0, err
	}
	out, err := applyThresholds(src, t, maxValue)
	return out, t[0], err
}

// MultiLevelOtsu quantizes src into levels evenly spaced output values
// between 0 and maxValue.
func MultiLevelOtsu(src *core.Gray, levels int, maxValue uint8) (*core.Gray, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	t, err := OtsuThresholds(Histogram(src), levels)
	if err != nil {
		return nil, err
	}
	return applyThresholds(src, t, maxValue)
}

func applyThresholds(src *core.Gray, thresholds []int, maxValue uint8) (*core.Gray, error) {
	classes := len(thresholds)
	var lut [HistogramBins]uint8
	class := 0
	for v := range lut {
		for class < classes && v > thresholds[class] {
			class++
		}
		lut[v] = core.RoundByte(float64(class) * float64(maxValue) / float64(classes))
	}
	return applyLUT(src, lut), nil
}

func occupiedRange(hist [HistogramBins]int) (lo, hi int, ok bool) {
	lo, hi = -1, -1
	for i, c := range hist {
		if c == 0 {
			continue
		}
		if lo < 0 {
			lo = i
		}
		hi = i
	}
	return lo, hi, lo >= 0
}

// MultiOtsu implements global Otsu thresholding with optional extra levels
type MultiOtsu struct {
	descriptor
}

// NewMultiOtsu creates a new Otsu thresholding algorithm
func NewMultiOtsu() *MultiOtsu {
	return &MultiOtsu{descriptor{
		name:        "Multi-Level Otsu",
		description: "Otsu thresholding with support for 2, 3 and 4 output levels",
		params: []ParameterInfo{
			{Name: "levels", Type: "int", Min: 2.0, Max: float64(MaxOtsuLevels), Default: 2.0, Description: "Number of output levels (2 = binary)"},
			{Name: "max_value", Type: "int", Min: 0.0, Max: 255.0, Default: 255.0, Description: "Output value of the brightest class"},
		},
	}}
}

func (m *MultiOtsu) Apply(input *core.Gray, params map[string]interface{}) (*core.Gray, error) {
	if err := m.Validate(params); err != nil {
		return nil, err
	}
	p, err := m.resolve(params)
	if err != nil {
		return nil, err
	}
	return MultiLevelOtsu(input, int(p["levels"]), uint8(p["max_value"]))
}
