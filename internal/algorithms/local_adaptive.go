// Local adaptive thresholding from windowed mean and standard deviation
package algorithms

import (
	"fmt"
	"math"
	"slices"

	"image-signal-processing/internal/core"
)

// integralImage holds running sums with a zero first row and column, so
// entry (x, y) covers all samples strictly above and left of it.
type integralImage struct {
	stride int
	sum    []float64
	sumSq  []float64
}

func newIntegralImage(src *core.Gray) *integralImage {
	stride := src.Width + 1
	ii := &integralImage{
		stride: stride,
		sum:    make([]float64, stride*(src.Height+1)),
		sumSq:  make([]float64, stride*(src.Height+1)),
	}
	for y := 0; y < src.Height; y++ {
		rowSum, rowSq := 0.0, 0.0
		for x := 0; x < src.Width; x++ {
			v := float64(src.Pix[y*src.Width+x])
			rowSum += v
			rowSq += v * v
			i := (y+1)*stride + x + 1
			ii.sum[i] = ii.sum[i-stride] + rowSum
			ii.sumSq[i] = ii.sumSq[i-stride] + rowSq
		}
	}
	return ii
}

// stats returns mean and population standard deviation over the inclusive
// rectangle [x1,x2] x [y1,y2].
func (ii *integralImage) stats(x1, y1, x2, y2 int) (mean, stddev float64) {
	a := y1*ii.stride + x1
	b := y1*ii.stride + x2 + 1
	c := (y2+1)*ii.stride + x1
	d := (y2+1)*ii.stride + x2 + 1
	area := float64((x2 - x1 + 1) * (y2 - y1 + 1))

	mean = (ii.sum[d] - ii.sum[b] - ii.sum[c] + ii.sum[a]) / area
	variance := (ii.sumSq[d]-ii.sumSq[b]-ii.sumSq[c]+ii.sumSq[a])/area - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

// localStats computes the mean and standard deviation of every window
// clipped to the image.
func localStats(src *core.Gray, windowSize int) (mean, stddev *core.Grid) {
	ii := newIntegralImage(src)
	half := windowSize / 2
	mean = core.NewGrid(src.Width, src.Height)
	stddev = core.NewGrid(src.Width, src.Height)

	forEachRowBand(src.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			top, bottom := max(0, y-half), min(src.Height-1, y+half)
			for x := 0; x < src.Width; x++ {
				m, s := ii.stats(max(0, x-half), top, min(src.Width-1, x+half), bottom)
				mean.Data[y*src.Width+x] = m
				stddev.Data[y*src.Width+x] = s
			}
		}
	})
	return mean, stddev
}

// binarize sets samples above their threshold to 255 and the rest to 0.
func binarize(src *core.Gray, threshold func(i int) float64) *core.Gray {
	out := core.NewGray(src.Width, src.Height)
	for i, v := range src.Pix {
		if float64(v) > threshold(i) {
			out.Pix[i] = 255
		}
	}
	return out
}

func checkLocalWindow(src *core.Gray, windowSize int) error {
	if err := src.Validate(); err != nil {
		return err
	}
	if windowSize < 3 {
		return fmt.Errorf("%w: window size must be >= 3, got %d", core.ErrInvalidParameter, windowSize)
	}
	return requireOddSize("window size", windowSize)
}

// Niblack thresholds at mean + k*stddev.
func Niblack(src *core.Gray, windowSize int, k float64) (*core.Gray, error) {
	if err := checkLocalWindow(src, windowSize); err != nil {
		return nil, err
	}
	mean, std := localStats(src, windowSize)
	return binarize(src, func(i int) float64 {
		return mean.Data[i] + k*std.Data[i]
	}), nil
}

// Sauvola thresholds at mean * (1 + k*(stddev/r - 1)).
func Sauvola(src *core.Gray, windowSize int, k, r float64) (*core.Gray, error) {
	if err := checkLocalWindow(src, windowSize); err != nil {
		return nil, err
	}
	if r <= 0 {
		return nil, fmt.Errorf("%w: dynamic range must be positive, got %g", core.ErrInvalidParameter, r)
	}
	mean, std := localStats(src, windowSize)
	return binarize(src, func(i int) float64 {
		return mean.Data[i] * (1 + k*(std.Data[i]/r-1))
	}), nil
}

// WolfJolion normalizes Sauvola by the image minimum and the largest local
// standard deviation.
func WolfJolion(src *core.Gray, windowSize int, k float64) (*core.Gray, error) {
	if err := checkLocalWindow(src, windowSize); err != nil {
		return nil, err
	}
	mean, std := localStats(src, windowSize)
	lowest := float64(slices.Min(src.Pix))
	rmax := std.Max()
	return binarize(src, func(i int) float64 {
		m := mean.Data[i]
		t := (1-k)*m + k*lowest
		if rmax > 0 {
			t += k * std.Data[i] / rmax * (m - lowest)
		}
		return t
	}), nil
}

// NICK thresholds at mean + k*sqrt(variance + mean^2).
func NICK(src *core.Gray, windowSize int, k float64) (*core.Gray, error) {
	if err := checkLocalWindow(src, windowSize); err != nil {
		return nil, err
	}
	mean, std := localStats(src, windowSize)
	return binarize(src, func(i int) float64 {
		m, s := mean.Data[i], std.Data[i]
		return m + k*math.Sqrt(s*s+m*m)
	}), nil
}

func localWindowParam() ParameterInfo {
	return ParameterInfo{Name: "window_size", Type: "int", Min: 3.0, Max: 101.0, Default: 15.0, Description: "Local window size for statistics calculation (odd)"}
}

// localThreshold adapts one of the local binarizers to the registry.
type localThreshold struct {
	descriptor
	run func(input *core.Gray, p map[string]float64) (*core.Gray, error)
}

func (l *localThreshold) Validate(params map[string]interface{}) error {
	if err := l.descriptor.Validate(params); err != nil {
		return err
	}
	if v, ok := toFloat(params["window_size"]); ok {
		return requireOddSize("window_size", int(v))
	}
	return nil
}

func (l *localThreshold) Apply(input *core.Gray, params map[string]interface{}) (*core.Gray, error) {
	if err := l.Validate(params); err != nil {
		return nil, err
	}
	p, err := l.resolve(params)
	if err != nil {
		return nil, err
	}
	return l.run(input, p)
}

func NewNiblack() Algorithm {
	return &localThreshold{
		descriptor: descriptor{
			name:        "Niblack",
			description: "Local adaptive thresholding at mean + k * stddev",
			params: []ParameterInfo{
				localWindowParam(),
				{Name: "k", Type: "float", Min: -1.0, Max: 1.0, Default: -0.2, Description: "Niblack parameter (negative values preserve more text)"},
			},
		},
		run: func(input *core.Gray, p map[string]float64) (*core.Gray, error) {
			return Niblack(input, int(p["window_size"]), p["k"])
		},
	}
}

func NewSauvola() Algorithm {
	return &localThreshold{
		descriptor: descriptor{
			name:        "Sauvola",
			description: "Local adaptive thresholding with dynamic range normalization",
			params: []ParameterInfo{
				localWindowParam(),
				{Name: "k", Type: "float", Min: 0.1, Max: 1.0, Default: 0.5, Description: "Sauvola parameter controlling threshold sensitivity"},
				{Name: "R", Type: "float", Min: 50.0, Max: 255.0, Default: 128.0, Description: "Dynamic range of standard deviation"},
			},
		},
		run: func(input *core.Gray, p map[string]float64) (*core.Gray, error) {
			return Sauvola(input, int(p["window_size"]), p["k"], p["R"])
		},
	}
}

func NewWolfJolion() Algorithm {
	return &localThreshold{
		descriptor: descriptor{
			name:        "Wolf-Jolion",
			description: "Sauvola variant normalized by global contrast",
			params: []ParameterInfo{
				localWindowParam(),
				{Name: "k", Type: "float", Min: 0.0, Max: 1.0, Default: 0.5, Description: "Wolf-Jolion parameter"},
			},
		},
		run: func(input *core.Gray, p map[string]float64) (*core.Gray, error) {
			return WolfJolion(input, int(p["window_size"]), p["k"])
		},
	}
}

func NewNICK() Algorithm {
	return &localThreshold{
		descriptor: descriptor{
			name:        "NICK",
			description: "Niblack variant for low-contrast images",
			params: []ParameterInfo{
				localWindowParam(),
				{Name: "k", Type: "float", Min: -1.0, Max: 1.0, Default: -0.2, Description: "NICK parameter"},
			},
		},
		run: func(input *core.Gray, p map[string]float64) (*core.Gray, error) {
			return NICK(input, int(p["window_size"]), p["k"])
		},
	}
}
