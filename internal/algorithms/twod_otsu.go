// Two-dimensional Otsu binarization over intensity and guided-filter response
package algorithms

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"image-signal-processing/internal/core"
	"image-signal-processing/internal/io"
)

const (
	// boundaryMargin is how close to a threshold a sample must be before its
	// neighborhood decides the class instead.
	boundaryMargin = 5
	boundaryRadius = 2
	mixedPenalty   = 0.05
)

// GuidedFilter runs an edge-preserving self-guided filter: each output is
// a*I + b with a = var/(var+epsilon) and b = mean*(1-a), both averaged over
// the (2*radius+1)^2 window. Intensities are scaled to [0,1] internally.
func GuidedFilter(src *core.Gray, radius int, epsilon float64) (*core.Gray, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if radius < 1 {
		return nil, fmt.Errorf("%w: guided filter radius must be >= 1, got %d", core.ErrInvalidParameter, radius)
	}
	if err := requireFinite("epsilon", epsilon); err != nil {
		return nil, err
	}
	if epsilon <= 0 {
		return nil, fmt.Errorf("%w: epsilon must be positive, got %g", core.ErrInvalidParameter, epsilon)
	}
	size := 2*radius + 1

	in := core.NewGrid(src.Width, src.Height)
	sq := core.NewGrid(src.Width, src.Height)
	for i, v := range src.Pix {
		f := float64(v) / 255
		in.Data[i] = f
		sq.Data[i] = f * f
	}
	meanI, err := boxMean(in, size)
	if err != nil {
		return nil, err
	}
	meanII, err := boxMean(sq, size)
	if err != nil {
		return nil, err
	}

	a := core.NewGrid(src.Width, src.Height)
	b := core.NewGrid(src.Width, src.Height)
	for i, m := range meanI.Data {
		variance := meanII.Data[i] - m*m
		a.Data[i] = variance / (variance + epsilon)
		b.Data[i] = m * (1 - a.Data[i])
	}
	meanA, err := boxMean(a, size)
	if err != nil {
		return nil, err
	}
	meanB, err := boxMean(b, size)
	if err != nil {
		return nil, err
	}

	out := core.NewGray(src.Width, src.Height)
	for i, f := range in.Data {
		out.Pix[i] = core.RoundByte((meanA.Data[i]*f + meanB.Data[i]) * 255)
	}
	return out, nil
}

// boxMean averages g over a size x size window with reflected borders.
func boxMean(g *core.Grid, size int) (*core.Grid, error) {
	src, err := io.GridToMat(g)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mean := gocv.NewMat()
	defer mean.Close()
	if err := gocv.Blur(src, &mean, image.Point{X: size, Y: size}); err != nil {
		return nil, fmt.Errorf("box mean: %w", err)
	}
	return io.GridFromMat(mean)
}

// jointTable is a zero-padded summed-area table over the 256x256 joint
// histogram of (intensity, guided) pairs.
type jointTable struct {
	p, muG, muF []float64
}

const jointStride = HistogramBins + 1

func newJointTable(gray, guided *core.Gray) *jointTable {
	hist := make([]float64, HistogramBins*HistogramBins)
	for i, g := range gray.Pix {
		hist[int(g)*HistogramBins+int(guided.Pix[i])]++
	}
	total := float64(len(gray.Pix))

	jt := &jointTable{
		p:   make([]float64, jointStride*jointStride),
		muG: make([]float64, jointStride*jointStride),
		muF: make([]float64, jointStride*jointStride),
	}
	for g := 0; g < HistogramBins; g++ {
		for f := 0; f < HistogramBins; f++ {
			prob := hist[g*HistogramBins+f] / total
			i := (g+1)*jointStride + f + 1
			up, left, diag := i-jointStride, i-1, i-jointStride-1
			jt.p[i] = prob + jt.p[up] + jt.p[left] - jt.p[diag]
			jt.muG[i] = float64(g)*prob + jt.muG[up] + jt.muG[left] - jt.muG[diag]
			jt.muF[i] = float64(f)*prob + jt.muF[up] + jt.muF[left] - jt.muF[diag]
		}
	}
	return jt
}

// region returns the probability mass and mean coordinates of the inclusive
// block [g1,g2] x [f1,f2].
func (jt *jointTable) region(g1, f1, g2, f2 int) (w, meanG, meanF float64) {
	a := g1*jointStride + f1
	b := g1*jointStride + f2 + 1
	c := (g2+1)*jointStride + f1
	d := (g2+1)*jointStride + f2 + 1
	w = jt.p[d] - jt.p[b] - jt.p[c] + jt.p[a]
	if w <= 1e-12 {
		return 0, 0, 0
	}
	meanG = (jt.muG[d] - jt.muG[b] - jt.muG[c] + jt.muG[a]) / w
	meanF = (jt.muF[d] - jt.muF[b] - jt.muF[c] + jt.muF[a]) / w
	return w, meanG, meanF
}

// score is the between-class separation of the two diagonal classes, less a
// penalty proportional to the mass that falls in the off-diagonal blocks.
func (jt *jointTable) score(s, t int) float64 {
	last := HistogramBins - 1
	w0, g0, f0 := jt.region(0, 0, s, t)
	w3, g3, f3 := jt.region(s+1, t+1, last, last)
	if w0 == 0 || w3 == 0 {
		return 0
	}
	w1, _, _ := jt.region(s+1, 0, last, t)
	w2, _, _ := jt.region(0, t+1, s, last)

	dist := (g0-g3)*(g0-g3) + (f0-f3)*(f0-f3)
	return w0*w3*dist - mixedPenalty*(w1+w2)*dist
}

// TwoDOtsuThresholds searches every (s, t) pair for the intensity and guided
// thresholds that best separate the joint histogram. When no split separates
// anything, both thresholds are 255.
func TwoDOtsuThresholds(gray, guided *core.Gray) (s, t int, err error) {
	if err := gray.Validate(); err != nil {
		return 0, 0, err
	}
	if !gray.SameShape(guided) {
		return 0, 0, fmt.Errorf("%w: guide is %dx%d, image is %dx%d",
			core.ErrShapeMismatch, guided.Width, guided.Height, gray.Width, gray.Height)
	}

	jt := newJointTable(gray, guided)
	s, t = HistogramBins-1, HistogramBins-1
	best := 0.0
	for cs := 0; cs < HistogramBins-1; cs++ {
		for ct := 0; ct < HistogramBins-1; ct++ {
			if v := jt.score(cs, ct); v > best {
				best, s, t = v, cs, ct
			}
		}
	}
	return s, t, nil
}

// TwoDOtsu binarizes src by its joint histogram against a guided-filtered
// copy. Samples within a few levels of either threshold follow the majority
// of their 5x5 neighborhood. A closing then an opening with a morphSize
// window cleans the result; morphSize 1 skips that step.
func TwoDOtsu(src *core.Gray, radius int, epsilon float64, morphSize int) (*core.Gray, error) {
	if err := requireOddSize("morphology window", morphSize); err != nil {
		return nil, err
	}
	guided, err := GuidedFilter(src, radius, epsilon)
	if err != nil {
		return nil, err
	}
	s, t, err := TwoDOtsuThresholds(src, guided)
	if err != nil {
		return nil, err
	}

	foreground := core.NewGray(src.Width, src.Height)
	for i, g := range src.Pix {
		if int(g) > s && int(guided.Pix[i]) > t {
			foreground.Pix[i] = 1
		}
	}
	votes := newIntegralImage(foreground)

	out := core.NewGray(src.Width, src.Height)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			i := y*src.Width + x
			g, f := int(src.Pix[i]), int(guided.Pix[i])
			fg := foreground.Pix[i] == 1
			if abs(g-s) <= boundaryMargin || abs(f-t) <= boundaryMargin {
				share, _ := votes.stats(
					max(0, x-boundaryRadius), max(0, y-boundaryRadius),
					min(src.Width-1, x+boundaryRadius), min(src.Height-1, y+boundaryRadius))
				fg = share > 0.5
			}
			if fg {
				out.Pix[i] = 255
			}
		}
	}

	if morphSize == 1 {
		return out, nil
	}
	closed, err := Close(out, morphSize)
	if err != nil {
		return nil, err
	}
	return Open(closed, morphSize)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// TwoDOtsuBinarizer implements guided 2-D Otsu thresholding
type TwoDOtsuBinarizer struct {
	descriptor
}

// NewTwoDOtsu creates a new 2-D Otsu binarizer
func NewTwoDOtsu() *TwoDOtsuBinarizer {
	return &TwoDOtsuBinarizer{descriptor{
		name:        "2D Otsu",
		description: "Otsu thresholding on the joint histogram of intensity and guided-filter response",
		params: []ParameterInfo{
			{Name: "window_radius", Type: "int", Min: 1.0, Max: 20.0, Default: 5.0, Description: "Guided filter window radius"},
			{Name: "epsilon", Type: "float", Min: 0.001, Max: 1.0, Default: 0.02, Description: "Guided filter regularization"},
			{Name: "morph_kernel_size", Type: "int", Min: 1.0, Max: 15.0, Default: 3.0, Description: "Cleanup window size (1 disables cleanup)"},
		},
	}}
}

func (o *TwoDOtsuBinarizer) Validate(params map[string]interface{}) error {
	if err := o.descriptor.Validate(params); err != nil {
		return err
	}
	p, err := o.resolve(params)
	if err != nil {
		return err
	}
	return requireOddSize("morph_kernel_size", int(p["morph_kernel_size"]))
}

func (o *TwoDOtsuBinarizer) Apply(input *core.Gray, params map[string]interface{}) (*core.Gray, error) {
	if err := o.Validate(params); err != nil {
		return nil, err
	}
	p, err := o.resolve(params)
	if err != nil {
		return nil, err
	}
	return TwoDOtsu(input, int(p["window_radius"]), p["epsilon"], int(p["morph_kernel_size"]))
}
