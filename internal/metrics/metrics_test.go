package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"image-signal-processing/internal/algorithms"
	"image-signal-processing/internal/core"
)

func checker(w, h int) *core.Gray {
	g := core.NewGray(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/4+y/4)%2 == 0 {
				g.Set(x, y, 200)
			} else {
				g.Set(x, y, 40)
			}
		}
	}
	return g
}

func TestPSNRIdenticalIsInfinite(t *testing.T) {
	img := checker(16, 16)
	v, err := NewPSNR().Calculate(img, img.Clone())
	require.NoError(t, err)
	assert.True(t, math.IsInf(v, 1))
}

func TestPSNRKnownValue(t *testing.T) {
	a := core.UniformGray(8, 8, 100)
	b := core.UniformGray(8, 8, 110)

	mse, err := NewMSE().Calculate(a, b)
	require.NoError(t, err)
	assert.Equal(t, 100.0, mse)

	psnr, err := NewPSNR().Calculate(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 20*math.Log10(25.5), psnr, 1e-4)
}

func TestShapeMismatch(t *testing.T) {
	e := NewEvaluator()
	for _, name := range e.Names() {
		_, err := e.Calculate(name, core.NewGray(4, 4), core.NewGray(4, 5))
		assert.ErrorIs(t, err, core.ErrShapeMismatch, name)
	}
}

func TestUnknownMetric(t *testing.T) {
	_, err := NewEvaluator().Calculate("f_measure", core.NewGray(2, 2), core.NewGray(2, 2))
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestSSIM(t *testing.T) {
	img := checker(24, 24)
	s := NewSSIM()

	same, err := s.Calculate(img, img.Clone())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, same, 1e-9)

	inverted := img.Clone()
	for i, v := range inverted.Pix {
		inverted.Pix[i] = 255 - v
	}
	opposite, err := s.Calculate(img, inverted)
	require.NoError(t, err)
	assert.Less(t, opposite, 0.5)
}

func TestContrastRatio(t *testing.T) {
	img := checker(16, 16)
	flat := core.UniformGray(16, 16, 120)
	c := NewContrastRatio()

	v, err := c.Calculate(img, flat)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	v, err = c.Calculate(flat, img)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v, "flat original")

	halved := img.Clone()
	for i, p := range halved.Pix {
		halved.Pix[i] = p / 2
	}
	v, err = c.Calculate(img, halved)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v, 1e-9)
}

func TestSharpness(t *testing.T) {
	img := checker(16, 16)
	s := NewSharpness()

	v, err := s.Calculate(img, img)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = s.Calculate(img, core.UniformGray(16, 16, 10))
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestEvaluateStep(t *testing.T) {
	e := NewEvaluator()
	before := checker(16, 16)
	after := before.Clone()
	after.Pix[0] = 0

	denoise := e.EvaluateStep(before, after, "median")
	assert.Contains(t, denoise, "psnr")
	assert.Contains(t, denoise, "ssim")
	assert.Contains(t, denoise, "contrast_preservation")
	assert.NotContains(t, denoise, "edge_gain")

	sharpen := e.EvaluateStep(before, after, "sobel_sharpen")
	assert.Contains(t, sharpen, "edge_gain")

	plain := e.EvaluateStep(before, after, "brightness")
	assert.Len(t, plain, 2)
}

func TestGenerateReport(t *testing.T) {
	e := NewEvaluator()
	img := checker(16, 16)

	report := e.GenerateReport(img, img.Clone())
	// ratio metrics sit mid-range when nothing changed
	assert.InDelta(t, 85.0, report.OverallScore, 1e-9)
	assert.Equal(t, "good", report.Analysis.QualityLevel)
	assert.Empty(t, report.Analysis.Issues)
	assert.Len(t, report.Metrics, len(e.Names()))

	poor := e.GenerateReport(img, core.UniformGray(16, 16, 0))
	assert.Less(t, poor.OverallScore, report.OverallScore)
	assert.NotEmpty(t, poor.Analysis.Issues)
}

func TestGetMetricInfo(t *testing.T) {
	info := NewEvaluator().GetMetricInfo()
	require.Contains(t, info, "mse")
	assert.False(t, info["mse"].HigherBetter)
	assert.Equal(t, [2]float64{0, 1}, info["ssim"].Range)
}

func TestSSIMWindowMatchesGaussianKernel(t *testing.T) {
	g := core.GridFromGray(checker(20, 14))
	k, err := algorithms.GaussianKernel(ssimSigma)
	require.NoError(t, err)
	require.Equal(t, ssimWindow, k.Size())

	want, err := algorithms.ConvolveGrid(g, k)
	require.NoError(t, err)
	got, err := gaussianMean(g)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want.Data, got.Data, 1e-6)
}

func TestLaplacianVarianceMatchesKernel(t *testing.T) {
	img := checker(16, 12)
	lap, err := algorithms.ConvolveGrid(core.GridFromGray(img), algorithms.Laplacian())
	require.NoError(t, err)

	v, err := laplacianVariance(img)
	require.NoError(t, err)
	assert.InDelta(t, stat.Variance(lap.Data, nil), v, 1e-6)
}
