package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-signal-processing/internal/core"
)

func bimodal(w, h int, lo, hi uint8) *core.Gray {
	g := core.NewGray(w, h)
	for i := range g.Pix {
		if i%w < w/2 {
			g.Pix[i] = lo
		} else {
			g.Pix[i] = hi
		}
	}
	return g
}

func TestOtsuSeparatesModes(t *testing.T) {
	src := bimodal(10, 4, 40, 180)
	out, threshold, err := Otsu(src, 255)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, threshold, 40)
	assert.Less(t, threshold, 180)
	assert.Equal(t, uint8(0), out.At(0, 0))
	assert.Equal(t, uint8(255), out.At(9, 3))
}

func TestOtsuThresholdsMultiLevel(t *testing.T) {
	var hist [HistogramBins]int
	hist[10], hist[100], hist[220] = 50, 50, 50

	ts, err := OtsuThresholds(hist, 3)
	require.NoError(t, err)
	require.Len(t, ts, 2)
	assert.GreaterOrEqual(t, ts[0], 10)
	assert.Less(t, ts[0], 100)
	assert.GreaterOrEqual(t, ts[1], 100)
	assert.Less(t, ts[1], 220)

	_, err = OtsuThresholds(hist, 1)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestMultiLevelOtsuQuantizes(t *testing.T) {
	src := mustGray(t, 3, 1, 10, 100, 220)
	out, err := MultiLevelOtsu(src, 3, 200)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 100, 200}, out.Pix)
}

func TestOtsuConstantImage(t *testing.T) {
	ts, err := OtsuThresholds(Histogram(core.UniformGray(4, 4, 77)), 2)
	require.NoError(t, err)
	assert.Equal(t, []int{77}, ts)
}

func TestIntegralImageStats(t *testing.T) {
	src := mustGray(t, 3, 2,
		1, 2, 3,
		4, 5, 6,
	)
	ii := newIntegralImage(src)
	mean, std := ii.stats(0, 0, 2, 1)
	assert.InDelta(t, 3.5, mean, 1e-12)
	assert.InDelta(t, 1.707825127659933, std, 1e-12)

	mean, std = ii.stats(1, 1, 1, 1)
	assert.Equal(t, 5.0, mean)
	assert.Equal(t, 0.0, std)
}

func TestLocalThresholdsBinarize(t *testing.T) {
	src := bimodal(20, 20, 30, 200)
	for name, run := range map[string]func() (*core.Gray, error){
		"niblack": func() (*core.Gray, error) { return Niblack(src, 7, -0.2) },
		"sauvola": func() (*core.Gray, error) { return Sauvola(src, 7, 0.5, 128) },
		"wolf":    func() (*core.Gray, error) { return WolfJolion(src, 7, 0.5) },
		"nick":    func() (*core.Gray, error) { return NICK(src, 7, -0.2) },
	} {
		out, err := run()
		require.NoError(t, err, name)
		for _, v := range out.Pix {
			require.True(t, v == 0 || v == 255, name)
		}
		assert.Equal(t, uint8(0), out.At(8, 10), "%s dark side near the edge", name)
		assert.Equal(t, uint8(255), out.At(11, 10), "%s bright side near the edge", name)
	}
}

func TestLocalThresholdRejects(t *testing.T) {
	src := rampImage(8, 8)
	_, err := Niblack(src, 1, 0)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
	_, err = Sauvola(src, 8, 0.5, 128)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
	_, err = Sauvola(src, 7, 0.5, 0)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestGuidedFilterKeepsFlatImage(t *testing.T) {
	src := core.UniformGray(12, 9, 140)
	out, err := GuidedFilter(src, 2, 0.02)
	require.NoError(t, err)
	assert.True(t, out.Equal(src))

	_, err = GuidedFilter(src, 0, 0.02)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
	_, err = GuidedFilter(src, 2, 0)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestGuidedFilterPreservesStrongEdge(t *testing.T) {
	src := bimodal(24, 8, 30, 200)
	out, err := GuidedFilter(src, 2, 0.001)
	require.NoError(t, err)
	assert.InDelta(t, 30, int(out.At(2, 4)), 1)
	assert.InDelta(t, 200, int(out.At(21, 4)), 1)
	assert.Less(t, int(out.At(11, 4)), 115, "dark side of the edge stays dark")
}

func TestTwoDOtsuThresholds(t *testing.T) {
	src := bimodal(20, 20, 30, 200)
	s, th, err := TwoDOtsuThresholds(src, src)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, s, 30)
	assert.Less(t, s, 200)
	assert.GreaterOrEqual(t, th, 30)
	assert.Less(t, th, 200)

	_, _, err = TwoDOtsuThresholds(src, core.NewGray(3, 3))
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
}

func TestTwoDOtsuConstantImage(t *testing.T) {
	src := core.UniformGray(10, 10, 180)
	s, th, err := TwoDOtsuThresholds(src, src)
	require.NoError(t, err)
	assert.Equal(t, 255, s)
	assert.Equal(t, 255, th)

	out, err := TwoDOtsu(src, 2, 0.02, 3)
	require.NoError(t, err)
	assert.True(t, out.Equal(core.NewGray(10, 10)))
}

func TestTwoDOtsuBinarizes(t *testing.T) {
	src := bimodal(20, 20, 30, 200)
	for _, morph := range []int{1, 3} {
		out, err := TwoDOtsu(src, 2, 0.02, morph)
		require.NoError(t, err)
		for _, v := range out.Pix {
			require.True(t, v == 0 || v == 255)
		}
		assert.Equal(t, uint8(0), out.At(2, 10), "morph=%d", morph)
		assert.Equal(t, uint8(255), out.At(17, 10), "morph=%d", morph)
	}

	_, err := TwoDOtsu(src, 2, 0.02, 2)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestBoxMeanMatchesBoxConvolution(t *testing.T) {
	g := core.NewGrid(9, 7)
	for i := range g.Data {
		g.Data[i] = float64((i*31)%17) / 17
	}
	k, err := BoxKernel(5)
	require.NoError(t, err)
	want, err := ConvolveGrid(g, k)
	require.NoError(t, err)

	got, err := boxMean(g, 5)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want.Data, got.Data, 1e-9)
}
