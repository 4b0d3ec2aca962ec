package pipeline

import (
	"bytes"
	"context"
	"image"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-signal-processing/internal/algorithms"
	"image-signal-processing/internal/core"
)

func gradient(w, h int) *core.Gray {
	g := core.NewGray(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Set(x, y, uint8((x*7+y*3)%256))
		}
	}
	return g
}

func TestAddStepValidates(t *testing.T) {
	p := New(nil)
	err := p.AddStep("median", map[string]interface{}{"kernel_size": 4})
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	err = p.AddStep("sharpen", nil)
	assert.ErrorIs(t, err, algorithms.ErrUnknownAlgorithm)
	assert.Empty(t, p.GetSteps())

	require.NoError(t, p.AddStep("median", nil))
	require.Len(t, p.GetSteps(), 1)
	assert.True(t, p.GetSteps()[0].Enabled)
}

func TestRunMatchesDirectCalls(t *testing.T) {
	src := gradient(32, 24)
	p := New(nil)
	require.NoError(t, p.AddStep("gaussian", map[string]interface{}{"sigma": 1.0}))
	require.NoError(t, p.AddStep("sobel_sharpen", map[string]interface{}{"alpha": 0.3}))

	res, err := p.Run(context.Background(), src)
	require.NoError(t, err)

	want, err := algorithms.GaussianBlur(src, 1.0)
	require.NoError(t, err)
	want, err = algorithms.SobelSharpen(want, 0.3)
	require.NoError(t, err)
	assert.True(t, res.Output.Equal(want))
	assert.True(t, src.Equal(gradient(32, 24)), "input untouched")

	assert.Contains(t, res.Metrics, "0_gaussian_psnr")
	assert.Contains(t, res.Metrics, "0_gaussian_contrast_preservation")
	assert.Contains(t, res.Metrics, "1_sobel_sharpen_edge_gain")
	assert.Contains(t, res.Metrics, "ssim")
}

func TestRunSkipsDisabledSteps(t *testing.T) {
	src := gradient(8, 8)
	p := New(nil)
	require.NoError(t, p.AddStep("brightness", map[string]interface{}{"factor": 0.0}))
	require.NoError(t, p.SetStepEnabled(0, false))
	assert.ErrorIs(t, p.SetStepEnabled(3, true), core.ErrInvalidParameter)

	res, err := p.Run(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, res.Output.Equal(src))
}

func TestRunWrapsStepFailure(t *testing.T) {
	p := New(nil)
	require.NoError(t, p.AddStep("notch", nil))

	// a mutated parameter map slips past AddStep validation
	params := map[string]interface{}{"radius": 2}
	require.NoError(t, p.AddStep("notch", params))
	params["radius"] = 99

	_, err := p.Run(context.Background(), gradient(8, 8))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
	assert.Contains(t, err.Error(), "step 1 (notch)")
}

func TestRunHonorsCancellation(t *testing.T) {
	p := New(nil)
	require.NoError(t, p.AddStep("median", nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Run(ctx, gradient(8, 8))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRejectsEmptyInput(t *testing.T) {
	_, err := New(nil).Run(context.Background(), &core.Gray{})
	assert.ErrorIs(t, err, core.ErrEmptyImage)
}

func TestConstantEqualizationLogged(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	p := New(logger)
	require.NoError(t, p.AddStep("hist_equalize", nil))
	src := core.UniformGray(6, 6, 42)

	res, err := p.Run(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, res.Output.Equal(src))

	found := false
	for _, e := range hook.AllEntries() {
		if e.Message == "Constant input, equalization leaves it unchanged" {
			found = true
			assert.Equal(t, logrus.DebugLevel, e.Level)
			assert.Equal(t, "hist_equalize", e.Data["algorithm"])
		}
	}
	assert.True(t, found)
}

func TestLayerMode(t *testing.T) {
	p := New(nil)
	region := p.Regions().CreateRectangleSelection(image.Rect(0, 0, 4, 8))
	_, err := p.AddLayer("dim", "brightness", map[string]interface{}{"factor": 0.5}, region)
	require.NoError(t, err)

	src := core.UniformGray(8, 8, 200)

	res, err := p.Run(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, res.Output.Equal(src), "layers ignored in sequential mode")

	p.SetProcessingMode(ModeLayers)
	res, err = p.Run(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, uint8(100), res.Output.At(1, 1))
	assert.Equal(t, uint8(200), res.Output.At(6, 1))

	_, err = p.AddLayer("bad", "gamma", map[string]interface{}{"gamma": -1.0}, "")
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestClearAll(t *testing.T) {
	p := New(nil)
	require.NoError(t, p.AddStep("median", nil))
	_, err := p.AddLayer("m", "median", nil, "")
	require.NoError(t, err)

	p.ClearAll()
	assert.Empty(t, p.GetSteps())
	assert.Equal(t, 0, p.Layers().Len())
}

func TestDebuggerTracksRuns(t *testing.T) {
	p := New(nil)
	require.NoError(t, p.AddStep("median", nil))
	assert.Error(t, p.AddStep("median", map[string]interface{}{"kernel_size": 2}))
	_, err := p.Run(context.Background(), gradient(8, 8))
	require.NoError(t, err)

	stats := p.Debugger().GetStats()
	assert.Equal(t, "sequential", stats["current_mode"])
	assert.Contains(t, stats, "avg_processing_time")
	assert.Contains(t, stats, "avg_step_time")
	assert.Less(t, stats["success_rate"].(float64), 1.0)

	var buf bytes.Buffer
	p.Debugger().WriteStatus(&buf)
	assert.Contains(t, buf.String(), "Total Operations: 4")

	p.Debugger().SetEnabled(false)
	assert.Nil(t, p.Debugger().GetStats())
}

func TestAppendBounded(t *testing.T) {
	var s []int
	for i := 0; i < maxHistory+10; i++ {
		s = appendBounded(s, i)
	}
	assert.Len(t, s, maxHistory)
	assert.Equal(t, 10, s[0])
}
