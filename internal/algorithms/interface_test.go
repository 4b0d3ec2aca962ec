package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-signal-processing/internal/core"
)

func TestRegistryCoversCategories(t *testing.T) {
	for category, names := range GetAlgorithmsByCategory() {
		for _, name := range names {
			assert.True(t, IsValidAlgorithm(name), "%s/%s", category, name)
		}
	}
	assert.Len(t, Names(), 22)
}

func TestApplyUnknownAlgorithm(t *testing.T) {
	_, err := Apply("unsharp", core.NewGray(2, 2), nil)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
	assert.ErrorIs(t, ValidateParameters("unsharp", nil), ErrUnknownAlgorithm)
}

func TestDefaultParamsValidate(t *testing.T) {
	for _, name := range Names() {
		algorithm, ok := Get(name)
		require.True(t, ok)
		assert.NoError(t, algorithm.Validate(algorithm.GetDefaultParams()), name)
		assert.NotEmpty(t, algorithm.GetName())
		assert.NotEmpty(t, algorithm.GetDescription())
	}
}

func TestDefaultParamsApply(t *testing.T) {
	src := rampImage(32, 32)
	for _, name := range Names() {
		out, err := Apply(name, src, nil)
		require.NoError(t, err, name)
		assert.True(t, out.SameShape(src), name)
	}
}

func TestValidateParameters(t *testing.T) {
	tests := []struct {
		name      string
		algorithm string
		params    map[string]interface{}
		wantErr   bool
	}{
		{"median odd", "median", map[string]interface{}{"kernel_size": 5.0}, false},
		{"median even", "median", map[string]interface{}{"kernel_size": 4.0}, true},
		{"mean even", "mean", map[string]interface{}{"kernel_size": 2}, true},
		{"median fractional", "median", map[string]interface{}{"kernel_size": 3.5}, true},
		{"gamma zero", "gamma", map[string]interface{}{"gamma": 0.0}, true},
		{"sigma too small", "gaussian", map[string]interface{}{"sigma": 0.0}, true},
		{"amount above one", "salt_pepper", map[string]interface{}{"amount": 1.2}, true},
		{"negative std", "gaussian_noise", map[string]interface{}{"std": -1.0}, true},
		{"unknown parameter", "brightness", map[string]interface{}{"factr": 1.0}, true},
		{"non numeric", "brightness", map[string]interface{}{"factor": "bright"}, true},
		{"bit out of range", "bit_plane", map[string]interface{}{"bit": 8.0}, true},
		{"notch self overlap", "notch", map[string]interface{}{"radius": 10.0, "exclude_radius": 5.0}, true},
		{"notch ok", "notch", map[string]interface{}{"num_peaks": 2, "radius": 3, "exclude_radius": 6}, false},
		{"seeded noise", "salt_pepper", map[string]interface{}{"seed": 11.0}, false},
		{"erosion even", "erosion", map[string]interface{}{"kernel_size": 4}, true},
		{"opening iterations", "opening", map[string]interface{}{"iterations": 2}, true},
		{"otsu levels", "otsu", map[string]interface{}{"levels": 5}, true},
		{"sauvola even window", "sauvola", map[string]interface{}{"window_size": 16}, true},
		{"twod_otsu even cleanup", "twod_otsu", map[string]interface{}{"morph_kernel_size": 4}, true},
		{"twod_otsu epsilon", "twod_otsu", map[string]interface{}{"epsilon": 0.0}, true},
		{"niblack ok", "niblack", map[string]interface{}{"window_size": 7, "k": 0.1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParameters(tt.algorithm, tt.params)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidParameter)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyRejectsBeforeComputing(t *testing.T) {
	out, err := Apply("median", rampImage(4, 4), map[string]interface{}{"kernel_size": 2.0})
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
	assert.Nil(t, out)
}

func TestSeededNoiseIsReproducible(t *testing.T) {
	src := rampImage(16, 16)
	params := map[string]interface{}{"std": 20.0, "seed": 5.0}
	a, err := Apply("gaussian_noise", src, params)
	require.NoError(t, err)
	b, err := Apply("gaussian_noise", src, params)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestParameterInfoIsCopied(t *testing.T) {
	g := NewGaussianFilter()
	info := g.GetParameterInfo()
	info[0].Name = "changed"
	assert.Equal(t, "sigma", g.GetParameterInfo()[0].Name)
}
