package algorithms

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"image-signal-processing/internal/core"
)

func TestSaltPepperZeroAmountIsIdentity(t *testing.T) {
	src := rampImage(10, 10)
	out, err := SaltPepperNoise(src, 0.0, 0.5, NewSource(1))
	require.NoError(t, err)
	assert.True(t, out.Equal(src))
}

func TestSaltPepperOnlyWritesExtremes(t *testing.T) {
	src := core.UniformGray(50, 40, 128)
	out, err := SaltPepperNoise(src, 0.1, 0.3, NewSource(42))
	require.NoError(t, err)

	salt, pepper := 0, 0
	for _, v := range out.Pix {
		switch v {
		case 255:
			salt++
		case 0:
			pepper++
		default:
			assert.Equal(t, uint8(128), v)
		}
	}
	total := int(0.1 * float64(src.Len()))
	assert.LessOrEqual(t, salt+pepper, total, "duplicates may overlap")
	assert.Greater(t, salt, 0)
	assert.Greater(t, pepper, salt)
}

func TestSaltPepperDeterministicSeed(t *testing.T) {
	src := rampImage(20, 20)
	a, err := SaltPepperNoise(src, 0.2, 0.5, NewSource(9))
	require.NoError(t, err)
	b, err := SaltPepperNoise(src, 0.2, 0.5, NewSource(9))
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestSaltPepperRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name          string
		amount, ratio float64
	}{
		{"negative amount", -0.1, 0.5},
		{"amount above one", 1.5, 0.5},
		{"negative ratio", 0.1, -1},
		{"ratio above one", 0.1, 2},
		{"nan amount", math.NaN(), 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SaltPepperNoise(core.NewGray(4, 4), tt.amount, tt.ratio, nil)
			assert.ErrorIs(t, err, core.ErrInvalidParameter)
		})
	}
}

func TestGaussianNoiseStatistics(t *testing.T) {
	src := core.UniformGray(128, 128, 128)
	out, err := GaussianNoise(src, 0, 10, NewSource(3))
	require.NoError(t, err)

	diffs := make([]float64, out.Len())
	for i, v := range out.Pix {
		diffs[i] = float64(v) - 128
	}
	mean, std := stat.MeanStdDev(diffs, nil)
	// truncation toward zero biases the mean slightly downward
	assert.InDelta(t, -0.5, mean, 0.5)
	assert.InDelta(t, 10, std, 1)
}

func TestGaussianNoiseZeroStd(t *testing.T) {
	src := rampImage(8, 8)
	out, err := GaussianNoise(src, 0, 0, NewSource(1))
	require.NoError(t, err)
	assert.True(t, out.Equal(src))
}

func TestGaussianNoiseRejectsNegativeStd(t *testing.T) {
	_, err := GaussianNoise(core.NewGray(2, 2), 0, -1, nil)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
	_, err = GaussianNoise(core.NewGray(2, 2), math.Inf(-1), 1, nil)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}
