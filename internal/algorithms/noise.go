// Synthetic degradation generators used to build filter test inputs
package algorithms

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"image-signal-processing/internal/core"
)

// NewSource returns a deterministic random source for the given seed.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

func sourceOrRandom(src rand.Source) rand.Source {
	if src != nil {
		return src
	}
	return rand.NewPCG(rand.Uint64(), rand.Uint64())
}

// GaussianNoise adds independent N(mean, std) samples to every pixel and
// clamps the result. A nil source draws a fresh random seed.
func GaussianNoise(src *core.Gray, mean, std float64, rs rand.Source) (*core.Gray, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := requireFinite("mean", mean); err != nil {
		return nil, err
	}
	if err := requireFinite("std", std); err != nil {
		return nil, err
	}
	if std < 0 {
		return nil, fmt.Errorf("%w: std must be non-negative, got %g", core.ErrInvalidParameter, std)
	}

	dist := distuv.Normal{Mu: mean, Sigma: std, Src: sourceOrRandom(rs)}
	out := core.NewGray(src.Width, src.Height)
	for i, v := range src.Pix {
		out.Pix[i] = core.ClampByte(float64(v) + dist.Rand())
	}
	return out, nil
}

// SaltPepperNoise picks int(amount*N) coordinates uniformly with replacement;
// a ratio fraction of them become 255 and the rest 0. Pepper is written after
// salt, so a coordinate drawn by both ends up black.
func SaltPepperNoise(src *core.Gray, amount, ratio float64, rs rand.Source) (*core.Gray, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := requireUnit("amount", amount); err != nil {
		return nil, err
	}
	if err := requireUnit("ratio", ratio); err != nil {
		return nil, err
	}

	out := src.Clone()
	total := int(amount * float64(src.Len()))
	if total == 0 {
		return out, nil
	}
	numSalt := int(float64(total) * ratio)
	rng := rand.New(sourceOrRandom(rs))

	for i := 0; i < total; i++ {
		y := rng.IntN(src.Height)
		x := rng.IntN(src.Width)
		if i < numSalt {
			out.Set(x, y, 255)
		} else {
			out.Set(x, y, 0)
		}
	}
	return out, nil
}
