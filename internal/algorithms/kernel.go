package algorithms

import (
	"fmt"
	"math"

	"image-signal-processing/internal/core"
)

// Kernel is an immutable odd-sized square grid of weights anchored at its
// center.
type Kernel struct {
	size    int
	weights []float64
}

// NewKernel copies weights (row-major, size*size values) into a kernel.
func NewKernel(size int, weights []float64) (*Kernel, error) {
	if err := requireOddSize("kernel size", size); err != nil {
		return nil, err
	}
	if len(weights) != size*size {
		return nil, fmt.Errorf("%w: %d weights for a %dx%d kernel", core.ErrShapeMismatch, len(weights), size, size)
	}
	w := make([]float64, len(weights))
	copy(w, weights)
	return &Kernel{size: size, weights: w}, nil
}

func mustKernel(size int, weights []float64) *Kernel {
	k, err := NewKernel(size, weights)
	if err != nil {
		panic(err)
	}
	return k
}

// Size returns the side length.
func (k *Kernel) Size() int {
	return k.size
}

// Radius returns the distance from the anchor to the border.
func (k *Kernel) Radius() int {
	return k.size / 2
}

// At returns the weight at column x, row y.
func (k *Kernel) At(x, y int) float64 {
	return k.weights[y*k.size+x]
}

// Weights returns a copy of the row-major weights.
func (k *Kernel) Weights() []float64 {
	w := make([]float64, len(k.weights))
	copy(w, k.weights)
	return w
}

// Sum returns the total of all weights.
func (k *Kernel) Sum() float64 {
	s := 0.0
	for _, w := range k.weights {
		s += w
	}
	return s
}

// GaussianKernelSize returns the smallest odd integer >= 6*sigma+1.
func GaussianKernelSize(sigma float64) int {
	size := int(math.Ceil(6*sigma + 1))
	if size%2 == 0 {
		size++
	}
	return size
}

// GaussianKernel builds a normalized isotropic Gaussian kernel.
func GaussianKernel(sigma float64) (*Kernel, error) {
	if err := requireFinite("sigma", sigma); err != nil {
		return nil, err
	}
	if sigma <= 0 {
		return nil, fmt.Errorf("%w: sigma must be positive, got %g", core.ErrInvalidParameter, sigma)
	}
	size := GaussianKernelSize(sigma)
	if err := requireOddSize("gaussian kernel size", size); err != nil {
		return nil, err
	}

	r := size / 2
	weights := make([]float64, size*size)
	twoSigmaSq := 2 * sigma * sigma
	if twoSigmaSq == 0 {
		// sigma underflowed; the limit is a delta
		weights[r*size+r] = 1
		return &Kernel{size: size, weights: weights}, nil
	}
	sum := 0.0
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			w := math.Exp(-float64(x*x+y*y) / twoSigmaSq)
			weights[(y+r)*size+(x+r)] = w
			sum += w
		}
	}
	for i := range weights {
		weights[i] /= sum
	}
	return &Kernel{size: size, weights: weights}, nil
}

// BoxKernel builds a uniform size x size averaging kernel.
func BoxKernel(size int) (*Kernel, error) {
	if err := requireOddSize("box size", size); err != nil {
		return nil, err
	}
	weights := make([]float64, size*size)
	w := 1.0 / float64(size*size)
	for i := range weights {
		weights[i] = w
	}
	return &Kernel{size: size, weights: weights}, nil
}

// SobelX returns the horizontal gradient operator.
func SobelX() *Kernel {
	return mustKernel(3, []float64{
		-1, 0, 1,
		-2, 0, 2,
		-1, 0, 1,
	})
}

// SobelY returns the vertical gradient operator.
func SobelY() *Kernel {
	return mustKernel(3, []float64{
		1, 2, 1,
		0, 0, 0,
		-1, -2, -1,
	})
}

// Laplacian returns the 4-neighbor second-derivative operator.
func Laplacian() *Kernel {
	return mustKernel(3, []float64{
		0, 1, 0,
		1, -4, 1,
		0, 1, 0,
	})
}
