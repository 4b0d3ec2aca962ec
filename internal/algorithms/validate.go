package algorithms

import (
	"fmt"
	"math"

	"image-signal-processing/internal/core"
)

// MaxKernelSize bounds every square window (convolution, median, box).
const MaxKernelSize = 255

func requireFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be finite, got %g", core.ErrInvalidParameter, name, v)
	}
	return nil
}

func requireUnit(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: %s must be in [0,1], got %g", core.ErrInvalidParameter, name, v)
	}
	return nil
}

func requireOddSize(name string, k int) error {
	if k < 1 || k%2 == 0 {
		return fmt.Errorf("%w: %s must be an odd integer >= 1, got %d", core.ErrInvalidParameter, name, k)
	}
	if k > MaxKernelSize {
		return fmt.Errorf("%w: %s must not exceed %d, got %d", core.ErrInvalidParameter, name, MaxKernelSize, k)
	}
	return nil
}
