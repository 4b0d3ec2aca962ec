package algorithms

import (
	"slices"

	"image-signal-processing/internal/core"
)

// MedianFilter replaces every sample with the median of its size x size
// reflect-padded neighborhood. size must be odd; size 1 is the identity.
func MedianFilter(src *core.Gray, size int) (*core.Gray, error) {
	mid := size * size / 2
	return rankFilter(src, "median window", size, func(window []uint8) uint8 {
		slices.Sort(window)
		return window[mid]
	})
}

// rankFilter applies pick to every reflect-padded size x size window. pick may
// reorder the window in place.
func rankFilter(src *core.Gray, what string, size int, pick func(window []uint8) uint8) (*core.Gray, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := requireOddSize(what, size); err != nil {
		return nil, err
	}
	if size == 1 {
		return src.Clone(), nil
	}

	padded := reflectPad(src, size/2)
	out := core.NewGray(src.Width, src.Height)

	forEachRowBand(src.Height, func(y0, y1 int) {
		window := make([]uint8, size*size)
		for y := y0; y < y1; y++ {
			for x := 0; x < src.Width; x++ {
				for wy := 0; wy < size; wy++ {
					start := (y+wy)*padded.Width + x
					copy(window[wy*size:(wy+1)*size], padded.Pix[start:start+size])
				}
				out.Pix[y*src.Width+x] = pick(window)
			}
		}
	})
	return out, nil
}
