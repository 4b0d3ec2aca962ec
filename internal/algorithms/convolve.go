// Neighborhood filters built on 2-D correlation with reflected borders
package algorithms

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"image-signal-processing/internal/core"
)

// minParallelRows keeps small images on a single goroutine.
const minParallelRows = 64

// gradientEpsilon guards the magnitude normalization on flat images.
const gradientEpsilon = 1e-6

// Convolve correlates src with k (no kernel flip) after reflect-padding by the
// kernel radius, clamping each result into [0,255].
func Convolve(src *core.Gray, k *Kernel) (*core.Gray, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if k == nil {
		return nil, fmt.Errorf("%w: nil kernel", core.ErrInvalidParameter)
	}

	r := k.Radius()
	padded := reflectPad(src, r)
	out := core.NewGray(src.Width, src.Height)
	size := k.size

	forEachRowBand(src.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < src.Width; x++ {
				sum := 0.0
				for ky := 0; ky < size; ky++ {
					row := padded.Pix[(y+ky)*padded.Width+x:]
					weights := k.weights[ky*size : (ky+1)*size]
					for kx, w := range weights {
						sum += w * float64(row[kx])
					}
				}
				out.Pix[y*src.Width+x] = core.ClampByte(sum)
			}
		}
	})
	return out, nil
}

// ConvolveGrid correlates a real-valued grid with k using the same reflected
// borders as Convolve but without clamping or quantization.
func ConvolveGrid(src *core.Grid, k *Kernel) (*core.Grid, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if k == nil {
		return nil, fmt.Errorf("%w: nil kernel", core.ErrInvalidParameter)
	}

	r := k.Radius()
	cols := make([]int, src.Width+2*r)
	for x := range cols {
		cols[x] = reflectIndex(x-r, src.Width)
	}
	rows := make([]int, src.Height+2*r)
	for y := range rows {
		rows[y] = reflectIndex(y-r, src.Height)
	}

	out := core.NewGrid(src.Width, src.Height)
	forEachRowBand(src.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < src.Width; x++ {
				sum := 0.0
				for ky := 0; ky < k.size; ky++ {
					row := src.Data[rows[y+ky]*src.Width:]
					for kx := 0; kx < k.size; kx++ {
						sum += k.weights[ky*k.size+kx] * row[cols[x+kx]]
					}
				}
				out.Data[y*src.Width+x] = sum
			}
		}
	})
	return out, nil
}

// GaussianBlur convolves src with GaussianKernel(sigma).
func GaussianBlur(src *core.Gray, sigma float64) (*core.Gray, error) {
	k, err := GaussianKernel(sigma)
	if err != nil {
		return nil, err
	}
	return Convolve(src, k)
}

// MeanFilter convolves src with a size x size box kernel.
func MeanFilter(src *core.Gray, size int) (*core.Gray, error) {
	k, err := BoxKernel(size)
	if err != nil {
		return nil, err
	}
	return Convolve(src, k)
}

// GradientMagnitude returns hypot(gx, gy) of the clamped Sobel responses.
func GradientMagnitude(src *core.Gray) (*core.Grid, error) {
	gx, err := Convolve(src, SobelX())
	if err != nil {
		return nil, err
	}
	gy, err := Convolve(src, SobelY())
	if err != nil {
		return nil, err
	}
	mag := core.NewGrid(src.Width, src.Height)
	for i := range mag.Data {
		mag.Data[i] = math.Hypot(float64(gx.Pix[i]), float64(gy.Pix[i]))
	}
	return mag, nil
}

// SobelSharpen adds alpha times the max-normalized Sobel gradient magnitude
// back onto src. alpha == 0 returns an identical image.
func SobelSharpen(src *core.Gray, alpha float64) (*core.Gray, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := requireFinite("alpha", alpha); err != nil {
		return nil, err
	}
	mag, err := GradientMagnitude(src)
	if err != nil {
		return nil, err
	}

	scale := 255.0 / (mag.Max() + gradientEpsilon)
	out := core.NewGray(src.Width, src.Height)
	for i, v := range src.Pix {
		out.Pix[i] = core.ClampByte(float64(v) + alpha*mag.Data[i]*scale)
	}
	return out, nil
}

// reflectPad mirrors src by r samples on every side, excluding the edge
// sample itself (d c b | a b c d | c b a).
func reflectPad(src *core.Gray, r int) *core.Gray {
	if r == 0 {
		return src.Clone()
	}
	w := src.Width + 2*r
	h := src.Height + 2*r
	out := core.NewGray(w, h)

	cols := make([]int, w)
	for x := range cols {
		cols[x] = reflectIndex(x-r, src.Width)
	}
	for y := 0; y < h; y++ {
		srcRow := src.Pix[reflectIndex(y-r, src.Height)*src.Width:]
		dstRow := out.Pix[y*w : (y+1)*w]
		for x, sx := range cols {
			dstRow[x] = srcRow[sx]
		}
	}
	return out
}

// reflectIndex folds i into [0,n) by repeated mirroring about the first and
// last samples.
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}

// forEachRowBand splits [0,height) into contiguous bands and runs fn on each.
// Every band writes disjoint output rows, so the only synchronization is the
// final wait.
func forEachRowBand(height int, fn func(y0, y1 int)) {
	workers := runtime.GOMAXPROCS(0)
	if workers < 2 || height < minParallelRows {
		fn(0, height)
		return
	}
	band := (height + workers - 1) / workers

	var g errgroup.Group
	for y0 := 0; y0 < height; y0 += band {
		y1 := min(y0+band, height)
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	_ = g.Wait()
}
