// Package spectral decomposes single-channel images into centered Fourier
// spectra, rebuilds them, and suppresses periodic noise with notch masks.
package spectral

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// fft2 computes the unnormalized forward 2-D DFT of a row-major w x h grid in
// place, as a row pass followed by a column pass.
func fft2(data []complex128, w, h int) {
	transform2(data, w, h, false)
}

// ifft2 computes the inverse 2-D DFT in place, including the 1/(w*h) scale.
func ifft2(data []complex128, w, h int) {
	transform2(data, w, h, true)
	scale := complex(1/float64(w*h), 0)
	for i := range data {
		data[i] *= scale
	}
}

func transform2(data []complex128, w, h int, inverse bool) {
	rowFFT := fourier.NewCmplxFFT(w)
	in := make([]complex128, w)
	out := make([]complex128, w)
	for y := 0; y < h; y++ {
		row := data[y*w : (y+1)*w]
		copy(in, row)
		run1(rowFFT, out, in, inverse)
		copy(row, out)
	}

	colFFT := fourier.NewCmplxFFT(h)
	in = make([]complex128, h)
	out = make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			in[y] = data[y*w+x]
		}
		run1(colFFT, out, in, inverse)
		for y := 0; y < h; y++ {
			data[y*w+x] = out[y]
		}
	}
}

// run1 applies one unnormalized 1-D transform from src into dst.
func run1(f *fourier.CmplxFFT, dst, src []complex128, inverse bool) {
	if inverse {
		f.Sequence(dst, src)
		return
	}
	f.Coefficients(dst, src)
}

// shift moves the zero-frequency term from index (0,0) to (h/2, w/2).
func shift(data []complex128, w, h int) []complex128 {
	out := make([]complex128, len(data))
	for y := 0; y < h; y++ {
		sy := (y + h/2) % h
		for x := 0; x < w; x++ {
			out[sy*w+(x+w/2)%w] = data[y*w+x]
		}
	}
	return out
}

// unshift is the exact inverse of shift for both even and odd sizes.
func unshift(data []complex128, w, h int) []complex128 {
	out := make([]complex128, len(data))
	for y := 0; y < h; y++ {
		sy := (y + h/2) % h
		for x := 0; x < w; x++ {
			out[y*w+x] = data[sy*w+(x+w/2)%w]
		}
	}
	return out
}
