// Package io converts between OpenCV matrices handed in by the decoding
// layer and the in-memory buffers used by the processing packages.
package io

import (
	"fmt"

	"gocv.io/x/gocv"

	"image-signal-processing/internal/core"
)

// GrayFromMat copies a single-channel 8-bit matrix into a new buffer.
func GrayFromMat(mat gocv.Mat) (*core.Gray, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("%w: empty matrix", core.ErrEmptyImage)
	}
	if mat.Type() != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("%w: want CV_8UC1 matrix, got type %v", core.ErrInvalidParameter, mat.Type())
	}
	return core.GrayFromSlice(mat.Cols(), mat.Rows(), mat.ToBytes())
}

// ColorFromMat copies a 3-channel 8-bit matrix in OpenCV's BGR order into a
// new RGB buffer.
func ColorFromMat(mat gocv.Mat) (*core.Color, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("%w: empty matrix", core.ErrEmptyImage)
	}
	if mat.Type() != gocv.MatTypeCV8UC3 {
		return nil, fmt.Errorf("%w: want CV_8UC3 matrix, got type %v", core.ErrInvalidParameter, mat.Type())
	}
	if err := core.ValidateDims(mat.Cols(), mat.Rows()); err != nil {
		return nil, err
	}

	bgr := mat.ToBytes()
	out := core.NewColor(mat.Cols(), mat.Rows())
	if len(bgr) != len(out.Pix) {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d BGR matrix", core.ErrShapeMismatch, len(bgr), mat.Cols(), mat.Rows())
	}
	for i := 0; i < len(bgr); i += 3 {
		out.Pix[i] = bgr[i+2]
		out.Pix[i+1] = bgr[i+1]
		out.Pix[i+2] = bgr[i]
	}
	return out, nil
}

// GrayToMat returns a new CV_8UC1 matrix. The caller owns it and must Close
// it.
func GrayToMat(g *core.Gray) (gocv.Mat, error) {
	if err := g.Validate(); err != nil {
		return gocv.NewMat(), err
	}
	return gocv.NewMatFromBytes(g.Height, g.Width, gocv.MatTypeCV8UC1, g.Pix)
}

// ColorToMat returns a new CV_8UC3 matrix in BGR order. The caller owns it
// and must Close it.
func ColorToMat(c *core.Color) (gocv.Mat, error) {
	if err := c.Validate(); err != nil {
		return gocv.NewMat(), err
	}
	bgr := make([]byte, len(c.Pix))
	for i := 0; i < len(bgr); i += 3 {
		bgr[i] = c.Pix[i+2]
		bgr[i+1] = c.Pix[i+1]
		bgr[i+2] = c.Pix[i]
	}
	return gocv.NewMatFromBytes(c.Height, c.Width, gocv.MatTypeCV8UC3, bgr)
}

// GridToMat returns a new CV_64F matrix holding g. The caller owns it and
// must Close it.
func GridToMat(g *core.Grid) (gocv.Mat, error) {
	if err := g.Validate(); err != nil {
		return gocv.NewMat(), err
	}
	mat := gocv.NewMatWithSize(g.Height, g.Width, gocv.MatTypeCV64F)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			mat.SetDoubleAt(y, x, g.Data[y*g.Width+x])
		}
	}
	return mat, nil
}

// GridFromMat copies a single-channel CV_64F matrix into a new grid.
func GridFromMat(mat gocv.Mat) (*core.Grid, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("%w: empty matrix", core.ErrEmptyImage)
	}
	if mat.Type() != gocv.MatTypeCV64F {
		return nil, fmt.Errorf("%w: want CV_64F matrix, got type %v", core.ErrInvalidParameter, mat.Type())
	}
	g := core.NewGrid(mat.Cols(), mat.Rows())
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			g.Data[y*g.Width+x] = mat.GetDoubleAt(y, x)
		}
	}
	return g, nil
}
