package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Grid is a real-valued row-major grid used for intermediate results such as
// gradient magnitudes, spectra and masks.
type Grid struct {
	Width  int
	Height int
	Data   []float64
}

// NewGrid allocates a zeroed grid.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Data:   make([]float64, width*height),
	}
}

// GridFromGray widens every sample of g to float64.
func GridFromGray(g *Gray) *Grid {
	out := NewGrid(g.Width, g.Height)
	for i, v := range g.Pix {
		out.Data[i] = float64(v)
	}
	return out
}

func (g *Grid) At(x, y int) float64 {
	return g.Data[y*g.Width+x]
}

func (g *Grid) Set(x, y int, v float64) {
	g.Data[y*g.Width+x] = v
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	out := NewGrid(g.Width, g.Height)
	copy(out.Data, g.Data)
	return out
}

// SameShape reports whether both grids have identical dimensions.
func (g *Grid) SameShape(o *Grid) bool {
	return o != nil && g.Width == o.Width && g.Height == o.Height
}

// Max returns the largest value, or 0 for an empty grid.
func (g *Grid) Max() float64 {
	if len(g.Data) == 0 {
		return 0
	}
	return floats.Max(g.Data)
}

// Validate checks grid dimensions and storage length.
func (g *Grid) Validate() error {
	if g == nil {
		return ErrEmptyImage
	}
	if err := ValidateDims(g.Width, g.Height); err != nil {
		return err
	}
	if len(g.Data) != g.Width*g.Height {
		return fmt.Errorf("%w: %d values for %dx%d grid", ErrShapeMismatch, len(g.Data), g.Width, g.Height)
	}
	return nil
}

// ToGray clamps every value into [0,255] and truncates to 8 bits.
func (g *Grid) ToGray() *Gray {
	out := NewGray(g.Width, g.Height)
	for i, v := range g.Data {
		out.Pix[i] = ClampByte(v)
	}
	return out
}

// ClampByte clamps v into [0,255] and truncates toward zero. NaN maps to 0.
func ClampByte(v float64) uint8 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// RoundByte clamps v into [0,255] and rounds to the nearest level.
func RoundByte(v float64) uint8 {
	return ClampByte(math.Round(v))
}
