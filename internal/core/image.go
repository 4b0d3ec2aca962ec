// Pixel buffers shared by every transform in the toolkit
package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter marks out-of-domain configuration rejected before any work starts.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrShapeMismatch marks grids whose dimensions disagree.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrEmptyImage marks nil or zero-sized buffers.
	ErrEmptyImage = errors.New("image is empty")
)

// MaxDimension bounds either side of a buffer to keep allocations sane.
const MaxDimension = 16384

// Gray is a single-channel 8-bit intensity grid stored row-major.
type Gray struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewGray allocates a zeroed single-channel buffer.
func NewGray(width, height int) *Gray {
	return &Gray{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// GrayFromSlice copies pix into a new buffer of the given shape.
func GrayFromSlice(width, height int, pix []uint8) (*Gray, error) {
	if err := ValidateDims(width, height); err != nil {
		return nil, err
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("%w: %d samples for %dx%d grid", ErrShapeMismatch, len(pix), width, height)
	}
	g := NewGray(width, height)
	copy(g.Pix, pix)
	return g, nil
}

// UniformGray returns a buffer with every sample set to v.
func UniformGray(width, height int, v uint8) *Gray {
	g := NewGray(width, height)
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

func (g *Gray) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

func (g *Gray) Set(x, y int, v uint8) {
	g.Pix[y*g.Width+x] = v
}

// Len returns the number of samples.
func (g *Gray) Len() int {
	return g.Width * g.Height
}

// Clone returns an independent copy.
func (g *Gray) Clone() *Gray {
	out := NewGray(g.Width, g.Height)
	copy(out.Pix, g.Pix)
	return out
}

// SameShape reports whether both buffers have identical dimensions.
func (g *Gray) SameShape(o *Gray) bool {
	return o != nil && g.Width == o.Width && g.Height == o.Height
}

// Equal reports whether both buffers hold identical samples.
func (g *Gray) Equal(o *Gray) bool {
	if !g.SameShape(o) {
		return false
	}
	for i, v := range g.Pix {
		if o.Pix[i] != v {
			return false
		}
	}
	return true
}

// Validate checks that the buffer is usable as transform input.
func (g *Gray) Validate() error {
	if g == nil {
		return ErrEmptyImage
	}
	if err := ValidateDims(g.Width, g.Height); err != nil {
		return err
	}
	if len(g.Pix) != g.Width*g.Height {
		return fmt.Errorf("%w: %d samples for %dx%d grid", ErrShapeMismatch, len(g.Pix), g.Width, g.Height)
	}
	return nil
}

// Color is a 3-channel 8-bit buffer with interleaved samples. Channel order is
// R,G,B on input; derived buffers may carry other triples (Y,Cr,Cb or H,S,I).
type Color struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewColor allocates a zeroed 3-channel buffer.
func NewColor(width, height int) *Color {
	return &Color{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

func (c *Color) At(x, y int) (uint8, uint8, uint8) {
	i := (y*c.Width + x) * 3
	return c.Pix[i], c.Pix[i+1], c.Pix[i+2]
}

func (c *Color) Set(x, y int, c0, c1, c2 uint8) {
	i := (y*c.Width + x) * 3
	c.Pix[i], c.Pix[i+1], c.Pix[i+2] = c0, c1, c2
}

// Clone returns an independent copy.
func (c *Color) Clone() *Color {
	out := NewColor(c.Width, c.Height)
	copy(out.Pix, c.Pix)
	return out
}

// Validate checks that the buffer is usable as transform input.
func (c *Color) Validate() error {
	if c == nil {
		return ErrEmptyImage
	}
	if err := ValidateDims(c.Width, c.Height); err != nil {
		return err
	}
	if len(c.Pix) != c.Width*c.Height*3 {
		return fmt.Errorf("%w: %d samples for %dx%dx3 grid", ErrShapeMismatch, len(c.Pix), c.Width, c.Height)
	}
	return nil
}

// Split separates the three channels into independent planes.
func (c *Color) Split() (*Gray, *Gray, *Gray) {
	p0 := NewGray(c.Width, c.Height)
	p1 := NewGray(c.Width, c.Height)
	p2 := NewGray(c.Width, c.Height)
	for i := range p0.Pix {
		p0.Pix[i] = c.Pix[i*3]
		p1.Pix[i] = c.Pix[i*3+1]
		p2.Pix[i] = c.Pix[i*3+2]
	}
	return p0, p1, p2
}

// MergeColor interleaves three planes. All planes must share one shape.
func MergeColor(p0, p1, p2 *Gray) (*Color, error) {
	for _, p := range []*Gray{p0, p1, p2} {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	if !p0.SameShape(p1) || !p0.SameShape(p2) {
		return nil, fmt.Errorf("%w: planes %dx%d, %dx%d, %dx%d", ErrShapeMismatch,
			p0.Width, p0.Height, p1.Width, p1.Height, p2.Width, p2.Height)
	}
	out := NewColor(p0.Width, p0.Height)
	for i := range p0.Pix {
		out.Pix[i*3] = p0.Pix[i]
		out.Pix[i*3+1] = p1.Pix[i]
		out.Pix[i*3+2] = p2.Pix[i]
	}
	return out, nil
}

// ValidateDims checks buffer dimensions for basic requirements.
func ValidateDims(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: invalid dimensions %dx%d", ErrEmptyImage, width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: image too large: %dx%d (max: %d)", ErrInvalidParameter, width, height, MaxDimension)
	}
	return nil
}
