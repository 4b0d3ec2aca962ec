package spectral

import (
	"fmt"
	"math"
	"math/cmplx"

	"image-signal-processing/internal/core"
)

// Spectrum is the 2-D DFT of an image with the zero frequency shifted to
// (Height/2, Width/2).
type Spectrum struct {
	Width  int
	Height int
	Data   []complex128
}

// Transform computes the centered spectrum of a single-channel buffer.
func Transform(src *core.Gray) (*Spectrum, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	data := make([]complex128, src.Len())
	for i, v := range src.Pix {
		data[i] = complex(float64(v), 0)
	}
	fft2(data, src.Width, src.Height)
	return &Spectrum{
		Width:  src.Width,
		Height: src.Height,
		Data:   shift(data, src.Width, src.Height),
	}, nil
}

// FromPolar rebuilds a centered spectrum as magnitude * exp(i*phase).
func FromPolar(magnitude, phase *core.Grid) (*Spectrum, error) {
	if err := magnitude.Validate(); err != nil {
		return nil, err
	}
	if err := phase.Validate(); err != nil {
		return nil, err
	}
	if !magnitude.SameShape(phase) {
		return nil, fmt.Errorf("%w: magnitude %dx%d, phase %dx%d", core.ErrShapeMismatch,
			magnitude.Width, magnitude.Height, phase.Width, phase.Height)
	}
	s := &Spectrum{
		Width:  magnitude.Width,
		Height: magnitude.Height,
		Data:   make([]complex128, len(magnitude.Data)),
	}
	for i, m := range magnitude.Data {
		s.Data[i] = cmplx.Rect(m, phase.Data[i])
	}
	return s, nil
}

// Validate checks that the dimensions are positive and match the data.
func (s *Spectrum) Validate() error {
	if s == nil {
		return core.ErrEmptyImage
	}
	if err := core.ValidateDims(s.Width, s.Height); err != nil {
		return err
	}
	if len(s.Data) != s.Width*s.Height {
		return fmt.Errorf("%w: %d coefficients for %dx%d spectrum", core.ErrShapeMismatch, len(s.Data), s.Width, s.Height)
	}
	return nil
}

// Magnitude returns |F| for every frequency.
func (s *Spectrum) Magnitude() (*core.Grid, error) {
	return s.grid(cmplx.Abs)
}

// Phase returns arg(F) in [-pi, pi] for every frequency.
func (s *Spectrum) Phase() (*core.Grid, error) {
	return s.grid(cmplx.Phase)
}

func (s *Spectrum) grid(f func(complex128) float64) (*core.Grid, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	g := core.NewGrid(s.Width, s.Height)
	for i, c := range s.Data {
		g.Data[i] = f(c)
	}
	return g, nil
}

// Filtered returns a copy of s with every coefficient scaled by the mask.
func (s *Spectrum) Filtered(mask *NotchMask) (*Spectrum, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if mask == nil || mask.Width != s.Width || mask.Height != s.Height {
		return nil, fmt.Errorf("%w: mask does not match %dx%d spectrum", core.ErrShapeMismatch, s.Width, s.Height)
	}
	out := &Spectrum{Width: s.Width, Height: s.Height, Data: make([]complex128, len(s.Data))}
	for i, c := range s.Data {
		out.Data[i] = c * complex(mask.Data[i], 0)
	}
	return out, nil
}

// Image inverse-shifts and inverse-transforms s, keeping the real part
// clamped and rounded to 8 bits.
func (s *Spectrum) Image() (*core.Gray, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	data := unshift(s.Data, s.Width, s.Height)
	ifft2(data, s.Width, s.Height)
	out := core.NewGray(s.Width, s.Height)
	for i, c := range data {
		out.Pix[i] = core.RoundByte(real(c))
	}
	return out, nil
}

// Decompose returns the raw magnitude and phase of the centered spectrum.
// Reconstruct(Decompose(src)) reproduces src.
func Decompose(src *core.Gray) (magnitude, phase *core.Grid, err error) {
	s, err := Transform(src)
	if err != nil {
		return nil, nil, err
	}
	if magnitude, err = s.Magnitude(); err != nil {
		return nil, nil, err
	}
	if phase, err = s.Phase(); err != nil {
		return nil, nil, err
	}
	return magnitude, phase, nil
}

// Reconstruct recombines magnitude and phase and returns the spatial image.
func Reconstruct(magnitude, phase *core.Grid) (*core.Gray, error) {
	s, err := FromPolar(magnitude, phase)
	if err != nil {
		return nil, err
	}
	return s.Image()
}

// DecomposeVisual returns display renditions of the spectrum: log(1+|F|)
// normalized by its maximum, and phase mapped linearly from [-pi,pi] to
// [0,255]. These are lossy and not meant for reconstruction.
func DecomposeVisual(src *core.Gray) (magnitude, phase *core.Gray, err error) {
	mag, ph, err := Decompose(src)
	if err != nil {
		return nil, nil, err
	}
	return LogMagnitude(mag), PhaseImage(ph), nil
}

// LogMagnitude maps a magnitude grid to log(1+m)/max*255.
func LogMagnitude(mag *core.Grid) *core.Gray {
	logMag := core.NewGrid(mag.Width, mag.Height)
	for i, m := range mag.Data {
		logMag.Data[i] = math.Log1p(m)
	}
	peak := logMag.Max()
	if peak == 0 {
		return core.NewGray(mag.Width, mag.Height)
	}
	for i := range logMag.Data {
		logMag.Data[i] = logMag.Data[i] / peak * 255
	}
	return logMag.ToGray()
}

// PhaseImage maps phase values from [-pi,pi] to [0,255].
func PhaseImage(phase *core.Grid) *core.Gray {
	out := core.NewGray(phase.Width, phase.Height)
	for i, p := range phase.Data {
		out.Pix[i] = core.ClampByte((p + math.Pi) / (2 * math.Pi) * 255)
	}
	return out
}
