package spectral

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"image-signal-processing/internal/core"
)

// Peak is a suppressed spectral component in centered coordinates.
type Peak struct {
	X, Y      int
	Magnitude float64
}

// NotchMask multiplies a centered spectrum: 1 passes a frequency, 0 removes it.
type NotchMask struct {
	Width  int
	Height int
	Data   []float64
	// Peaks lists the detected components in detection order. Only the
	// primary peak of each conjugate pair is recorded.
	Peaks []Peak
}

// At returns the mask value at column x, row y.
func (m *NotchMask) At(x, y int) float64 {
	return m.Data[y*m.Width+x]
}

// Image renders the mask as {0,255}.
func (m *NotchMask) Image() *core.Gray {
	out := core.NewGray(m.Width, m.Height)
	for i, v := range m.Data {
		out.Pix[i] = core.ClampByte(v * 255)
	}
	return out
}

// BuildNotchMask finds up to numPeaks of the strongest components outside a
// disk of excludeRadius around DC and carves a disk of radius around each
// peak and its point reflection (h-y, w-x). The search only stops early when
// the remaining working magnitude is entirely zero, so weak components are
// still masked when no strong periodic peak remains.
func BuildNotchMask(magnitude *core.Grid, numPeaks, radius, excludeRadius int) (*NotchMask, error) {
	if err := magnitude.Validate(); err != nil {
		return nil, err
	}
	if err := validateNotch(numPeaks, radius, excludeRadius); err != nil {
		return nil, err
	}

	w, h := magnitude.Width, magnitude.Height
	mask := &NotchMask{Width: w, Height: h, Data: make([]float64, w*h)}
	for i := range mask.Data {
		mask.Data[i] = 1
	}

	work := magnitude.Clone()
	carveDisk(work.Data, w, h, w/2, h/2, excludeRadius)

	for n := 0; n < numPeaks; n++ {
		idx := floats.MaxIdx(work.Data)
		if work.Data[idx] == 0 {
			break
		}
		y, x := idx/w, idx%w
		mask.Peaks = append(mask.Peaks, Peak{X: x, Y: y, Magnitude: work.Data[idx]})

		for _, p := range [2][2]int{{x, y}, {w - x, h - y}} {
			carveDisk(mask.Data, w, h, p[0], p[1], radius)
			carveDisk(work.Data, w, h, p[0], p[1], radius)
		}
	}
	return mask, nil
}

// NotchFilter removes periodic noise from src. It returns the filtered image
// and the mask that was applied.
func NotchFilter(src *core.Gray, numPeaks, radius, excludeRadius int) (*core.Gray, *NotchMask, error) {
	if err := src.Validate(); err != nil {
		return nil, nil, err
	}
	if err := validateNotch(numPeaks, radius, excludeRadius); err != nil {
		return nil, nil, err
	}
	s, err := Transform(src)
	if err != nil {
		return nil, nil, err
	}
	magnitude, err := s.Magnitude()
	if err != nil {
		return nil, nil, err
	}
	mask, err := BuildNotchMask(magnitude, numPeaks, radius, excludeRadius)
	if err != nil {
		return nil, nil, err
	}
	filtered, err := s.Filtered(mask)
	if err != nil {
		return nil, nil, err
	}
	out, err := filtered.Image()
	if err != nil {
		return nil, nil, err
	}
	return out, mask, nil
}

func validateNotch(numPeaks, radius, excludeRadius int) error {
	if numPeaks < 0 || radius < 0 || excludeRadius < 0 {
		return fmt.Errorf("%w: notch parameters must be non-negative (peaks=%d radius=%d exclude=%d)",
			core.ErrInvalidParameter, numPeaks, radius, excludeRadius)
	}
	return nil
}

// carveDisk zeroes every cell within r of (cx, cy). The center may lie
// outside the grid; only the overlapping cells are touched.
func carveDisk(data []float64, w, h, cx, cy, r int) {
	y0, y1 := max(cy-r, 0), min(cy+r, h-1)
	x0, x1 := max(cx-r, 0), min(cx+r, w-1)
	rr := r * r
	for y := y0; y <= y1; y++ {
		dy := y - cy
		for x := x0; x <= x1; x++ {
			dx := x - cx
			if dx*dx+dy*dy <= rr {
				data[y*w+x] = 0
			}
		}
	}
}
