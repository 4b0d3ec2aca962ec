package algorithms

import (
	"math"

	"image-signal-processing/internal/core"
)

// hsiEpsilon avoids division by zero on achromatic and black pixels.
const hsiEpsilon = 1e-6

// RGBToHSI converts an RGB buffer into hue, saturation and intensity planes,
// each scaled to [0,255]. Hue spans [0,2pi) before scaling.
func RGBToHSI(src *core.Color) (h, s, i *core.Gray, err error) {
	if err := src.Validate(); err != nil {
		return nil, nil, nil, err
	}
	h = core.NewGray(src.Width, src.Height)
	s = core.NewGray(src.Width, src.Height)
	i = core.NewGray(src.Width, src.Height)

	for p := range h.Pix {
		r := float64(src.Pix[p*3]) / 255.0
		g := float64(src.Pix[p*3+1]) / 255.0
		b := float64(src.Pix[p*3+2]) / 255.0

		num := 0.5 * ((r - g) + (r - b))
		den := math.Sqrt((r-g)*(r-g)+(r-b)*(g-b)) + hsiEpsilon
		theta := math.Acos(max(-1, min(1, num/den)))
		hue := theta
		if b > g {
			hue = 2*math.Pi - theta
		}
		h.Pix[p] = core.ClampByte(hue / (2 * math.Pi) * 255)

		intensity := (r + g + b) / 3.0
		i.Pix[p] = core.ClampByte(intensity * 255)

		sat := 0.0
		if intensity > hsiEpsilon {
			sat = 1 - min(r, g, b)/(intensity+hsiEpsilon)
		}
		s.Pix[p] = core.ClampByte(sat * 255)
	}
	return h, s, i, nil
}

// RGBToYCrCb applies the BT.601 full-range transform. Chroma planes are offset
// by 128.
func RGBToYCrCb(src *core.Color) (y, cr, cb *core.Gray, err error) {
	if err := src.Validate(); err != nil {
		return nil, nil, nil, err
	}
	y = core.NewGray(src.Width, src.Height)
	cr = core.NewGray(src.Width, src.Height)
	cb = core.NewGray(src.Width, src.Height)

	for p := range y.Pix {
		r := float64(src.Pix[p*3])
		g := float64(src.Pix[p*3+1])
		b := float64(src.Pix[p*3+2])

		y.Pix[p] = core.ClampByte(0.299*r + 0.587*g + 0.114*b)
		cr.Pix[p] = core.ClampByte(128 + 0.5*r - 0.418688*g - 0.081312*b)
		cb.Pix[p] = core.ClampByte(128 - 0.168736*r - 0.331264*g + 0.5*b)
	}
	return y, cr, cb, nil
}

// ToGray reduces an RGB buffer to its BT.601 luma plane.
func ToGray(src *core.Color) (*core.Gray, error) {
	y, _, _, err := RGBToYCrCb(src)
	return y, err
}
