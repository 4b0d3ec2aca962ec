// Point-transform algorithms exposed through the registry
package algorithms

import (
	"image-signal-processing/internal/core"
)

// BrightnessAdjust scales intensities by a constant factor
type BrightnessAdjust struct {
	descriptor
}

func NewBrightnessAdjust() *BrightnessAdjust {
	return &BrightnessAdjust{descriptor{
		name:        "Brightness",
		description: "Multiplies every intensity by a factor",
		params: []ParameterInfo{
			{Name: "factor", Type: "float", Min: -10.0, Max: 10.0, Default: 1.0, Description: "Scale factor; >1 brightens, <1 darkens"},
		},
	}}
}

func (b *BrightnessAdjust) Apply(input *core.Gray, params map[string]interface{}) (*core.Gray, error) {
	p, err := b.resolve(params)
	if err != nil {
		return nil, err
	}
	return Brightness(input, p["factor"])
}

// ContrastAdjust stretches or compresses intensities around a center level
type ContrastAdjust struct {
	descriptor
}

func NewContrastAdjust() *ContrastAdjust {
	return &ContrastAdjust{descriptor{
		name:        "Contrast",
		description: "Linear contrast change around a center level",
		params: []ParameterInfo{
			{Name: "alpha", Type: "float", Min: -10.0, Max: 10.0, Default: 1.0, Description: "Gain; <1 compresses, >1 expands"},
			{Name: "center", Type: "float", Min: 0.0, Max: 255.0, Default: 128.0, Description: "Level left unchanged"},
		},
	}}
}

func (c *ContrastAdjust) Apply(input *core.Gray, params map[string]interface{}) (*core.Gray, error) {
	p, err := c.resolve(params)
	if err != nil {
		return nil, err
	}
	return Contrast(input, p["alpha"], p["center"])
}

// GammaCorrection applies a power-law transform
type GammaCorrection struct {
	descriptor
}

func NewGammaCorrection() *GammaCorrection {
	return &GammaCorrection{descriptor{
		name:        "Gamma",
		description: "Power-law transform c * v^gamma on normalized intensities",
		params: []ParameterInfo{
			{Name: "c", Type: "float", Min: 0.0, Max: 10.0, Default: 1.0, Description: "Output gain"},
			{Name: "gamma", Type: "float", Min: 0.01, Max: 25.0, Default: 1.0, Description: "Exponent; must be positive"},
		},
	}}
}

func (g *GammaCorrection) Apply(input *core.Gray, params map[string]interface{}) (*core.Gray, error) {
	p, err := g.resolve(params)
	if err != nil {
		return nil, err
	}
	return Gamma(input, p["c"], p["gamma"])
}

// HistogramEqualization flattens the intensity distribution
type HistogramEqualization struct {
	descriptor
}

func NewHistogramEqualization() *HistogramEqualization {
	return &HistogramEqualization{descriptor{
		name:        "Histogram Equalization",
		description: "Remaps levels through the cumulative histogram",
	}}
}

func (h *HistogramEqualization) Apply(input *core.Gray, params map[string]interface{}) (*core.Gray, error) {
	if err := h.Validate(params); err != nil {
		return nil, err
	}
	return HistogramEqualize(input)
}

// BitPlaneSlice extracts one bit plane as a binary image
type BitPlaneSlice struct {
	descriptor
}

func NewBitPlaneSlice() *BitPlaneSlice {
	return &BitPlaneSlice{descriptor{
		name:        "Bit Plane",
		description: "Extracts a single bit of every sample as 0/255",
		params: []ParameterInfo{
			{Name: "bit", Type: "int", Min: 0.0, Max: 7.0, Default: 7.0, Description: "Bit index, 0 is least significant"},
		},
	}}
}

func (b *BitPlaneSlice) Apply(input *core.Gray, params map[string]interface{}) (*core.Gray, error) {
	p, err := b.resolve(params)
	if err != nil {
		return nil, err
	}
	return BitPlane(input, int(p["bit"]))
}
