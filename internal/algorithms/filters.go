// Filter algorithms for noise reduction and enhancement
package algorithms

import (
	"image-signal-processing/internal/core"
)

// GaussianFilter implements Gaussian blur with reflected borders
type GaussianFilter struct {
	descriptor
}

// NewGaussianFilter creates a new Gaussian filter algorithm
func NewGaussianFilter() *GaussianFilter {
	return &GaussianFilter{descriptor{
		name:        "Gaussian Filter",
		description: "Gaussian blur for general noise reduction",
		params: []ParameterInfo{
			{
				Name:        "sigma",
				Type:        "float",
				Min:         0.1,
				Max:         40.0,
				Default:     1.0,
				Description: "Standard deviation; kernel side is the smallest odd integer >= 6*sigma+1",
			},
		},
	}}
}

func (g *GaussianFilter) Apply(input *core.Gray, params map[string]interface{}) (*core.Gray, error) {
	p, err := g.resolve(params)
	if err != nil {
		return nil, err
	}
	return GaussianBlur(input, p["sigma"])
}

// MedianRankFilter implements the median rank filter
type MedianRankFilter struct {
	descriptor
}

// NewMedianFilter creates a new median filter algorithm
func NewMedianFilter() *MedianRankFilter {
	return &MedianRankFilter{descriptor{
		name:        "Median Filter",
		description: "Median filter to remove salt-and-pepper noise",
		params:      []ParameterInfo{windowParam(3)},
	}}
}

func (m *MedianRankFilter) Validate(params map[string]interface{}) error {
	if err := m.descriptor.Validate(params); err != nil {
		return err
	}
	return validateWindow(params)
}

func (m *MedianRankFilter) Apply(input *core.Gray, params map[string]interface{}) (*core.Gray, error) {
	if err := m.Validate(params); err != nil {
		return nil, err
	}
	p, err := m.resolve(params)
	if err != nil {
		return nil, err
	}
	return MedianFilter(input, int(p["kernel_size"]))
}

// BoxFilter implements mean filtering with a uniform kernel
type BoxFilter struct {
	descriptor
}

// NewMeanFilter creates a new mean filter algorithm
func NewMeanFilter() *BoxFilter {
	return &BoxFilter{descriptor{
		name:        "Mean Filter",
		description: "Box-kernel averaging; linear, unlike the median filter",
		params:      []ParameterInfo{windowParam(3)},
	}}
}

func (b *BoxFilter) Validate(params map[string]interface{}) error {
	if err := b.descriptor.Validate(params); err != nil {
		return err
	}
	return validateWindow(params)
}

func (b *BoxFilter) Apply(input *core.Gray, params map[string]interface{}) (*core.Gray, error) {
	if err := b.Validate(params); err != nil {
		return nil, err
	}
	p, err := b.resolve(params)
	if err != nil {
		return nil, err
	}
	return MeanFilter(input, int(p["kernel_size"]))
}

// SobelSharpener adds the normalized Sobel gradient magnitude to the image
type SobelSharpener struct {
	descriptor
}

// NewSobelSharpener creates a new Sobel sharpening algorithm
func NewSobelSharpener() *SobelSharpener {
	return &SobelSharpener{descriptor{
		name:        "Sobel Sharpen",
		description: "Edge enhancement by adding the Sobel gradient magnitude",
		params: []ParameterInfo{
			{
				Name:        "alpha",
				Type:        "float",
				Min:         0.0,
				Max:         10.0,
				Default:     0.5,
				Description: "Sharpening strength; 0 leaves the image unchanged",
			},
		},
	}}
}

func (s *SobelSharpener) Apply(input *core.Gray, params map[string]interface{}) (*core.Gray, error) {
	p, err := s.resolve(params)
	if err != nil {
		return nil, err
	}
	return SobelSharpen(input, p["alpha"])
}

func windowParam(def int) ParameterInfo {
	return ParameterInfo{
		Name:        "kernel_size",
		Type:        "int",
		Min:         1.0,
		Max:         float64(MaxKernelSize),
		Default:     float64(def),
		Description: "Side of the square window (must be odd)",
	}
}

func validateWindow(params map[string]interface{}) error {
	if v, ok := toFloat(params["kernel_size"]); ok {
		return requireOddSize("kernel_size", int(v))
	}
	return nil
}
