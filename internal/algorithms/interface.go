// Named algorithm registry with validated parameter maps
package algorithms

import (
	"errors"
	"fmt"
	"sort"

	"image-signal-processing/internal/core"
)

// ErrUnknownAlgorithm is returned for names missing from the registry.
var ErrUnknownAlgorithm = errors.New("algorithm not found")

// Algorithm defines the interface for single-channel image operations
type Algorithm interface {
	Apply(input *core.Gray, params map[string]interface{}) (*core.Gray, error)
	GetDefaultParams() map[string]interface{}
	GetName() string
	GetDescription() string
	Validate(params map[string]interface{}) error
	GetParameterInfo() []ParameterInfo
}

// ParameterInfo describes a parameter for configuration and validation
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "int", "float"
	Min         interface{} `json:"min,omitempty"`
	Max         interface{} `json:"max,omitempty"`
	Default     interface{} `json:"default"`
	Description string      `json:"description"`
	Optional    bool        `json:"optional,omitempty"` // no default is applied when absent
}

var algorithms = make(map[string]Algorithm)

func Register(name string, algorithm Algorithm) {
	algorithms[name] = algorithm
}

func Get(name string) (Algorithm, bool) {
	algorithm, exists := algorithms[name]
	return algorithm, exists
}

// Apply validates params and runs the named algorithm.
func Apply(name string, input *core.Gray, params map[string]interface{}) (*core.Gray, error) {
	algorithm, exists := algorithms[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}

	return algorithm.Apply(input, params)
}

func ValidateParameters(name string, params map[string]interface{}) error {
	algorithm, exists := algorithms[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}

	return algorithm.Validate(params)
}

func IsValidAlgorithm(name string) bool {
	_, exists := algorithms[name]
	return exists
}

// Names returns the registered algorithm names in sorted order.
func Names() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func GetAlgorithmsByCategory() map[string][]string {
	return map[string][]string{
		"Point": {
			"brightness",
			"contrast",
			"gamma",
			"hist_equalize",
			"bit_plane",
		},
		"Filters": {
			"gaussian",
			"mean",
			"median",
			"sobel_sharpen",
		},
		"Noise": {
			"gaussian_noise",
			"salt_pepper",
		},
		"Morphology": {
			"erosion",
			"dilation",
			"opening",
			"closing",
		},
		"Threshold": {
			"otsu",
			"niblack",
			"sauvola",
			"wolf_jolion",
			"nick",
			"twod_otsu",
		},
		"Frequency": {
			"notch",
		},
	}
}

func init() {
	// Point transforms
	Register("brightness", NewBrightnessAdjust())
	Register("contrast", NewContrastAdjust())
	Register("gamma", NewGammaCorrection())
	Register("hist_equalize", NewHistogramEqualization())
	Register("bit_plane", NewBitPlaneSlice())

	// Neighborhood filters
	Register("gaussian", NewGaussianFilter())
	Register("mean", NewMeanFilter())
	Register("median", NewMedianFilter())
	Register("sobel_sharpen", NewSobelSharpener())

	// Morphology
	Register("erosion", NewErosion())
	Register("dilation", NewDilation())
	Register("opening", NewOpening())
	Register("closing", NewClosing())

	// Binarization
	Register("otsu", NewMultiOtsu())
	Register("niblack", NewNiblack())
	Register("sauvola", NewSauvola())
	Register("wolf_jolion", NewWolfJolion())
	Register("nick", NewNICK())
	Register("twod_otsu", NewTwoDOtsu())

	// Degradation models
	Register("gaussian_noise", NewGaussianNoiseModel())
	Register("salt_pepper", NewSaltPepperModel())

	// Frequency domain
	Register("notch", NewNotchFilter())
}
