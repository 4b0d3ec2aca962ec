package algorithms

import (
	"fmt"

	"image-signal-processing/internal/core"
	"image-signal-processing/internal/spectral"
)

// NotchFilter removes periodic noise by masking spectral peak pairs
type NotchFilter struct {
	descriptor
}

func NewNotchFilter() *NotchFilter {
	return &NotchFilter{descriptor{
		name:        "Notch Filter",
		description: "Automatic periodic-noise suppression in the frequency domain",
		params: []ParameterInfo{
			{Name: "num_peaks", Type: "int", Min: 0.0, Max: 256.0, Default: 4.0, Description: "Number of conjugate peak pairs to suppress"},
			{Name: "radius", Type: "int", Min: 0.0, Max: 512.0, Default: 5.0, Description: "Radius of each suppressed disk"},
			{Name: "exclude_radius", Type: "int", Min: 0.0, Max: 4096.0, Default: 15.0, Description: "Radius of the protected disk around DC"},
		},
	}}
}

func (n *NotchFilter) Validate(params map[string]interface{}) error {
	if err := n.descriptor.Validate(params); err != nil {
		return err
	}
	p, err := n.resolve(params)
	if err != nil {
		return err
	}
	if p["exclude_radius"] < p["radius"] {
		return fmt.Errorf("%w: exclude_radius (%g) must be >= radius (%g)",
			core.ErrInvalidParameter, p["exclude_radius"], p["radius"])
	}
	return nil
}

func (n *NotchFilter) Apply(input *core.Gray, params map[string]interface{}) (*core.Gray, error) {
	if err := n.Validate(params); err != nil {
		return nil, err
	}
	p, err := n.resolve(params)
	if err != nil {
		return nil, err
	}
	out, _, err := spectral.NotchFilter(input, int(p["num_peaks"]), int(p["radius"]), int(p["exclude_radius"]))
	return out, err
}
