package algorithms

import (
	"fmt"
	"math"

	"image-signal-processing/internal/core"
)

// descriptor carries the metadata shared by every registered algorithm and
// implements the generic parts of the Algorithm interface.
type descriptor struct {
	name        string
	description string
	params      []ParameterInfo
}

func (d descriptor) GetName() string {
	return d.name
}

func (d descriptor) GetDescription() string {
	return d.description
}

func (d descriptor) GetParameterInfo() []ParameterInfo {
	out := make([]ParameterInfo, len(d.params))
	copy(out, d.params)
	return out
}

func (d descriptor) GetDefaultParams() map[string]interface{} {
	defaults := make(map[string]interface{}, len(d.params))
	for _, p := range d.params {
		if !p.Optional {
			defaults[p.Name] = p.Default
		}
	}
	return defaults
}

// Validate checks types and ranges of every supplied parameter. Unknown names
// are rejected so configuration typos surface before dispatch.
func (d descriptor) Validate(params map[string]interface{}) error {
	for name, val := range params {
		info, ok := d.lookup(name)
		if !ok {
			return fmt.Errorf("%w: %s does not accept parameter %q", core.ErrInvalidParameter, d.name, name)
		}
		v, ok := toFloat(val)
		if !ok {
			return fmt.Errorf("%w: %s must be numeric, got %T", core.ErrInvalidParameter, name, val)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be finite", core.ErrInvalidParameter, name)
		}
		if info.Type == "int" && v != math.Trunc(v) {
			return fmt.Errorf("%w: %s must be an integer, got %g", core.ErrInvalidParameter, name, v)
		}
		if lo, ok := toFloat(info.Min); ok && v < lo {
			return fmt.Errorf("%w: %s must be >= %g, got %g", core.ErrInvalidParameter, name, lo, v)
		}
		if hi, ok := toFloat(info.Max); ok && v > hi {
			return fmt.Errorf("%w: %s must be <= %g, got %g", core.ErrInvalidParameter, name, hi, v)
		}
	}
	return nil
}

// resolve validates params and overlays them on the defaults.
func (d descriptor) resolve(params map[string]interface{}) (map[string]float64, error) {
	if err := d.Validate(params); err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(d.params))
	for _, p := range d.params {
		if v, ok := toFloat(p.Default); ok && !p.Optional {
			out[p.Name] = v
		}
	}
	for name, val := range params {
		v, _ := toFloat(val)
		out[name] = v
	}
	return out, nil
}

func (d descriptor) lookup(name string) (ParameterInfo, bool) {
	for _, p := range d.params {
		if p.Name == name {
			return p, true
		}
	}
	return ParameterInfo{}, false
}

func toFloat(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}
