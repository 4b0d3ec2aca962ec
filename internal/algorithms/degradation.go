package algorithms

import (
	"math/rand/v2"

	"image-signal-processing/internal/core"
)

var seedParam = ParameterInfo{
	Name:        "seed",
	Type:        "int",
	Min:         0.0,
	Max:         float64(1 << 53),
	Description: "Random seed; omit for a fresh random stream",
	Optional:    true,
}

// GaussianNoiseModel adds independent normal noise
type GaussianNoiseModel struct {
	descriptor
}

func NewGaussianNoiseModel() *GaussianNoiseModel {
	return &GaussianNoiseModel{descriptor{
		name:        "Gaussian Noise",
		description: "Additive i.i.d. normal noise per pixel",
		params: []ParameterInfo{
			{Name: "mean", Type: "float", Min: -255.0, Max: 255.0, Default: 0.0, Description: "Noise mean"},
			{Name: "std", Type: "float", Min: 0.0, Max: 255.0, Default: 15.0, Description: "Noise standard deviation"},
			seedParam,
		},
	}}
}

func (g *GaussianNoiseModel) Apply(input *core.Gray, params map[string]interface{}) (*core.Gray, error) {
	p, err := g.resolve(params)
	if err != nil {
		return nil, err
	}
	return GaussianNoise(input, p["mean"], p["std"], seededSource(p))
}

// SaltPepperModel injects impulse noise
type SaltPepperModel struct {
	descriptor
}

func NewSaltPepperModel() *SaltPepperModel {
	return &SaltPepperModel{descriptor{
		name:        "Salt and Pepper Noise",
		description: "Sets a random fraction of pixels to 0 or 255",
		params: []ParameterInfo{
			{Name: "amount", Type: "float", Min: 0.0, Max: 1.0, Default: 0.02, Description: "Fraction of pixels drawn"},
			{Name: "ratio", Type: "float", Min: 0.0, Max: 1.0, Default: 0.5, Description: "Fraction of drawn pixels set to 255"},
			seedParam,
		},
	}}
}

func (s *SaltPepperModel) Apply(input *core.Gray, params map[string]interface{}) (*core.Gray, error) {
	p, err := s.resolve(params)
	if err != nil {
		return nil, err
	}
	return SaltPepperNoise(input, p["amount"], p["ratio"], seededSource(p))
}

func seededSource(p map[string]float64) rand.Source {
	if seed, ok := p["seed"]; ok {
		return NewSource(uint64(seed))
	}
	return nil
}
