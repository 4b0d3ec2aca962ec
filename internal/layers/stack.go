// Layers package for region-based processing
package layers

import (
	"fmt"
	"sync"

	"image-signal-processing/internal/algorithms"
	"image-signal-processing/internal/core"
)

// Layer represents a processing layer with optional region mask
type Layer struct {
	ID         string
	Name       string
	Algorithm  string
	Parameters map[string]interface{}
	RegionID   string // Optional region selection ID
	Enabled    bool
	BlendMode  BlendMode
	Opacity    float64 // 0.0 to 1.0
}

// BlendMode defines how layers combine
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendOverlay
	BlendMultiply
	BlendScreen
)

func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "normal"
	case BlendOverlay:
		return "overlay"
	case BlendMultiply:
		return "multiply"
	case BlendScreen:
		return "screen"
	}
	return fmt.Sprintf("BlendMode(%d)", int(m))
}

// RegionSource resolves region ids into selections.
type RegionSource interface {
	GetSelection(id string) *core.Selection
}

// LayerStack manages multiple processing layers
type LayerStack struct {
	mu      sync.RWMutex
	layers  []*Layer
	regions RegionSource
	nextID  int
}

// NewLayerStack creates an empty stack. regions may be nil when no layer
// uses a region.
func NewLayerStack(regions RegionSource) *LayerStack {
	return &LayerStack{
		layers:  make([]*Layer, 0),
		regions: regions,
		nextID:  1,
	}
}

// AddLayer validates the algorithm parameters and appends a fully opaque
// normal layer.
func (ls *LayerStack) AddLayer(name, algorithm string, params map[string]interface{}, regionID string) (string, error) {
	if err := algorithms.ValidateParameters(algorithm, params); err != nil {
		return "", err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	id := fmt.Sprintf("layer_%d", ls.nextID)
	ls.nextID++

	ls.layers = append(ls.layers, &Layer{
		ID:         id,
		Name:       name,
		Algorithm:  algorithm,
		Parameters: params,
		RegionID:   regionID,
		Enabled:    true,
		BlendMode:  BlendNormal,
		Opacity:    1.0,
	})
	return id, nil
}

// SetBlend changes the blend mode and opacity of a layer.
func (ls *LayerStack) SetBlend(id string, mode BlendMode, opacity float64) error {
	if opacity < 0 || opacity > 1 {
		return fmt.Errorf("%w: opacity must be in [0,1], got %g", core.ErrInvalidParameter, opacity)
	}
	if mode < BlendNormal || mode > BlendScreen {
		return fmt.Errorf("%w: unknown blend mode %d", core.ErrInvalidParameter, int(mode))
	}
	return ls.update(id, func(l *Layer) {
		l.BlendMode = mode
		l.Opacity = opacity
	})
}

// SetEnabled toggles a layer.
func (ls *LayerStack) SetEnabled(id string, enabled bool) error {
	return ls.update(id, func(l *Layer) { l.Enabled = enabled })
}

func (ls *LayerStack) update(id string, fn func(*Layer)) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	for _, l := range ls.layers {
		if l.ID == id {
			fn(l)
			return nil
		}
	}
	return fmt.Errorf("%w: no layer %q", core.ErrInvalidParameter, id)
}

// GetLayers returns copies of all layers in stacking order.
func (ls *LayerStack) GetLayers() []Layer {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	result := make([]Layer, len(ls.layers))
	for i, l := range ls.layers {
		result[i] = *l
	}
	return result
}

// Len returns the number of layers.
func (ls *LayerStack) Len() int {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return len(ls.layers)
}

// ProcessLayers applies all enabled layers to input image. Each layer runs on
// the running composite and is blended back onto it.
func (ls *LayerStack) ProcessLayers(input *core.Gray) (*core.Gray, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	result := input.Clone()

	for _, layer := range ls.GetLayers() {
		if !layer.Enabled {
			continue
		}

		processed, err := algorithms.Apply(layer.Algorithm, result, layer.Parameters)
		if err != nil {
			return nil, fmt.Errorf("layer %s (%s): %w", layer.ID, layer.Algorithm, err)
		}

		mask, err := ls.mask(layer.RegionID, input.Width, input.Height)
		if err != nil {
			return nil, fmt.Errorf("layer %s (%s): %w", layer.ID, layer.Algorithm, err)
		}
		result = blendLayers(result, processed, layer.BlendMode, layer.Opacity, mask)
	}

	return result, nil
}

// mask returns nil for a whole-image layer.
func (ls *LayerStack) mask(regionID string, width, height int) (*core.Gray, error) {
	if regionID == "" {
		return nil, nil
	}
	if ls.regions == nil {
		return nil, fmt.Errorf("%w: region %q without a region source", core.ErrInvalidParameter, regionID)
	}
	sel := ls.regions.GetSelection(regionID)
	if sel == nil {
		return nil, fmt.Errorf("%w: unknown region %q", core.ErrInvalidParameter, regionID)
	}
	return maskForSelection(sel, width, height)
}

// blendLayers combines two images using blend mode and opacity. Pixels where
// mask is zero keep the base value.
func blendLayers(base, overlay *core.Gray, mode BlendMode, opacity float64, mask *core.Gray) *core.Gray {
	result := base.Clone()
	for i, b := range base.Pix {
		if mask != nil && mask.Pix[i] == 0 {
			continue
		}
		bf := float64(b) / 255
		blended := blendPixel(mode, bf, float64(overlay.Pix[i])/255)
		result.Pix[i] = core.RoundByte(((1-opacity)*bf + opacity*blended) * 255)
	}
	return result
}

// blendPixel works on values normalized to [0,1].
func blendPixel(mode BlendMode, base, top float64) float64 {
	switch mode {
	case BlendMultiply:
		return base * top
	case BlendScreen:
		return 1 - (1-base)*(1-top)
	case BlendOverlay:
		if base < 0.5 {
			return 2 * base * top
		}
		return 1 - 2*(1-base)*(1-top)
	}
	return top
}
