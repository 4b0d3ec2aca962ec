// Morphological operations on a rectangular structuring element
package algorithms

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"image-signal-processing/internal/core"
	"image-signal-processing/internal/io"
)

// matOp is the shape shared by gocv's in-place morphology calls.
type matOp func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat) error

// Erode replaces every sample with the minimum of its size x size window,
// repeated iterations times. Samples outside the image are ignored.
func Erode(src *core.Gray, size, iterations int) (*core.Gray, error) {
	return morphology(src, size, iterations, gocv.Erode)
}

// Dilate replaces every sample with the maximum of its size x size window,
// repeated iterations times. Samples outside the image are ignored.
func Dilate(src *core.Gray, size, iterations int) (*core.Gray, error) {
	return morphology(src, size, iterations, gocv.Dilate)
}

// Open is erosion followed by dilation. It removes bright specks smaller
// than the window.
func Open(src *core.Gray, size int) (*core.Gray, error) {
	return morphology(src, size, 1, morphologyEx(gocv.MorphOpen))
}

// Close is dilation followed by erosion. It fills dark specks smaller than
// the window.
func Close(src *core.Gray, size int) (*core.Gray, error) {
	return morphology(src, size, 1, morphologyEx(gocv.MorphClose))
}

func morphologyEx(op gocv.MorphType) matOp {
	return func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat) error {
		return gocv.MorphologyEx(src, dst, op, kernel)
	}
}

func morphology(src *core.Gray, size, iterations int, op matOp) (*core.Gray, error) {
	if err := requireOddSize("morphology window", size); err != nil {
		return nil, err
	}
	if iterations < 1 {
		return nil, fmt.Errorf("%w: iterations must be >= 1, got %d", core.ErrInvalidParameter, iterations)
	}

	mat, err := io.GrayToMat(src)
	if err != nil {
		return nil, err
	}
	defer func() { mat.Close() }()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(size, size))
	defer kernel.Close()

	for i := 0; i < iterations; i++ {
		dst := gocv.NewMat()
		if err := op(mat, &dst, kernel); err != nil {
			dst.Close()
			return nil, fmt.Errorf("morphology: %w", err)
		}
		mat.Close()
		mat = dst
	}
	return io.GrayFromMat(mat)
}

func morphologyParams(op string) []ParameterInfo {
	return []ParameterInfo{
		{Name: "kernel_size", Type: "int", Min: 1.0, Max: 15.0, Default: 3.0, Description: "Size of the square structuring element"},
		{Name: "iterations", Type: "int", Min: 1.0, Max: 10.0, Default: 1.0, Description: "Number of " + op + " iterations"},
	}
}

// Erosion implements morphological erosion
type Erosion struct {
	descriptor
}

// NewErosion creates a new erosion algorithm
func NewErosion() *Erosion {
	return &Erosion{descriptor{
		name:        "Erosion",
		description: "Morphological erosion to remove small bright noise",
		params:      morphologyParams("erosion"),
	}}
}

func (e *Erosion) Validate(params map[string]interface{}) error {
	if err := e.descriptor.Validate(params); err != nil {
		return err
	}
	return validateWindow(params)
}

func (e *Erosion) Apply(input *core.Gray, params map[string]interface{}) (*core.Gray, error) {
	if err := e.Validate(params); err != nil {
		return nil, err
	}
	p, err := e.resolve(params)
	if err != nil {
		return nil, err
	}
	return Erode(input, int(p["kernel_size"]), int(p["iterations"]))
}

// Dilation implements morphological dilation
type Dilation struct {
	descriptor
}

// NewDilation creates a new dilation algorithm
func NewDilation() *Dilation {
	return &Dilation{descriptor{
		name:        "Dilation",
		description: "Morphological dilation to fill small dark gaps",
		params:      morphologyParams("dilation"),
	}}
}

func (d *Dilation) Validate(params map[string]interface{}) error {
	if err := d.descriptor.Validate(params); err != nil {
		return err
	}
	return validateWindow(params)
}

func (d *Dilation) Apply(input *core.Gray, params map[string]interface{}) (*core.Gray, error) {
	if err := d.Validate(params); err != nil {
		return nil, err
	}
	p, err := d.resolve(params)
	if err != nil {
		return nil, err
	}
	return Dilate(input, int(p["kernel_size"]), int(p["iterations"]))
}

// Opening implements morphological opening
type Opening struct {
	descriptor
}

// NewOpening creates a new opening algorithm
func NewOpening() *Opening {
	return &Opening{descriptor{
		name:        "Opening",
		description: "Erosion followed by dilation",
		params:      morphologyParams("opening")[:1],
	}}
}

func (o *Opening) Validate(params map[string]interface{}) error {
	if err := o.descriptor.Validate(params); err != nil {
		return err
	}
	return validateWindow(params)
}

func (o *Opening) Apply(input *core.Gray, params map[string]interface{}) (*core.Gray, error) {
	if err := o.Validate(params); err != nil {
		return nil, err
	}
	p, err := o.resolve(params)
	if err != nil {
		return nil, err
	}
	return Open(input, int(p["kernel_size"]))
}

// Closing implements morphological closing
type Closing struct {
	descriptor
}

// NewClosing creates a new closing algorithm
func NewClosing() *Closing {
	return &Closing{descriptor{
		name:        "Closing",
		description: "Dilation followed by erosion",
		params:      morphologyParams("closing")[:1],
	}}
}

func (c *Closing) Validate(params map[string]interface{}) error {
	if err := c.descriptor.Validate(params); err != nil {
		return err
	}
	return validateWindow(params)
}

func (c *Closing) Apply(input *core.Gray, params map[string]interface{}) (*core.Gray, error) {
	if err := c.Validate(params); err != nil {
		return nil, err
	}
	p, err := c.resolve(params)
	if err != nil {
		return nil, err
	}
	return Close(input, int(p["kernel_size"]))
}
