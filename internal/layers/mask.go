package layers

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"image-signal-processing/internal/core"
	"image-signal-processing/internal/io"
)

// maskForSelection rasterizes sel into a width x height mask with 255
// inside and 0 outside. Polygon edges count as inside. Parts outside the
// image are dropped and a nil selection gives an empty mask.
func maskForSelection(sel *core.Selection, width, height int) (*core.Gray, error) {
	if err := core.ValidateDims(width, height); err != nil {
		return nil, err
	}
	mask := gocv.Zeros(height, width, gocv.MatTypeCV8UC1)
	defer mask.Close()
	if sel == nil {
		return io.GrayFromMat(mask)
	}

	switch sel.Type {
	case core.SelectionRectangle:
		rect := sel.Bounds.Intersect(image.Rect(0, 0, width, height))
		if !rect.Empty() {
			roi := mask.Region(rect)
			roi.SetTo(gocv.NewScalar(255, 255, 255, 255))
			roi.Close()
		}
	case core.SelectionFreehand:
		points := gocv.NewPointsVectorFromPoints([][]image.Point{sel.Points})
		defer points.Close()
		if err := gocv.FillPoly(&mask, points, color.RGBA{R: 255, G: 255, B: 255, A: 255}); err != nil {
			return nil, fmt.Errorf("selection %s: %w", sel.ID, err)
		}
	}
	return io.GrayFromMat(mask)
}
