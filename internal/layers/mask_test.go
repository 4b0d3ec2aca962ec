package layers

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-signal-processing/internal/core"
)

func TestMaskForRectangle(t *testing.T) {
	rm := core.NewRegionManager()
	id := rm.CreateRectangleSelection(image.Rect(2, 1, 10, 3))

	mask, err := maskForSelection(rm.GetSelection(id), 5, 4)
	require.NoError(t, err)
	want := []uint8{
		0, 0, 0, 0, 0,
		0, 0, 255, 255, 255,
		0, 0, 255, 255, 255,
		0, 0, 0, 0, 0,
	}
	assert.Equal(t, want, mask.Pix)
}

func TestMaskForRectangleOutsideImage(t *testing.T) {
	rm := core.NewRegionManager()
	id := rm.CreateRectangleSelection(image.Rect(20, 20, 30, 30))

	mask, err := maskForSelection(rm.GetSelection(id), 5, 4)
	require.NoError(t, err)
	assert.True(t, mask.Equal(core.NewGray(5, 4)))
}

func TestMaskForPolygon(t *testing.T) {
	rm := core.NewRegionManager()
	id, err := rm.CreateFreehandSelection([]image.Point{{0, 0}, {8, 0}, {8, 8}, {0, 8}})
	require.NoError(t, err)

	mask, err := maskForSelection(rm.GetSelection(id), 12, 12)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), mask.At(4, 4))
	assert.Equal(t, uint8(255), mask.At(8, 8), "edges are inside")
	assert.Equal(t, uint8(0), mask.At(10, 10))
	assert.Equal(t, uint8(0), mask.At(9, 4))
}

func TestMaskForTriangleAgreesWithContains(t *testing.T) {
	rm := core.NewRegionManager()
	id, err := rm.CreateFreehandSelection([]image.Point{{1, 1}, {14, 2}, {4, 13}})
	require.NoError(t, err)
	sel := rm.GetSelection(id)

	mask, err := maskForSelection(sel, 16, 16)
	require.NoError(t, err)
	for _, p := range []image.Point{{5, 5}, {7, 4}, {4, 9}, {15, 15}, {0, 14}, {13, 10}} {
		want := uint8(0)
		if sel.Contains(p) {
			want = 255
		}
		assert.Equal(t, want, mask.At(p.X, p.Y), "point %v", p)
	}
}

func TestMaskForNilSelection(t *testing.T) {
	mask, err := maskForSelection(nil, 3, 3)
	require.NoError(t, err)
	assert.True(t, mask.Equal(core.NewGray(3, 3)))

	_, err = maskForSelection(nil, 0, 3)
	assert.ErrorIs(t, err, core.ErrEmptyImage)
}
