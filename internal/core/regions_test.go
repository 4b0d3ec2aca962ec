package core

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionManagerActiveSelection(t *testing.T) {
	rm := NewRegionManager()
	assert.False(t, rm.HasActiveSelection())
	assert.Nil(t, rm.GetActiveSelection())

	first := rm.CreateRectangleSelection(image.Rect(4, 4, 0, 0))
	second := rm.CreateRectangleSelection(image.Rect(1, 1, 3, 3))
	assert.NotEqual(t, first, second)

	active := rm.GetActiveSelection()
	require.NotNil(t, active)
	assert.Equal(t, second, active.ID)
	assert.False(t, rm.GetSelection(first).Active)
	assert.Equal(t, image.Rect(0, 0, 4, 4), rm.GetSelection(first).Bounds, "canonicalized")

	require.True(t, rm.SetActiveSelection(first))
	assert.Equal(t, first, rm.GetActiveSelection().ID)
	assert.False(t, rm.SetActiveSelection("missing"))

	assert.True(t, rm.RemoveSelection(first))
	assert.False(t, rm.HasActiveSelection())
	assert.False(t, rm.RemoveSelection(first))

	rm.ClearAll()
	assert.Nil(t, rm.GetSelection(second))
}

func TestSelectionCopiesAreIndependent(t *testing.T) {
	rm := NewRegionManager()
	id, err := rm.CreateFreehandSelection([]image.Point{{0, 0}, {4, 0}, {0, 4}})
	require.NoError(t, err)

	sel := rm.GetSelection(id)
	sel.Points[0] = image.Pt(9, 9)
	assert.Equal(t, image.Pt(0, 0), rm.GetSelection(id).Points[0])
}

func TestFreehandNeedsThreePoints(t *testing.T) {
	_, err := NewRegionManager().CreateFreehandSelection([]image.Point{{0, 0}, {1, 1}})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
