// ROI (Region of Interest) selection and management
package core

import (
	"fmt"
	"image"
	"sync"
)

// SelectionType distinguishes rectangles from polygons.
type SelectionType int

const (
	SelectionNone SelectionType = iota
	SelectionRectangle
	SelectionFreehand
)

// Selection is a region of interest in pixel coordinates. Rectangle bounds
// are half-open like image.Rectangle.
type Selection struct {
	ID     string
	Type   SelectionType
	Points []image.Point
	Bounds image.Rectangle
	Active bool
}

func (s *Selection) clone() *Selection {
	c := *s
	c.Points = make([]image.Point, len(s.Points))
	copy(c.Points, s.Points)
	return &c
}

// Contains reports whether the pixel at p belongs to the selection.
func (s *Selection) Contains(p image.Point) bool {
	switch s.Type {
	case SelectionRectangle:
		return p.In(s.Bounds)
	case SelectionFreehand:
		return isPointInPolygon(p, s.Points)
	}
	return false
}

// RegionManager owns the selections a layer can be restricted to. It is
// safe for concurrent use.
type RegionManager struct {
	mu         sync.RWMutex
	selections map[string]*Selection
	active     string
	nextID     int
}

// NewRegionManager returns an empty manager.
func NewRegionManager() *RegionManager {
	return &RegionManager{
		selections: make(map[string]*Selection),
		nextID:     1,
	}
}

// CreateRectangleSelection creates a rectangular selection and makes it
// active.
func (rm *RegionManager) CreateRectangleSelection(rect image.Rectangle) string {
	rect = rect.Canon()
	return rm.add("rect", &Selection{
		Type:   SelectionRectangle,
		Points: []image.Point{rect.Min, rect.Max},
		Bounds: rect,
	})
}

// CreateFreehandSelection creates a polygon selection and makes it active.
// Fewer than three points yield an error.
func (rm *RegionManager) CreateFreehandSelection(points []image.Point) (string, error) {
	if len(points) < 3 {
		return "", fmt.Errorf("%w: polygon needs at least 3 points, got %d", ErrInvalidParameter, len(points))
	}
	sel := &Selection{
		Type:   SelectionFreehand,
		Points: make([]image.Point, len(points)),
		Bounds: calculateBounds(points),
	}
	copy(sel.Points, points)
	return rm.add("freehand", sel), nil
}

func (rm *RegionManager) add(prefix string, sel *Selection) string {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	sel.ID = fmt.Sprintf("%s_%d", prefix, rm.nextID)
	rm.nextID++
	for _, s := range rm.selections {
		s.Active = false
	}
	sel.Active = true
	rm.selections[sel.ID] = sel
	rm.active = sel.ID
	return sel.ID
}

// GetActiveSelection returns a copy of the active selection, or nil.
func (rm *RegionManager) GetActiveSelection() *Selection {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	if sel, ok := rm.selections[rm.active]; ok {
		return sel.clone()
	}
	return nil
}

// GetSelection returns a copy of the selection with the given id, or nil.
func (rm *RegionManager) GetSelection(id string) *Selection {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	if sel, ok := rm.selections[id]; ok {
		return sel.clone()
	}
	return nil
}

// SetActiveSelection marks id active and all others inactive. It returns
// false for an unknown id.
func (rm *RegionManager) SetActiveSelection(id string) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	selection, exists := rm.selections[id]
	if !exists {
		return false
	}
	for _, sel := range rm.selections {
		sel.Active = false
	}
	selection.Active = true
	rm.active = id
	return true
}

// RemoveSelection deletes id and clears it if it was active.
func (rm *RegionManager) RemoveSelection(id string) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if _, exists := rm.selections[id]; !exists {
		return false
	}
	delete(rm.selections, id)
	if rm.active == id {
		rm.active = ""
	}
	return true
}

// ClearAll drops every selection and the active id.
func (rm *RegionManager) ClearAll() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.selections = make(map[string]*Selection)
	rm.active = ""
}

// HasActiveSelection reports whether an active id is set.
func (rm *RegionManager) HasActiveSelection() bool {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.active != ""
}

// calculateBounds returns the box spanned by the extreme points.
func calculateBounds(points []image.Point) image.Rectangle {
	if len(points) == 0 {
		return image.Rectangle{}
	}

	minX, minY := points[0].X, points[0].Y
	maxX, maxY := points[0].X, points[0].Y
	for _, point := range points {
		minX = min(minX, point.X)
		maxX = max(maxX, point.X)
		minY = min(minY, point.Y)
		maxY = max(maxY, point.Y)
	}
	return image.Rect(minX, minY, maxX, maxY)
}

// isPointInPolygon uses the even-odd ray crossing rule.
func isPointInPolygon(point image.Point, polygon []image.Point) bool {
	if len(polygon) < 3 {
		return false
	}

	x, y := float64(point.X), float64(point.Y)
	inside := false

	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		xi, yi := float64(polygon[i].X), float64(polygon[i].Y)
		xj, yj := float64(polygon[j].X), float64(polygon[j].Y)

		if ((yi > y) != (yj > y)) && (x < (xj-xi)*(y-yi)/(yj-yi)+xi) {
			inside = !inside
		}
		j = i
	}
	return inside
}
