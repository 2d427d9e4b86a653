package geometry

import "math"

// Extent accumulates an axis-aligned bounding box over a stream of planar
// points in a single pass.
type Extent struct {
	minX, maxX float64
	minY, maxY float64
	seen       bool
}

// Add extends the extent to include the point (x, y).
func (e *Extent) Add(x, y float64) {
	if !e.seen {
		e.minX, e.maxX = x, x
		e.minY, e.maxY = y, y
		e.seen = true
		return
	}
	e.minX = math.Min(e.minX, x)
	e.maxX = math.Max(e.maxX, x)
	e.minY = math.Min(e.minY, y)
	e.maxY = math.Max(e.maxY, y)
}

// Empty reports whether no point has been added.
func (e *Extent) Empty() bool {
	return !e.seen
}

// Box returns the accumulated bounds. ok is false for an empty extent.
func (e *Extent) Box() (minX, maxX, minY, maxY float64, ok bool) {
	return e.minX, e.maxX, e.minY, e.maxY, e.seen
}

// Area returns the rectangular area of the extent, zero when empty.
func (e *Extent) Area() float64 {
	if !e.seen {
		return 0
	}
	return (e.maxX - e.minX) * (e.maxY - e.minY)
}

// SquareKilometers converts an area in square meters to km².
func SquareKilometers(areaM2 float64) float64 {
	return areaM2 / 1_000_000
}
