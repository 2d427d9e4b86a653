package domain

// Point is a planar survey coordinate from a trace header, expressed in the
// file's coordinate unit after the SEGY scalar has been applied.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox is the minimal axis-aligned rectangle enclosing a set of points.
// Invariant: MinX <= MaxX and MinY <= MaxY by construction.
type BoundingBox struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`
}

// Area returns the rectangular-extent area implied by the box, in the square
// of the coordinate unit.
func (b BoundingBox) Area() float64 {
	return (b.MaxX - b.MinX) * (b.MaxY - b.MinY)
}

// Union returns the smallest box covering both b and other.
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	out := b
	if other.MinX < out.MinX {
		out.MinX = other.MinX
	}
	if other.MaxX > out.MaxX {
		out.MaxX = other.MaxX
	}
	if other.MinY < out.MinY {
		out.MinY = other.MinY
	}
	if other.MaxY > out.MaxY {
		out.MaxY = other.MaxY
	}
	return out
}

// Range is an inclusive integer range, used for inline/crossline numbering.
type Range struct {
	Min int32 `json:"min"`
	Max int32 `json:"max"`
}
