package geometry

// Marker is the axis-aligned bounding box of one detected finder pattern.
//
// The box does not capture the tilt or skew of the pattern; at this stage
// the scanner has not identified those features. The only guarantee is that
// the pattern's four edges pass through the midpoints of the box's borders,
// e.g. (Min.X, Mid.Y) is a point on the pattern's left edge. Min is
// inclusive and Max is one past the last pattern pixel, so Mid is the exact
// discrete center.
type Marker[T Scalar] struct {
	Min Point[T]
	Mid Point[T]
	Max Point[T]
}

// NewMarker constructs a Marker from its coordinate extremes and midpoint.
func NewMarker[T Scalar](xMin, yMin, xMid, yMid, xMax, yMax T) Marker[T] {
	return Marker[T]{
		Min: Point[T]{X: xMin, Y: yMin},
		Mid: Point[T]{X: xMid, Y: yMid},
		Max: Point[T]{X: xMax, Y: yMax},
	}
}

// Up returns the midpoint of the box's top border.
func (m Marker[T]) Up() Point[T] { return Point[T]{X: m.Mid.X, Y: m.Min.Y} }

// Down returns the midpoint of the box's bottom border.
func (m Marker[T]) Down() Point[T] { return Point[T]{X: m.Mid.X, Y: m.Max.Y} }

// Left returns the midpoint of the box's left border.
func (m Marker[T]) Left() Point[T] { return Point[T]{X: m.Min.X, Y: m.Mid.Y} }

// Right returns the midpoint of the box's right border.
func (m Marker[T]) Right() Point[T] { return Point[T]{X: m.Max.X, Y: m.Mid.Y} }

// ToF64 converts all three points to float64 coordinates.
func (m Marker[T]) ToF64() Marker[float64] {
	return Marker[float64]{Min: m.Min.ToF64(), Mid: m.Mid.ToF64(), Max: m.Max.ToF64()}
}
