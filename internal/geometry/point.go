package geometry

import "math"

// Scalar constrains the coordinate types used along the scan pipeline:
// integer pixel coordinates while scanning, float64 once geometry takes over.
type Scalar interface {
	~int | ~int32 | ~int64 | ~float64
}

// Point represents a 2D coordinate.
type Point[T Scalar] struct {
	X T
	Y T
}

// Pt constructs a Point from its coordinates.
func Pt[T Scalar](x, y T) Point[T] {
	return Point[T]{X: x, Y: y}
}

// ToF64 converts a point to float64 coordinates.
func (p Point[T]) ToF64() Point[float64] {
	return Point[float64]{X: float64(p.X), Y: float64(p.Y)}
}

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Point[float64]) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Angle returns the angle of the vector from a to b, in radians in (-pi, pi].
func Angle(a, b Point[float64]) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point[T]) IsFinite() bool {
	x, y := float64(p.X), float64(p.Y)
	return !math.IsNaN(x) && !math.IsInf(x, 0) && !math.IsNaN(y) && !math.IsInf(y, 0)
}
