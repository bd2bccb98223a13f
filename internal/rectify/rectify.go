// Package rectify maps the skewed quadrilateral between three resolved
// corners back onto an axis-aligned square bitmap.
package rectify

import (
	"math"

	"github.com/MeKo-Tech/qrloc/internal/bitmap"
	"github.com/MeKo-Tech/qrloc/internal/corners"
	"github.com/MeKo-Tech/qrloc/internal/geometry"
)

// detEps rejects degenerate edge geometry whose linear part cannot be
// inverted.
const detEps = 1e-9

// SideLength returns the output square side for a corner set: the longer
// of the code's top and left edges.
func SideLength(c corners.Set) float64 {
	top := geometry.Dist(c.TopLeft, c.TopRight)
	left := geometry.Dist(c.TopLeft, c.BotLeft)
	return math.Max(top, left)
}

// Affine is a 2D affine map q = M*p + T.
type Affine struct {
	M [2][2]float64
	T geometry.Point[float64]
}

// Apply maps the point p.
func (a Affine) Apply(p geometry.Point[float64]) geometry.Point[float64] {
	return geometry.Point[float64]{
		X: a.M[0][0]*p.X + a.M[0][1]*p.Y + a.T.X,
		Y: a.M[1][0]*p.X + a.M[1][1]*p.Y + a.T.Y,
	}
}

// Invert returns the inverse map, or false when the linear part is
// singular.
func (a Affine) Invert() (Affine, bool) {
	det := a.M[0][0]*a.M[1][1] - a.M[0][1]*a.M[1][0]
	if math.Abs(det) < detEps || math.IsNaN(det) {
		return Affine{}, false
	}
	inv := Affine{
		M: [2][2]float64{
			{a.M[1][1] / det, -a.M[0][1] / det},
			{-a.M[1][0] / det, a.M[0][0] / det},
		},
	}
	inv.T = geometry.Point[float64]{
		X: -(inv.M[0][0]*a.T.X + inv.M[0][1]*a.T.Y),
		Y: -(inv.M[1][0]*a.T.X + inv.M[1][1]*a.T.Y),
	}
	return inv, true
}

// NewTransform builds the affine map from image space to code space: the
// top-left corner goes to the origin and the two edges leaving it go to
// the axes, with edge length mapped to side. Returns false when the
// corners are degenerate (collinear or coincident).
func NewTransform(c corners.Set, side float64) (Affine, bool) {
	ex1 := c.TopRight.X - c.TopLeft.X
	ey1 := c.TopRight.Y - c.TopLeft.Y
	ex2 := c.BotLeft.X - c.TopLeft.X
	ey2 := c.BotLeft.Y - c.TopLeft.Y

	det := ex1*ey2 - ex2*ey1
	if math.Abs(det) < detEps || math.IsNaN(det) {
		return Affine{}, false
	}

	m := Affine{M: [2][2]float64{
		{side * ey2 / det, -side * ex2 / det},
		{-side * ey1 / det, side * ex1 / det},
	}}
	m.T = geometry.Point[float64]{
		X: -(m.M[0][0]*c.TopLeft.X + m.M[0][1]*c.TopLeft.Y),
		Y: -(m.M[1][0]*c.TopLeft.X + m.M[1][1]*c.TopLeft.Y),
	}
	return m, true
}

// Rectify resamples the corner-delimited region of src into a square
// bitmap of side max(top edge, left edge), rounded to integer. Sampling is
// nearest-neighbor; source coordinates outside the bitmap read as white.
// Returns false when the corner geometry is degenerate.
func Rectify(src *bitmap.Bitmap, c corners.Set) (*bitmap.Bitmap, bool) {
	side := SideLength(c)
	n := int(math.Round(side))
	if n <= 0 {
		return nil, false
	}

	fwd, ok := NewTransform(c, side)
	if !ok {
		return nil, false
	}
	inv, ok := fwd.Invert()
	if !ok {
		return nil, false
	}

	out := bitmap.New(n, n)
	for v := 0; v < n; v++ {
		for u := 0; u < n; u++ {
			p := inv.Apply(geometry.Point[float64]{X: float64(u), Y: float64(v)})
			px, inside := src.GetOK(int(p.X), int(p.Y))
			if inside && !px {
				out.Set(u, v, false)
			}
		}
	}
	return out, true
}
