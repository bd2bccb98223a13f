// Package corners infers the orientation of a detected code from its three
// finder-pattern markers and computes the code's outer corner points.
package corners

import (
	"math"

	"github.com/MeKo-Tech/qrloc/internal/geometry"
)

// Set holds the three resolved outer corners of a code.
type Set struct {
	TopLeft  geometry.Point[float64] `json:"topLeft"`
	TopRight geometry.Point[float64] `json:"topRight"`
	BotLeft  geometry.Point[float64] `json:"botLeft"`
}

const (
	// slopeEps rejects intersections of near-parallel edge lines, which
	// happen when the markers are nearly collinear or the view is extremely
	// oblique.
	slopeEps = 1e-9
	// maxSlope caps edge slopes so vertically aligned markers (infinite
	// slope) still intersect cleanly instead of producing NaN corners.
	maxSlope = 1e12
)

// Resolve finds the outer corners of the code described by exactly three
// markers. The second return value is false when the marker count is not
// three or the geometry degenerates; both are routine outcomes (the code
// is not fully in view, or the viewing angle is hopeless), not errors.
//
// The marker whose midpoint subtends the largest inner arc between the
// other two is assumed to be the top-left one. This heuristic breaks down
// at very oblique viewing angles; confirming orientation against the
// pixels themselves would be more robust.
func Resolve[T geometry.Scalar](markers []geometry.Marker[T]) (Set, bool) {
	if len(markers) != 3 {
		return Set{}, false
	}

	t := collect3(func(i int) geometry.Marker[float64] { return markers[i].ToF64() })

	// Slopes from one marker midpoint to the next around the cycle.
	slopes := collect3(func(i int) float64 {
		m1, m2 := t[i].Mid, t[(i+1)%3].Mid
		return clampSlope((m2.Y - m1.Y) / (m2.X - m1.X))
	})

	// Slopes converted to directed angles; the horizontal direction
	// disambiguates the two ends of the line.
	angles := collect3(func(i int) float64 {
		quarter := math.Pi * 0.5
		if t[i].Mid.X > t[(i+1)%3].Mid.X {
			quarter = math.Pi * 1.5
		}
		return math.Atan(slopes[i]) + quarter
	})

	// Arc swept at each marker between the angle leaving it and the angle
	// arriving from the previous one.
	arcs := collect3(func(i int) float64 {
		a2 := math.Mod(angles[(i+2)%3]+math.Pi, 2*math.Pi)
		return a2 - angles[i]
	})

	// The marker with the largest inner arc sits at the top-left corner.
	tlIndex := max3(func(i int) float64 {
		arc := math.Abs(arcs[i])
		if arc > math.Pi {
			return 2*math.Pi - arc
		}
		return arc
	})
	topLeft := t[tlIndex]

	// The sign of the top-left arc tells the two remaining markers apart
	// and assigns the horizontal-ish and vertical-ish edge slopes.
	idx := func(i int) int { return (tlIndex + i) % 3 }
	var topRight, botLeft geometry.Marker[float64]
	var hSlope, vSlope float64
	if math.Mod(arcs[tlIndex]+2*math.Pi, 2*math.Pi) > math.Pi {
		topRight, botLeft = t[idx(2)], t[idx(1)]
		hSlope, vSlope = slopes[idx(2)], slopes[tlIndex]
	} else {
		topRight, botLeft = t[idx(1)], t[idx(2)]
		hSlope, vSlope = slopes[tlIndex], slopes[idx(2)]
	}

	if d := hSlope - vSlope; math.IsNaN(d) || (d > -slopeEps && d < slopeEps) {
		return Set{}, false
	}

	// Representative points on the outer edges of the marker boxes. The
	// edge's slope decides whether the box's horizontal or vertical
	// midpoints lie on it; the other marker's position picks the outer side.
	pick := func(targ, other geometry.Marker[float64], slope float64) (corner, near, far geometry.Point[float64]) {
		lr := func(m geometry.Marker[float64], left bool) geometry.Point[float64] {
			if left {
				return m.Left()
			}
			return m.Right()
		}
		ud := func(m geometry.Marker[float64], up bool) geometry.Point[float64] {
			if up {
				return m.Up()
			}
			return m.Down()
		}
		if math.Abs(slope) > 1 {
			otherIsRight := other.Mid.X > (other.Mid.Y-targ.Mid.Y)/slope+targ.Mid.X
			corner = lr(topLeft, otherIsRight)
			near = lr(targ, otherIsRight)
			far = ud(targ, other.Mid.Y > targ.Mid.Y)
		} else {
			otherIsBelow := other.Mid.Y > (other.Mid.X-targ.Mid.X)*slope+targ.Mid.Y
			corner = ud(topLeft, otherIsBelow)
			near = ud(targ, otherIsBelow)
			far = lr(targ, other.Mid.X > targ.Mid.X)
		}
		return corner, near, far
	}
	inTop, outTop, right := pick(topRight, botLeft, hSlope)
	inLeft, outLeft, bottom := pick(botLeft, topRight, vSlope)

	// Corners are intersections of the near-top line (hSlope through p1)
	// with the near-left line (vSlope through p2).
	intersect := func(p1, p2 geometry.Point[float64]) geometry.Point[float64] {
		x := (hSlope*p1.X - vSlope*p2.X + p2.Y - p1.Y) / (hSlope - vSlope)
		y := hSlope*(x-p1.X) + p1.Y
		return geometry.Point[float64]{X: x, Y: y}
	}
	set := Set{
		TopLeft:  intersect(inTop, inLeft),
		TopRight: intersect(outTop, right),
		BotLeft:  intersect(bottom, outLeft),
	}

	if !set.TopLeft.IsFinite() || !set.TopRight.IsFinite() || !set.BotLeft.IsFinite() {
		return Set{}, false
	}
	return set, true
}

func clampSlope(s float64) float64 {
	if s > maxSlope {
		return maxSlope
	}
	if s < -maxSlope {
		return -maxSlope
	}
	return s
}

func collect3[T any](f func(int) T) [3]T {
	return [3]T{f(0), f(1), f(2)}
}

// max3 returns the index in [0,2] with the largest f value.
func max3(f func(int) float64) int {
	l := collect3(f)
	if l[0] < l[1] {
		if l[1] < l[2] {
			return 2
		}
		return 1
	}
	if l[0] < l[2] {
		return 2
	}
	return 0
}
