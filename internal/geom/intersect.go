package geom

import "math"

type Kind int

const (
	// One is a tangency: both Points entries hold the same root.
	One Kind = iota + 1
	Two
	// Infinite marks coincident circles or an undefined line. Points is unset.
	Infinite
)

func (k Kind) String() string {
	switch k {
	case One:
		return "one"
	case Two:
		return "two"
	case Infinite:
		return "infinite"
	default:
		return "none"
	}
}

type Intersection struct {
	Kind   Kind
	Points [2]Point
}

func (i Intersection) Degenerate() bool { return i.Kind == Infinite }

// Closest picks the root nearest to ref. It must not be called on a
// degenerate intersection.
func (i Intersection) Closest(ref Point) Point {
	if i.Kind == One {
		return i.Points[0]
	}
	return Nearest(ref, i.Points[0], i.Points[1])
}

// CircleCircle intersects the circle (c0, r0) with (c1, r1).
//
// The roots are found by projecting onto the baseline c0->c1 and offsetting
// by the half-chord perpendicular to it. Near-tangent configurations within
// tol collapse to a single root rather than failing on rounding noise.
func CircleCircle(c0 Point, r0 float64, c1 Point, r1 float64, tol float64) (Intersection, error) {
	if r0 < 0 || r1 < 0 {
		return Intersection{}, ErrNegativeRadius
	}
	d := c0.Dist(c1)

	if d <= tol {
		if math.Abs(r0-r1) <= tol {
			return Intersection{Kind: Infinite}, nil
		}
		return Intersection{}, ErrNoIntersection
	}
	if d > r0+r1+tol || d < math.Abs(r0-r1)-tol {
		return Intersection{}, ErrNoIntersection
	}

	u := c1.Sub(c0).Scale(1 / d)
	a := (r0*r0 - r1*r1 + d*d) / (2 * d)
	mid := c0.Add(u.Scale(a))

	h2 := r0*r0 - a*a
	if math.Abs(d-(r0+r1)) <= tol || math.Abs(d-math.Abs(r0-r1)) <= tol || h2 <= 0 {
		return Intersection{Kind: One, Points: [2]Point{mid, mid}}, nil
	}

	off := u.Perp().Scale(math.Sqrt(h2))
	return Intersection{Kind: Two, Points: [2]Point{mid.Add(off), mid.Sub(off)}}, nil
}

// CircleLine intersects the circle (center, radius) with the infinite line
// through linePoint along dir. dir does not need to be normalised.
func CircleLine(center Point, radius float64, linePoint, dir Point, tol float64) (Intersection, error) {
	if radius < 0 {
		return Intersection{}, ErrNegativeRadius
	}
	n := dir.Norm()
	if n <= tol {
		return Intersection{Kind: Infinite}, nil
	}
	u := dir.Scale(1 / n)

	// foot of the perpendicular from center onto the line
	foot := linePoint.Add(u.Scale(center.Sub(linePoint).Dot(u)))
	dist := center.Dist(foot)

	if dist > radius+tol {
		return Intersection{}, ErrNoIntersection
	}
	h2 := radius*radius - dist*dist
	if math.Abs(dist-radius) <= tol || h2 <= 0 {
		return Intersection{Kind: One, Points: [2]Point{foot, foot}}, nil
	}

	off := u.Scale(math.Sqrt(h2))
	return Intersection{Kind: Two, Points: [2]Point{foot.Add(off), foot.Sub(off)}}, nil
}
