package geom

import "math"

// DefaultTolerance is the epsilon used by the intersection routines when the
// caller has no better scale for its coordinates.
const DefaultTolerance = 1e-9

type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point       { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point       { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(k float64) Point   { return Point{p.X * k, p.Y * k} }
func (p Point) Dot(q Point) float64     { return p.X*q.X + p.Y*q.Y }
func (p Point) Cross(q Point) float64   { return p.X*q.Y - p.Y*q.X }
func (p Point) Norm() float64           { return math.Hypot(p.X, p.Y) }
func (p Point) Dist(q Point) float64    { return p.Sub(q).Norm() }
func (p Point) SqrDist(q Point) float64 { return p.Sub(q).Dot(p.Sub(q)) }

// Perp rotates p by a quarter turn counter-clockwise.
func (p Point) Perp() Point { return Point{-p.Y, p.X} }

// Angle is the direction of p seen from the origin.
func (p Point) Angle() float64 { return math.Atan2(p.Y, p.X) }

// Undefined is the marker for a position that has never been set.
func Undefined() Point { return Point{math.NaN(), math.NaN()} }

// IsDefined reports whether p carries coordinates, as opposed to the
// Undefined marker.
func (p Point) IsDefined() bool { return !math.IsNaN(p.X) && !math.IsNaN(p.Y) }

func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// ApproxEqual reports whether p and q are within tol of each other.
func (p Point) ApproxEqual(q Point, tol float64) bool {
	return p.Dist(q) <= tol
}

// Polar returns the point at the given radius and angle around p.
func (p Point) Polar(radius, angle float64) Point {
	return Point{p.X + radius*math.Cos(angle), p.Y + radius*math.Sin(angle)}
}

// Nearest returns whichever of a or b is closer to ref. Ties go to a.
func Nearest(ref, a, b Point) Point {
	if ref.SqrDist(b) < ref.SqrDist(a) {
		return b
	}
	return a
}
