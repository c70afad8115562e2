package geom

import "math"

// BBox is an axis-aligned box. Field order follows the (min_y, max_x, max_y,
// min_x) tuple used by the fitness functions.
type BBox struct {
	MinY float64 `json:"min_y" yaml:"min_y"`
	MaxX float64 `json:"max_x" yaml:"max_x"`
	MaxY float64 `json:"max_y" yaml:"max_y"`
	MinX float64 `json:"min_x" yaml:"min_x"`
}

func BoundingBox(points []Point) (BBox, error) {
	if len(points) == 0 {
		return BBox{}, ErrEmptyLocus
	}
	b := BBox{
		MinY: math.Inf(1), MaxX: math.Inf(-1),
		MaxY: math.Inf(-1), MinX: math.Inf(1),
	}
	for _, p := range points {
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
		b.MinX = math.Min(b.MinX, p.X)
	}
	return b, nil
}

// Union returns the smallest box containing both b and o.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
		MinX: math.Min(b.MinX, o.MinX),
	}
}

func (b BBox) Width() float64  { return b.MaxX - b.MinX }
func (b BBox) Height() float64 { return b.MaxY - b.MinY }

func (b BBox) Values() [4]float64 { return [4]float64{b.MinY, b.MaxX, b.MaxY, b.MinX} }

// Distance is the euclidean distance between the two boxes taken as
// 4-vectors.
func (b BBox) Distance(o BBox) float64 {
	var s float64
	bv, ov := b.Values(), o.Values()
	for i := range bv {
		d := bv[i] - ov[i]
		s += d * d
	}
	return math.Sqrt(s)
}
