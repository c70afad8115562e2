package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/linksim/internal/geom"
	"github.com/san-kum/linksim/internal/linkage"
)

// boxTracker accumulates the bounding box of one joint's locus.
type boxTracker struct {
	joint   int
	box     geom.BBox
	samples int
}

func (b *boxTracker) observe(f linkage.Frame) {
	pt := f[b.joint]
	if b.samples == 0 {
		b.box = geom.BBox{MinY: pt.Y, MaxX: pt.X, MaxY: pt.Y, MinX: pt.X}
	} else {
		b.box = b.box.Union(geom.BBox{MinY: pt.Y, MaxX: pt.X, MaxY: pt.Y, MinX: pt.X})
	}
	b.samples++
}

// BoxDistance scores how far the bounding box of a joint's locus is from a
// target box.
type BoxDistance struct {
	name   string
	target geom.BBox
	boxTracker
}

func NewBoxDistance(joint int, target geom.BBox) *BoxDistance {
	return &BoxDistance{
		name:       fmt.Sprintf("box_distance[%d]", joint),
		target:     target,
		boxTracker: boxTracker{joint: joint},
	}
}

func (b *BoxDistance) Name() string                      { return b.name }
func (b *BoxDistance) Observe(tick int, f linkage.Frame) { b.observe(f) }
func (b *BoxDistance) Reset()                            { b.samples = 0 }

func (b *BoxDistance) Value() float64 {
	if b.samples == 0 {
		return math.Inf(1)
	}
	return b.box.Distance(b.target)
}

// Stride is the horizontal extent of a joint's locus, the step length of a
// walking linkage foot.
type Stride struct {
	name string
	boxTracker
}

func NewStride(joint int) *Stride {
	return &Stride{name: fmt.Sprintf("stride[%d]", joint), boxTracker: boxTracker{joint: joint}}
}

func (s *Stride) Name() string                      { return s.name }
func (s *Stride) Observe(tick int, f linkage.Frame) { s.observe(f) }
func (s *Stride) Reset()                            { s.samples = 0 }

func (s *Stride) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.box.Width()
}
