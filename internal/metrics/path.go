package metrics

import (
	"fmt"

	"github.com/san-kum/linksim/internal/geom"
	"github.com/san-kum/linksim/internal/linkage"
)

// PathLength is the distance travelled by one joint over a run.
type PathLength struct {
	name    string
	joint   int
	last    geom.Point
	samples int
	total   float64
}

func NewPathLength(joint int) *PathLength {
	return &PathLength{name: fmt.Sprintf("path_length[%d]", joint), joint: joint}
}

func (p *PathLength) Name() string { return p.name }

func (p *PathLength) Observe(tick int, f linkage.Frame) {
	pt := f[p.joint]
	if p.samples > 0 {
		p.total += pt.Dist(p.last)
	}
	p.last = pt
	p.samples++
}

func (p *PathLength) Value() float64 { return p.total }

func (p *PathLength) Reset() {
	p.total = 0
	p.samples = 0
}

// ClosureGap is the distance between the first and latest position of a
// joint. A periodic locus sampled over a whole revolution has a gap near
// zero.
type ClosureGap struct {
	name        string
	joint       int
	first, last geom.Point
	samples     int
}

func NewClosureGap(joint int) *ClosureGap {
	return &ClosureGap{name: fmt.Sprintf("closure_gap[%d]", joint), joint: joint}
}

func (c *ClosureGap) Name() string { return c.name }

func (c *ClosureGap) Observe(tick int, f linkage.Frame) {
	if c.samples == 0 {
		c.first = f[c.joint]
	}
	c.last = f[c.joint]
	c.samples++
}

func (c *ClosureGap) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.first.Dist(c.last)
}

func (c *ClosureGap) Reset() {
	c.samples = 0
}
