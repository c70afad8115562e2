package viz

import (
	"github.com/san-kum/linksim/internal/geom"
	"github.com/san-kum/linksim/internal/linkage"
)

// Scene is a linkage together with a precomputed trajectory, ready to be
// drawn at any tick.
type Scene struct {
	Linkage    *linkage.Linkage
	Trajectory linkage.Trajectory
	Bounds     geom.BBox
	parents    [][]int
}

func NewScene(lk *linkage.Linkage, traj linkage.Trajectory) (*Scene, error) {
	var all []geom.Point
	for _, f := range traj {
		all = append(all, f...)
	}
	box, err := geom.BoundingBox(all)
	if err != nil {
		return nil, err
	}

	parents := make([][]int, lk.Len())
	for i, j := range lk.Joints() {
		for _, name := range j.Parents() {
			if p, ok := lk.Lookup(name); ok {
				parents[i] = append(parents[i], p.ID())
			}
		}
	}
	return &Scene{Linkage: lk, Trajectory: traj, Bounds: box, parents: parents}, nil
}

func (s *Scene) Len() int { return len(s.Trajectory) }

// Draw renders the bars at tick and, for every moving joint, the locus over
// the trail ticks leading up to it. A negative trail draws the whole locus.
func (s *Scene) Draw(c *Canvas, tick, trail int) {
	if len(s.Trajectory) == 0 {
		return
	}
	tick = ((tick % s.Len()) + s.Len()) % s.Len()
	vp := NewViewport(s.Bounds, c, 0.05)

	from, to := max(tick-trail, 0), tick
	if trail < 0 {
		from, to = 0, s.Len()-1
	}
	for i, j := range s.Linkage.Joints() {
		if j.Kind() == linkage.KindAnchor {
			continue
		}
		for t := from; t <= to; t++ {
			c.Set(vp.Project(s.Trajectory[t][i]))
		}
	}

	frame := s.Trajectory[tick]
	for i, ps := range s.parents {
		x0, y0 := vp.Project(frame[i])
		for _, p := range ps {
			x1, y1 := vp.Project(frame[p])
			c.DrawLine(x0, y0, x1, y1)
		}
	}
	for i, j := range s.Linkage.Joints() {
		if j.Kind() == linkage.KindAnchor {
			c.Cross(vp.Project(frame[i]))
		}
	}
}

// Render draws the scene at tick on a fresh w x h canvas.
func Render(s *Scene, tick, trail, w, h int) string {
	c := NewCanvas(w, h)
	s.Draw(c, tick, trail)
	return c.String()
}
