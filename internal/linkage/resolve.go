package linkage

import (
	"fmt"

	"github.com/san-kum/linksim/internal/geom"
)

// resolve places j from its parents' current positions. It reports whether
// the resolution was degenerate and the previous position was kept.
func (l *Linkage) resolve(j *Joint, dt float64) (degenerate bool, err error) {
	switch j.kind {
	case KindAnchor:
		return false, l.resolveAnchor(j)
	case KindMotor:
		return false, l.resolveMotor(j, dt)
	case KindRevolute:
		return l.resolveRevolute(j)
	case KindSlider:
		return l.resolveSlider(j)
	case KindFixed:
		return l.resolveFixed(j)
	default:
		panic(fmt.Sprintf("linkage: unhandled joint kind %v", j.kind))
	}
}

func (l *Linkage) parentPos(j *Joint, i int) geom.Point {
	return l.joints[j.pidx[i]].pos
}

func (l *Linkage) resolveAnchor(j *Joint) error {
	if !j.hasPos {
		return &NotDefinedError{Joint: j.name, Reason: "anchor has no coordinates"}
	}
	return nil
}

func (l *Linkage) resolveMotor(j *Joint, dt float64) error {
	base := l.parentPos(j, 0)
	if !j.thetaSet {
		j.theta = 0
		if j.hasPos {
			j.theta = j.pos.Sub(base).Angle()
		}
		j.thetaSet = true
	}
	j.theta += j.step * dt
	j.pos, j.hasPos = base.Polar(j.dist[0], j.theta), true
	return nil
}

func (l *Linkage) resolveRevolute(j *Joint) (bool, error) {
	if len(j.pidx) < 2 {
		return false, &NotDefinedError{Joint: j.name, Reason: "revolute joint needs two parents"}
	}
	inter, err := geom.CircleCircle(l.parentPos(j, 0), j.dist[0], l.parentPos(j, 1), j.dist[1], l.tol())
	if err != nil {
		return false, &UnbuildableError{Joint: j.name, Cause: err}
	}
	return l.place(j, inter)
}

func (l *Linkage) resolveSlider(j *Joint) (bool, error) {
	center := l.parentPos(j, 0)
	origin, dir := j.rail.Origin, j.rail.Direction
	if len(j.pidx) == 2 {
		through := l.parentPos(j, 1)
		if dir == (geom.Point{}) {
			dir = through.Sub(origin)
		}
		origin = through
	}
	inter, err := geom.CircleLine(center, j.dist[0], origin, dir, l.tol())
	if err != nil {
		return false, &UnbuildableError{Joint: j.name, Cause: err}
	}
	return l.place(j, inter)
}

func (l *Linkage) resolveFixed(j *Joint) (bool, error) {
	if len(j.pidx) < 2 {
		return false, &NotDefinedError{Joint: j.name, Reason: "fixed joint needs two parents"}
	}
	p0, p1 := l.parentPos(j, 0), l.parentPos(j, 1)
	bar := p1.Sub(p0)
	if bar.Norm() <= l.tol() {
		return l.place(j, geom.Intersection{Kind: geom.Infinite})
	}
	j.pos, j.hasPos = p0.Polar(j.dist[0], bar.Angle()+j.angle), true
	return false, nil
}

// place commits the root closest to the previous position. A degenerate
// intersection keeps the previous position.
func (l *Linkage) place(j *Joint, inter geom.Intersection) (bool, error) {
	if inter.Degenerate() {
		if !j.hasPrev {
			return true, &NotDefinedError{Joint: j.name, Reason: "degenerate position with no previous position to keep"}
		}
		j.pos, j.hasPos = j.prev, true
		return true, nil
	}
	if j.hasPrev {
		j.pos = inter.Closest(j.prev)
	} else {
		j.pos = inter.Points[0]
	}
	j.hasPos = true
	return false, nil
}
