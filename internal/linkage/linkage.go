package linkage

import (
	"fmt"
	"math"

	"github.com/san-kum/linksim/internal/geom"
)

// Frame holds one position per joint, indexed by joint id (insertion order).
type Frame []geom.Point

// Trajectory is the sequence of frames produced by a sweep.
type Trajectory []Frame

// Locus extracts the path of a single joint.
func (t Trajectory) Locus(id int) []geom.Point {
	out := make([]geom.Point, len(t))
	for i, f := range t {
		out[i] = f[id]
	}
	return out
}

// Diagnostic records a degenerate resolution where a joint kept its previous
// position.
type Diagnostic struct {
	Tick  int
	Joint string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("tick %d: joint %q degenerate, kept previous position", d.Tick, d.Joint)
}

// Linkage owns a set of joints and the cached order they are solved in.
type Linkage struct {
	Name string
	// Tolerance is the epsilon for intersection tests. Zero means
	// geom.DefaultTolerance.
	Tolerance float64

	joints []*Joint
	index  map[string]int
	order  []int
	ticks  int
	diags  []Diagnostic
}

// New assembles a linkage and builds its solve order, so structural errors
// surface here rather than on the first tick.
func New(name string, joints ...*Joint) (*Linkage, error) {
	l := &Linkage{Name: name, index: make(map[string]int, len(joints))}
	for _, j := range joints {
		if err := l.Add(j); err != nil {
			return nil, err
		}
	}
	if _, err := l.SolveOrder(); err != nil {
		return nil, err
	}
	return l, nil
}

// Add appends a joint. An unnamed joint is named after its index.
func (l *Linkage) Add(j *Joint) error {
	if l.index == nil {
		l.index = make(map[string]int)
	}
	if j.name == "" {
		j.name = fmt.Sprintf("j%d", len(l.joints))
	}
	if _, dup := l.index[j.name]; dup {
		return &StructuralError{Reason: "duplicate joint name", Joint: j.name}
	}
	j.id = len(l.joints)
	l.index[j.name] = j.id
	l.joints = append(l.joints, j)
	l.invalidate()
	return nil
}

// Rewire replaces the parents of the named joint.
func (l *Linkage) Rewire(name string, parents ...string) error {
	j, ok := l.Lookup(name)
	if !ok {
		return &StructuralError{Reason: "unknown joint", Unresolved: []string{name}}
	}
	j.parents = j.parents[:0]
	for _, p := range parents {
		if p != "" {
			j.parents = append(j.parents, p)
		}
	}
	l.invalidate()
	return nil
}

func (l *Linkage) invalidate() { l.order = nil }

// SolveOrder returns joint ids such that every joint follows its parents,
// rebuilding the cached order if the structure changed.
func (l *Linkage) SolveOrder() ([]int, error) {
	if l.order == nil {
		order, err := l.buildOrder()
		if err != nil {
			return nil, err
		}
		l.order = order
	}
	return append([]int(nil), l.order...), nil
}

func (l *Linkage) Joints() []*Joint { return l.joints }
func (l *Linkage) Len() int         { return len(l.joints) }

func (l *Linkage) Lookup(name string) (*Joint, bool) {
	idx, ok := l.index[name]
	if !ok {
		return nil, false
	}
	return l.joints[idx], true
}

func (l *Linkage) tol() float64 {
	if l.Tolerance > 0 {
		return l.Tolerance
	}
	return geom.DefaultTolerance
}

// Tick advances every joint once. dt scales the motor steps. The first
// joint that fails stops the tick.
func (l *Linkage) Tick(dt float64) (Frame, error) {
	if l.order == nil {
		if _, err := l.SolveOrder(); err != nil {
			return nil, err
		}
	}
	for _, j := range l.joints {
		j.commit()
	}
	for _, id := range l.order {
		j := l.joints[id]
		degenerate, err := l.resolve(j, dt)
		if err != nil {
			return nil, err
		}
		if degenerate {
			l.diags = append(l.diags, Diagnostic{Tick: l.ticks, Joint: j.name})
		}
	}
	l.ticks++
	return l.frame(), nil
}

func (l *Linkage) frame() Frame {
	f := make(Frame, len(l.joints))
	for i, j := range l.joints {
		f[i] = j.pos
	}
	return f
}

// Sweep runs iterations*subdivisions ticks of 1/subdivisions each. On
// failure no partial trajectory is returned.
func (l *Linkage) Sweep(iterations, subdivisions int) (Trajectory, error) {
	if iterations <= 0 || subdivisions <= 0 {
		return nil, fmt.Errorf("%w: %d iterations x %d subdivisions", ErrInvalidSweep, iterations, subdivisions)
	}
	if _, err := l.SolveOrder(); err != nil {
		return nil, err
	}

	l.ticks = 0
	l.diags = l.diags[:0]

	n := iterations * subdivisions
	dt := 1 / float64(subdivisions)
	traj := make(Trajectory, 0, n)
	for i := 0; i < n; i++ {
		f, err := l.Tick(dt)
		if err != nil {
			return nil, &SimulationError{Tick: i, Wrapped: err}
		}
		traj = append(traj, f)
	}
	return traj, nil
}

// RotationPeriod is the number of whole ticks after which every motor is
// back to its starting angle: the least common multiple of each motor's
// round(2*pi/|step|).
func (l *Linkage) RotationPeriod() int {
	period := 1
	for _, j := range l.joints {
		if j.kind != KindMotor || j.step == 0 {
			continue
		}
		p := int(math.Round(2 * math.Pi / math.Abs(j.step)))
		if p < 1 {
			p = 1
		}
		period = lcm(period, p)
	}
	return period
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int { return a / gcd(a, b) * b }

// Constraints returns every joint's constraint scalars concatenated in
// insertion order: none for an anchor, the radius of a motor or slider, both
// distances of a revolute joint, distance then angle of a fixed joint.
func (l *Linkage) Constraints() []float64 {
	var out []float64
	for _, j := range l.joints {
		out = append(out, j.Constraints()...)
	}
	return out
}

// ConstraintLabels names every entry of Constraints as joint.scalar, for
// example "C.d0".
func (l *Linkage) ConstraintLabels() []string {
	labels := make([]string, 0, l.ConstraintCount())
	for _, j := range l.joints {
		for _, n := range constraintNames[j.kind] {
			labels = append(labels, j.name+"."+n)
		}
	}
	return labels
}

func (l *Linkage) ConstraintCount() int {
	n := 0
	for _, j := range l.joints {
		n += j.constraintCount()
	}
	return n
}

// SetConstraints overwrites the constraint scalars in the order of
// Constraints. Positions are left untouched. Nothing is changed on error.
func (l *Linkage) SetConstraints(values []float64) error {
	if want := l.ConstraintCount(); len(values) != want {
		return fmt.Errorf("%w: got %d values, want %d", ErrConstraintCount, len(values), want)
	}
	off := 0
	for _, j := range l.joints {
		n := j.constraintCount()
		if err := j.checkConstraints(values[off : off+n]); err != nil {
			return err
		}
		off += n
	}
	off = 0
	for _, j := range l.joints {
		n := j.constraintCount()
		if n > 0 {
			j.setConstraints(values[off : off+n])
		}
		off += n
	}
	return nil
}

// Positions returns the current position of every joint in insertion order.
// Joints never placed report geom.Undefined.
func (l *Linkage) Positions() []geom.Point {
	pts := make([]geom.Point, len(l.joints))
	for i, j := range l.joints {
		pts[i] = geom.Undefined()
		if j.hasPos {
			pts[i] = j.pos
		}
	}
	return pts
}

// SetPositions overwrites current and previous positions in insertion order.
// A geom.Undefined entry leaves its joint unplaced, so Positions followed by
// SetPositions round-trips. Motors re-derive their angle from the new
// position on the next tick.
func (l *Linkage) SetPositions(points []geom.Point) error {
	if len(points) != len(l.joints) {
		return fmt.Errorf("%w: got %d positions, want %d", ErrPositionCount, len(points), len(l.joints))
	}
	for i, p := range points {
		if p.IsDefined() && !p.IsFinite() {
			return fmt.Errorf("%w: position of joint %q is not finite", ErrInvalidConstraint, l.joints[i].name)
		}
	}
	for i, j := range l.joints {
		p := points[i]
		set := p.IsDefined()
		if !set {
			p = geom.Point{}
		}
		j.pos, j.prev = p, p
		j.hasPos, j.hasPrev = set, set
		j.thetaSet = false
	}
	return nil
}

// CheckDefined returns a NotDefinedError for the first joint, in insertion
// order, that no tick can place: an anchor without coordinates, or a
// revolute or fixed joint declared with a single parent.
func (l *Linkage) CheckDefined() error {
	for _, j := range l.joints {
		switch {
		case j.kind == KindAnchor && !j.hasPos:
			return &NotDefinedError{Joint: j.name, Reason: "anchor has no coordinates"}
		case (j.kind == KindRevolute || j.kind == KindFixed) && len(j.parents) < 2:
			return &NotDefinedError{Joint: j.name, Reason: fmt.Sprintf("%s joint needs two parents", j.kind)}
		}
	}
	return nil
}

// DegreesOfFreedom is the planar mobility count
// 2*movable - constrained - motor-fixed. Zero means exactly constrained,
// positive under-constrained, negative over-constrained.
func (l *Linkage) DegreesOfFreedom() int {
	movable, constrained, fixed := 0, 0, 0
	for _, j := range l.joints {
		if j.kind == KindAnchor {
			continue
		}
		movable++
		c, m := j.dof()
		constrained += c
		fixed += m
	}
	return 2*movable - constrained - fixed
}

// Diagnostics returns the degenerate resolutions recorded since the start of
// the last sweep.
func (l *Linkage) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), l.diags...)
}

// Clone returns an independent deep copy, suitable for evaluating trials on
// another goroutine.
func (l *Linkage) Clone() *Linkage {
	c := &Linkage{
		Name:      l.Name,
		Tolerance: l.Tolerance,
		joints:    make([]*Joint, len(l.joints)),
		index:     make(map[string]int, len(l.index)),
		ticks:     l.ticks,
		diags:     append([]Diagnostic(nil), l.diags...),
	}
	for i, j := range l.joints {
		c.joints[i] = j.clone()
	}
	for k, v := range l.index {
		c.index[k] = v
	}
	if l.order != nil {
		c.order = append([]int(nil), l.order...)
	}
	return c
}
