package linkage

import (
	"fmt"
	"math"

	"github.com/san-kum/linksim/internal/geom"
)

type Kind int

const (
	KindAnchor Kind = iota
	KindMotor
	KindRevolute
	KindSlider
	KindFixed
)

var kindNames = map[Kind]string{
	KindAnchor:   "anchor",
	KindMotor:    "motor",
	KindRevolute: "revolute",
	KindSlider:   "slider",
	KindFixed:    "fixed",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("linkage: unknown joint kind %q", s)
}

// parentRange is the accepted number of parents per kind. Revolute and fixed
// joints may be declared with one parent; they then count as partially
// defined and fail on resolve.
func (k Kind) parentRange() (lo, hi int) {
	switch k {
	case KindAnchor:
		return 0, 0
	case KindMotor:
		return 1, 1
	case KindRevolute, KindFixed, KindSlider:
		return 1, 2
	}
	return 0, 0
}

// Rail is the guide line of a slider. With a single parent the line runs
// through Origin along Direction. With a second parent the line runs through
// that parent along Direction, or towards it from Origin when Direction is
// zero.
type Rail struct {
	Origin    geom.Point `json:"origin" yaml:"origin"`
	Direction geom.Point `json:"direction" yaml:"direction"`
}

// Joint is one point of a linkage. Parents are named; the owning Linkage
// resolves them to indices when it builds the solve order.
type Joint struct {
	id      int
	name    string
	kind    Kind
	parents []string
	pidx    []int

	dist  [2]float64
	angle float64
	step  float64
	rail  Rail

	pos, prev   geom.Point
	hasPos      bool
	hasPrev     bool
	theta       float64
	thetaSet    bool
	initialHint *geom.Point
}

type Option func(*Joint)

// At sets the initial coordinates. For movable joints they only serve as the
// first previous position used to choose between two roots.
func At(x, y float64) Option {
	return func(j *Joint) {
		p := geom.Pt(x, y)
		j.pos, j.hasPos = p, true
		j.initialHint = &p
	}
}

func newJoint(name string, kind Kind, parents []string, opts []Option) *Joint {
	j := &Joint{name: name, kind: kind}
	for _, p := range parents {
		if p != "" {
			j.parents = append(j.parents, p)
		}
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func NewAnchor(name string, opts ...Option) *Joint {
	return newJoint(name, KindAnchor, nil, opts)
}

// NewMotor creates a crank rotating around base. step is the signed angle
// added per whole tick.
func NewMotor(name, base string, radius, step float64, opts ...Option) *Joint {
	j := newJoint(name, KindMotor, []string{base}, opts)
	j.dist[0] = radius
	j.step = step
	return j
}

// NewRevolute creates a joint at distance d0 from p0 and d1 from p1. Passing
// an empty p1 leaves the joint partially defined.
func NewRevolute(name, p0, p1 string, d0, d1 float64, opts ...Option) *Joint {
	j := newJoint(name, KindRevolute, []string{p0, p1}, opts)
	j.dist = [2]float64{d0, d1}
	return j
}

// NewSlider creates a joint at distance radius from center, constrained to a
// rail. through may be empty for a rail fixed in the frame.
func NewSlider(name, center, through string, radius float64, rail Rail, opts ...Option) *Joint {
	j := newJoint(name, KindSlider, []string{center, through}, opts)
	j.dist[0] = radius
	j.rail = rail
	return j
}

// NewFixed creates a joint rigidly attached to the p0->p1 bar, at distance
// dist from p0 and angle radians from the bar direction.
func NewFixed(name, p0, p1 string, dist, angle float64, opts ...Option) *Joint {
	j := newJoint(name, KindFixed, []string{p0, p1}, opts)
	j.dist[0] = dist
	j.angle = angle
	return j
}

func (j *Joint) ID() int           { return j.id }
func (j *Joint) Name() string      { return j.name }
func (j *Joint) Kind() Kind        { return j.kind }
func (j *Joint) Step() float64     { return j.step }
func (j *Joint) Rail() Rail        { return j.rail }
func (j *Joint) Parents() []string { return append([]string(nil), j.parents...) }

// Hint returns the coordinates given at construction, if any.
func (j *Joint) Hint() (geom.Point, bool) {
	if j.initialHint == nil {
		return geom.Point{}, false
	}
	return *j.initialHint, true
}

// Position returns the current position and whether it has been set.
func (j *Joint) Position() (geom.Point, bool) { return j.pos, j.hasPos }

// Constraints returns the joint's constraint scalars in flat order.
func (j *Joint) Constraints() []float64 {
	switch j.kind {
	case KindMotor, KindSlider:
		return []float64{j.dist[0]}
	case KindRevolute:
		return []float64{j.dist[0], j.dist[1]}
	case KindFixed:
		return []float64{j.dist[0], j.angle}
	}
	return nil
}

// constraintNames labels the scalars each kind contributes to the flat
// constraint list, in order.
var constraintNames = map[Kind][]string{
	KindMotor:    {"r"},
	KindSlider:   {"r"},
	KindRevolute: {"d0", "d1"},
	KindFixed:    {"d", "angle"},
}

func (j *Joint) constraintCount() int { return len(constraintNames[j.kind]) }

func (j *Joint) checkConstraints(vals []float64) error {
	for i, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: joint %q value %d is %v", ErrInvalidConstraint, j.name, i, v)
		}
		isAngle := j.kind == KindFixed && i == 1
		if !isAngle && v < 0 {
			return fmt.Errorf("%w: joint %q distance %d is negative (%g)", ErrInvalidConstraint, j.name, i, v)
		}
	}
	return nil
}

func (j *Joint) setConstraints(vals []float64) {
	switch j.kind {
	case KindMotor, KindSlider:
		j.dist[0] = vals[0]
	case KindRevolute:
		j.dist[0], j.dist[1] = vals[0], vals[1]
	case KindFixed:
		j.dist[0], j.angle = vals[0], vals[1]
	}
}

// dof is the pair (removed degrees of freedom from distance or equivalent
// constraints, degrees of freedom fixed by a motor).
func (j *Joint) dof() (constrained, motorFixed int) {
	switch j.kind {
	case KindMotor:
		return 1, 1
	case KindRevolute, KindFixed:
		return len(j.parents), 0
	case KindSlider:
		return 2, 0
	}
	return 0, 0
}

func (j *Joint) clone() *Joint {
	c := *j
	c.parents = append([]string(nil), j.parents...)
	c.pidx = append([]int(nil), j.pidx...)
	if j.initialHint != nil {
		h := *j.initialHint
		c.initialHint = &h
	}
	return &c
}

func (j *Joint) commit() {
	j.prev, j.hasPrev = j.pos, j.hasPos
}
