package optim

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/linksim/internal/geom"
	"github.com/san-kum/linksim/internal/linkage"
	"github.com/san-kum/linksim/internal/sim"
)

var (
	ErrNoDimensions = errors.New("optim: nothing to optimize")
	ErrBadBounds    = errors.New("optim: invalid bounds")
	ErrUnknownGoal  = errors.New("optim: unknown goal")
)

const (
	// warmupPoints coarse ticks cover one revolution before scoring, so the
	// scored sweep starts from a settled assembly.
	warmupPoints = 12
	scoredTicks  = 96
)

type Goal int

const (
	Minimize Goal = iota
	Maximize
)

func ParseGoal(s string) (Goal, error) {
	switch s {
	case "min", "minimize":
		return Minimize, nil
	case "max", "maximize":
		return Maximize, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGoal, s)
}

func (g Goal) String() string {
	if g == Maximize {
		return "maximize"
	}
	return "minimize"
}

// Penalty is the score given to a candidate that cannot be assembled.
func (g Goal) Penalty() float64 {
	if g == Maximize {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// Better reports whether score a strictly beats b.
func (g Goal) Better(a, b float64) bool {
	if g == Maximize {
		return a > b
	}
	return a < b
}

// Objective scores one constraint vector on lk. init, when non-nil, is
// restored before the candidate is applied.
type Objective func(lk *linkage.Linkage, dims []float64, init []geom.Point) float64

// Scorer turns the loci of a successful sweep into a score.
type Scorer func(lk *linkage.Linkage, loci linkage.Trajectory) float64

// Kinematic wraps score with the standard trial run: apply the candidate,
// warm up over one revolution, then sweep and score. Any failure yields the
// goal's penalty instead of an error.
func Kinematic(goal Goal, score Scorer) Objective {
	return func(lk *linkage.Linkage, dims []float64, init []geom.Point) float64 {
		if init != nil {
			if err := lk.SetPositions(init); err != nil {
				return goal.Penalty()
			}
		}
		if err := lk.SetConstraints(dims); err != nil {
			return goal.Penalty()
		}

		dt := float64(lk.RotationPeriod()) / warmupPoints
		for i := 0; i <= warmupPoints; i++ {
			if _, err := lk.Tick(dt); err != nil {
				return goal.Penalty()
			}
		}

		loci, err := lk.Sweep(scoredTicks, 1)
		if err != nil {
			return goal.Penalty()
		}
		return score(lk, loci)
	}
}

// MetricScore replays the loci into a fresh metric and reports its value.
func MetricScore(newMetric func() sim.Metric) Scorer {
	return func(_ *linkage.Linkage, loci linkage.Trajectory) float64 {
		m := newMetric()
		for i, f := range loci {
			m.Observe(i, f)
		}
		return m.Value()
	}
}

// Agent is one optimization result: its score, the constraint vector that
// produced it, and the joint positions it was evaluated from.
type Agent struct {
	Score      float64      `json:"score"`
	Dimensions []float64    `json:"dimensions"`
	Positions  []geom.Point `json:"positions"`
}

// Trial is reported for every evaluated candidate.
type Trial struct {
	Index      int
	Dimensions []float64
	Score      float64
}
