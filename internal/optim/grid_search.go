package optim

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/san-kum/linksim/internal/linkage"
)

const batchSize = 256

// GridSearch tries constraint vectors laid out on a grid inside Bounds and
// keeps the best Keep of them. The fast layout is the full cartesian product
// of Divisions values per dimension; the sequential layout moves every
// dimension together from Center down to Lower, back, then up to Upper, so
// consecutive candidates stay close.
type GridSearch struct {
	Bounds     Bounds
	Center     []float64
	Divisions  int
	Sequential bool
	Keep       int
	Goal       Goal
	Workers    int
	OnTrial    func(Trial)
}

func NewGridSearch(bounds Bounds, divisions int, goal Goal) *GridSearch {
	return &GridSearch{Bounds: bounds, Divisions: divisions, Keep: 5, Goal: goal}
}

// Size is the number of candidates Search will evaluate.
func (g *GridSearch) Size() float64 {
	if g.Sequential {
		return float64(len(sequentialVariations(g.center(), g.Divisions, g.Bounds)))
	}
	return math.Pow(float64(g.Divisions), float64(g.Bounds.Dimensions()))
}

func (g *GridSearch) center() []float64 {
	if g.Center != nil {
		return g.Center
	}
	c := make([]float64, g.Bounds.Dimensions())
	for i := range c {
		c[i] = (g.Bounds.Lower[i] + g.Bounds.Upper[i]) / 2
	}
	return c
}

// Search evaluates every candidate from lk's current positions and returns
// the best agents, best first.
func (g *GridSearch) Search(ctx context.Context, lk *linkage.Linkage, obj Objective) ([]Agent, error) {
	if err := g.Bounds.Validate(); err != nil {
		return nil, err
	}
	if n := lk.ConstraintCount(); g.Bounds.Dimensions() != n {
		return nil, fmt.Errorf("%w: bounds have %d dimensions, linkage has %d", linkage.ErrConstraintCount, g.Bounds.Dimensions(), n)
	}
	if g.Divisions < 1 {
		return nil, fmt.Errorf("%w: %d divisions", ErrBadBounds, g.Divisions)
	}
	if err := lk.CheckDefined(); err != nil {
		return nil, err
	}

	init := lk.Positions()
	board := newLeaderboard(g.Goal, g.Keep)
	var batch [][]float64
	trials := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		scores, err := EvaluateParallel(ctx, lk, obj, batch, init, g.Workers)
		if err != nil {
			return err
		}
		for i, s := range scores {
			if g.OnTrial != nil {
				g.OnTrial(Trial{Index: trials, Dimensions: batch[i], Score: s})
			}
			trials++
			board.offer(Agent{Score: s, Dimensions: batch[i], Positions: init})
		}
		batch = nil
		return nil
	}
	visit := func(dims []float64) error {
		batch = append(batch, dims)
		if len(batch) >= batchSize {
			return flush()
		}
		return nil
	}

	var err error
	if g.Sequential {
		for _, dims := range sequentialVariations(g.center(), g.Divisions, g.Bounds) {
			if err = visit(dims); err != nil {
				break
			}
		}
	} else {
		axes := make([][]float64, g.Bounds.Dimensions())
		for i := range axes {
			axes[i] = linspace(g.Bounds.Lower[i], g.Bounds.Upper[i], g.Divisions)
		}
		err = g.searchRecursive(0, make([]float64, 0, len(axes)), axes, visit)
	}
	if err == nil {
		err = flush()
	}
	if err != nil {
		return nil, err
	}
	return board.agents, nil
}

func (g *GridSearch) searchRecursive(depth int, current []float64, axes [][]float64, visit func([]float64) error) error {
	if depth == len(axes) {
		return visit(slices.Clone(current))
	}
	for _, v := range axes[depth] {
		if err := g.searchRecursive(depth+1, append(current, v), axes, visit); err != nil {
			return err
		}
	}
	return nil
}

// sequentialVariations walks from center to the lower bound on even steps,
// back to center on the odd ones, then out to the upper bound.
func sequentialVariations(center []float64, divisions int, b Bounds) [][]float64 {
	fall := lerpRows(center, b.Lower, divisions/2)
	var out [][]float64
	for i := 0; i < len(fall); i += 2 {
		out = append(out, fall[i])
	}
	back := len(fall) - 1
	if divisions%2 == 1 {
		back = len(fall) - 2
	}
	for i := back; i >= 0; i -= 2 {
		out = append(out, fall[i])
	}
	return append(out, lerpRows(center, b.Upper, (divisions+1)/2)...)
}

func lerpRows(from, to []float64, n int) [][]float64 {
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, len(from))
	}
	for d := range from {
		for i, v := range linspace(from[d], to[d], n) {
			rows[i][d] = v
		}
	}
	return rows
}

type leaderboard struct {
	goal   Goal
	keep   int
	agents []Agent
}

func newLeaderboard(goal Goal, keep int) *leaderboard {
	return &leaderboard{goal: goal, keep: max(keep, 1)}
}

// offer inserts a after every agent it does not beat, dropping the tail.
func (b *leaderboard) offer(a Agent) {
	if math.IsNaN(a.Score) {
		a.Score = b.goal.Penalty()
	}
	i := sort.Search(len(b.agents), func(i int) bool {
		return b.goal.Better(a.Score, b.agents[i].Score)
	})
	if i >= b.keep {
		return
	}
	a.Positions = slices.Clone(a.Positions)
	b.agents = slices.Insert(b.agents, i, a)
	if len(b.agents) > b.keep {
		b.agents = b.agents[:b.keep]
	}
}
