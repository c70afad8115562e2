package optim

import (
	"context"
	"fmt"
	"math/rand"
	"slices"

	"github.com/san-kum/linksim/internal/linkage"
)

const (
	DefaultLeader    = 3.0
	DefaultFollower  = 0.1
	DefaultInertia   = 0.6
	DefaultNeighbors = 17
)

// Swarm is a local-best particle swarm. Each particle follows its own best
// position (Leader weight) and the best of its ring neighbourhood (Follower
// weight), with velocity damped by Inertia.
type Swarm struct {
	Bounds     Bounds
	Center     []float64
	Particles  int
	Iterations int
	Leader     float64
	Follower   float64
	Inertia    float64
	Neighbors  int
	Goal       Goal
	Seed       int64
	Workers    int
	OnTrial    func(Trial)
}

func NewSwarm(bounds Bounds, goal Goal) *Swarm {
	return &Swarm{
		Bounds:     bounds,
		Particles:  100,
		Iterations: 200,
		Leader:     DefaultLeader,
		Follower:   DefaultFollower,
		Inertia:    DefaultInertia,
		Neighbors:  DefaultNeighbors,
		Goal:       goal,
		Seed:       1,
	}
}

type particle struct {
	pos, vel  []float64
	best      []float64
	bestScore float64
}

// Optimize runs the swarm from lk's current positions and returns the best
// agent found.
func (s *Swarm) Optimize(ctx context.Context, lk *linkage.Linkage, obj Objective) (Agent, error) {
	if err := s.Bounds.Validate(); err != nil {
		return Agent{}, err
	}
	dims := s.Bounds.Dimensions()
	if n := lk.ConstraintCount(); dims != n {
		return Agent{}, fmt.Errorf("%w: bounds have %d dimensions, linkage has %d", linkage.ErrConstraintCount, dims, n)
	}
	if s.Particles < 1 || s.Iterations < 1 {
		return Agent{}, fmt.Errorf("optim: swarm needs particles and iterations, got %d and %d", s.Particles, s.Iterations)
	}
	if err := lk.CheckDefined(); err != nil {
		return Agent{}, err
	}

	rng := rand.New(rand.NewSource(s.Seed))
	init := lk.Positions()
	swarm := s.spawn(rng, dims)

	best := Agent{Score: s.Goal.Penalty(), Positions: slices.Clone(init)}
	trials := 0
	for iter := 0; iter < s.Iterations; iter++ {
		candidates := make([][]float64, len(swarm))
		for i, p := range swarm {
			candidates[i] = slices.Clone(p.pos)
		}
		scores, err := EvaluateParallel(ctx, lk, obj, candidates, init, s.Workers)
		if err != nil {
			return Agent{}, err
		}

		for i, p := range swarm {
			score := scores[i]
			if s.OnTrial != nil {
				s.OnTrial(Trial{Index: trials, Dimensions: candidates[i], Score: score})
			}
			trials++
			if p.best == nil || s.Goal.Better(score, p.bestScore) {
				p.best, p.bestScore = candidates[i], score
			}
			if best.Dimensions == nil || s.Goal.Better(score, best.Score) {
				best.Score, best.Dimensions = score, candidates[i]
			}
		}
		s.move(rng, swarm)
	}
	return best, nil
}

func (s *Swarm) spawn(rng *rand.Rand, dims int) []*particle {
	swarm := make([]*particle, s.Particles)
	for i := range swarm {
		p := &particle{
			pos:       make([]float64, dims),
			vel:       make([]float64, dims),
			bestScore: s.Goal.Penalty(),
		}
		for d := 0; d < dims; d++ {
			lo, hi := s.Bounds.Lower[d], s.Bounds.Upper[d]
			p.pos[d] = lo + rng.Float64()*(hi-lo)
			p.vel[d] = (rng.Float64()*2 - 1) * (hi - lo) / 10
		}
		swarm[i] = p
	}
	if len(s.Center) == dims {
		copy(swarm[0].pos, s.Center)
		s.Bounds.Clamp(swarm[0].pos)
	}
	return swarm
}

// neighbourhoodBest is the best remembered position among the k particles
// around i on the ring, i included.
func (s *Swarm) neighbourhoodBest(swarm []*particle, i int) []float64 {
	n := len(swarm)
	k := min(max(s.Neighbors, 1), n)
	best := swarm[i]
	for off := -k / 2; off <= k/2; off++ {
		q := swarm[((i+off)%n+n)%n]
		if q.best != nil && (best.best == nil || s.Goal.Better(q.bestScore, best.bestScore)) {
			best = q
		}
	}
	return best.best
}

func (s *Swarm) move(rng *rand.Rand, swarm []*particle) {
	social := make([][]float64, len(swarm))
	for i := range swarm {
		social[i] = s.neighbourhoodBest(swarm, i)
	}
	for i, p := range swarm {
		for d := range p.pos {
			v := s.Inertia * p.vel[d]
			if p.best != nil {
				v += s.Leader * rng.Float64() * (p.best[d] - p.pos[d])
			}
			if social[i] != nil {
				v += s.Follower * rng.Float64() * (social[i][d] - p.pos[d])
			}
			p.vel[d] = v
			p.pos[d] += v
		}
		s.Bounds.Clamp(p.pos)
	}
}
