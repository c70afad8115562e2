package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/linksim/internal/linkage"
)

type Simulator struct {
	lk        *linkage.Linkage
	metrics   []Metric
	observers []Observer
}

func New(lk *linkage.Linkage) *Simulator {
	return &Simulator{
		lk:        lk,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)        { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)    { s.observers = append(s.observers, o) }
func (s *Simulator) Linkage() *linkage.Linkage { return s.lk }

// Run sweeps the linkage and replays the frames through the registered
// metrics and observers. The sweep itself is not interruptible; ctx is
// checked before it and between replayed frames.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	iterations := cfg.Iterations
	if iterations == 0 {
		iterations = s.lk.RotationPeriod()
	}

	traj, err := s.lk.Sweep(iterations, cfg.Subdivisions)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Trajectory:  traj,
		Metrics:     make(map[string]float64),
		Diagnostics: s.lk.Diagnostics(),
		Iterations:  iterations,
		Ticks:       len(traj),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	for i, f := range traj {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		for _, m := range s.metrics {
			m.Observe(i, f)
		}
		for _, obs := range s.observers {
			obs.OnTick(i, f)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if s.lk == nil {
		return fmt.Errorf("no linkage to simulate")
	}
	if cfg.Iterations < 0 {
		return fmt.Errorf("iterations must not be negative, got %d", cfg.Iterations)
	}
	if cfg.Subdivisions <= 0 {
		return fmt.Errorf("subdivisions must be positive, got %d", cfg.Subdivisions)
	}
	return nil
}
