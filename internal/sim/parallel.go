package sim

import (
	"context"
	"fmt"
	"sync"
)

// Ensemble runs several independent simulators at once. Each simulator owns
// its linkage, so no state is shared between goroutines.
type Ensemble struct {
	sims []*Simulator
}

func NewEnsemble(sims ...*Simulator) *Ensemble {
	return &Ensemble{sims: sims}
}

// Run returns one result and one error slot per simulator, in input order.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, []error) {
	cfgs := make([]Config, len(e.sims))
	for i := range cfgs {
		cfgs[i] = cfg
	}
	return e.RunEach(ctx, cfgs)
}

// RunEach is Run with one config per simulator.
func (e *Ensemble) RunEach(ctx context.Context, cfgs []Config) ([]*Result, []error) {
	results := make([]*Result, len(e.sims))
	errs := make([]error, len(e.sims))
	if len(cfgs) != len(e.sims) {
		for i := range errs {
			errs[i] = fmt.Errorf("ensemble has %d simulators but %d configs", len(e.sims), len(cfgs))
		}
		return results, errs
	}

	var wg sync.WaitGroup
	for i, s := range e.sims {
		wg.Add(1)
		go func(idx int, s *Simulator) {
			defer wg.Done()
			results[idx], errs[idx] = s.Run(ctx, cfgs[idx])
		}(i, s)
	}

	wg.Wait()
	return results, errs
}
