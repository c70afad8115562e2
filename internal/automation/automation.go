package automation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/linksim/internal/config"
	"github.com/san-kum/linksim/internal/linkage"
	"github.com/san-kum/linksim/internal/metrics"
	"github.com/san-kum/linksim/internal/sim"
)

var ErrEmptySweep = errors.New("automation: sweep needs at least two steps")

// Resolver turns a preset name or file path into a definition.
type Resolver func(source string) (*config.Config, error)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Zero iterations or subdivisions fall back to the
// definition; Constraints, when set, replaces the flat constraint list.
type ScenarioStep struct {
	Linkage      string    `yaml:"linkage"`
	Iterations   int       `yaml:"iterations"`
	Subdivisions int       `yaml:"subdivisions"`
	Constraints  []float64 `yaml:"constraints"`
	SaveAs       string    `yaml:"save_as"`
}

// StepResult carries what a caller needs to store or report one step.
type StepResult struct {
	Step    ScenarioStep
	Linkage *linkage.Linkage
	Config  sim.Config
	Result  *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &scenario, nil
}

// RunScenario executes the steps in order and stops at the first failure,
// returning the results gathered so far.
func RunScenario(ctx context.Context, scenario *Scenario, resolve Resolver) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := resolve(step.Linkage)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		lk, err := cfg.Build()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		if step.Constraints != nil {
			if err := lk.SetConstraints(step.Constraints); err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
		}

		simCfg := sim.Config{Iterations: cfg.Simulation.Iterations, Subdivisions: cfg.Simulation.Subdivisions}
		if step.Iterations > 0 {
			simCfg.Iterations = step.Iterations
		}
		if step.Subdivisions > 0 {
			simCfg.Subdivisions = step.Subdivisions
		}

		s := sim.New(lk)
		for _, m := range metrics.Defaults(lk) {
			s.AddMetric(m)
		}
		result, err := s.Run(ctx, simCfg)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, StepResult{Step: step, Linkage: lk, Config: simCfg, Result: result})
	}

	return results, nil
}

// ParameterSweep varies one entry of the flat constraint list between Min and
// Max and records whether the linkage still assembles over a full rotation.
type ParameterSweep struct {
	Config     *config.Config
	Constraint int
	Min        float64
	Max        float64
	NumSteps   int
}

type SweepResult struct {
	Value      float64
	Feasible   bool
	Err        error
	PathLength float64
	Degenerate int
}

// RunSweep executes the sweep. An infeasible value is a result, not an
// error; errors are reserved for a malformed sweep or a canceled context.
func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, ErrEmptySweep
	}
	base, err := sweep.Config.Build()
	if err != nil {
		return nil, err
	}
	constraints := base.Constraints()
	if sweep.Constraint < 0 || sweep.Constraint >= len(constraints) {
		return nil, fmt.Errorf("%w: constraint %d of %d", linkage.ErrConstraintCount, sweep.Constraint, len(constraints))
	}
	last := base.Len() - 1

	results := make([]SweepResult, 0, sweep.NumSteps)
	step := (sweep.Max - sweep.Min) / float64(sweep.NumSteps-1)
	for i := 0; i < sweep.NumSteps; i++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		value := sweep.Min + float64(i)*step
		res := SweepResult{Value: value}

		lk := base.Clone()
		vals := append([]float64(nil), constraints...)
		vals[sweep.Constraint] = value
		if err := lk.SetConstraints(vals); err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}

		s := sim.New(lk)
		path := metrics.NewPathLength(last)
		s.AddMetric(path)
		out, err := s.Run(ctx, sim.Config{Subdivisions: sweep.Config.Simulation.Subdivisions})
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			res.Err = err
		} else {
			res.Feasible = true
			res.PathLength = out.Metrics[path.Name()]
			res.Degenerate = len(out.Diagnostics)
		}
		results = append(results, res)
	}
	return results, nil
}
