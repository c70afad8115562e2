package automation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/linksim/internal/config"
	"github.com/san-kum/linksim/internal/linkage"
)

func presets(source string) (*config.Config, error) {
	if cfg := config.GetPreset(source); cfg != nil {
		return cfg, nil
	}
	return nil, fmt.Errorf("no preset %q", source)
}

const scenarioYAML = `
name: four-bar tour
description: nominal, then a longer rocker
steps:
  - linkage: fourbar
  - linkage: fourbar
    iterations: 5
    subdivisions: 2
    constraints: [1, 3, 1.05]
    save_as: long-rocker
  - linkage: fourbar
    constraints: [1, 3]
`

func TestRunScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tour.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenarioYAML), 0644))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	require.Len(t, sc.Steps, 3)
	assert.Equal(t, "long-rocker", sc.Steps[1].SaveAs)

	results, err := RunScenario(context.Background(), sc, presets)
	assert.ErrorIs(t, err, linkage.ErrConstraintCount)
	require.Len(t, results, 2)

	assert.Equal(t, 20*config.DefaultSubdivisions, results[0].Result.Ticks)
	assert.Equal(t, 10, results[1].Result.Ticks)
	assert.Equal(t, []float64{1, 3, 1.05}, results[1].Linkage.Constraints())
	assert.Contains(t, results[1].Result.Metrics, "path_length[3]")
}

func TestRunScenarioUnknownLinkage(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{{Linkage: "nope"}}}
	results, err := RunScenario(context.Background(), sc, presets)
	assert.Error(t, err)
	assert.Empty(t, results)
}

func TestRunSweep(t *testing.T) {
	sweep := &ParameterSweep{
		Config:     config.GetPreset("fourbar"),
		Constraint: 2,
		Min:        0.9,
		Max:        1.1,
		NumSteps:   5,
	}
	results, err := RunSweep(context.Background(), sweep)
	require.NoError(t, err)
	require.Len(t, results, 5)

	for _, i := range []int{0, 1} {
		assert.False(t, results[i].Feasible, "rocker %.2f cannot reach", results[i].Value)
		assert.True(t, linkage.IsRejection(results[i].Err))
	}
	for _, i := range []int{3, 4} {
		assert.True(t, results[i].Feasible, "rocker %.2f should assemble", results[i].Value)
		assert.Greater(t, results[i].PathLength, 0.0)
	}
	assert.InDelta(t, 1.1, results[4].Value, 1e-12)
}

func TestRunSweepInvalid(t *testing.T) {
	_, err := RunSweep(context.Background(), &ParameterSweep{Config: config.GetPreset("fourbar"), NumSteps: 1})
	assert.ErrorIs(t, err, ErrEmptySweep)

	_, err = RunSweep(context.Background(), &ParameterSweep{Config: config.GetPreset("fourbar"), Constraint: 3, NumSteps: 3})
	assert.ErrorIs(t, err, linkage.ErrConstraintCount)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = RunSweep(ctx, &ParameterSweep{Config: config.GetPreset("fourbar"), Min: 1, Max: 2, NumSteps: 3})
	assert.ErrorIs(t, err, context.Canceled)
}
