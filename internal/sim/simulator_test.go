package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/linksim/internal/linkage"
)

func testLinkage(t *testing.T, revoluteDist float64) *linkage.Linkage {
	t.Helper()
	l, err := linkage.New("four-bar",
		linkage.NewAnchor("A", linkage.At(0, 0)),
		linkage.NewMotor("B", "A", 1, 0.31, linkage.At(0, 1)),
		linkage.NewAnchor("D", linkage.At(3, 0)),
		linkage.NewRevolute("C", "B", "D", revoluteDist, 1, linkage.At(3, 2)),
	)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return l
}

func TestSimulatorRun(t *testing.T) {
	sim := New(testLinkage(t, 3))

	result, err := sim.Run(context.Background(), Config{Subdivisions: 2})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Iterations != 20 {
		t.Errorf("expected one rotation period of 20, got %d", result.Iterations)
	}
	if len(result.Trajectory) != 40 {
		t.Errorf("expected 40 frames, got %d", len(result.Trajectory))
	}
	if result.Ticks != len(result.Trajectory) {
		t.Errorf("ticks %d != frames %d", result.Ticks, len(result.Trajectory))
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(testLinkage(t, 3))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero subdivisions", Config{Iterations: 1, Subdivisions: 0}},
		{"negative subdivisions", Config{Iterations: 1, Subdivisions: -1}},
		{"negative iterations", Config{Iterations: -1, Subdivisions: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.cfg)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSimulatorUnbuildable(t *testing.T) {
	sim := New(testLinkage(t, 0.5))

	result, err := sim.Run(context.Background(), Config{Subdivisions: 1})
	if result != nil {
		t.Error("expected no result for an unbuildable linkage")
	}
	if !errors.Is(err, linkage.ErrUnbuildable) {
		t.Errorf("expected unbuildable, got %v", err)
	}
}

func TestSimulatorCanceled(t *testing.T) {
	sim := New(testLinkage(t, 3))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := sim.Run(ctx, DefaultConfig()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

type testMetric struct {
	count int
	sumX  float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(tick int, f linkage.Frame) {
	t.count++
	t.sumX += f[3].X
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sumX / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sumX = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New(testLinkage(t, 3))

	metric := &testMetric{}
	sim.AddMetric(metric)

	var seen []int
	sim.AddObserver(ObserverFunc(func(tick int, f linkage.Frame) {
		seen = append(seen, tick)
	}))

	result, err := sim.Run(context.Background(), Config{Iterations: 10, Subdivisions: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
	if len(seen) != 10 || seen[9] != 9 {
		t.Errorf("observer saw ticks %v", seen)
	}
}

func TestEnsemble(t *testing.T) {
	e := NewEnsemble(New(testLinkage(t, 3)), New(testLinkage(t, 0.5)), New(testLinkage(t, 3)))

	results, errs := e.Run(context.Background(), Config{Subdivisions: 1})
	if errs[0] != nil || errs[2] != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !errors.Is(errs[1], linkage.ErrUnbuildable) {
		t.Errorf("expected unbuildable for second run, got %v", errs[1])
	}
	if len(results[0].Trajectory) != len(results[2].Trajectory) {
		t.Error("identical linkages produced different trajectory lengths")
	}
}

func TestEnsembleRunEach(t *testing.T) {
	e := NewEnsemble(New(testLinkage(t, 3)), New(testLinkage(t, 3)))

	results, errs := e.RunEach(context.Background(), []Config{{Subdivisions: 1}, {Subdivisions: 4}})
	if errs[0] != nil || errs[1] != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if got, want := results[1].Ticks, 4*results[0].Ticks; got != want {
		t.Errorf("expected %d ticks with 4 subdivisions, got %d", want, got)
	}

	_, errs = e.RunEach(context.Background(), []Config{{Subdivisions: 1}})
	for i, err := range errs {
		if err == nil {
			t.Errorf("slot %d: expected error for a config count mismatch", i)
		}
	}
}
