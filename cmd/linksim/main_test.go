package main

import (
	"bytes"
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/san-kum/linksim/internal/config"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("expected default logger without one attached")
	}
	l := newLogger(&bytes.Buffer{}, log.InfoLevel)
	if loggerFromContext(withLogger(context.Background(), l)) != l {
		t.Error("expected attached logger")
	}
}

func TestLoadDefinition(t *testing.T) {
	cfg, err := loadDefinition("fourbar")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "four-bar" {
		t.Errorf("unexpected preset %q", cfg.Name)
	}

	path := filepath.Join(t.TempDir(), "crank.yaml")
	crank := config.GetPreset("fourbar")
	crank.Name = "crank copy"
	if err := config.Save(path, crank); err != nil {
		t.Fatal(err)
	}
	cfg, err = loadDefinition(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "crank copy" {
		t.Errorf("unexpected file definition %q", cfg.Name)
	}

	if _, err := loadDefinition(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestSweepDefinition(t *testing.T) {
	lk, traj, err := sweepDefinition(config.GetPreset("fourbar"))
	if err != nil {
		t.Fatal(err)
	}
	want := lk.RotationPeriod() * config.GetPreset("fourbar").Simulation.Subdivisions
	if len(traj) != want {
		t.Errorf("expected %d frames, got %d", want, len(traj))
	}
}

func TestObjective(t *testing.T) {
	cfg := config.GetPreset("fourbar")
	lk, err := cfg.Build()
	if err != nil {
		t.Fatal(err)
	}

	obj, _, err := objective(lk, cfg.Optimize)
	if err != nil {
		t.Fatal(err)
	}
	if s := obj(lk.Clone(), lk.Constraints(), lk.Positions()); math.IsInf(s, 0) || s < 0 {
		t.Errorf("nominal four-bar should score finitely, got %v", s)
	}
	if s := obj(lk.Clone(), []float64{1, 3.15, 1}, lk.Positions()); !math.IsInf(s, 1) {
		t.Errorf("infeasible candidate should get the penalty, got %v", s)
	}

	bad := cfg.Optimize
	bad.Joint = "Z"
	if _, _, err := objective(lk, bad); err == nil {
		t.Error("expected error for unknown joint")
	}
	bad = cfg.Optimize
	bad.Target = nil
	if _, _, err := objective(lk, bad); err == nil {
		t.Error("expected error for box_distance without target")
	}
}

func TestWriteOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	err := writeOutput(path, func(w io.Writer) error {
		_, err := w.Write([]byte("hello"))
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "hello" {
		t.Errorf("got %q, %v", data, err)
	}
}

func TestJointIndex(t *testing.T) {
	names := []string{"A", "B", "C"}
	if i, err := jointIndex(names, "C"); err != nil || i != 2 {
		t.Errorf("got %d, %v", i, err)
	}
	if _, err := jointIndex(names, "Z"); err == nil {
		t.Error("expected error for unknown joint")
	}
}

func TestRootRejectsUnknownTheme(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--theme", "neon", "presets"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for an unknown theme")
	}
}

func TestSimConfigFollowsDefinition(t *testing.T) {
	cfg := config.GetPreset("fourbar")
	cfg.Simulation.Iterations = 7
	got := simConfig(cfg)
	if got.Subdivisions != config.DefaultSubdivisions || got.Iterations != 7 {
		t.Errorf("got %+v, want %d subdivisions and 7 iterations", got, config.DefaultSubdivisions)
	}
}

func TestRunChecksUsesDefinitionSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fine.yaml")
	fine := config.GetPreset("fourbar")
	fine.Simulation.Subdivisions = 8
	if err := config.Save(path, fine); err != nil {
		t.Fatal(err)
	}

	checks := runChecks(context.Background(), []string{"fourbar", path, "missing-preset"})
	if len(checks) != 3 {
		t.Fatalf("expected 3 checks, got %d", len(checks))
	}
	for _, c := range checks[:2] {
		if c.err != nil {
			t.Fatalf("%s: %v", c.source, c.err)
		}
	}
	period := checks[0].linkage.RotationPeriod()
	if got := checks[0].result.Ticks; got != period*config.DefaultSubdivisions {
		t.Errorf("preset: expected %d ticks, got %d", period*config.DefaultSubdivisions, got)
	}
	if got := checks[1].result.Ticks; got != period*8 {
		t.Errorf("file: expected %d ticks, got %d", period*8, got)
	}
	if checks[2].linkage != nil || checks[2].err == nil {
		t.Error("expected a load error for the missing source")
	}
}

func TestOptimizeUnknownMethodRecordsNothing(t *testing.T) {
	dir := t.TempDir()
	cmd := newRootCmd()
	cmd.SetArgs([]string{"optimize", "fourbar", "--method", "annealing", "--data", dir})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for an unknown method")
	}
	if _, err := os.Stat(filepath.Join(dir, "trials.db")); !os.IsNotExist(err) {
		t.Errorf("trial database should not be created, stat err = %v", err)
	}
}
