package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/linksim/internal/linkage"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Simulation.Subdivisions <= 0 {
		t.Error("subdivisions should be positive")
	}
	if cfg.Optimize.Method != "grid" {
		t.Errorf("expected grid search by default, got %s", cfg.Optimize.Method)
	}
	if cfg.Optimize.MinRatio <= 0 || cfg.Optimize.MaxFactor <= 0 {
		t.Error("bounds ratios should be positive")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("fourbar")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if len(cfg.Joints) != 4 {
		t.Errorf("expected 4 joints, got %d", len(cfg.Joints))
	}

	cfg.Joints[3].Distances[0] = 42
	if Presets["fourbar"].Joints[3].Distances[0] != 3 {
		t.Error("editing a preset copy changed the shared preset")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	want := []string{"fourbar", "strider", "stroke-engine"}
	if len(presets) != len(want) {
		t.Fatalf("expected %v, got %v", want, presets)
	}
	for i := range want {
		if presets[i] != want[i] {
			t.Errorf("expected %v, got %v", want, presets)
		}
	}
}

func TestPresetsBuildAndSweep(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			lk, err := GetPreset(name).Build()
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			if dof := lk.DegreesOfFreedom(); dof != 0 {
				t.Errorf("expected exactly constrained preset, got dof %d", dof)
			}
			if _, err := lk.Sweep(lk.RotationPeriod(), 2); err != nil {
				t.Errorf("sweep failed: %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no joints", func(c *Config) { c.Joints = nil }},
		{"unnamed joint", func(c *Config) { c.Joints[0].Name = "" }},
		{"duplicate", func(c *Config) { c.Joints[1].Name = "A" }},
		{"unknown kind", func(c *Config) { c.Joints[0].Kind = "prismatic" }},
		{"anchor without coordinates", func(c *Config) { c.Joints[2].At = nil }},
		{"distance count", func(c *Config) { c.Joints[3].Distances = []float64{3} }},
		{"zero subdivisions", func(c *Config) { c.Simulation.Subdivisions = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetPreset("fourbar")
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestBuildStructuralError(t *testing.T) {
	cfg := GetPreset("fourbar")
	cfg.Joints[3].Parents = []string{"B", "ghost"}
	if _, err := cfg.Build(); !errors.Is(err, linkage.ErrStructural) {
		t.Errorf("expected structural error, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "strider"+ext)
			orig := GetPreset("strider")
			if err := Save(path, orig); err != nil {
				t.Fatalf("save failed: %v", err)
			}

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}

			a, err := orig.Build()
			if err != nil {
				t.Fatalf("build original: %v", err)
			}
			b, err := loaded.Build()
			if err != nil {
				t.Fatalf("build loaded: %v", err)
			}

			ca, cb := a.Constraints(), b.Constraints()
			if len(ca) != len(cb) {
				t.Fatalf("constraint count %d != %d", len(ca), len(cb))
			}
			for i := range ca {
				if ca[i] != cb[i] {
					t.Errorf("constraint %d: %v != %v", i, ca[i], cb[i])
				}
			}
			pa, pb := a.Positions(), b.Positions()
			for i := range pa {
				if pa[i] != pb[i] {
					t.Errorf("position %d: %v != %v", i, pa[i], pb[i])
				}
			}
		})
	}
}

func TestLoadTOML(t *testing.T) {
	src := `
name = "crank"

[simulation]
subdivisions = 8

[[joints]]
name = "O"
kind = "anchor"
at = [0.0, 0.0]

[[joints]]
name = "M"
kind = "motor"
parents = ["O"]
radius = 2.0
step = 0.5
`
	path := filepath.Join(t.TempDir(), "crank.toml")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Simulation.Subdivisions != 8 {
		t.Errorf("expected 8 subdivisions, got %d", cfg.Simulation.Subdivisions)
	}
	if cfg.Optimize.Keep != DefaultKeep {
		t.Error("defaults should survive a partial file")
	}
	lk, err := cfg.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if lk.RotationPeriod() != 13 {
		t.Errorf("expected period 13, got %d", lk.RotationPeriod())
	}
}

func TestWithConstraints(t *testing.T) {
	cfg := GetPreset("fourbar")
	out, err := cfg.WithConstraints([]float64{1.5, 2.5, 1.25})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if out.Joints[1].Radius != 1.5 || out.Joints[3].Distances[1] != 1.25 {
		t.Errorf("constraints not applied: %+v", out.Joints)
	}
	if cfg.Joints[1].Radius != 1 {
		t.Error("original config modified")
	}

	if _, err := cfg.WithConstraints([]float64{1, 2}); !errors.Is(err, linkage.ErrConstraintCount) {
		t.Errorf("expected count error, got %v", err)
	}
	if _, err := cfg.WithConstraints([]float64{1, 2, 3, 4}); !errors.Is(err, linkage.ErrConstraintCount) {
		t.Errorf("expected count error, got %v", err)
	}
}
