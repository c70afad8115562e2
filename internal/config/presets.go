package config

import (
	"math"
	"sort"
)

func at(x, y float64) *[2]float64 { return &[2]float64{x, y} }

func optimize(method, metric, goal, joint string, target *[4]float64) OptimizeConfig {
	o := DefaultConfig().Optimize
	o.Method, o.Metric, o.Goal, o.Joint, o.Target = method, metric, goal, joint, target
	return o
}

var Presets = map[string]*Config{
	"fourbar": {
		Name: "four-bar",
		Joints: []JointConfig{
			{Name: "A", Kind: "anchor", At: at(0, 0)},
			{Name: "B", Kind: "motor", Parents: []string{"A"}, Radius: 1, Step: 0.31, At: at(0, 1)},
			{Name: "D", Kind: "anchor", At: at(3, 0)},
			{Name: "C", Kind: "revolute", Parents: []string{"B", "D"}, Distances: []float64{3, 1}, At: at(3, 2)},
		},
		Simulation: SimulationConfig{Subdivisions: DefaultSubdivisions},
		Optimize:   optimize("grid", "box_distance", "minimize", "C", &[4]float64{0, 5, 2, 3}),
	},
	"stroke-engine": {
		Name: "inverted stroke engine",
		Joints: []JointConfig{
			{Name: "A", Kind: "anchor", At: at(0, 0)},
			{Name: "Crank", Kind: "motor", Parents: []string{"A"}, Radius: 1, Step: 0.1, At: at(1, 0)},
			{
				Name: "Slider", Kind: "slider", Parents: []string{"Crank"}, Radius: 1.5, At: at(2, 0),
				Rail: &RailConfig{Origin: [2]float64{0, 0}, Direction: [2]float64{1, 0}},
			},
		},
		Simulation: SimulationConfig{Subdivisions: DefaultSubdivisions},
		Optimize:   optimize("grid", "stride", "maximize", "Slider", nil),
	},
	"strider": {
		Name: "strider",
		Joints: []JointConfig{
			{Name: "A", Kind: "anchor", At: at(0, 0)},
			{Name: "Y", Kind: "anchor", At: at(0, 1)},
			{Name: "B", Kind: "fixed", Parents: []string{"A", "Y"}, Distance: 2, Angle: -math.Pi / 4, At: at(1.41, 1.41)},
			{Name: "B_p", Kind: "fixed", Parents: []string{"A", "Y"}, Distance: 2, Angle: math.Pi / 4, At: at(-1.41, 1.41)},
			{Name: "C", Kind: "motor", Parents: []string{"A"}, Radius: 1, Step: -2 * math.Pi / 10, At: at(0, -1)},
			{Name: "D", Kind: "revolute", Parents: []string{"B_p", "C"}, Distances: []float64{1.8, 2.6}, At: at(-2.25, 0)},
			{Name: "E", Kind: "revolute", Parents: []string{"B", "C"}, Distances: []float64{1.8, 2.6}, At: at(2.25, 0)},
			{Name: "F", Kind: "fixed", Parents: []string{"C", "E"}, Distance: 1.4, Angle: -(math.Pi + 0.2), At: at(-1.4, -1.2)},
			{Name: "G", Kind: "fixed", Parents: []string{"C", "D"}, Distance: 1.4, Angle: math.Pi + 0.2, At: at(1.4, -1.2)},
			{Name: "H", Kind: "revolute", Parents: []string{"D", "F"}, Distances: []float64{2.5, 1.8}, At: at(-2.7, -2.7)},
			{Name: "I", Kind: "revolute", Parents: []string{"E", "G"}, Distances: []float64{2.5, 1.8}, At: at(2.7, -2.7)},
		},
		Simulation: SimulationConfig{Subdivisions: DefaultSubdivisions},
		Optimize:   optimize("pso", "stride", "maximize", "H", nil),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
