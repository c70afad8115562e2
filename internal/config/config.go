package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/linksim/internal/geom"
	"github.com/san-kum/linksim/internal/linkage"
)

const (
	DefaultSubdivisions = 4
	DefaultDivisions    = 5
	DefaultParticles    = 100
	DefaultSwarmIters   = 200
	DefaultMinRatio     = 5.0
	DefaultMaxFactor    = 5.0
	DefaultKeep         = 5
)

var ErrInvalid = errors.New("config: invalid linkage definition")

type Config struct {
	Name       string           `yaml:"name" toml:"name"`
	Tolerance  float64          `yaml:"tolerance,omitempty" toml:"tolerance,omitempty"`
	Joints     []JointConfig    `yaml:"joints" toml:"joints"`
	Simulation SimulationConfig `yaml:"simulation" toml:"simulation"`
	Optimize   OptimizeConfig   `yaml:"optimize" toml:"optimize"`
}

// JointConfig describes one joint. Which scalar fields apply depends on Kind:
// radius and step for a motor, distances for a revolute joint, radius and
// rail for a slider, distance and angle for a fixed joint.
type JointConfig struct {
	Name      string      `yaml:"name" toml:"name"`
	Kind      string      `yaml:"kind" toml:"kind"`
	Parents   []string    `yaml:"parents,omitempty" toml:"parents,omitempty"`
	At        *[2]float64 `yaml:"at,omitempty" toml:"at,omitempty"`
	Radius    float64     `yaml:"radius,omitempty" toml:"radius,omitempty"`
	Step      float64     `yaml:"step,omitempty" toml:"step,omitempty"`
	Distances []float64   `yaml:"distances,omitempty" toml:"distances,omitempty"`
	Distance  float64     `yaml:"distance,omitempty" toml:"distance,omitempty"`
	Angle     float64     `yaml:"angle,omitempty" toml:"angle,omitempty"`
	Rail      *RailConfig `yaml:"rail,omitempty" toml:"rail,omitempty"`
}

type RailConfig struct {
	Origin    [2]float64 `yaml:"origin" toml:"origin"`
	Direction [2]float64 `yaml:"direction" toml:"direction"`
}

type SimulationConfig struct {
	// Iterations of zero means one rotation period.
	Iterations   int `yaml:"iterations" toml:"iterations"`
	Subdivisions int `yaml:"subdivisions" toml:"subdivisions"`
}

type OptimizeConfig struct {
	Method     string      `yaml:"method" toml:"method"`
	Metric     string      `yaml:"metric" toml:"metric"`
	Goal       string      `yaml:"goal" toml:"goal"`
	Joint      string      `yaml:"joint" toml:"joint"`
	Target     *[4]float64 `yaml:"target,omitempty" toml:"target,omitempty"`
	Divisions  int         `yaml:"divisions" toml:"divisions"`
	Particles  int         `yaml:"particles" toml:"particles"`
	Iterations int         `yaml:"iterations" toml:"iterations"`
	MinRatio   float64     `yaml:"min_ratio" toml:"min_ratio"`
	MaxFactor  float64     `yaml:"max_factor" toml:"max_factor"`
	Keep       int         `yaml:"keep" toml:"keep"`
	Workers    int         `yaml:"workers,omitempty" toml:"workers,omitempty"`
	Seed       int64       `yaml:"seed,omitempty" toml:"seed,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "linkage",
		Simulation: SimulationConfig{
			Subdivisions: DefaultSubdivisions,
		},
		Optimize: OptimizeConfig{
			Method:     "grid",
			Metric:     "box_distance",
			Goal:       "minimize",
			Divisions:  DefaultDivisions,
			Particles:  DefaultParticles,
			Iterations: DefaultSwarmIters,
			MinRatio:   DefaultMinRatio,
			MaxFactor:  DefaultMaxFactor,
			Keep:       DefaultKeep,
		},
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a YAML or TOML definition, chosen by file extension, on top of
// DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if isTOML(path) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks the parts of the definition the solver cannot check
// itself. Graph problems such as cycles are reported by Build.
func (c *Config) Validate() error {
	if len(c.Joints) == 0 {
		return invalid("no joints")
	}
	seen := make(map[string]bool, len(c.Joints))
	for i, j := range c.Joints {
		if j.Name == "" {
			return invalid("joint %d has no name", i)
		}
		if seen[j.Name] {
			return invalid("duplicate joint %q", j.Name)
		}
		seen[j.Name] = true

		kind, err := linkage.ParseKind(j.Kind)
		if err != nil {
			return invalid("joint %q: %v", j.Name, err)
		}
		switch kind {
		case linkage.KindAnchor:
			if j.At == nil {
				return invalid("anchor %q needs coordinates", j.Name)
			}
		case linkage.KindRevolute:
			if len(j.Distances) != len(j.Parents) {
				return invalid("revolute %q has %d parents but %d distances", j.Name, len(j.Parents), len(j.Distances))
			}
		case linkage.KindSlider:
			if j.Rail == nil && len(j.Parents) < 2 {
				return invalid("slider %q needs a rail or a second parent", j.Name)
			}
		}
	}
	if c.Simulation.Iterations < 0 {
		return invalid("simulation iterations must not be negative")
	}
	if c.Simulation.Subdivisions <= 0 {
		return invalid("simulation subdivisions must be positive")
	}
	return nil
}

func point(a *[2]float64) geom.Point {
	if a == nil {
		return geom.Point{}
	}
	return geom.Pt(a[0], a[1])
}

func parent(parents []string, i int) string {
	if i < len(parents) {
		return parents[i]
	}
	return ""
}

// Build validates the definition and assembles the linkage.
func (c *Config) Build() (*linkage.Linkage, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	joints := make([]*linkage.Joint, 0, len(c.Joints))
	for _, jc := range c.Joints {
		var opts []linkage.Option
		if jc.At != nil {
			opts = append(opts, linkage.At(jc.At[0], jc.At[1]))
		}
		kind, _ := linkage.ParseKind(jc.Kind)
		p0, p1 := parent(jc.Parents, 0), parent(jc.Parents, 1)

		var j *linkage.Joint
		switch kind {
		case linkage.KindAnchor:
			j = linkage.NewAnchor(jc.Name, opts...)
		case linkage.KindMotor:
			j = linkage.NewMotor(jc.Name, p0, jc.Radius, jc.Step, opts...)
		case linkage.KindRevolute:
			d := append(append([]float64(nil), jc.Distances...), 0, 0)
			j = linkage.NewRevolute(jc.Name, p0, p1, d[0], d[1], opts...)
		case linkage.KindSlider:
			var rail linkage.Rail
			if jc.Rail != nil {
				rail = linkage.Rail{Origin: point(&jc.Rail.Origin), Direction: point(&jc.Rail.Direction)}
			}
			j = linkage.NewSlider(jc.Name, p0, p1, jc.Radius, rail, opts...)
		case linkage.KindFixed:
			j = linkage.NewFixed(jc.Name, p0, p1, jc.Distance, jc.Angle, opts...)
		}
		joints = append(joints, j)
	}

	lk, err := linkage.New(c.Name, joints...)
	if err != nil {
		return nil, err
	}
	lk.Tolerance = c.Tolerance
	return lk, nil
}

// WithConstraints returns a copy of c whose joint scalars are replaced by a
// flat constraint list in linkage order.
func (c *Config) WithConstraints(values []float64) (*Config, error) {
	out := c.Clone()
	off := 0
	take := func(n int) ([]float64, error) {
		if off+n > len(values) {
			return nil, fmt.Errorf("%w: ran out after %d values", linkage.ErrConstraintCount, len(values))
		}
		v := values[off : off+n]
		off += n
		return v, nil
	}
	for i := range out.Joints {
		j := &out.Joints[i]
		kind, err := linkage.ParseKind(j.Kind)
		if err != nil {
			return nil, invalid("joint %q: %v", j.Name, err)
		}
		switch kind {
		case linkage.KindMotor, linkage.KindSlider:
			v, err := take(1)
			if err != nil {
				return nil, err
			}
			j.Radius = v[0]
		case linkage.KindRevolute:
			v, err := take(2)
			if err != nil {
				return nil, err
			}
			j.Distances = []float64{v[0], v[1]}
		case linkage.KindFixed:
			v, err := take(2)
			if err != nil {
				return nil, err
			}
			j.Distance, j.Angle = v[0], v[1]
		}
	}
	if off != len(values) {
		return nil, fmt.Errorf("%w: %d values left over", linkage.ErrConstraintCount, len(values)-off)
	}
	return out, nil
}

// Clone returns a deep copy so callers can edit a preset without touching
// the shared table.
func (c *Config) Clone() *Config {
	out := *c
	out.Joints = make([]JointConfig, len(c.Joints))
	for i, j := range c.Joints {
		cp := j
		cp.Parents = append([]string(nil), j.Parents...)
		cp.Distances = append([]float64(nil), j.Distances...)
		if j.At != nil {
			at := *j.At
			cp.At = &at
		}
		if j.Rail != nil {
			r := *j.Rail
			cp.Rail = &r
		}
		out.Joints[i] = cp
	}
	if c.Optimize.Target != nil {
		t := *c.Optimize.Target
		out.Optimize.Target = &t
	}
	return &out
}

// TargetBox returns the optimization target as a bounding box.
func (o OptimizeConfig) TargetBox() (geom.BBox, bool) {
	if o.Target == nil {
		return geom.BBox{}, false
	}
	t := o.Target
	return geom.BBox{MinY: t[0], MaxX: t[1], MaxY: t[2], MinX: t[3]}, true
}
