package sim

import (
	"github.com/san-kum/linksim/internal/linkage"
)

type Metric interface {
	Name() string
	Observe(tick int, f linkage.Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(tick int, f linkage.Frame)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(tick int, f linkage.Frame)

func (fn ObserverFunc) OnTick(tick int, f linkage.Frame) { fn(tick, f) }

type Config struct {
	// Iterations is the number of whole motor steps. Zero means one
	// rotation period.
	Iterations   int
	Subdivisions int
}

func DefaultConfig() Config {
	return Config{Subdivisions: 1}
}

type Result struct {
	Trajectory  linkage.Trajectory
	Metrics     map[string]float64
	Diagnostics []linkage.Diagnostic
	Iterations  int
	Ticks       int
}
