package metrics

import (
	"errors"
	"fmt"

	"github.com/san-kum/linksim/internal/geom"
	"github.com/san-kum/linksim/internal/linkage"
	"github.com/san-kum/linksim/internal/sim"
)

var (
	ErrUnknownMetric = errors.New("metrics: unknown metric")
	ErrNoTarget      = errors.New("metrics: box_distance needs a target box")
)

// Names lists the metrics New accepts.
func Names() []string {
	return []string{"box_distance", "closure_gap", "path_length", "stride"}
}

// New builds the named metric for one joint. target is only used by
// box_distance.
func New(name string, joint int, target *geom.BBox) (sim.Metric, error) {
	switch name {
	case "path_length":
		return NewPathLength(joint), nil
	case "closure_gap":
		return NewClosureGap(joint), nil
	case "stride":
		return NewStride(joint), nil
	case "box_distance":
		if target == nil {
			return nil, ErrNoTarget
		}
		return NewBoxDistance(joint, *target), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
}

// Defaults is the metric set recorded for every run: path length and
// closure gap of each moving joint.
func Defaults(lk *linkage.Linkage) []sim.Metric {
	var out []sim.Metric
	for i, j := range lk.Joints() {
		if j.Kind() == linkage.KindAnchor {
			continue
		}
		out = append(out, NewPathLength(i), NewClosureGap(i))
	}
	return out
}
