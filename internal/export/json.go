package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/linksim/internal/linkage"
)

// Document is the JSON form of a swept linkage.
type Document struct {
	Name        string                  `json:"name"`
	Period      int                     `json:"period"`
	DOF         int                     `json:"dof"`
	Joints      []JointDoc              `json:"joints"`
	Loci        map[string][][2]float64 `json:"loci"`
	Diagnostics []string                `json:"diagnostics,omitempty"`
}

type JointDoc struct {
	Name        string      `json:"name"`
	Kind        string      `json:"kind"`
	Parents     []string    `json:"parents,omitempty"`
	Constraints []float64   `json:"constraints,omitempty"`
	Initial     *[2]float64 `json:"initial,omitempty"`
}

// NewDocument collects the structure of lk and the loci of traj.
func NewDocument(lk *linkage.Linkage, traj linkage.Trajectory) *Document {
	doc := &Document{
		Name:   lk.Name,
		Period: lk.RotationPeriod(),
		DOF:    lk.DegreesOfFreedom(),
		Loci:   make(map[string][][2]float64, lk.Len()),
	}
	for i, j := range lk.Joints() {
		doc.Joints = append(doc.Joints, JointDoc{
			Name:        j.Name(),
			Kind:        j.Kind().String(),
			Parents:     j.Parents(),
			Constraints: j.Constraints(),
		})
		if h, ok := j.Hint(); ok {
			doc.Joints[len(doc.Joints)-1].Initial = &[2]float64{h.X, h.Y}
		}
		locus := traj.Locus(i)
		pts := make([][2]float64, len(locus))
		for t, p := range locus {
			pts[t] = [2]float64{p.X, p.Y}
		}
		doc.Loci[j.Name()] = pts
	}
	for _, d := range lk.Diagnostics() {
		doc.Diagnostics = append(doc.Diagnostics, d.String())
	}
	return doc
}

// WriteJSON writes the document for lk and traj as indented JSON.
func WriteJSON(w io.Writer, lk *linkage.Linkage, traj linkage.Trajectory) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(lk, traj))
}
