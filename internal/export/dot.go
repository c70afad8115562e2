package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/san-kum/linksim/internal/linkage"
)

// ToDOT converts the parent graph of a linkage to Graphviz DOT, with edges
// pointing from each parent to the joint it drives. Nodes are listed in solve
// order so the layout reads top to bottom. The result can be rendered with
// [RenderDOT].
func ToDOT(lk *linkage.Linkage) (string, error) {
	order, err := lk.SolveOrder()
	if err != nil {
		return "", err
	}
	joints := lk.Joints()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	fmt.Fprintf(&buf, "  label=%q;\n", lk.Name)
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	for _, id := range order {
		j := joints[id]
		fmt.Fprintf(&buf, "  %q [%s];\n", j.Name(), nodeAttrs(j))
	}

	buf.WriteString("\n")
	for _, id := range order {
		j := joints[id]
		for _, p := range j.Parents() {
			fmt.Fprintf(&buf, "  %q -> %q;\n", p, j.Name())
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func nodeAttrs(j *linkage.Joint) string {
	label := fmt.Sprintf("label=%q", j.Name()+"\n"+j.Kind().String())
	switch j.Kind() {
	case linkage.KindAnchor:
		return label + ", shape=doublecircle, fillcolor=lightgrey"
	case linkage.KindMotor:
		return label + ", fillcolor=lightblue"
	}
	return label
}

// RenderDOT renders a DOT graph to SVG using Graphviz.
func RenderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
