package export

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/linksim/internal/linkage"
	"github.com/san-kum/linksim/internal/viz"
)

func fourBar(t *testing.T) (*linkage.Linkage, linkage.Trajectory) {
	t.Helper()
	lk, err := linkage.New("four-bar",
		linkage.NewAnchor("A", linkage.At(0, 0)),
		linkage.NewMotor("B", "A", 1, 0.31, linkage.At(0, 1)),
		linkage.NewAnchor("D", linkage.At(3, 0)),
		linkage.NewRevolute("C", "B", "D", 3, 1, linkage.At(3, 2)),
	)
	require.NoError(t, err)
	traj, err := lk.Sweep(lk.RotationPeriod(), 1)
	require.NoError(t, err)
	return lk, traj
}

func TestToDOTGolden(t *testing.T) {
	lk, _ := fourBar(t)
	dot, err := ToDOT(lk)
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "fourbar", []byte(dot))
}

func TestToDOTCycle(t *testing.T) {
	lk, _ := fourBar(t)
	require.NoError(t, lk.Rewire("B", "C"))
	_, err := ToDOT(lk)
	assert.ErrorIs(t, err, linkage.ErrStructural)
}

func TestRenderDOT(t *testing.T) {
	lk, _ := fourBar(t)
	dot, err := ToDOT(lk)
	require.NoError(t, err)

	svg, err := RenderDOT(context.Background(), dot)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")

	_, err = RenderDOT(context.Background(), "digraph {")
	assert.Error(t, err)
}

func TestLocusSVG(t *testing.T) {
	lk, traj := fourBar(t)
	svg, err := LocusSVG(lk, traj, 5, 400, 300)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.Equal(t, 2, strings.Count(svg, "<path"), "one locus per moving joint")
	assert.Equal(t, 3, strings.Count(svg, "<line"), "one bar per parent link")
	assert.Equal(t, lk.Len(), strings.Count(svg, "<circle"))

	_, err = LocusSVG(lk, nil, 0, 400, 300)
	assert.Error(t, err)
}

func TestCanvasToSVG(t *testing.T) {
	assert.Empty(t, CanvasToSVG(nil, 2))

	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	svg := CanvasToSVG(c, 2)
	assert.Equal(t, 2, strings.Count(svg, "<circle"))
	assert.Contains(t, svg, `width="8" height="8"`)
}

func TestWriteJSON(t *testing.T) {
	lk, traj := fourBar(t)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, lk, traj))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "four-bar", doc.Name)
	assert.Equal(t, 20, doc.Period)
	assert.Equal(t, 0, doc.DOF)
	require.Len(t, doc.Joints, 4)
	assert.Equal(t, "revolute", doc.Joints[3].Kind)
	assert.Equal(t, []string{"B", "D"}, doc.Joints[3].Parents)
	assert.Equal(t, []float64{3, 1}, doc.Joints[3].Constraints)
	require.NotNil(t, doc.Joints[3].Initial)
	assert.Equal(t, [2]float64{3, 2}, *doc.Joints[3].Initial)
	assert.Len(t, doc.Loci["C"], len(traj))
	assert.Equal(t, [2]float64{3, 0}, doc.Loci["D"][7])
}
