package storage

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/linksim/internal/linkage"
	"github.com/san-kum/linksim/internal/sim"
)

func fourBarRun(t *testing.T) (*linkage.Linkage, sim.Config, *sim.Result) {
	t.Helper()
	lk, err := linkage.New("four-bar",
		linkage.NewAnchor("A", linkage.At(0, 0)),
		linkage.NewMotor("B", "A", 1, 0.31, linkage.At(0, 1)),
		linkage.NewAnchor("D", linkage.At(3, 0)),
		linkage.NewRevolute("C", "B", "D", 3, 1, linkage.At(3, 2)),
	)
	require.NoError(t, err)

	cfg := sim.Config{Subdivisions: 2}
	result, err := sim.New(lk).Run(context.Background(), cfg)
	require.NoError(t, err)
	result.Metrics["gap"] = 0.5
	result.Metrics["unreachable"] = math.Inf(1)
	return lk, cfg, result
}

func TestStoreRoundTrip(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "runs"))
	require.NoError(t, s.Init())
	lk, cfg, result := fourBarRun(t)

	id, err := s.Save("fourbar", lk, cfg, result)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	meta, err := s.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "four-bar", meta.Linkage)
	assert.Equal(t, "fourbar", meta.Source)
	assert.Equal(t, []string{"A", "B", "D", "C"}, meta.Joints)
	assert.Equal(t, []float64{1, 3, 1}, meta.Constraints)
	assert.Equal(t, 20, meta.Iterations)
	assert.Equal(t, 0.5, meta.Metrics["gap"])
	assert.NotContains(t, meta.Metrics, "unreachable")

	loci, err := s.LoadLoci(id)
	require.NoError(t, err)
	require.Len(t, loci, len(result.Trajectory))
	for i := range loci {
		require.Len(t, loci[i], 4)
		for j := range loci[i] {
			assert.Equal(t, result.Trajectory[i][j], loci[i][j], "frame %d joint %d", i, j)
		}
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	lk, cfg, result := fourBarRun(t)

	first, err := s.Save("a", lk, cfg, result)
	require.NoError(t, err)
	second, err := s.Save("b", lk, cfg, result)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray"), nil, 0644))

	runs, err := s.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	ids := []string{runs[0].ID, runs[1].ID}
	assert.ElementsMatch(t, []string{first, second}, ids)
	assert.False(t, runs[0].Timestamp.Before(runs[1].Timestamp))
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestLoadLociCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bad"), 0755))
	csv := "tick,A_x,A_y\n0,1,oops\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad", "loci.csv"), []byte(csv), 0644))

	_, err := New(dir).LoadLoci("bad")
	assert.ErrorIs(t, err, ErrCorruptLoci)
}

func TestTrialLog(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trials.db")
	log, err := OpenTrialLog(path)
	require.NoError(t, err)
	defer log.Close()

	study, err := log.StartStudy(ctx, "four-bar", "grid", "maximize", 3)
	require.NoError(t, err)

	trials := []TrialRecord{
		{Index: 0, Dimensions: []float64{1, 3, 1}, Score: 2},
		{Index: 1, Dimensions: []float64{1, 0.5, 0.5}, Score: math.Inf(-1)},
		{Index: 2, Dimensions: []float64{1.2, 3, 1}, Score: 2.5},
		{Index: 3, Dimensions: []float64{0.8, 3, 1}, Score: 1.5},
	}
	require.NoError(t, log.Record(ctx, study, trials))

	best, err := log.Best(ctx, study, 2)
	require.NoError(t, err)
	require.Len(t, best, 2)
	assert.Equal(t, 2, best[0].Index)
	assert.Equal(t, []float64{1.2, 3, 1}, best[0].Dimensions)
	assert.Equal(t, 0, best[1].Index)

	studies, err := log.Studies(ctx)
	require.NoError(t, err)
	require.Len(t, studies, 1)
	assert.Equal(t, 4, studies[0].Trials)
	assert.Equal(t, "grid", studies[0].Method)
}

func TestTrialLogMinimizeOrder(t *testing.T) {
	ctx := context.Background()
	log, err := OpenTrialLog(filepath.Join(t.TempDir(), "trials.db"))
	require.NoError(t, err)
	defer log.Close()

	study, err := log.StartStudy(ctx, "four-bar", "pso", "minimize", 1)
	require.NoError(t, err)
	require.NoError(t, log.Record(ctx, study, []TrialRecord{
		{Index: 0, Dimensions: []float64{1}, Score: 3},
		{Index: 1, Dimensions: []float64{2}, Score: 1},
		{Index: 2, Dimensions: []float64{3}, Score: math.Inf(1)},
	}))

	best, err := log.Best(ctx, study, 10)
	require.NoError(t, err)
	require.Len(t, best, 2)
	assert.Equal(t, 1.0, best[0].Score)
}

func TestTrialLogUnknownStudy(t *testing.T) {
	ctx := context.Background()
	log, err := OpenTrialLog(filepath.Join(t.TempDir(), "trials.db"))
	require.NoError(t, err)
	defer log.Close()

	_, err = log.Best(ctx, "missing", 1)
	assert.ErrorIs(t, err, ErrUnknownStudy)

	err = log.Record(ctx, "missing", []TrialRecord{{Index: 0, Dimensions: []float64{1}, Score: 1}})
	assert.ErrorIs(t, err, ErrUnknownStudy)
}

func TestTrialLogReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trials.db")

	log, err := OpenTrialLog(path)
	require.NoError(t, err)
	_, err = log.StartStudy(ctx, "four-bar", "grid", "minimize", 3)
	require.NoError(t, err)
	require.NoError(t, log.Close())

	log, err = OpenTrialLog(path)
	require.NoError(t, err)
	defer log.Close()
	studies, err := log.Studies(ctx)
	require.NoError(t, err)
	assert.Len(t, studies, 1)
}
