package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/linksim/internal/config"
	"github.com/san-kum/linksim/internal/geom"
	"github.com/san-kum/linksim/internal/linkage"
	"github.com/san-kum/linksim/internal/metrics"
	"github.com/san-kum/linksim/internal/optim"
	"github.com/san-kum/linksim/internal/sim"
	"github.com/san-kum/linksim/internal/storage"
)

const recordBatch = 256

// applyOptimizeFlags overrides the definition's optimize section with any
// flags set on the command line.
func applyOptimizeFlags(cmd *cobra.Command, o *config.OptimizeConfig) {
	flags := cmd.Flags()
	if flags.Changed("method") {
		o.Method = method
	}
	if flags.Changed("goal") {
		o.Goal = goalName
	}
	if flags.Changed("metric") {
		o.Metric = metricName
	}
	if flags.Changed("joint") {
		o.Joint = jointName
	}
	if flags.Changed("divisions") {
		o.Divisions = divisions
	}
	if flags.Changed("particles") {
		o.Particles = particles
	}
	if flags.Changed("iterations") {
		o.Iterations = iterations
	}
	if flags.Changed("workers") {
		o.Workers = workers
	}
	if flags.Changed("seed") {
		o.Seed = seed
	}
}

// objective builds the scoring function named by o for lk.
func objective(lk *linkage.Linkage, o config.OptimizeConfig) (optim.Objective, optim.Goal, error) {
	goal, err := optim.ParseGoal(o.Goal)
	if err != nil {
		return nil, 0, err
	}

	joint := lk.Len() - 1
	if o.Joint != "" {
		j, ok := lk.Lookup(o.Joint)
		if !ok {
			return nil, 0, fmt.Errorf("no joint named %q", o.Joint)
		}
		joint = j.ID()
	}

	var target *geom.BBox
	if box, ok := o.TargetBox(); ok {
		target = &box
	}
	if _, err := metrics.New(o.Metric, joint, target); err != nil {
		return nil, 0, err
	}
	newMetric := func() sim.Metric {
		m, _ := metrics.New(o.Metric, joint, target)
		return m
	}
	return optim.Kinematic(goal, optim.MetricScore(newMetric)), goal, nil
}

// trialRecorder buffers trials and writes them to the log in batches. The
// first write error is kept and reported by flush.
type trialRecorder struct {
	ctx     context.Context
	log     *storage.TrialLog
	study   string
	pending []storage.TrialRecord
	err     error
	logger  *log.Logger
}

func (r *trialRecorder) add(t optim.Trial) {
	rec := storage.TrialRecord{Index: t.Index, Dimensions: t.Dimensions, Score: t.Score}
	if !rec.Feasible() {
		r.logger.Debug("infeasible candidate", "trial", t.Index, "dims", t.Dimensions)
	}
	r.pending = append(r.pending, rec)
	if len(r.pending) >= recordBatch {
		r.flush()
	}
}

func (r *trialRecorder) flush() error {
	if r.err == nil && len(r.pending) > 0 {
		r.err = r.log.Record(r.ctx, r.study, r.pending)
	}
	r.pending = r.pending[:0]
	return r.err
}

func trialDB() string {
	if dbPath != "" {
		return dbPath
	}
	return filepath.Join(dataDir, "trials.db")
}

func optimizeLinkage(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadDefinition(args[0])
	if err != nil {
		return err
	}
	o := cfg.Optimize
	applyOptimizeFlags(cmd, &o)
	if o.Method != "grid" && o.Method != "pso" {
		return fmt.Errorf("unknown method %q (want grid or pso)", o.Method)
	}

	lk, err := cfg.Build()
	if err != nil {
		return err
	}
	obj, goal, err := objective(lk, o)
	if err != nil {
		return err
	}
	center := lk.Constraints()
	bounds, err := optim.GenerateBounds(center, o.MinRatio, o.MaxFactor)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	tl, err := storage.OpenTrialLog(trialDB())
	if err != nil {
		return err
	}
	defer tl.Close()
	studyID, err := tl.StartStudy(ctx, cfg.Name, o.Method, goal.String(), len(center))
	if err != nil {
		return err
	}
	rec := &trialRecorder{ctx: ctx, log: tl, study: studyID, logger: logger}

	logger.Info("optimizing", "linkage", cfg.Name, "method", o.Method, "metric", o.Metric, "goal", goal, "dims", len(center), "study", studyID)
	prog := newProgress(logger)

	var agents []optim.Agent
	switch o.Method {
	case "grid":
		g := optim.NewGridSearch(bounds, o.Divisions, goal)
		g.Center = center
		g.Sequential = sequential
		g.Keep = o.Keep
		g.Workers = o.Workers
		g.OnTrial = rec.add
		logger.Debug("grid size", "candidates", g.Size())
		agents, err = g.Search(ctx, lk, obj)
	case "pso":
		s := optim.NewSwarm(bounds, goal)
		s.Center = center
		s.Particles = o.Particles
		s.Iterations = o.Iterations
		s.Workers = o.Workers
		if o.Seed != 0 {
			s.Seed = o.Seed
		}
		s.OnTrial = rec.add
		var best optim.Agent
		if best, err = s.Optimize(ctx, lk, obj); err == nil {
			agents = []optim.Agent{best}
		}
	}
	if ferr := rec.flush(); err == nil {
		err = ferr
	}
	if err != nil {
		return err
	}
	prog.done("optimization complete", "study", studyID)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSCORE\tDIMENSIONS")
	fmt.Fprintf(w, "start\t%.6f\t%v\n", obj(lk.Clone(), center, lk.Positions()), center)
	for i, a := range agents {
		fmt.Fprintf(w, "%d\t%.6f\t%.4f\n", i+1, a.Score, a.Dimensions)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if saveBest == "" {
		return nil
	}
	if len(agents) == 0 || agents[0].Score == goal.Penalty() {
		return fmt.Errorf("no feasible candidate to save")
	}
	best, err := cfg.WithConstraints(agents[0].Dimensions)
	if err != nil {
		return err
	}
	best.Optimize = o
	if err := config.Save(saveBest, best); err != nil {
		return err
	}
	logger.Info("saved best linkage", "path", saveBest)
	return nil
}

func listTrials(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	tl, err := storage.OpenTrialLog(trialDB())
	if err != nil {
		return err
	}
	defer tl.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if len(args) == 0 {
		studies, err := tl.Studies(ctx)
		if err != nil {
			return err
		}
		if len(studies) == 0 {
			fmt.Println("no studies found")
			return nil
		}
		fmt.Fprintln(w, "ID\tLINKAGE\tMETHOD\tGOAL\tDIMS\tTRIALS\tCREATED")
		for _, s := range studies {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
				s.ID, s.Linkage, s.Method, s.Goal, s.Dimensions, s.Trials, s.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	}

	best, err := tl.Best(ctx, args[0], top)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "TRIAL\tSCORE\tDIMENSIONS")
	for _, t := range best {
		fmt.Fprintf(w, "%d\t%.6f\t%.4f\n", t.Index, t.Score, t.Dimensions)
	}
	return w.Flush()
}
