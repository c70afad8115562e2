package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/linksim/internal/analysis"
	"github.com/san-kum/linksim/internal/config"
	"github.com/san-kum/linksim/internal/export"
	"github.com/san-kum/linksim/internal/gui"
	"github.com/san-kum/linksim/internal/linkage"
	"github.com/san-kum/linksim/internal/metrics"
	"github.com/san-kum/linksim/internal/sim"
	"github.com/san-kum/linksim/internal/storage"
	"github.com/san-kum/linksim/internal/viz"
)

// loadDefinition resolves a preset name or a definition file path.
func loadDefinition(source string) (*config.Config, error) {
	if cfg := config.GetPreset(source); cfg != nil {
		return cfg, nil
	}
	cfg, err := config.Load(source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%q is neither a preset (%s) nor a file", source, strings.Join(config.ListPresets(), ", "))
		}
		return nil, fmt.Errorf("failed to load definition: %w", err)
	}
	return cfg, nil
}

// sweepDefinition builds the linkage and sweeps it with the definition's
// simulation settings.
func sweepDefinition(cfg *config.Config) (*linkage.Linkage, linkage.Trajectory, error) {
	lk, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}
	iters := cfg.Simulation.Iterations
	if iters == 0 {
		iters = lk.RotationPeriod()
	}
	traj, err := lk.Sweep(iters, cfg.Simulation.Subdivisions)
	if err != nil {
		return nil, nil, err
	}
	return lk, traj, nil
}

func writeOutput(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func jointIndex(names []string, name string) (int, error) {
	for i, n := range names {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no joint named %q (have %s)", name, strings.Join(names, ", "))
}

// simConfig is the sweep a definition asks for.
func simConfig(cfg *config.Config) sim.Config {
	return sim.Config{Iterations: cfg.Simulation.Iterations, Subdivisions: cfg.Simulation.Subdivisions}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())
	cfg, err := loadDefinition(args[0])
	if err != nil {
		return err
	}
	lk, err := cfg.Build()
	if err != nil {
		return err
	}

	simCfg := simConfig(cfg)
	if cmd.Flags().Changed("iterations") {
		simCfg.Iterations = iterations
	}
	if cmd.Flags().Changed("subdivisions") {
		simCfg.Subdivisions = subdivisions
	}

	s := sim.New(lk)
	for _, m := range metrics.Defaults(lk) {
		s.AddMetric(m)
	}
	s.AddObserver(sim.ObserverFunc(func(t int, f linkage.Frame) {
		if t%100 == 0 {
			logger.Debug("tick", "n", t)
		}
	}))

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	logger.Info("running", "linkage", cfg.Name, "dof", lk.DegreesOfFreedom(), "period", lk.RotationPeriod())
	prog := newProgress(logger)
	result, err := s.Run(cmd.Context(), simCfg)
	if err != nil {
		return err
	}
	for _, d := range result.Diagnostics {
		logger.Warn("degenerate step", "joint", d.Joint, "tick", d.Tick)
	}

	runID, err := st.Save(args[0], lk, simCfg, result)
	if err != nil {
		return err
	}
	prog.done("run complete", "ticks", result.Ticks)

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n", result.Ticks)
	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, m := range metrics.Defaults(lk) {
		fmt.Fprintf(w, "  %s\t%.6f\n", m.Name(), result.Metrics[m.Name()])
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLINKAGE\tSOURCE\tTIME\tITERS\tSUBDIV\tDEGENERATE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.Linkage,
			run.Source,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Iterations,
			run.Subdivisions,
			run.Diagnostics,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	traj, err := st.LoadLoci(args[0])
	if err != nil {
		return err
	}
	if len(traj) < 2 {
		return fmt.Errorf("run %s has too few frames to plot", meta.ID)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("linkage: %s\n", meta.Linkage)
	fmt.Printf("frames: %d\n\n", len(traj))

	joints := make([]int, 0, len(meta.Joints))
	if jointName != "" {
		idx, err := jointIndex(meta.Joints, jointName)
		if err != nil {
			return err
		}
		joints = append(joints, idx)
	} else {
		for i := range meta.Joints {
			joints = append(joints, i)
		}
	}

	for _, i := range joints {
		xs, ys := analysis.Coordinates(traj.Locus(i))
		if isConstant(xs) && isConstant(ys) {
			continue
		}
		graph := asciigraph.PlotMany([][]float64{xs, ys},
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
			asciigraph.Caption(meta.Joints[i]+" x (blue), y (red)"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func isConstant(xs []float64) bool {
	for _, x := range xs {
		if x != xs[0] {
			return false
		}
	}
	return true
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	traj, err := st.LoadLoci(args[0])
	if err != nil {
		return err
	}

	idx := len(meta.Joints) - 1
	if jointName != "" {
		if idx, err = jointIndex(meta.Joints, jointName); err != nil {
			return err
		}
	}

	xs, ys, err := analysis.LocusSpectrum(traj.Locus(idx))
	if err != nil {
		return err
	}

	fmt.Printf("harmonic analysis: %s\n", meta.ID)
	fmt.Printf("linkage: %s, joint %s, %d frames\n\n", meta.Linkage, meta.Joints[idx], len(traj))

	for _, series := range []struct {
		name string
		ps   []float64
	}{{"x", xs}, {"y", ys}} {
		if len(series.ps) > 1 {
			fmt.Println(asciigraph.Plot(series.ps[1:],
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption("power spectrum ("+series.name+")"),
			))
			fmt.Println()
		}
		h := analysis.DominantHarmonic(series.ps)
		if h == 0 {
			fmt.Printf("%s: no harmonic content\n", series.name)
			continue
		}
		fmt.Printf("%s: dominant harmonic %d (%.1f cycles per %d frames)\n", series.name, h, float64(h), len(traj))
	}
	return nil
}

func showLinkage(cmd *cobra.Command, args []string) error {
	cfg, err := loadDefinition(args[0])
	if err != nil {
		return err
	}
	lk, traj, err := sweepDefinition(cfg)
	if err != nil {
		return err
	}
	scene, err := viz.NewScene(lk, traj)
	if err != nil {
		return err
	}
	fmt.Println(viz.Title(cfg.Name))
	fmt.Print(viz.Render(scene, tick, -1, width, height))
	fmt.Println(viz.KeyValue("DOF", lk.DegreesOfFreedom()))
	fmt.Println(viz.KeyValue("Period", lk.RotationPeriod()))
	fmt.Println(viz.KeyValue("Frames", len(traj)))
	if n := len(lk.Diagnostics()); n > 0 {
		fmt.Println(viz.ErrorText(fmt.Sprintf("%d degenerate steps", n)))
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	cfg, err := loadDefinition(args[0])
	if err != nil {
		return err
	}
	lk, traj, err := sweepDefinition(cfg)
	if err != nil {
		return err
	}
	svg, err := export.LocusSVG(lk, traj, tick, width, height)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	loggerFromContext(cmd.Context()).Info("wrote svg", "path", outFile)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	cfg, err := loadDefinition(args[0])
	if err != nil {
		return err
	}
	lk, traj, err := sweepDefinition(cfg)
	if err != nil {
		return err
	}
	return writeOutput(outFile, func(w io.Writer) error {
		return export.WriteJSON(w, lk, traj)
	})
}

func exportGIF(cmd *cobra.Command, args []string) error {
	cfg, err := loadDefinition(args[0])
	if err != nil {
		return err
	}
	lk, traj, err := sweepDefinition(cfg)
	if err != nil {
		return err
	}
	scene, err := viz.NewScene(lk, traj)
	if err != nil {
		return err
	}
	rec := viz.RecordScene(scene, width, height, trail)
	if err := writeOutput(outFile, rec.Encode); err != nil {
		return err
	}
	loggerFromContext(cmd.Context()).Info("wrote gif", "path", outFile, "frames", rec.Len())
	return nil
}

func graphLinkage(cmd *cobra.Command, args []string) error {
	cfg, err := loadDefinition(args[0])
	if err != nil {
		return err
	}
	lk, err := cfg.Build()
	if err != nil {
		return err
	}
	dot, err := export.ToDOT(lk)
	if err != nil {
		return err
	}
	if outFile == "" {
		fmt.Print(dot)
		return nil
	}
	svg, err := export.RenderDOT(cmd.Context(), dot)
	if err != nil {
		return err
	}
	return os.WriteFile(outFile, svg, 0644)
}

// check is the outcome of sweeping one definition in the check command.
type check struct {
	source  string
	linkage *linkage.Linkage
	result  *sim.Result
	err     error
}

// runChecks sweeps every source concurrently with the settings of its own
// definition. Sources that do not load or build are returned with a nil
// linkage.
func runChecks(ctx context.Context, sources []string) []check {
	checks := make([]check, len(sources))
	var sims []*sim.Simulator
	var cfgs []sim.Config
	var slots []int
	for i, src := range sources {
		checks[i].source = src
		cfg, err := loadDefinition(src)
		if err != nil {
			checks[i].err = err
			continue
		}
		lk, err := cfg.Build()
		if err != nil {
			checks[i].err = err
			continue
		}
		s := sim.New(lk)
		for _, m := range metrics.Defaults(lk) {
			s.AddMetric(m)
		}
		checks[i].linkage = lk
		sims = append(sims, s)
		cfgs = append(cfgs, simConfig(cfg))
		slots = append(slots, i)
	}

	results, errs := sim.NewEnsemble(sims...).RunEach(ctx, cfgs)
	for k, i := range slots {
		checks[i].result, checks[i].err = results[k], errs[k]
	}
	return checks
}

func checkLinkages(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())
	sources := args
	if len(sources) == 0 {
		sources = config.ListPresets()
	}

	prog := newProgress(logger)
	checks := runChecks(cmd.Context(), sources)
	prog.done("checked", "linkages", len(checks))

	var failed int
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tDOF\tPERIOD\tTICKS\tDEGENERATE\tSTATUS")
	for _, c := range checks {
		if c.linkage == nil {
			logger.Error("cannot build", "source", c.source, "err", c.err)
			failed++
			continue
		}
		status, ticks, degenerate := "ok", "-", "-"
		if c.err != nil {
			status = c.err.Error()
			failed++
			if linkage.IsRejection(c.err) {
				logger.Debug("rejected", "source", c.source, "err", c.err)
			}
		} else {
			ticks = fmt.Sprint(c.result.Ticks)
			degenerate = fmt.Sprint(len(c.result.Diagnostics))
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\n", c.source, c.linkage.DegreesOfFreedom(), c.linkage.RotationPeriod(), ticks, degenerate, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d linkages failed", failed, len(sources))
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadDefinition(args[0])
	if err != nil {
		return err
	}
	lk, err := cfg.Build()
	if err != nil {
		return err
	}
	m, err := viz.NewLiveModel(lk, cfg.Simulation.Subdivisions)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m.WithGIFPath(outFile), tea.WithAltScreen()).Run()
	return err
}

func runGUI(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return gui.Run("")
	}
	if config.GetPreset(args[0]) != nil {
		return gui.Run(args[0])
	}
	cfg, err := loadDefinition(args[0])
	if err != nil {
		return err
	}
	lk, err := cfg.Build()
	if err != nil {
		return err
	}
	return gui.RunLinkage(lk, cfg.Simulation.Subdivisions)
}
