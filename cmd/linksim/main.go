package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/linksim/internal/config"
	"github.com/san-kum/linksim/internal/gui"
	"github.com/san-kum/linksim/internal/viz"
)

var (
	dataDir string
	verbose bool
	theme   string

	iterations   int
	subdivisions int

	jointName string
	outFile   string
	tick      int
	width     int
	height    int
	trail     int

	method     string
	goalName   string
	metricName string
	divisions  int
	particles  int
	workers    int
	seed       int64
	sequential bool
	saveBest   string
	dbPath     string
	top        int
)

// main registers the commands and exits with status 1 on error.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "linksim",
		Short:        "planar linkage kinematics lab",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			logger := newLogger(os.Stderr, level)
			log.SetDefault(logger)
			cmd.SetContext(withLogger(cmd.Context(), logger))

			if !slices.Contains(viz.ThemeNames(), theme) {
				return fmt.Errorf("unknown theme %q (want %s)", theme, strings.Join(viz.ThemeNames(), ", "))
			}
			viz.SetTheme(theme)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return gui.Run("")
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".linksim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", viz.CurrentTheme.Name, "terminal color theme")

	runCmd := &cobra.Command{
		Use:   "run [preset|file]",
		Short: "sweep a linkage and store the run",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().IntVar(&iterations, "iterations", 0, "motor steps (0 = one rotation period)")
	runCmd.Flags().IntVar(&subdivisions, "subdivisions", 0, "ticks per motor step (0 = from definition)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot joint coordinates of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&jointName, "joint", "", "joint to plot (default: every moving joint)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "harmonic content of a joint locus",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&jointName, "joint", "", "joint to analyze (default: last joint)")

	showCmd := &cobra.Command{
		Use:   "show [preset|file]",
		Short: "draw a linkage and its loci in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  showLinkage,
	}
	showCmd.Flags().IntVar(&tick, "tick", 0, "frame to draw the bars at")
	showCmd.Flags().IntVar(&width, "width", 60, "width in cells")
	showCmd.Flags().IntVar(&height, "height", 20, "height in cells")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [preset|file]",
		Short: "write the loci as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "linkage.svg", "output file")
	exportSVGCmd.Flags().IntVar(&tick, "tick", 0, "frame to draw the bars at")
	exportSVGCmd.Flags().IntVar(&width, "width", 800, "width in pixels")
	exportSVGCmd.Flags().IntVar(&height, "height", 600, "height in pixels")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [preset|file]",
		Short: "write the structure and loci as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "-", "output file (- for stdout)")

	exportGIFCmd := &cobra.Command{
		Use:   "export-gif [preset|file]",
		Short: "record one rotation period as an animated GIF",
		Args:  cobra.ExactArgs(1),
		RunE:  exportGIF,
	}
	exportGIFCmd.Flags().StringVarP(&outFile, "out", "o", "linkage.gif", "output file")
	exportGIFCmd.Flags().IntVar(&width, "width", 60, "width in cells")
	exportGIFCmd.Flags().IntVar(&height, "height", 20, "height in cells")
	exportGIFCmd.Flags().IntVar(&trail, "trail", 40, "locus ticks drawn behind each joint")

	graphCmd := &cobra.Command{
		Use:   "graph [preset|file]",
		Short: "print the joint dependency graph as DOT, or render it to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  graphLinkage,
	}
	graphCmd.Flags().StringVarP(&outFile, "out", "o", "", "render SVG to this file instead of printing DOT")

	checkCmd := &cobra.Command{
		Use:   "check [preset|file]...",
		Short: "check that linkages assemble over a full rotation (default: all presets)",
		RunE:  checkLinkages,
	}

	optimizeCmd := &cobra.Command{
		Use:   "optimize [preset|file]",
		Short: "search constraint values for the best score",
		Args:  cobra.ExactArgs(1),
		RunE:  optimizeLinkage,
	}
	optimizeCmd.Flags().StringVar(&method, "method", "", "grid or pso")
	optimizeCmd.Flags().StringVar(&goalName, "goal", "", "minimize or maximize")
	optimizeCmd.Flags().StringVar(&metricName, "metric", "", "metric to score")
	optimizeCmd.Flags().StringVar(&jointName, "joint", "", "joint the metric is computed on")
	optimizeCmd.Flags().IntVar(&divisions, "divisions", 0, "grid divisions per dimension")
	optimizeCmd.Flags().IntVar(&particles, "particles", 0, "swarm size")
	optimizeCmd.Flags().IntVar(&iterations, "iterations", 0, "swarm iterations")
	optimizeCmd.Flags().IntVar(&workers, "workers", 0, "parallel evaluators (0 = GOMAXPROCS)")
	optimizeCmd.Flags().Int64Var(&seed, "seed", 0, "swarm random seed")
	optimizeCmd.Flags().BoolVar(&sequential, "sequential", false, "use the sequential grid layout")
	optimizeCmd.Flags().StringVar(&saveBest, "save", "", "write the best linkage definition to this file")
	optimizeCmd.Flags().StringVar(&dbPath, "db", "", "trial database (default: <data>/trials.db)")

	trialsCmd := &cobra.Command{
		Use:   "trials [study_id]",
		Short: "list optimizer studies, or the best trials of one study",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listTrials,
	}
	trialsCmd.Flags().StringVar(&dbPath, "db", "", "trial database (default: <data>/trials.db)")
	trialsCmd.Flags().IntVar(&top, "top", 10, "number of trials to show")

	liveCmd := &cobra.Command{
		Use:   "live [preset|file]",
		Short: "animate a linkage in the terminal with live tuning",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVarP(&outFile, "gif", "g", "linkage.gif", "where the g key saves recordings")

	guiCmd := &cobra.Command{
		Use:   "gui [preset|file]",
		Short: "open the linkage in a window",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGUI,
	}

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run and store every step of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset|file]",
		Short: "vary one constraint and report where the linkage assembles",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().IntVar(&sweepIndex, "index", 0, "index into the flat constraint list")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.5, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 2, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 11, "number of values")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in linkages",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-14s %s (%d joints)\n", name, p.Name, len(p.Joints))
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, showCmd, exportSVGCmd, exportJSONCmd, exportGIFCmd,
		graphCmd, checkCmd, optimizeCmd, trialsCmd, batchCmd, sweepCmd, liveCmd, guiCmd, presetsCmd)
	return rootCmd
}
