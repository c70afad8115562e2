package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/linksim/internal/automation"
	"github.com/san-kum/linksim/internal/storage"
)

var (
	sweepIndex int
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

func runBatch(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	logger.Info("running scenario", "name", sc.Name, "steps", len(sc.Steps))
	prog := newProgress(logger)
	results, runErr := automation.RunScenario(cmd.Context(), sc, loadDefinition)

	for i, r := range results {
		source := r.Step.SaveAs
		if source == "" {
			source = r.Step.Linkage
		}
		id, err := st.Save(source, r.Linkage, r.Config, r.Result)
		if err != nil {
			return err
		}
		if n := len(r.Result.Diagnostics); n > 0 {
			logger.Warn("degenerate steps", "step", i+1, "count", n)
		}
		fmt.Printf("step %d: %s -> %s (%d ticks)\n", i+1, source, id, r.Result.Ticks)
	}
	if runErr != nil {
		return runErr
	}
	prog.done("scenario complete", "runs", len(results))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())
	cfg, err := loadDefinition(args[0])
	if err != nil {
		return err
	}
	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Config:     cfg,
		Constraint: sweepIndex,
		Min:        sweepMin,
		Max:        sweepMax,
		NumSteps:   sweepSteps,
	})
	if err != nil {
		return err
	}
	logger.Info("swept", "linkage", cfg.Name, "constraint", sweepIndex, "values", len(results))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VALUE\tFEASIBLE\tPATH\tDEGENERATE")
	for _, r := range results {
		if !r.Feasible {
			logger.Debug("rejected", "value", r.Value, "err", r.Err)
			fmt.Fprintf(w, "%.4f\tno\t-\t-\n", r.Value)
			continue
		}
		fmt.Fprintf(w, "%.4f\tyes\t%.4f\t%d\n", r.Value, r.PathLength, r.Degenerate)
	}
	return w.Flush()
}
