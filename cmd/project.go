package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/fcelec/cablesize/internal/circuit"
	"github.com/fcelec/cablesize/internal/project"
	"github.com/fcelec/cablesize/internal/store"
	"github.com/fcelec/cablesize/internal/styles"
	"github.com/spf13/cobra"
)

var (
	projectSave    bool
	projectWorkers int
	historyLimit   int
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Size every circuit of an installation project",
	Long: `Size all circuits of a project file made of distribution boards.

Each board lists its outgoing circuits. When a board declares a feeder,
the feeder is sized on the summed circuit load multiplied by the board
simultaneity factor, with the submain voltage-drop limit.

Sized runs can be stored in the run history database.`,
}

var projectSizeCmd = &cobra.Command{
	Use:   "size FILE",
	Short: "Size the circuits of a project file",
	Long: `Size the circuits of a project JSON file and print one table per
board followed by the bill of quantities.

A circuit that cannot be sized is reported with its error; the other
circuits are still sized. Exit status is 2 if any circuit is invalid and
1 if any circuit exceeds the standard sizes.

Example project file:
  {
    "name": "Workshop",
    "boards": [{
      "name": "TGBT",
      "voltage": "three-phase",
      "feeder": {"length_m": 40, "material": "copper", "method": "buried", "power_factor": 0.85},
      "circuits": [
        {"name": "lighting", "power_w": 1800, "power_factor": 1, "voltage": "mono",
         "length_m": 30, "material": "copper", "method": "conduit", "application": "lighting"}
      ]
    }]
  }

Examples:
  cablesize project size workshop.json
  cablesize project size workshop.json --save --workers 8
  cablesize project size workshop.json --json`,
	Args: cobra.ExactArgs(1),
	Run:  runProjectSize,
}

var projectHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored sizing runs, newest first",
	Run:   runProjectHistory,
}

var projectShowCmd = &cobra.Command{
	Use:   "show RUN_ID",
	Short: "Show the outcomes of a stored sizing run",
	Args:  cobra.ExactArgs(1),
	Run:   runProjectShow,
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectSizeCmd)
	projectCmd.AddCommand(projectHistoryCmd)
	projectCmd.AddCommand(projectShowCmd)

	projectSizeCmd.Flags().BoolVar(&projectSave, "save", false, "Store the run in the history database")
	projectSizeCmd.Flags().IntVarP(&projectWorkers, "workers", "w", 0, "Concurrent sizing workers (default from config)")

	projectHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to list")
}

func runProjectSize(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p, err := project.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading project: %v\n", err)
		os.Exit(exitInvalid)
	}

	workers := cfg.Workers
	if projectWorkers > 0 {
		workers = projectWorkers
	}
	report, err := project.NewSizer(engine, workers).Size(ctx, p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sizing project: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		if err := writeJSON(os.Stdout, report); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		writeProjectReport(os.Stdout, report)
	}

	if projectSave {
		if err := saveRun(os.Stderr, report); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving run: %v\n", err)
			os.Exit(1)
		}
	}

	if code := reportExitCode(report); code != exitOK {
		os.Exit(code)
	}
}

func saveRun(w io.Writer, report *project.Report) error {
	st, err := store.NewStore(cfg.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.SaveRun(report)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Run saved: %s\n", run.ID)
	return nil
}

// reportExitCode returns exitInvalid if any circuit is invalid, else
// exitOutOfRange if any circuit exceeds the standard sizes.
func reportExitCode(report *project.Report) int {
	code := exitOK
	for _, o := range report.Failed() {
		if c := exitCode(o.Err); c > code {
			code = c
		}
	}
	return code
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeProjectReport(w io.Writer, report *project.Report) {
	outcomes := report.Outcomes()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "     PROJECT SIZING - %s\n", report.Project)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════════")
	fmt.Fprintln(w)

	board := ""
	var tw *tabwriter.Writer
	for _, o := range outcomes {
		if o.Board != board {
			if tw != nil {
				tw.Flush()
				fmt.Fprintln(w)
			}
			board = o.Board
			fmt.Fprintf(w, "BOARD %s:\n", board)
			fmt.Fprintln(w, "───────────────────────────────────────────────────────────────")
			tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "  Circuit\tIb (A)\tIn (A)\tS (mm²)\tΔU (%)\tRule\tStatus")
		}
		name := o.Circuit
		if o.Feeder {
			name = "↑ " + name
		}
		if o.Result == nil {
			fmt.Fprintf(tw, "  %s\t-\t-\t-\t-\t-\t%s\n", name, styles.Status(o.Status()))
			continue
		}
		r := o.Result
		fmt.Fprintf(tw, "  %s\t%.2f\t%g\t%g %s\t%.2f / %g\t%s\t%s\n",
			name, r.DesignCurrentAmps, r.BreakerRatingAmps,
			r.SelectedCrossSectionMm2, materialSymbol(o.Spec.Material),
			r.RealizedVoltageDropPercent, r.MaxVoltageDropPercent,
			r.Governing, styles.Status(o.Status()))
	}
	if tw != nil {
		tw.Flush()
		fmt.Fprintln(w)
	}

	if failed := report.Failed(); len(failed) > 0 {
		fmt.Fprintln(w, "FAILED CIRCUITS:")
		fmt.Fprintln(w, "───────────────────────────────────────────────────────────────")
		for _, o := range failed {
			fmt.Fprintf(w, "  %s / %s: %v\n", o.Board, o.Circuit, o.Err)
		}
		fmt.Fprintln(w)
	}

	q := report.Quantities()
	fmt.Fprintln(w, "BILL OF QUANTITIES:")
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────────")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range q.Cables {
		fmt.Fprintf(tw, "  Cable %g mm² %s:\t%.1f m\t(%d runs)\n", c.SectionMm2, materialSymbol(c.Material), c.LengthMeters, c.Runs)
	}
	for _, b := range q.Breakers {
		fmt.Fprintf(tw, "  Breaker %g A:\t× %d\n", b.RatingAmps, b.Count)
	}
	tw.Flush()
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %d circuits sized, %d failed\n", len(outcomes)-len(report.Failed()), len(report.Failed()))
	fmt.Fprintln(w)
}

func runProjectHistory(cmd *cobra.Command, args []string) {
	st, err := store.NewStore(cfg.StorePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening history: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	runs, err := st.ListRuns(historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing runs: %v\n", err)
		os.Exit(1)
	}
	if jsonOutput {
		if err := writeJSON(os.Stdout, runs); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	writeRunList(os.Stdout, runs)
}

func writeRunList(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No stored runs.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tCREATED\tPROJECT\tCIRCUITS\tFAILED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Project, r.Circuits, r.Failed)
	}
	tw.Flush()
}

func runProjectShow(cmd *cobra.Command, args []string) {
	st, err := store.NewStore(cfg.StorePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening history: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	run, err := st.GetRun(args[0])
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "No run with id %s\n", args[0])
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading run: %v\n", err)
		os.Exit(1)
	}
	if jsonOutput {
		if err := writeJSON(os.Stdout, run); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if err := writeRun(os.Stdout, run); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func writeRun(w io.Writer, run store.Run) error {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Run:      %s\n", run.ID)
	fmt.Fprintf(w, "  Project:  %s\n", run.Project)
	fmt.Fprintf(w, "  Created:  %s\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  Board\tCircuit\tIn (A)\tS (mm²)\tStatus\tDetail")
	for _, o := range run.Outcomes {
		name := o.Circuit
		if o.Feeder {
			name = "↑ " + name
		}
		if len(o.Result) == 0 {
			fmt.Fprintf(tw, "  %s\t%s\t-\t-\t%s\t%s\n", o.Board, name, styles.Status(o.Status), o.Error)
			continue
		}
		var res circuit.SizingResult
		if err := json.Unmarshal(o.Result, &res); err != nil {
			return fmt.Errorf("decode stored result %s/%s: %w", o.Board, o.Circuit, err)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%g\t%g\t%s\t%s, ΔU %.2f %%\n", o.Board, name,
			res.BreakerRatingAmps, res.SelectedCrossSectionMm2, styles.Status(o.Status),
			res.Governing, res.RealizedVoltageDropPercent)
	}
	tw.Flush()
	fmt.Fprintln(w)
	return nil
}
