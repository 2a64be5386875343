package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fcelec/cablesize/internal/circuit"
	"github.com/fcelec/cablesize/internal/diagram"
	"github.com/fcelec/cablesize/internal/nfc15100"
	"github.com/fcelec/cablesize/internal/server"
	"github.com/fcelec/cablesize/internal/styles"
	"github.com/fcelec/cablesize/internal/wizard"
	"github.com/spf13/cobra"
)

// Exit codes of the sizing commands.
const (
	exitOK         = 0
	exitOutOfRange = 1
	exitInvalid    = 2
)

var (
	sizePower       float64
	sizeCurrent     float64
	sizePF          float64
	sizeVoltage     string
	sizeLength      float64
	sizeMaterial    string
	sizeMethod      string
	sizeApplication string
	sizeMaxDrop     float64

	sizeShowDiagram bool
	sizeExportFile  string
	sizeInteractive bool
)

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Size the cable and breaker of one circuit",
	Long: `Size one low-voltage circuit.

The design current Ib is computed from the active power and power factor
(or entered directly with --current). The breaker In is the smallest
standard rating >= Ib. The cross-section is the larger of:
  - the smallest commercial section keeping the voltage drop at In
    within the limit (--max-drop, or the application limit)
  - the smallest commercial section whose derated ampacity carries In

Application limits: lighting 3 %, power 5 %, submain 2 %.
Installation methods: insulation (A1), conduit (B1), wall (C),
buried (D), free-air (E).

Exit status is 2 for invalid input and 1 when no standard size fits.

Examples:
  cablesize size --power 3500 --pf 0.8 --length 25 --max-drop 3
  cablesize size -p 50000 --pf 0.9 -v tri -l 50 --method wall
  cablesize size --current 32 -l 40 --material al --application lighting
  cablesize size -p 3500 -l 25 --diagram -o drop.png
  cablesize size --interactive`,
	Run: runSize,
}

func init() {
	rootCmd.AddCommand(sizeCmd)

	sizeCmd.Flags().Float64VarP(&sizePower, "power", "p", 0, "Active power P (W)")
	sizeCmd.Flags().Float64Var(&sizeCurrent, "current", 0, "Design current Ib (A), replaces --power")
	sizeCmd.Flags().Float64Var(&sizePF, "pf", 1.0, "Power factor cos φ")
	sizeCmd.Flags().StringVarP(&sizeVoltage, "voltage", "v", "single-phase", "Supply: single-phase (230 V) or three-phase (400 V)")
	sizeCmd.Flags().Float64VarP(&sizeLength, "length", "l", 0, "Cable length (m)")
	sizeCmd.Flags().StringVar(&sizeMaterial, "material", "copper", "Conductor: copper or aluminum")
	sizeCmd.Flags().StringVar(&sizeMethod, "method", "conduit", "Installation method: insulation, conduit, wall, buried, free-air")
	sizeCmd.Flags().StringVarP(&sizeApplication, "application", "a", "power", "Application: lighting, power, submain")
	sizeCmd.Flags().Float64Var(&sizeMaxDrop, "max-drop", 0, "Max voltage drop (%), overrides the application limit")

	// Diagram options
	sizeCmd.Flags().BoolVar(&sizeShowDiagram, "diagram", false, "Show ASCII voltage-drop diagram")
	sizeCmd.Flags().StringVarP(&sizeExportFile, "output", "o", "", "Export diagram to file (png, svg, pdf)")
	sizeCmd.Flags().BoolVarP(&sizeInteractive, "interactive", "i", false, "Enter the circuit with an interactive form")
}

func runSize(cmd *cobra.Command, args []string) {
	spec, err := specFromFlags()
	if err != nil && !sizeInteractive {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitInvalid)
	}
	if sizeInteractive {
		spec, err = wizard.New(spec).Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitInvalid)
		}
	}

	opts := sizeOptions{
		json:        jsonOutput,
		showDiagram: sizeShowDiagram,
		exportFile:  sizeExportFile,
	}
	if code := sizeCircuit(os.Stdout, engine, spec, opts); code != exitOK {
		os.Exit(code)
	}
}

// specFromFlags builds the circuit spec from the command-line flags. The
// returned spec holds every field that parsed, even on error.
func specFromFlags() (circuit.CircuitSpec, error) {
	spec := circuit.CircuitSpec{
		ActivePowerWatts:      sizePower,
		DesignCurrentAmps:     sizeCurrent,
		PowerFactor:           sizePF,
		LengthMeters:          sizeLength,
		MaxVoltageDropPercent: sizeMaxDrop,
	}
	var errs []error
	var err error
	if spec.Voltage, err = nfc15100.ParseVoltageClass(sizeVoltage); err != nil {
		errs = append(errs, err)
	}
	if spec.Material, err = nfc15100.ParseMaterial(sizeMaterial); err != nil {
		errs = append(errs, err)
	}
	if spec.Method, err = nfc15100.ParseInstallationMethod(sizeMethod); err != nil {
		errs = append(errs, err)
	}
	if spec.Application, err = nfc15100.ParseApplication(sizeApplication); err != nil {
		errs = append(errs, err)
	}
	return spec, errors.Join(errs...)
}

type sizeOptions struct {
	json        bool
	showDiagram bool
	exportFile  string
}

// sizeCircuit sizes spec, writes the report to w and returns the exit code.
func sizeCircuit(w io.Writer, e *circuit.Engine, spec circuit.CircuitSpec, opts sizeOptions) int {
	res, err := e.Size(spec)

	if opts.json {
		out := struct {
			Spec circuit.CircuitSpec `json:"spec"`
			server.Reply
		}{spec, server.NewReply(res, err)}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(out); encErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", encErr)
			return exitInvalid
		}
		return exitCode(err)
	}

	writeSizeHeader(w, spec)
	if err != nil {
		writeSizeFailure(w, err)
		return exitCode(err)
	}
	writeSizeResult(w, spec, res)

	if opts.showDiagram || opts.exportFile != "" {
		data := diagram.NewDropDiagramData(e, spec, res)
		if opts.showDiagram {
			fmt.Fprintln(w, diagram.DrawASCIIDropDiagram(data))
		}
		if opts.exportFile != "" {
			if err := diagram.ExportDropDiagram(data, opts.exportFile); err != nil {
				fmt.Fprintf(w, "  Error exporting diagram: %v\n", err)
			} else {
				fmt.Fprintf(w, "  Diagram exported to: %s\n", opts.exportFile)
			}
			fmt.Fprintln(w)
		}
	}
	return exitOK
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, circuit.ErrOutOfRange):
		return exitOutOfRange
	}
	return exitInvalid
}

func writeSizeHeader(w io.Writer, spec circuit.CircuitSpec) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════════")
	fmt.Fprintln(w, "     CIRCUIT SIZING - NF C 15-100")
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════════")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "CIRCUIT DATA:")
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────────")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Supply:\t%s\n", spec.Voltage.Label())
	if spec.UsesCurrentEntry() {
		fmt.Fprintf(tw, "  Design current (entered):\t%.2f A\n", spec.DesignCurrentAmps)
	} else {
		fmt.Fprintf(tw, "  Active power (P):\t%.0f W\n", spec.ActivePowerWatts)
		fmt.Fprintf(tw, "  Power factor (cos φ):\t%.2f\n", spec.PowerFactor)
	}
	fmt.Fprintf(tw, "  Length (L):\t%.1f m\n", spec.LengthMeters)
	fmt.Fprintf(tw, "  Conductor:\t%s\n", spec.Material)
	fmt.Fprintf(tw, "  Installation:\t%s (%s)\n", spec.Method, spec.Method.Reference())
	if spec.MaxVoltageDropPercent != 0 || !spec.Application.Valid() {
		fmt.Fprintf(tw, "  Max voltage drop:\t%g %%\n", spec.DropLimit())
	} else {
		fmt.Fprintf(tw, "  Max voltage drop:\t%g %% (%s)\n", spec.DropLimit(), spec.Application)
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func writeSizeFailure(w io.Writer, err error) {
	fmt.Fprintln(w, "DESIGN RESULT:")
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────────")

	var rerr *circuit.RangeError
	if errors.As(err, &rerr) {
		fmt.Fprintln(w, styles.FailureBox.Render("NO STANDARD SIZE FITS"))
		fmt.Fprintln(w)
		switch rerr.Kind {
		case circuit.Overcurrent:
			fmt.Fprintln(w, "  Design current exceeds largest standard breaker")
		case circuit.Oversection:
			fmt.Fprintln(w, "  Cross-section exceeds largest standard size")
		}
		fmt.Fprintf(w, "  %v\n", err)
	} else {
		fmt.Fprintln(w, styles.FailureBox.Render("INVALID INPUT"))
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %v\n", err)
	}
	fmt.Fprintln(w)
}

func writeSizeResult(w io.Writer, spec circuit.CircuitSpec, res *circuit.SizingResult) {
	fmt.Fprintln(w, "PROTECTION:")
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────────")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Design current (Ib):\t%.2f A\n", res.DesignCurrentAmps)
	fmt.Fprintf(tw, "  Breaker rating (In):\t%g A\n", res.BreakerRatingAmps)
	tw.Flush()
	fmt.Fprintln(w)

	fmt.Fprintln(w, "CROSS-SECTION:")
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────────")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Theoretical (voltage drop):\t%.2f mm²\n", res.TheoreticalSectionMm2)
	fmt.Fprintf(tw, "  Commercial, voltage drop:\t%g mm²\n", res.VoltageDropSectionMm2)
	fmt.Fprintf(tw, "  Commercial, ampacity:\t%g mm²\n", res.AmpacitySectionMm2)
	fmt.Fprintf(tw, "  Governing rule:\t%s\n", res.Governing)
	tw.Flush()
	fmt.Fprintln(w)

	fmt.Fprintln(w, "VERIFICATION:")
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────────")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Derated ampacity (Iz):\t%.1f A ≥ In = %g A ✓\n", res.DeratedAmpacityAmps, res.BreakerRatingAmps)
	fmt.Fprintf(tw, "  Voltage drop at In:\t%.2f V (%.2f %%)\n", res.RealizedVoltageDropVolts, res.RealizedVoltageDropPercent)
	fmt.Fprintf(tw, "  Drop limit:\t%g %% (margin %.2f %%) ✓\n", res.MaxVoltageDropPercent, res.DropMarginPercent())
	tw.Flush()
	fmt.Fprintln(w)

	fmt.Fprintln(w, "DESIGN RESULT:")
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────────")
	box := fmt.Sprintf("CABLE %g mm² %s   BREAKER %g A", res.SelectedCrossSectionMm2, materialSymbol(spec.Material), res.BreakerRatingAmps)
	fmt.Fprintln(w, styles.ResultBox.Render(box))
	fmt.Fprintln(w)
}

func materialSymbol(m nfc15100.Material) string {
	switch m {
	case nfc15100.Copper:
		return "Cu"
	case nfc15100.Aluminum:
		return "Al"
	}
	return m.String()
}
