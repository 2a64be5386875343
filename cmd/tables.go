package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fcelec/cablesize/internal/nfc15100"
	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Print the reference tables used for sizing",
	Long: `Print the standard breaker and cross-section ladders, the base
ampacity per installation method, resistivities, derating factors,
application voltage-drop limits and board simultaneity factors.

Values reflect any overrides from the configuration file.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := writeTables(os.Stdout, engine.Tables(), jsonOutput); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}

func writeTables(w io.Writer, t *nfc15100.Tables, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			*nfc15100.Tables
			Simultaneity []nfc15100.SimultaneityBand `json:"simultaneity"`
		}{t, nfc15100.SimultaneityBands})
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════════")
	fmt.Fprintln(w, "     REFERENCE TABLES - NF C 15-100")
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════════")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "STANDARD BREAKER RATINGS (A):")
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────────")
	fmt.Fprintf(w, "  %s\n\n", joinFloats(t.Breakers))

	fmt.Fprintln(w, "BASE AMPACITY (A), copper, single-phase:")
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────────")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "  S (mm²)\t")
	for _, m := range nfc15100.Methods {
		fmt.Fprintf(tw, "%s\t", m.Reference())
	}
	fmt.Fprintln(tw)
	for i, s := range t.Sections {
		fmt.Fprintf(tw, "  %g\t", s)
		for _, m := range nfc15100.Methods {
			fmt.Fprintf(tw, "%g\t", t.Ampacity[m][i])
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
	fmt.Fprintln(w)

	fmt.Fprintln(w, "INSTALLATION METHODS:")
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────────")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, m := range nfc15100.Methods {
		fmt.Fprintf(tw, "  %s\t%s\n", m.Reference(), m)
	}
	tw.Flush()
	fmt.Fprintln(w)

	fmt.Fprintln(w, "CONDUCTORS AND DERATING:")
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────────")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, m := range []nfc15100.Material{nfc15100.Copper, nfc15100.Aluminum} {
		fmt.Fprintf(tw, "  %s:\tρ = %g Ω·mm²/m\tfactor %.2f\n", m, t.Resistivity[m], t.MaterialFactor[m])
	}
	for _, v := range []nfc15100.VoltageClass{nfc15100.SinglePhase230, nfc15100.ThreePhase400} {
		fmt.Fprintf(tw, "  %s:\tb = %g\tfactor %.2f\n", v.Label(), nfc15100.DropCoefficient(v), t.TopologyFactor[v])
	}
	tw.Flush()
	fmt.Fprintln(w)

	fmt.Fprintln(w, "VOLTAGE DROP LIMITS:")
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────────")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, a := range []nfc15100.Application{nfc15100.Lighting, nfc15100.Power, nfc15100.Submain} {
		fmt.Fprintf(tw, "  %s:\t%g %%\n", a, a.DropLimit())
	}
	tw.Flush()
	fmt.Fprintln(w)

	fmt.Fprintln(w, "BOARD SIMULTANEITY FACTORS (ks):")
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────────")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, band := range nfc15100.SimultaneityBands {
		fmt.Fprintf(tw, "  %s:\t%.1f\n", band.Description, band.Factor)
	}
	tw.Flush()
	fmt.Fprintln(w)
	return nil
}

func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return strings.Join(parts, ", ")
}
