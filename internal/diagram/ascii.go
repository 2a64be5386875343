package diagram

import (
	"fmt"
	"strings"

	"github.com/fcelec/cablesize/internal/circuit"
)

// DropDiagramData holds the voltage drop and ampacity of every commercial
// section for one sized circuit.
type DropDiagramData struct {
	Sections    []float64 // mm²
	DropPercent []float64 // realized drop at the breaker rating
	Ampacity    []float64 // derated ampacity (A)

	BreakerAmps  float64 // In
	LimitPercent float64 // admissible drop
	Selected     float64 // retained section (mm²)
	Governing    circuit.Constraint
}

// NewDropDiagramData evaluates the drop and ampacity of each ladder section
// at the breaker rating of res.
func NewDropDiagramData(e *circuit.Engine, spec circuit.CircuitSpec, res *circuit.SizingResult) DropDiagramData {
	t := e.Tables()
	data := DropDiagramData{
		Sections:     append([]float64(nil), t.Sections...),
		DropPercent:  make([]float64, len(t.Sections)),
		Ampacity:     make([]float64, len(t.Sections)),
		BreakerAmps:  res.BreakerRatingAmps,
		LimitPercent: res.MaxVoltageDropPercent,
		Selected:     res.SelectedCrossSectionMm2,
		Governing:    res.Governing,
	}
	for i, s := range t.Sections {
		_, data.DropPercent[i] = e.RealizedDrop(s, res.BreakerRatingAmps, spec)
		data.Ampacity[i] = t.DeratedAmpacity(spec.Method, spec.Material, spec.Voltage, i)
	}
	return data
}

// DrawASCIIDropDiagram draws one bar per section; the bar length is the
// voltage drop, the │ column marks the admissible limit.
func DrawASCIIDropDiagram(data DropDiagramData) string {
	var sb strings.Builder

	// The limit sits at half the bar width.
	barChars := 40
	limitCol := barChars / 2
	scale := float64(limitCol) / data.LimitPercent

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  SECTION     VOLTAGE DROP AT In = %g A%s AMPACITY\n", data.BreakerAmps, strings.Repeat(" ", 10)))
	sb.WriteString("  ───────     ─────────────────────────────────────────────────  ────────\n")

	for i, s := range data.Sections {
		n := int(data.DropPercent[i] * scale)
		overflow := n > barChars
		if overflow {
			n = barChars
		}

		bar := []rune(strings.Repeat("█", n) + strings.Repeat(" ", barChars-n))
		if n <= limitCol {
			bar[limitCol] = '│'
		}
		if overflow {
			bar[barChars-1] = '»'
		}

		marker := "  "
		if s == data.Selected {
			marker = "► "
		}
		ampOK := "✓"
		if data.Ampacity[i] < data.BreakerAmps {
			ampOK = "✗"
		}
		dropOK := " "
		if data.DropPercent[i] > data.LimitPercent {
			dropOK = "!"
		}

		sb.WriteString(fmt.Sprintf("%s%6g mm²  %s %6.2f %%%s  %6.1f A %s", marker, s, string(bar), data.DropPercent[i], dropOK, data.Ampacity[i], ampOK))
		if s == data.Selected {
			sb.WriteString(fmt.Sprintf("  ◄─ selected (%s)", data.Governing))
		}
		sb.WriteString("\n")
	}

	// Legend
	sb.WriteString("\n")
	sb.WriteString("  Legend:\n")
	sb.WriteString(fmt.Sprintf("  │ = admissible drop %.1f %%, ! = above limit\n", data.LimitPercent))
	sb.WriteString(fmt.Sprintf("  ✓/✗ = derated ampacity carries / does not carry In = %g A\n", data.BreakerAmps))
	sb.WriteString("  » = bar clipped\n")

	return sb.String()
}
