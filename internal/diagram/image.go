package diagram

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ExportDropDiagram exports the voltage drop per section to an image file.
// The format follows the extension: .png, .svg or .pdf; anything else is
// saved as png with the extension appended.
func ExportDropDiagram(data DropDiagramData, filename string) error {
	if len(data.Sections) == 0 {
		return fmt.Errorf("no sections to plot")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Voltage drop at In = %g A", data.BreakerAmps)
	p.X.Label.Text = "Cross-section (mm²)"
	p.Y.Label.Text = "Voltage drop (%)"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = sectionTicks(data.Sections)
	p.Add(plotter.NewGrid())

	// Drop curve
	curve := make(plotter.XYs, len(data.Sections))
	for i, s := range data.Sections {
		curve[i] = plotter.XY{X: s, Y: data.DropPercent[i]}
	}
	line, points, err := plotter.NewLinePoints(curve)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(2)
	line.LineStyle.Color = color.RGBA{R: 0, G: 0, B: 139, A: 255}
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	points.GlyphStyle.Radius = vg.Points(2.5)
	p.Add(line, points)

	// Sections whose ampacity cannot carry In
	var thermal plotter.XYs
	for i, s := range data.Sections {
		if data.Ampacity[i] < data.BreakerAmps {
			thermal = append(thermal, plotter.XY{X: s, Y: data.DropPercent[i]})
		}
	}
	if len(thermal) > 0 {
		sc, err := plotter.NewScatter(thermal)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Shape = draw.CrossGlyph{}
		sc.GlyphStyle.Radius = vg.Points(5)
		sc.GlyphStyle.Color = color.RGBA{R: 230, G: 120, B: 0, A: 255}
		p.Add(sc)
		p.Legend.Add("ampacity < In", sc)
	}

	// Admissible limit
	limit, err := plotter.NewLine(plotter.XYs{
		{X: data.Sections[0], Y: data.LimitPercent},
		{X: data.Sections[len(data.Sections)-1], Y: data.LimitPercent},
	})
	if err != nil {
		return err
	}
	limit.LineStyle.Width = vg.Points(1.5)
	limit.LineStyle.Color = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	limit.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
	p.Add(limit)
	p.Legend.Add(fmt.Sprintf("limit %.1f %%", data.LimitPercent), limit)

	// Retained section
	for i, s := range data.Sections {
		if s != data.Selected {
			continue
		}
		sel, err := plotter.NewScatter(plotter.XYs{{X: s, Y: data.DropPercent[i]}})
		if err != nil {
			return err
		}
		sel.GlyphStyle.Shape = draw.CircleGlyph{}
		sel.GlyphStyle.Radius = vg.Points(6)
		sel.GlyphStyle.Color = color.RGBA{R: 0, G: 150, B: 0, A: 255}
		p.Add(sel)

		lbl, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    []plotter.XY{{X: s, Y: data.DropPercent[i]}},
			Labels: []string{fmt.Sprintf("  %g mm² (%s)", s, data.Governing)},
		})
		if err != nil {
			return err
		}
		p.Add(lbl)
	}
	p.Legend.Top = true

	width := 8 * vg.Inch
	height := 6 * vg.Inch

	if dir := filepath.Dir(filename); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".svg", ".pdf":
		return p.Save(width, height, filename)
	default:
		return p.Save(width, height, filename+".png")
	}
}

// sectionTicks labels every commercial section on the log axis.
func sectionTicks(sections []float64) plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, len(sections))
	for i, s := range sections {
		ticks[i] = plot.Tick{Value: s, Label: fmt.Sprintf("%g", s)}
	}
	return ticks
}
