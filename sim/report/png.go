package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/fiberlab/otdr-sim/sim"
)

var (
	traceColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	eventColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// NewPlot builds the trace plot with one marker per analysis record.
func NewPlot(trace []sim.TracePoint, analysis []sim.AnalysisRecord) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "OTDR trace"
	p.X.Label.Text = "Distance (km)"
	p.Y.Label.Text = "Level (dB)"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(trace))
	for i, tp := range trace {
		pts[i].X = tp.X
		pts[i].Y = tp.Y
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("trace line: %w", err)
	}
	line.Color = traceColor
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("trace", line)

	if len(analysis) > 0 {
		marks := make(plotter.XYs, len(analysis))
		for i, r := range analysis {
			marks[i].X = r.LocationKm
			marks[i].Y = levelAt(trace, r.LocationKm)
		}
		scatter, err := plotter.NewScatter(marks)
		if err != nil {
			return nil, fmt.Errorf("event markers: %w", err)
		}
		scatter.GlyphStyle.Color = eventColor
		scatter.GlyphStyle.Radius = vg.Points(3)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(scatter)
		p.Legend.Add("events", scatter)
	}
	p.Legend.Top = true
	return p, nil
}

// SavePNG renders the trace plot to path. The image format follows the file
// extension.
func SavePNG(path string, trace []sim.TracePoint, analysis []sim.AnalysisRecord) error {
	p, err := NewPlot(trace, analysis)
	if err != nil {
		return err
	}
	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("saving plot %s: %w", path, err)
	}
	return nil
}
