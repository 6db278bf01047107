package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/fiberlab/otdr-sim/sim"
)

// WriteHTML renders the trace as a self-contained interactive chart page.
func WriteHTML(w io.Writer, trace []sim.TracePoint, analysis []sim.AnalysisRecord) error {
	data := make([]opts.ScatterData, 0, len(trace))
	for _, p := range trace {
		data = append(data, opts.ScatterData{Value: []interface{}{p.X, p.Y}})
	}
	events := make([]opts.ScatterData, 0, len(analysis))
	for _, r := range analysis {
		events = append(events, opts.ScatterData{
			Name:  eventLabel(r),
			Value: []interface{}{r.LocationKm, levelAt(trace, r.LocationKm), string(r.Type), r.LossDisplay()},
		})
	}

	var maxKm float64
	if n := len(trace); n > 0 {
		maxKm = trace[n-1].X
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "OTDR Trace", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "OTDR Trace", Subtitle: fmt.Sprintf("points=%d events=%d total loss=%.2f dB", len(trace), len(analysis), sim.TotalLossDb(analysis))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: maxKm, Name: "Distance (km)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Level (dB)", NameLocation: "middle", NameGap: 35}),
	)
	scatter.AddSeries("trace", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2}))
	scatter.AddSeries("events", events, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("rendering HTML chart: %w", err)
	}
	return nil
}
