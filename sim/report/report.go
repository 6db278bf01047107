// Package report renders instrument output: a JSON summary, the trace as CSV,
// a PNG plot and an interactive HTML chart. Reports only read what the
// instrument exposes; they never change it.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/fiberlab/otdr-sim/sim"
	"github.com/fiberlab/otdr-sim/sim/journal"
)

// Report is the JSON summary of one instrument session.
type Report struct {
	Scenario    string               `json:"scenario,omitempty"`
	Seed        int64                `json:"seed"`
	Config      sim.SimulationConfig `json:"config"`
	Physics     sim.DerivedPhysics   `json:"physics"`
	Status      sim.Status           `json:"status"`
	Stats       Stats                `json:"stats"`
	Events      []sim.FiberEvent     `json:"events"`
	Cut         *sim.Cut             `json:"cut,omitempty"`
	Analysis    []sim.AnalysisRecord `json:"analysis"`
	TotalLossDb float64              `json:"total_loss_db"`
	Journal     *journal.Summary     `json:"journal,omitempty"`
}

// Stats is sim.TraceStats with the dynamic range omitted when the trace has
// no noise region, since JSON has no NaN.
type Stats struct {
	sim.TraceStats
	DynamicRangeDb *float64 `json:"dynamic_range_db,omitempty"`
}

// New snapshots in. scenario and seed are recorded as given.
func New(scenario string, seed int64, in *sim.Instrument) (*Report, error) {
	ts, err := in.Stats()
	if err != nil {
		return nil, fmt.Errorf("trace stats: %w", err)
	}
	stats := Stats{TraceStats: ts}
	if !math.IsNaN(ts.DynamicRangeDb) {
		dr := ts.DynamicRangeDb
		stats.DynamicRangeDb = &dr
	}
	analysis := in.AnalysisTable()
	r := &Report{
		Scenario:    scenario,
		Seed:        seed,
		Config:      in.Config(),
		Physics:     in.Physics(),
		Status:      in.Status(),
		Stats:       stats,
		Events:      in.Events(),
		Cut:         in.Cut(),
		Analysis:    analysis,
		TotalLossDb: sim.TotalLossDb(analysis),
	}
	if j := in.Journal(); j != nil && j.Level != journal.LevelNone {
		r.Journal = journal.Summarize(j)
	}
	return r, nil
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("writing JSON report: %w", err)
	}
	return nil
}

// levelAt returns the trace level at the sample nearest km.
func levelAt(trace []sim.TracePoint, km float64) float64 {
	if len(trace) == 0 {
		return 0
	}
	if len(trace) == 1 {
		return trace[0].Y
	}
	step := trace[1].X - trace[0].X
	i := int(math.Round((km - trace[0].X) / step))
	i = max(0, min(i, len(trace)-1))
	return trace[i].Y
}

// eventLabel is the legend text for an analysis record.
func eventLabel(r sim.AnalysisRecord) string {
	return fmt.Sprintf("#%d %s @ %.3f km", r.Index, r.Type, r.LocationKm)
}
