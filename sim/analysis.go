package sim

import "fmt"

// AnalysisRecord is one row of the ground-truth event table.
type AnalysisRecord struct {
	Index            int       `json:"index"` // 1-based, counting from the first event after the start
	Type             EventType `json:"type"`
	LocationKm       float64   `json:"location_km"`
	ReflectanceDb    float64   `json:"reflectance_db"`
	Reflective       bool      `json:"reflective"`
	LossDb           float64   `json:"loss_db"`
	CumulativeLossDb float64   `json:"cumulative_loss_db"`
}

// ReflectanceDisplay formats the reflectance, or "none" below the reflective threshold.
func (r AnalysisRecord) ReflectanceDisplay() string {
	if !r.Reflective {
		return "none"
	}
	return fmt.Sprintf("%.1f", r.ReflectanceDb)
}

// LossDisplay formats the event loss. A cut is reported as "> 50.0" since the
// instrument cannot see past it to measure the real loss.
func (r AnalysisRecord) LossDisplay() string {
	if r.Type == EventCut {
		return fmt.Sprintf("> %.1f", CutLossDb)
	}
	return fmt.Sprintf("%.2f", r.LossDb)
}

// Analyze computes the event table from an effective event list (see
// Effective), never from trace samples. The start is skipped; each later
// event adds its own loss plus the fiber attenuation since the previous
// counted event.
func Analyze(events []FiberEvent, wavelength Wavelength) []AnalysisRecord {
	coeff := wavelength.AttenuationDbPerKm()
	records := make([]AnalysisRecord, 0, len(events))
	cumulative := 0.0
	previous := 0.0
	for _, e := range events {
		if e.Type == EventStart {
			continue
		}
		cumulative += e.LossDb + (e.DistanceKm-previous)*coeff
		previous = e.DistanceKm
		records = append(records, AnalysisRecord{
			Index:            len(records) + 1,
			Type:             e.Type,
			LocationKm:       e.DistanceKm,
			ReflectanceDb:    e.ReflectanceDb,
			Reflective:       e.IsReflective(),
			LossDb:           e.LossDb,
			CumulativeLossDb: cumulative,
		})
	}
	return records
}

// AnalyzeTopology is Analyze over Effective(t, cut).
func AnalyzeTopology(t *Topology, cut *Cut, wavelength Wavelength) []AnalysisRecord {
	return Analyze(Effective(t, cut), wavelength)
}

// TotalLossDb returns the cumulative loss of the last record, or 0.
func TotalLossDb(records []AnalysisRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	return records[len(records)-1].CumulativeLossDb
}
