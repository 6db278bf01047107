package sim

// RangeLadderKm is the set of ranges the instrument can acquire over, ascending.
var RangeLadderKm = []float64{5, 10, 20, 40, 80, 160, 300}

// rangeHeadroom is the margin a range must leave past the end of the fiber.
const rangeHeadroom = 1.2

// pulseWidthSteps maps a range to the pulse width auto mode pairs with it:
// the first step whose MaxRangeKm covers the range wins.
var pulseWidthSteps = []struct {
	MaxRangeKm   float64
	PulseWidthNs float64
}{
	{5, 10},
	{20, 100},
	{40, 500},
	{80, 1000},
	{160, 10000},
}

// widestPulseNs is used for ranges beyond the last step.
const widestPulseNs = 20000

// RangeSelection is an auto-mode choice of range and pulse width.
type RangeSelection struct {
	RangeKm      float64 `json:"range_km"`
	PulseWidthNs float64 `json:"pulse_width_ns"`
}

// SelectRange derives the acquisition range and pulse width for a topology.
// The fiber length is the end distance, shortened by cut if present. The
// range is the smallest ladder rung strictly greater than 1.2x that length,
// or the top rung. SelectRange is pure; calling it twice on an unchanged
// topology returns the same selection.
func SelectRange(t *Topology, cut *Cut) RangeSelection {
	maxDistance := t.EndDistance()
	if cut != nil && cut.DistanceKm < maxDistance {
		maxDistance = cut.DistanceKm
	}
	return SelectRangeFor(maxDistance)
}

// SelectRangeFor is SelectRange for a known fiber length.
func SelectRangeFor(maxDistanceKm float64) RangeSelection {
	r := RangeLadderKm[len(RangeLadderKm)-1]
	for _, candidate := range RangeLadderKm {
		if candidate > rangeHeadroom*maxDistanceKm {
			r = candidate
			break
		}
	}
	return RangeSelection{RangeKm: r, PulseWidthNs: PulseWidthForRange(r)}
}

// PulseWidthForRange returns the pulse width auto mode pairs with a range.
func PulseWidthForRange(rangeKm float64) float64 {
	for _, s := range pulseWidthSteps {
		if rangeKm <= s.MaxRangeKm {
			return s.PulseWidthNs
		}
	}
	return widestPulseNs
}

// MaxAutoRangeKm is the widest range auto mode can select.
func MaxAutoRangeKm() float64 {
	return RangeLadderKm[len(RangeLadderKm)-1]
}

// ApplyTo writes the selection into cfg only if it differs from the current
// values, and reports whether anything changed. Re-applying an unchanged
// selection is a no-op, so a host can keep the user's viewport.
func (s RangeSelection) ApplyTo(cfg *SimulationConfig) bool {
	if cfg.RangeKm == s.RangeKm && cfg.PulseWidthNs == s.PulseWidthNs {
		return false
	}
	cfg.RangeKm = s.RangeKm
	cfg.PulseWidthNs = s.PulseWidthNs
	return true
}
