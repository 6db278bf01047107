package sim

import (
	"testing"
)

// referenceEvents is the fiber used throughout the tests: 18 km with a
// non-reflective splice and a reflective connector.
func referenceEvents() []FiberEvent {
	return []FiberEvent{
		{ID: "start", Type: EventStart, DistanceKm: 0, LossDb: 0.5, ReflectanceDb: -45},
		{ID: "splice-1", Type: EventSplice, DistanceKm: 5.2, LossDb: 0.1, ReflectanceDb: -70},
		{ID: "conn-1", Type: EventConnector, DistanceKm: 12.5, LossDb: 0.5, ReflectanceDb: -45},
		{ID: "end", Type: EventEnd, DistanceKm: 18, LossDb: 0, ReflectanceDb: -14},
	}
}

func referenceTopology(t *testing.T) *Topology {
	t.Helper()
	topo, err := NewTopology(referenceEvents())
	if err != nil {
		t.Fatalf("reference topology: %v", err)
	}
	return topo
}

// manualConfig is a valid manual-mode configuration covering the reference fiber.
func manualConfig() SimulationConfig {
	return SimulationConfig{
		RangeKm:         40,
		PulseWidthNs:    500,
		Wavelength:      Wavelength1550,
		IOR:             1.4682,
		NoiseFloorDb:    -30,
		AutoMode:        false,
		TestDurationSec: 0,
	}
}

// constSource is a Float64Source that always returns the same value.
// constSource(0.5) yields zero shot noise.
type constSource float64

func (c constSource) Float64() float64 { return float64(c) }

// staticScene is a Scene with fixed contents.
type staticScene struct {
	events []FiberEvent
	cfg    SimulationConfig
}

func (s *staticScene) EffectiveEvents() []FiberEvent { return s.events }
func (s *staticScene) Config() SimulationConfig      { return s.cfg }

// firstIndexAtOrPast returns the first sample index whose distance is >= km,
// using the same arithmetic as the synthesizer.
func firstIndexAtOrPast(km float64, cfg SimulationConfig) int {
	step := cfg.SamplingResolutionKm()
	for i := 0; i < NumPoints; i++ {
		if float64(i)*step >= km {
			return i
		}
	}
	return NumPoints
}
