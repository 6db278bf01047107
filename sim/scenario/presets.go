package scenario

import (
	"fmt"
	"sort"

	"github.com/fiberlab/otdr-sim/sim"
)

var presets = map[string]func() *Scenario{
	"default":   presetDefault,
	"long-haul": presetLongHaul,
}

// PresetNames returns the built-in scenario names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns a fresh copy of the named built-in scenario.
func Preset(name string) (*Scenario, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q; valid: %v", name, PresetNames())
	}
	return build(), nil
}

// presetDefault is an 18 km access span with one of each event kind.
func presetDefault() *Scenario {
	return &Scenario{
		Version: CurrentVersion, Name: "default", Seed: 42,
		Config: ConfigSpec{
			WavelengthNm: ptr(1550), IOR: ptr(1.4682), NoiseFloorDb: ptr(-30.0),
			AutoMode: ptr(true), TestDurationSec: ptr(15.0),
		},
		Events: []sim.FiberEvent{
			{ID: "start", Type: sim.EventStart, DistanceKm: 0, LossDb: 0.5, ReflectanceDb: -45},
			{ID: "splice-1", Type: sim.EventSplice, DistanceKm: 5.2, LossDb: 0.1, ReflectanceDb: -70},
			{ID: "bend-1", Type: sim.EventBend, DistanceKm: 8.3, LossDb: 0.3, ReflectanceDb: -85},
			{ID: "conn-1", Type: sim.EventConnector, DistanceKm: 12.5, LossDb: 0.5, ReflectanceDb: -45},
			{ID: "degradation-1", Type: sim.EventDegradation, DistanceKm: 15.1, LossDb: 0.4, ReflectanceDb: -80},
			{ID: "end", Type: sim.EventEnd, DistanceKm: 18, LossDb: 0, ReflectanceDb: -14},
		},
	}
}

// presetLongHaul is a 120 km span with two fusion splices.
func presetLongHaul() *Scenario {
	return &Scenario{
		Version: CurrentVersion, Name: "long-haul", Seed: 7,
		Config: ConfigSpec{
			WavelengthNm: ptr(1550), IOR: ptr(1.4682), NoiseFloorDb: ptr(-30.0),
			AutoMode: ptr(true), TestDurationSec: ptr(30.0),
		},
		Events: []sim.FiberEvent{
			{ID: "start", Type: sim.EventStart, DistanceKm: 0, LossDb: 0.3, ReflectanceDb: -50},
			{ID: "splice-1", Type: sim.EventSplice, DistanceKm: 40, LossDb: 0.05, ReflectanceDb: -80},
			{ID: "splice-2", Type: sim.EventSplice, DistanceKm: 85, LossDb: 0.05, ReflectanceDb: -80},
			{ID: "end", Type: sim.EventEnd, DistanceKm: 120, LossDb: 0, ReflectanceDb: -14},
		},
	}
}

func ptr[T any](v T) *T { return &v }
