package cmd

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/fiberlab/otdr-sim/sim/scenario"
)

// scenarioFlags select a scenario and override its fields. An override only
// applies when its flag was set explicitly; otherwise the scenario value wins.
type scenarioFlags struct {
	path   string
	preset string

	seed         int64
	rangeKm      float64
	pulseWidthNs float64
	wavelengthNm int
	ior          float64
	noiseFloorDb float64
	auto         bool
	durationSec  float64
	cutKm        float64
}

func (f *scenarioFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.path, "scenario", "", "Path to a scenario YAML file (overrides --preset)")
	fs.StringVar(&f.preset, "preset", "default", "Built-in scenario to use when --scenario is not given")

	fs.Int64Var(&f.seed, "seed", 42, "Seed for shot noise")
	fs.Float64Var(&f.rangeKm, "range", 20, "Acquisition range in km (manual mode)")
	fs.Float64Var(&f.pulseWidthNs, "pulse-width", 100, "Pulse width in ns (manual mode)")
	fs.IntVar(&f.wavelengthNm, "wavelength", 1550, "Laser wavelength in nm (1310 or 1550)")
	fs.Float64Var(&f.ior, "ior", 1.4682, "Group index of refraction")
	fs.Float64Var(&f.noiseFloorDb, "noise-floor", -30, "Detector noise floor in dB")
	fs.BoolVar(&f.auto, "auto", true, "Derive range and pulse width from the fiber length")
	fs.Float64Var(&f.durationSec, "duration", 15, "Test duration in seconds (0 = continuous)")
	fs.Float64Var(&f.cutKm, "cut", 0, "Break the fiber at this distance in km")
}

// load resolves the scenario and applies explicitly set overrides.
func (f *scenarioFlags) load(fs *pflag.FlagSet) (*scenario.Scenario, error) {
	var (
		s   *scenario.Scenario
		err error
	)
	if f.path != "" {
		s, err = scenario.Load(f.path)
	} else {
		s, err = scenario.Preset(f.preset)
	}
	if err != nil {
		return nil, err
	}
	f.apply(fs, s)
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return s, nil
}

func (f *scenarioFlags) apply(fs *pflag.FlagSet, s *scenario.Scenario) {
	c := &s.Config
	if fs.Changed("seed") {
		s.Seed = f.seed
	}
	if fs.Changed("range") {
		c.RangeKm = &f.rangeKm
	}
	if fs.Changed("pulse-width") {
		c.PulseWidthNs = &f.pulseWidthNs
	}
	if fs.Changed("wavelength") {
		c.WavelengthNm = &f.wavelengthNm
	}
	if fs.Changed("ior") {
		c.IOR = &f.ior
	}
	if fs.Changed("noise-floor") {
		c.NoiseFloorDb = &f.noiseFloorDb
	}
	if fs.Changed("auto") {
		c.AutoMode = &f.auto
	}
	if fs.Changed("duration") {
		c.TestDurationSec = &f.durationSec
	}
	if fs.Changed("cut") {
		s.CutKm = &f.cutKm
	}
}
