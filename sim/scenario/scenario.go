// Package scenario loads, validates and writes YAML scenario files: a fiber
// topology, instrument settings, an optional cut and the RNG seed. A scenario
// is the reproducible input of one instrument session.
package scenario

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/fiberlab/otdr-sim/sim"
	"github.com/fiberlab/otdr-sim/sim/journal"
)

// CurrentVersion is the scenario format version written by Write.
const CurrentVersion = "1"

// Default terminal events used when a scenario omits them.
var (
	defaultStart = sim.FiberEvent{ID: "start", Type: sim.EventStart, DistanceKm: 0, LossDb: 0.5, ReflectanceDb: -45}
	defaultEnd   = sim.FiberEvent{ID: "end", Type: sim.EventEnd, LossDb: 0, ReflectanceDb: sim.CutReflectanceDb}
)

// Scenario is the top-level YAML document.
type Scenario struct {
	Version string           `yaml:"version"`
	Name    string           `yaml:"name,omitempty"`
	Seed    int64            `yaml:"seed"`
	Config  ConfigSpec       `yaml:"config"`
	Events  []sim.FiberEvent `yaml:"events"`
	CutKm   *float64         `yaml:"cut_km,omitempty"`
}

// ConfigSpec holds instrument settings. Omitted fields take their value from
// sim.DefaultSimulationConfig.
type ConfigSpec struct {
	RangeKm         *float64 `yaml:"range_km,omitempty"`
	PulseWidthNs    *float64 `yaml:"pulse_width_ns,omitempty"`
	WavelengthNm    *int     `yaml:"wavelength_nm,omitempty"`
	IOR             *float64 `yaml:"ior,omitempty"`
	NoiseFloorDb    *float64 `yaml:"noise_floor_db,omitempty"`
	AutoMode        *bool    `yaml:"auto_mode,omitempty"`
	TestDurationSec *float64 `yaml:"test_duration_s,omitempty"`
}

// Load reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logrus.Debugf("loaded scenario %q from %s (%d events)", s.Name, path, len(s.Events))
	return s, nil
}

// Parse decodes a YAML scenario. It does not validate the contents.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("parsing scenario: empty document")
		}
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if s.Version == "" {
		s.Version = CurrentVersion
	}
	return &s, nil
}

// Write encodes s as YAML.
func (s *Scenario) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("writing scenario: %w", err)
	}
	return enc.Close()
}

// SimConfig resolves the settings, filling omitted fields from the defaults.
func (s *Scenario) SimConfig() sim.SimulationConfig {
	cfg := sim.DefaultSimulationConfig()
	c := s.Config
	if c.RangeKm != nil {
		cfg.RangeKm = *c.RangeKm
	}
	if c.PulseWidthNs != nil {
		cfg.PulseWidthNs = *c.PulseWidthNs
	}
	if c.WavelengthNm != nil {
		cfg.Wavelength = sim.Wavelength(*c.WavelengthNm)
	}
	if c.IOR != nil {
		cfg.IOR = *c.IOR
	}
	if c.NoiseFloorDb != nil {
		cfg.NoiseFloorDb = *c.NoiseFloorDb
	}
	if c.AutoMode != nil {
		cfg.AutoMode = *c.AutoMode
	}
	if c.TestDurationSec != nil {
		cfg.TestDurationSec = *c.TestDurationSec
	}
	return cfg
}

// Topology builds the fiber. A missing start is placed at 0 km; a missing end
// is placed at the resolved range, which must then lie beyond every listed
// event.
func (s *Scenario) Topology() (*sim.Topology, error) {
	events := make([]sim.FiberEvent, 0, len(s.Events)+2)
	var hasStart, hasEnd bool
	for _, e := range s.Events {
		if !sim.IsValidEventType(string(e.Type)) {
			return nil, fmt.Errorf("event %q: unknown type %q", e.ID, e.Type)
		}
		hasStart = hasStart || e.Type == sim.EventStart
		hasEnd = hasEnd || e.Type == sim.EventEnd
		events = append(events, e)
	}
	if !hasStart {
		events = append(events, defaultStart)
	}
	if !hasEnd {
		end := defaultEnd
		end.DistanceKm = s.SimConfig().RangeKm
		events = append(events, end)
		logrus.Debugf("scenario %q: no end event, placing one at %.3f km", s.Name, end.DistanceKm)
	}
	return sim.NewTopology(events)
}

// Validate checks that the scenario builds a working instrument.
func (s *Scenario) Validate() error {
	if s.Version != CurrentVersion {
		return fmt.Errorf("unsupported scenario version %q; supported: %s", s.Version, CurrentVersion)
	}
	cfg := s.SimConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	topo, err := s.Topology()
	if err != nil {
		return err
	}
	if !cfg.AutoMode && topo.EndDistance() > cfg.RangeKm {
		return &sim.ConfigurationError{Field: "range_km", Value: cfg.RangeKm,
			Reason: fmt.Sprintf("shorter than the fiber (%.3f km)", topo.EndDistance())}
	}
	if s.CutKm != nil {
		if d := *s.CutKm; math.IsNaN(d) || d <= 0 || d >= topo.EndDistance() {
			return fmt.Errorf("cut_km: %w: %g not within (0, %g)", sim.ErrInvalidCut, d, topo.EndDistance())
		}
	}
	return nil
}

// Build validates the scenario and returns an idle instrument with the cut,
// if any, applied. j may be nil.
func (s *Scenario) Build(j *journal.Journal) (*sim.Instrument, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	topo, err := s.Topology()
	if err != nil {
		return nil, err
	}
	in, err := sim.NewInstrument(topo, s.SimConfig(), sim.NewSimulationKey(s.Seed), j)
	if err != nil {
		return nil, err
	}
	if s.CutKm != nil {
		if err := in.ApplyCut(*s.CutKm); err != nil {
			return nil, err
		}
	}
	return in, nil
}
