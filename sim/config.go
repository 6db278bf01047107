package sim

import (
	"fmt"
	"math"
)

// NumPoints is the fixed number of samples in every trace.
const NumPoints = 4000

// Wavelength is the laser wavelength in nm.
type Wavelength int

const (
	Wavelength1310 Wavelength = 1310
	Wavelength1550 Wavelength = 1550
)

// attenuationDbPerKm holds the fiber attenuation for each supported wavelength.
var attenuationDbPerKm = map[Wavelength]float64{
	Wavelength1310: 0.35,
	Wavelength1550: 0.20,
}

// IsSupported reports whether the instrument has a laser at w.
func (w Wavelength) IsSupported() bool {
	_, ok := attenuationDbPerKm[w]
	return ok
}

// AttenuationDbPerKm returns the fiber attenuation coefficient at w.
// Unsupported wavelengths return 0; SimulationConfig.Validate rejects them first.
func (w Wavelength) AttenuationDbPerKm() float64 {
	return attenuationDbPerKm[w]
}

// SimulationConfig holds the instrument settings.
type SimulationConfig struct {
	RangeKm         float64    `json:"range_km"`          // acquisition range (must be > 0)
	PulseWidthNs    float64    `json:"pulse_width_ns"`    // injected pulse duration (must be > 0)
	Wavelength      Wavelength `json:"wavelength_nm"`     // 1310 or 1550
	IOR             float64    `json:"ior"`               // group index of refraction (must be > 1)
	NoiseFloorDb    float64    `json:"noise_floor_db"`    // detector noise floor (must be < 0)
	AutoMode        bool       `json:"auto_mode"`         // derive range and pulse width from the topology
	TestDurationSec float64    `json:"test_duration_sec"` // 0 = continuous until stopped
}

// DefaultSimulationConfig returns the settings the instrument powers up with.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		RangeKm:         20,
		PulseWidthNs:    100,
		Wavelength:      Wavelength1550,
		IOR:             1.4682,
		NoiseFloorDb:    -30,
		AutoMode:        true,
		TestDurationSec: 15,
	}
}

// Validate returns a *ConfigurationError for the first setting that cannot be
// synthesized.
func (c SimulationConfig) Validate() error {
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"range_km", c.RangeKm},
		{"pulse_width_ns", c.PulseWidthNs},
		{"ior", c.IOR},
		{"noise_floor_db", c.NoiseFloorDb},
		{"test_duration_sec", c.TestDurationSec},
	} {
		if math.IsNaN(f.val) || math.IsInf(f.val, 0) {
			return &ConfigurationError{Field: f.name, Value: f.val, Reason: "must be a finite number"}
		}
	}
	if c.RangeKm <= 0 {
		return &ConfigurationError{Field: "range_km", Value: c.RangeKm, Reason: "must be positive"}
	}
	if c.PulseWidthNs <= 0 {
		return &ConfigurationError{Field: "pulse_width_ns", Value: c.PulseWidthNs, Reason: "must be positive"}
	}
	if !c.Wavelength.IsSupported() {
		return &ConfigurationError{Field: "wavelength_nm", Value: int(c.Wavelength), Reason: "supported: 1310, 1550"}
	}
	if c.IOR <= 1 {
		return &ConfigurationError{Field: "ior", Value: c.IOR, Reason: "must be greater than 1"}
	}
	if c.NoiseFloorDb >= 0 {
		return &ConfigurationError{Field: "noise_floor_db", Value: c.NoiseFloorDb, Reason: "must be negative"}
	}
	if c.TestDurationSec < 0 {
		return &ConfigurationError{Field: "test_duration_sec", Value: c.TestDurationSec, Reason: "must be non-negative (0 = continuous)"}
	}
	return nil
}

// SamplingResolutionKm returns the distance between adjacent trace samples.
func (c SimulationConfig) SamplingResolutionKm() float64 {
	return c.RangeKm / NumPoints
}

// samplesDiffer reports whether switching from c to other changes what a shot
// looks like. AutoMode and TestDurationSec only steer the host.
func (c SimulationConfig) samplesDiffer(other SimulationConfig) bool {
	return c.RangeKm != other.RangeKm ||
		c.PulseWidthNs != other.PulseWidthNs ||
		c.Wavelength != other.Wavelength ||
		c.IOR != other.IOR ||
		c.NoiseFloorDb != other.NoiseFloorDb
}

func (c SimulationConfig) String() string {
	return fmt.Sprintf("range=%gkm pulse=%gns wavelength=%dnm ior=%g floor=%gdB auto=%v duration=%gs",
		c.RangeKm, c.PulseWidthNs, c.Wavelength, c.IOR, c.NoiseFloorDb, c.AutoMode, c.TestDurationSec)
}
