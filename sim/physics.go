package sim

import "math"

// SpeedOfLightKmPerSec is the speed of light in vacuum.
const SpeedOfLightKmPerSec = 299792.458

// Dead-zone multiples of the pulse length.
const (
	EventDeadZoneFactor       = 1.5
	AttenuationDeadZoneFactor = 4.0
)

// spikeOffsetDb maps a reflectance in dB to a spike height above the
// backscatter level: height = reflectance + spikeOffsetDb.
const spikeOffsetDb = 75.0

// PulseLengthKm returns the spatial length of a pulse of the given width
// travelling through glass of the given index.
func PulseLengthKm(pulseWidthNs, ior float64) float64 {
	return SpeedOfLightKmPerSec / ior * pulseWidthNs * 1e-9
}

// NoiseAmplitudeDb returns the peak-to-peak shot noise of a single
// acquisition. Narrow pulses carry less energy and give noisier shots.
func NoiseAmplitudeDb(pulseWidthNs float64) float64 {
	return math.Max(0.5, 5.0/math.Max(1, math.Log10(pulseWidthNs)/2))
}

// DerivedPhysics are the read-only quantities an instrument panel shows next
// to the settings.
type DerivedPhysics struct {
	PulseLengthKm         float64 `json:"pulse_length_km"`
	EventDeadZoneKm       float64 `json:"event_dead_zone_km"`
	AttenuationDeadZoneKm float64 `json:"attenuation_dead_zone_km"`
	SamplingResolutionKm  float64 `json:"sampling_resolution_km"`
	NoiseAmplitudeDb      float64 `json:"noise_amplitude_db"`
	AttenuationDbPerKm    float64 `json:"attenuation_db_per_km"`
}

// Derive computes the panel quantities for cfg.
func Derive(cfg SimulationConfig) DerivedPhysics {
	pulse := PulseLengthKm(cfg.PulseWidthNs, cfg.IOR)
	return DerivedPhysics{
		PulseLengthKm:         pulse,
		EventDeadZoneKm:       EventDeadZoneFactor * pulse,
		AttenuationDeadZoneKm: AttenuationDeadZoneFactor * pulse,
		SamplingResolutionKm:  cfg.SamplingResolutionKm(),
		NoiseAmplitudeDb:      NoiseAmplitudeDb(cfg.PulseWidthNs),
		AttenuationDbPerKm:    cfg.Wavelength.AttenuationDbPerKm(),
	}
}
