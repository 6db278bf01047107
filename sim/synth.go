package sim

import (
	"fmt"
	"math"
)

// TracePoint is one sample of a displayed trace.
type TracePoint struct {
	X float64 `json:"x_km"`
	Y float64 `json:"y_db"`
}

// Shot synthesizes one noisy acquisition of the effective event list
// (see Effective) under cfg. The result has exactly NumPoints samples.
func Shot(events []FiberEvent, cfg SimulationConfig, rng Float64Source) ([]float64, error) {
	out := make([]float64, NumPoints)
	if err := ShotInto(out, events, cfg, rng); err != nil {
		return nil, err
	}
	return out, nil
}

// ShotInto is Shot writing into a caller-owned buffer of length NumPoints.
// It does not allocate, and its cost is bounded by NumPoints + len(events).
//
// Per sample at distance d the backscatter level is the running loss budget
// minus fiber attenuation. Each event is merged exactly once, at the first
// sample at or past its distance, stepping the budget down by its loss. Events
// above DeadZoneThresholdDb open a ring-down window of 1.5 pulse lengths that
// decays as ratio^4 from the spike height; reflective events add the full
// spike at the triggering sample. Samples past the terminal event sit at the
// noise floor. Uniform shot noise is added last; a noised sample below the
// floor is re-centered on the floor so the floor itself looks noisy.
func ShotInto(dst []float64, events []FiberEvent, cfg SimulationConfig, rng Float64Source) error {
	if len(dst) != NumPoints {
		return fmt.Errorf("shot buffer has %d samples, need %d", len(dst), NumPoints)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	coeff := cfg.Wavelength.AttenuationDbPerKm()
	step := cfg.SamplingResolutionKm()
	deadZoneLen := EventDeadZoneFactor * PulseLengthKm(cfg.PulseWidthNs, cfg.IOR)
	terminal := TerminalDistance(events)
	noiseAmp := NoiseAmplitudeDb(cfg.PulseWidthNs)

	currentPower := 0.0
	next := 0
	inDeadZone := false
	deadZoneEnd, deadZoneHeight := 0.0, 0.0

	for i := range dst {
		d := float64(i) * step
		idealPower := currentPower - coeff*d
		spike := 0.0

		for next < len(events) && events[next].DistanceKm <= d {
			ev := events[next]
			next++
			currentPower -= ev.LossDb
			idealPower -= ev.LossDb
			if ev.TriggersDeadZone() {
				inDeadZone = true
				deadZoneEnd = ev.DistanceKm + deadZoneLen
				deadZoneHeight = ev.ReflectanceDb + spikeOffsetDb
			}
			if ev.IsReflective() {
				spike += ev.ReflectanceDb + spikeOffsetDb
			}
		}

		value := idealPower
		if inDeadZone {
			remaining := deadZoneEnd - d
			if remaining <= 0 || deadZoneLen <= 0 {
				inDeadZone = false
			} else {
				ratio := math.Min(1, remaining/deadZoneLen)
				value = idealPower + math.Pow(ratio, 4)*((idealPower+deadZoneHeight)-idealPower)
			}
		}
		value += spike

		if d > terminal {
			value = cfg.NoiseFloorDb
		}

		noise := (rng.Float64() - 0.5) * noiseAmp
		noised := value + noise
		if noised < cfg.NoiseFloorDb {
			noised = cfg.NoiseFloorDb + noise
		}
		dst[i] = noised
	}
	return nil
}

// ToTracePoints pairs samples with their distances under cfg.
func ToTracePoints(samples []float64, cfg SimulationConfig) []TracePoint {
	step := cfg.SamplingResolutionKm()
	points := make([]TracePoint, len(samples))
	for i, y := range samples {
		points[i] = TracePoint{X: float64(i) * step, Y: y}
	}
	return points
}
