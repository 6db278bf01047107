package sim

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// launchWindow is the number of leading samples whose median estimates the
// launch level. A median ignores the front-connector spike.
const launchWindow = 50

// TraceStats summarizes a displayed trace.
type TraceStats struct {
	LaunchLevelDb  float64 `json:"launch_level_db"`
	NoiseSamples   int     `json:"noise_samples"`
	NoiseMeanDb    float64 `json:"noise_mean_db"`
	NoiseStdDevDb  float64 `json:"noise_stddev_db"`
	DynamicRangeDb float64 `json:"dynamic_range_db"` // launch level minus (noise mean + 1σ); NaN without a noise region
}

// ComputeTraceStats measures the noise region past the terminal distance and
// the launch level at the start of the trace.
func ComputeTraceStats(samples []float64, cfg SimulationConfig, terminalKm float64) TraceStats {
	ts := TraceStats{DynamicRangeDb: math.NaN()}
	if len(samples) == 0 {
		return ts
	}

	head := make([]float64, min(launchWindow, len(samples)))
	copy(head, samples)
	sort.Float64s(head)
	ts.LaunchLevelDb = stat.Quantile(0.5, stat.Empirical, head, nil)

	first := firstSampleBeyond(terminalKm, cfg.SamplingResolutionKm(), len(samples))
	if first >= len(samples) {
		return ts
	}
	noise := samples[first:]
	ts.NoiseSamples = len(noise)
	ts.NoiseMeanDb, ts.NoiseStdDevDb = stat.MeanStdDev(noise, nil)
	if math.IsNaN(ts.NoiseStdDevDb) {
		ts.NoiseStdDevDb = 0
	}
	ts.DynamicRangeDb = ts.LaunchLevelDb - (ts.NoiseMeanDb + ts.NoiseStdDevDb)
	return ts
}

// firstSampleBeyond returns the first index i with i*step > km, using the same
// arithmetic as ShotInto so the boundary matches the synthesized floor.
func firstSampleBeyond(km, step float64, n int) int {
	i := min(n, max(0, int(math.Floor(km/step))-1))
	for i < n && float64(i)*step <= km {
		i++
	}
	return i
}
