package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTraceStats_NoiseFreeTrace(t *testing.T) {
	// GIVEN a noise-free shot of the reference fiber
	cfg := manualConfig()
	samples, err := Shot(Effective(referenceTopology(t), nil), cfg, constSource(0.5))
	require.NoError(t, err)

	// WHEN measured
	ts := ComputeTraceStats(samples, cfg, 18)

	// THEN the noise region is flat at the floor
	assert.Equal(t, NumPoints-firstIndexAtOrPast(18.0000001, cfg), ts.NoiseSamples)
	assert.InDelta(t, cfg.NoiseFloorDb, ts.NoiseMeanDb, 1e-9)
	assert.InDelta(t, 0, ts.NoiseStdDevDb, 1e-9)
	// AND the launch level is just below the start loss
	assert.InDelta(t, -0.5, ts.LaunchLevelDb, 0.2)
	assert.InDelta(t, ts.LaunchLevelDb-cfg.NoiseFloorDb, ts.DynamicRangeDb, 1e-9)
}

func TestComputeTraceStats_NoiseRegionStdDev(t *testing.T) {
	// GIVEN a single noisy 10 ns shot (uniform noise of width 5 dB)
	cfg := manualConfig()
	cfg.PulseWidthNs = 10
	samples, err := Shot(Effective(referenceTopology(t), nil), cfg, NewPartitionedRNG(NewSimulationKey(3)).ForSubsystem(SubsystemAcquisition))
	require.NoError(t, err)

	ts := ComputeTraceStats(samples, cfg, 18)

	// THEN σ matches a uniform distribution: width/√12
	assert.InDelta(t, 5/math.Sqrt(12), ts.NoiseStdDevDb, 0.1)
	assert.InDelta(t, cfg.NoiseFloorDb, ts.NoiseMeanDb, 0.15)
}

func TestComputeTraceStats_NoNoiseRegion(t *testing.T) {
	cfg := manualConfig()
	samples := make([]float64, NumPoints)

	ts := ComputeTraceStats(samples, cfg, cfg.RangeKm)

	assert.Zero(t, ts.NoiseSamples)
	assert.True(t, math.IsNaN(ts.DynamicRangeDb))
	assert.True(t, math.IsNaN(ComputeTraceStats(nil, cfg, 1).DynamicRangeDb))
}

func TestComputeTraceStats_GridAlignedTerminal_NoiseRegionIsFloorOnly(t *testing.T) {
	// GIVEN noise-free shots whose end lies exactly on a sample for every ladder range
	for _, rangeKm := range RangeLadderKm {
		cfg := manualConfig()
		cfg.RangeKm = rangeKm
		step := cfg.SamplingResolutionKm()
		for k := 3; k < NumPoints-1; k += 37 {
			term := float64(k) * step
			events := []FiberEvent{
				{ID: "start", Type: EventStart, LossDb: 0.5, ReflectanceDb: -45},
				{ID: "end", Type: EventEnd, DistanceKm: term, ReflectanceDb: -14},
			}
			samples, err := Shot(events, cfg, constSource(0.5))
			require.NoError(t, err)

			// WHEN measured
			ts := ComputeTraceStats(samples, cfg, term)

			// THEN the noise region holds exactly the floor samples past the end
			want := 0
			for i := range samples {
				if float64(i)*step > term {
					want++
				}
			}
			require.Equal(t, want, ts.NoiseSamples, "range=%g term=%g", rangeKm, term)
			require.InDelta(t, cfg.NoiseFloorDb, ts.NoiseMeanDb, 1e-9, "range=%g term=%g", rangeKm, term)
			require.InDelta(t, 0, ts.NoiseStdDevDb, 1e-9, "range=%g term=%g", rangeKm, term)
		}
	}
}

func TestFirstSampleBeyond(t *testing.T) {
	assert.Equal(t, 0, firstSampleBeyond(-1, 0.01, 10))
	assert.Equal(t, 1, firstSampleBeyond(0, 0.01, 10))
	assert.Equal(t, 10, firstSampleBeyond(5, 0.01, 10))
	step := 5.0 / NumPoints
	assert.Equal(t, 212, firstSampleBeyond(211*step, step, NumPoints))
}
