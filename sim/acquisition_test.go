package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

// newTestController returns a controller over the reference fiber and a log
// of finalize calls.
func newTestController(t *testing.T, cfg SimulationConfig) (*AcquisitionController, *staticScene, *[]AcquisitionState) {
	t.Helper()
	scene := &staticScene{events: Effective(referenceTopology(t), nil), cfg: cfg}
	var finals []AcquisitionState
	c := NewAcquisitionController(scene, NewPartitionedRNG(NewSimulationKey(42)), func(s AcquisitionState, _ float64) {
		finals = append(finals, s)
	})
	return c, scene, &finals
}

func TestAcquisition_StartsIdle(t *testing.T) {
	c, _, _ := newTestController(t, manualConfig())

	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, 0, c.Count())
}

func TestAcquisition_Start_ReentrantIsError(t *testing.T) {
	c, _, _ := newTestController(t, manualConfig())
	require.NoError(t, c.Start())

	err := c.Start()

	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Equal(t, StateRunning, c.State())
}

func TestAcquisition_Start_InvalidConfigRejected(t *testing.T) {
	cfg := manualConfig()
	cfg.PulseWidthNs = -1
	c, _, _ := newTestController(t, cfg)

	err := c.Start()

	var cerr *ConfigurationError
	assert.True(t, errors.As(err, &cerr))
	assert.Equal(t, StateIdle, c.State())
}

func TestAcquisition_TickOutsideRunning_IsError(t *testing.T) {
	c, _, _ := newTestController(t, manualConfig())

	_, err := c.Tick(0.1)
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.ErrorIs(t, c.Stop(), ErrNotRunning)
	assert.Equal(t, 0, c.Count())
}

func TestAcquisition_Tick_AccumulatesRunningAverage(t *testing.T) {
	// GIVEN a running acquisition
	cfg := manualConfig()
	c, scene, _ := newTestController(t, cfg)
	require.NoError(t, c.Start())

	// WHEN two ticks run
	for i := 1; i <= 2; i++ {
		state, err := c.Tick(float64(i) * 0.016)
		require.NoError(t, err)
		require.Equal(t, StateRunning, state)
	}

	// THEN the display is the sample-wise mean of the two shots drawn from the
	// acquisition subsystem
	rng := NewPartitionedRNG(NewSimulationKey(42)).ForSubsystem(SubsystemAcquisition)
	s1, err := Shot(scene.events, cfg, rng)
	require.NoError(t, err)
	s2, err := Shot(scene.events, cfg, rng)
	require.NoError(t, err)

	got, err := c.DisplaySamples()
	require.NoError(t, err)
	assert.Equal(t, 2, c.Count())
	for i := range got {
		require.InDelta(t, (s1[i]+s2[i])/2, got[i], 1e-9, "sample %d", i)
	}
}

func TestAcquisition_DisplayBeforeFirstTick_IsPreviewShotNotAccumulated(t *testing.T) {
	cfg := manualConfig()
	c, scene, _ := newTestController(t, cfg)
	require.NoError(t, c.Start())

	got, err := c.DisplaySamples()
	require.NoError(t, err)

	want, err := Shot(scene.events, cfg, NewPartitionedRNG(NewSimulationKey(42)).ForSubsystem(SubsystemPreview))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 0, c.Count(), "preview shot must not be accumulated")

	// AND an idle controller can preview too
	idle, _, _ := newTestController(t, cfg)
	trace, err := idle.DisplayTrace()
	require.NoError(t, err)
	assert.Len(t, trace, NumPoints)
}

func TestAcquisition_TestDuration_CompletesAndClampsElapsed(t *testing.T) {
	// GIVEN a 1 s test
	cfg := manualConfig()
	cfg.TestDurationSec = 1
	c, _, finals := newTestController(t, cfg)
	require.NoError(t, c.Start())

	// WHEN ticks run past the duration
	state, err := c.Tick(0.5)
	require.NoError(t, err)
	assert.Equal(t, StateRunning, state)
	state, err = c.Tick(1.3)
	require.NoError(t, err)

	// THEN the acquisition completes at exactly 1 s and analysis is finalized once
	assert.Equal(t, StateCompleted, state)
	assert.Equal(t, 1.0, c.Elapsed())
	assert.Equal(t, 2, c.Count())
	assert.Equal(t, []AcquisitionState{StateCompleted}, *finals)

	// AND further ticks are rejected without touching the accumulator
	_, err = c.Tick(1.4)
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.Equal(t, 2, c.Count())
}

func TestAcquisition_ContinuousMode_NeverCompletes(t *testing.T) {
	c, _, finals := newTestController(t, manualConfig())
	require.NoError(t, c.Start())

	for i := 0; i < 50; i++ {
		state, err := c.Tick(float64(i) * 100)
		require.NoError(t, err)
		require.Equal(t, StateRunning, state)
	}
	assert.Empty(t, *finals)
}

func TestAcquisition_Stop_FinalizesAndKeepsAccumulator(t *testing.T) {
	c, _, finals := newTestController(t, manualConfig())
	require.NoError(t, c.Start())
	_, err := c.Tick(0.1)
	require.NoError(t, err)
	before, err := c.DisplaySamples()
	require.NoError(t, err)

	require.NoError(t, c.Stop())

	assert.Equal(t, StateStopped, c.State())
	assert.Equal(t, []AcquisitionState{StateStopped}, *finals)
	after, err := c.DisplaySamples()
	require.NoError(t, err)
	assert.Equal(t, before, after, "stop must leave the last fully-updated accumulator")
	assert.ErrorIs(t, c.Stop(), ErrNotRunning)
}

func TestAcquisition_StoppedTrace_KeepsAcquisitionSpacing(t *testing.T) {
	// GIVEN a stopped acquisition taken on the 40 km range
	c, scene, _ := newTestController(t, manualConfig())
	require.NoError(t, c.Start())
	_, err := c.Tick(0.1)
	require.NoError(t, err)
	require.NoError(t, c.Stop())

	// WHEN the scene moves to the 80 km range and a shorter fiber
	scene.cfg.RangeKm = 80
	scene.events = []FiberEvent{
		{ID: "start", Type: EventStart, LossDb: 0.5, ReflectanceDb: -45},
		{ID: "end", Type: EventEnd, DistanceKm: 10, ReflectanceDb: -14},
	}

	// THEN the trace is still laid out and bounded as acquired
	trace, err := c.DisplayTrace()
	require.NoError(t, err)
	assert.InDelta(t, 0.01, trace[1].X, 1e-12)
	assert.InDelta(t, 39.99, trace[len(trace)-1].X, 1e-9)
	cfg, terminalKm := c.SampleBasis()
	assert.Equal(t, 40.0, cfg.RangeKm)
	assert.Equal(t, 18.0, terminalKm)
}

func TestAcquisition_SampleBasis_FollowsSceneUntilFirstShot(t *testing.T) {
	c, scene, _ := newTestController(t, manualConfig())
	require.NoError(t, c.Start())
	scene.cfg.RangeKm = 80

	cfg, _ := c.SampleBasis()
	assert.Equal(t, 80.0, cfg.RangeKm)

	_, err := c.Tick(0.1)
	require.NoError(t, err)
	c.Reset()
	scene.cfg.RangeKm = 20
	cfg, _ = c.SampleBasis()
	assert.Equal(t, 20.0, cfg.RangeKm, "a reset run has no acquired basis")
}

func TestAcquisition_Resume_ContinuesAccumulating(t *testing.T) {
	c, _, _ := newTestController(t, manualConfig())
	require.NoError(t, c.Start())
	_, err := c.Tick(0.1)
	require.NoError(t, err)
	require.NoError(t, c.Stop())

	require.NoError(t, c.Resume())
	_, err = c.Tick(0.2)
	require.NoError(t, err)

	assert.Equal(t, StateRunning, c.State())
	assert.Equal(t, 2, c.Count())
	assert.ErrorIs(t, c.Resume(), ErrNotStopped)
}

func TestAcquisition_Resume_AfterCompletionIsError(t *testing.T) {
	cfg := manualConfig()
	cfg.TestDurationSec = 0.5
	c, _, _ := newTestController(t, cfg)
	require.NoError(t, c.Start())
	_, err := c.Tick(0.6)
	require.NoError(t, err)

	assert.ErrorIs(t, c.Resume(), ErrNotStopped)
}

func TestAcquisition_Restart_ZeroesAndDrawsFreshNoise(t *testing.T) {
	c, _, _ := newTestController(t, manualConfig())
	require.NoError(t, c.Start())
	_, err := c.Tick(0.1)
	require.NoError(t, err)
	first, err := c.DisplaySamples()
	require.NoError(t, err)
	require.NoError(t, c.Stop())

	// WHEN restarted
	require.NoError(t, c.Start())
	assert.Equal(t, 0, c.Count())
	_, err = c.Tick(0.1)
	require.NoError(t, err)
	second, err := c.DisplaySamples()
	require.NoError(t, err)

	// THEN the new run does not replay the first run's noise
	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, c.Runs())
}

func TestAcquisition_FailedTick_LeavesAccumulatorIntact(t *testing.T) {
	c, scene, _ := newTestController(t, manualConfig())
	require.NoError(t, c.Start())
	_, err := c.Tick(0.1)
	require.NoError(t, err)
	before, err := c.DisplaySamples()
	require.NoError(t, err)

	// WHEN the settings become invalid mid-run
	scene.cfg.IOR = 0.5
	_, err = c.Tick(0.2)

	// THEN the tick fails and nothing was half-added
	var cerr *ConfigurationError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, 1, c.Count())
	scene.cfg.IOR = 1.4682
	after, err := c.DisplaySamples()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAcquisition_Averaging_ReducesVarianceAsOneOverK(t *testing.T) {
	// GIVEN the noise-only region past the end of the reference fiber
	cfg := manualConfig()
	cfg.PulseWidthNs = 10
	tail := firstIndexAtOrPast(20, cfg)

	varianceAfter := func(k int) float64 {
		c, _, _ := newTestController(t, cfg)
		require.NoError(t, c.Start())
		for i := 0; i < k; i++ {
			_, err := c.Tick(float64(i))
			require.NoError(t, err)
		}
		samples, err := c.DisplaySamples()
		require.NoError(t, err)
		return stat.Variance(samples[tail:], nil)
	}

	// WHEN 1 and 16 shots are averaged
	single := varianceAfter(1)
	averaged := varianceAfter(16)

	// THEN variance drops by about 16×
	ratio := averaged / single
	assert.InDelta(t, 1.0/16, ratio, 1.0/32, "variance ratio %v", ratio)
}
