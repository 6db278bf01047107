package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// AcquisitionState is the lifecycle state of an acquisition.
type AcquisitionState string

const (
	StateIdle      AcquisitionState = "idle"
	StateRunning   AcquisitionState = "running"
	StateStopped   AcquisitionState = "stopped"
	StateCompleted AcquisitionState = "completed"
)

// Scene supplies what an acquisition samples: the effective fiber and the
// instrument settings. Both are read on every tick.
type Scene interface {
	EffectiveEvents() []FiberEvent
	Config() SimulationConfig
}

// AccumulationState is the running sum of all shots of one acquisition.
// The displayed trace is Sum[i]/Count. Config and TerminalKm are the settings
// the first shot was taken under; once Count > 0 the trace is read against
// them, so edits made after a run is stopped do not re-space it.
type AccumulationState struct {
	Sum        [NumPoints]float64
	Count      int
	Config     SimulationConfig
	TerminalKm float64
}

// FinalizeFunc is invoked when an acquisition completes or is stopped.
type FinalizeFunc func(state AcquisitionState, elapsedSec float64)

// AcquisitionController drives repeated shots and averages them.
//
// Idle -> Running -> {Stopped, Completed}. Only Running advances the
// accumulator. The host calls Tick at a fixed cadence; each tick is bounded by
// NumPoints + |events| work and never blocks. The controller performs no
// locking: Start, Tick, Stop and scene mutations must be serialized by the
// caller.
type AcquisitionController struct {
	scene      Scene
	rngs       *PartitionedRNG
	rng        Float64Source
	onFinalize FinalizeFunc

	state   AcquisitionState
	acc     AccumulationState
	shot    [NumPoints]float64 // scratch; a failed shot never reaches acc
	elapsed float64
	runs    int
}

// NewAcquisitionController creates an idle controller. onFinalize may be nil.
func NewAcquisitionController(scene Scene, rngs *PartitionedRNG, onFinalize FinalizeFunc) *AcquisitionController {
	return &AcquisitionController{
		scene:      scene,
		rngs:       rngs,
		onFinalize: onFinalize,
		state:      StateIdle,
	}
}

// Start zeroes the accumulator and enters Running. Each run draws from its
// own RNG subsystem, so restarting does not replay the previous run's noise.
func (c *AcquisitionController) Start() error {
	if c.state == StateRunning {
		return ErrAlreadyRunning
	}
	if err := c.scene.Config().Validate(); err != nil {
		return err
	}
	c.Reset()
	c.elapsed = 0
	if c.runs == 0 {
		c.rng = c.rngs.ForSubsystem(SubsystemAcquisition)
	} else {
		c.rng = c.rngs.ForSubsystem(SubsystemRun(c.runs))
	}
	c.runs++
	c.transition(StateRunning)
	return nil
}

// Tick adds one shot to the accumulator. elapsedSec is the time since Start
// as measured by the host clock. When a test duration is set and has been
// reached, elapsed is clamped to it and the acquisition completes.
func (c *AcquisitionController) Tick(elapsedSec float64) (AcquisitionState, error) {
	if c.state != StateRunning {
		return c.state, ErrNotRunning
	}
	cfg := c.scene.Config()
	events := c.scene.EffectiveEvents()
	if err := ShotInto(c.shot[:], events, cfg, c.rng); err != nil {
		return c.state, fmt.Errorf("tick %d: %w", c.acc.Count+1, err)
	}
	if c.acc.Count == 0 {
		c.acc.Config = cfg
		c.acc.TerminalKm = TerminalDistance(events)
	}
	for i, v := range c.shot {
		c.acc.Sum[i] += v
	}
	c.acc.Count++
	c.elapsed = elapsedSec

	if cfg.TestDurationSec > 0 && elapsedSec >= cfg.TestDurationSec {
		c.elapsed = cfg.TestDurationSec
		c.finalize(StateCompleted)
	}
	return c.state, nil
}

// Stop cancels a running acquisition. The accumulator keeps its last fully
// updated state and the analysis is finalized as on completion.
func (c *AcquisitionController) Stop() error {
	if c.state != StateRunning {
		return ErrNotRunning
	}
	c.finalize(StateStopped)
	return nil
}

// Resume re-enters Running after a manual Stop without discarding the
// accumulator. The host rebases its clock so elapsed continues from
// Elapsed() (see Stopwatch).
func (c *AcquisitionController) Resume() error {
	if c.state != StateStopped {
		return ErrNotStopped
	}
	c.transition(StateRunning)
	return nil
}

// Reset discards the accumulated shots without changing state. Used when the
// fiber or the sampling settings change under a running acquisition.
func (c *AcquisitionController) Reset() {
	c.acc = AccumulationState{}
}

// State returns the current lifecycle state.
func (c *AcquisitionController) State() AcquisitionState { return c.state }

// Count returns the number of accumulated shots.
func (c *AcquisitionController) Count() int { return c.acc.Count }

// Elapsed returns the last elapsed time reported through Tick, clamped to the
// test duration on completion.
func (c *AcquisitionController) Elapsed() float64 { return c.elapsed }

// Runs returns how many times Start has succeeded.
func (c *AcquisitionController) Runs() int { return c.runs }

// DisplaySamples returns the averaged trace. Before the first tick it returns
// a single fresh shot from the preview RNG; that shot is not accumulated.
func (c *AcquisitionController) DisplaySamples() ([]float64, error) {
	out := make([]float64, NumPoints)
	if c.acc.Count == 0 {
		if err := ShotInto(out, c.scene.EffectiveEvents(), c.scene.Config(), c.rngs.ForSubsystem(SubsystemPreview)); err != nil {
			return nil, err
		}
		return out, nil
	}
	n := float64(c.acc.Count)
	for i, s := range c.acc.Sum {
		out[i] = s / n
	}
	return out, nil
}

// DisplayTrace is DisplaySamples paired with sample distances.
func (c *AcquisitionController) DisplayTrace() ([]TracePoint, error) {
	samples, err := c.DisplaySamples()
	if err != nil {
		return nil, err
	}
	cfg, _ := c.SampleBasis()
	return ToTracePoints(samples, cfg), nil
}

// SampleBasis returns the settings and terminal distance the displayed samples
// were synthesized under: the first accumulated shot's, or the scene's current
// ones while nothing has been accumulated.
func (c *AcquisitionController) SampleBasis() (SimulationConfig, float64) {
	if c.acc.Count > 0 {
		return c.acc.Config, c.acc.TerminalKm
	}
	return c.scene.Config(), TerminalDistance(c.scene.EffectiveEvents())
}

func (c *AcquisitionController) finalize(to AcquisitionState) {
	c.transition(to)
	if c.onFinalize != nil {
		c.onFinalize(to, c.elapsed)
	}
}

func (c *AcquisitionController) transition(to AcquisitionState) {
	logrus.Debugf("acquisition %s -> %s (shots=%d, elapsed=%.3fs)", c.state, to, c.acc.Count, c.elapsed)
	c.state = to
}
