package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fiberlab/otdr-sim/sim/journal"
)

// Instrument is the host-facing OTDR: the fiber model, the settings, an
// optional cut overlay and one acquisition controller. Every topology, cut or
// settings change re-runs auto-range (in auto mode) and recomputes the
// analysis table; a change that alters the samples discards the shots
// accumulated so far.
//
// Instrument is single-writer. All calls must be serialized by the host.
type Instrument struct {
	topology  *Topology
	cfg       SimulationConfig
	cut       *Cut
	effective []FiberEvent
	analysis  []AnalysisRecord
	acq       *AcquisitionController
	clock     Stopwatch
	journal   *journal.Journal
}

// Status is a snapshot of the acquisition for a status bar.
type Status struct {
	State      AcquisitionState `json:"state"`
	Shots      int              `json:"shots"`
	ElapsedSec float64          `json:"elapsed_sec"`
	Runs       int              `json:"runs"`
}

// NewInstrument validates cfg against topology and returns an idle
// instrument. j may be nil.
func NewInstrument(topology *Topology, cfg SimulationConfig, key SimulationKey, j *journal.Journal) (*Instrument, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	in := &Instrument{
		topology: topology.Clone(),
		cfg:      cfg,
		journal:  j,
	}
	if err := in.checkFits(cfg); err != nil {
		return nil, err
	}
	in.acq = NewAcquisitionController(in, NewPartitionedRNG(key), in.finalize)
	in.refresh()
	return in, nil
}

// EffectiveEvents implements Scene. The returned slice is shared; callers
// must not modify it.
func (in *Instrument) EffectiveEvents() []FiberEvent {
	return in.effective
}

// Config implements Scene.
func (in *Instrument) Config() SimulationConfig {
	return in.cfg
}

// Events returns the persisted topology, without the cut overlay.
func (in *Instrument) Events() []FiberEvent {
	return in.topology.Events()
}

// === Topology mutation ===

// AddEvent inserts an intermediate event and returns it with its assigned ID.
func (in *Instrument) AddEvent(e FiberEvent) (FiberEvent, error) {
	added, err := in.topology.Add(e, in.maxEventDistance())
	if err != nil {
		return FiberEvent{}, err
	}
	warnIfImplausible(added)
	in.refresh()
	return added, nil
}

// UpdateEvent replaces the event with the same ID.
func (in *Instrument) UpdateEvent(e FiberEvent) error {
	if err := in.topology.Update(e, in.maxEventDistance()); err != nil {
		return err
	}
	warnIfImplausible(e)
	in.refresh()
	return nil
}

// DeleteEvent removes an intermediate event.
func (in *Instrument) DeleteEvent(id string) error {
	if err := in.topology.Delete(id); err != nil {
		return err
	}
	in.refresh()
	return nil
}

// ApplyCut breaks the fiber at distanceKm. The break must lie strictly
// between the start and the end.
func (in *Instrument) ApplyCut(distanceKm float64) error {
	if math.IsNaN(distanceKm) || distanceKm <= 0 || distanceKm >= in.topology.EndDistance() {
		return fmt.Errorf("%w: %f km not within (0, %f)", ErrInvalidCut, distanceKm, in.topology.EndDistance())
	}
	in.cut = &Cut{DistanceKm: distanceKm}
	logrus.Infof("fiber cut at %.3f km", distanceKm)
	in.refresh()
	return nil
}

// Repair clears the cut overlay.
func (in *Instrument) Repair() {
	if in.cut == nil {
		return
	}
	in.cut = nil
	logrus.Infof("fiber repaired")
	in.refresh()
}

// Cut returns the active cut overlay, or nil.
func (in *Instrument) Cut() *Cut {
	if in.cut == nil {
		return nil
	}
	c := *in.cut
	return &c
}

// === Settings ===

// SetConfig replaces the settings. In auto mode range and pulse width are
// immediately re-derived from the topology; in manual mode they are kept as
// given.
func (in *Instrument) SetConfig(cfg SimulationConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := in.checkFits(cfg); err != nil {
		return err
	}
	old := in.cfg
	in.cfg = cfg
	if in.cfg.AutoMode {
		in.autoRange()
	}
	if in.cfg.Wavelength != old.Wavelength {
		in.analysis = Analyze(in.effective, in.cfg.Wavelength)
	}
	if old.samplesDiffer(in.cfg) {
		in.discardShots("settings changed")
	}
	return nil
}

// Selection returns what auto mode would choose for the current fiber,
// whether or not auto mode is on.
func (in *Instrument) Selection() RangeSelection {
	return SelectRange(in.topology, in.cut)
}

// Physics returns the derived quantities for the current settings.
func (in *Instrument) Physics() DerivedPhysics {
	return Derive(in.cfg)
}

// === Acquisition ===

// Start begins a new acquisition at host time now.
func (in *Instrument) Start(now time.Time) error {
	return in.track(func() error {
		if err := in.acq.Start(); err != nil {
			return err
		}
		in.clock.Start(now)
		return nil
	})
}

// Tick accumulates one shot at host time now and returns the resulting state.
func (in *Instrument) Tick(now time.Time) (AcquisitionState, error) {
	err := in.track(func() error {
		_, err := in.acq.Tick(in.clock.Elapsed(now))
		return err
	})
	if err == nil {
		in.journal.RecordTick(journal.TickRecord{Shot: in.acq.Count(), ElapsedSec: in.acq.Elapsed()})
	}
	return in.acq.State(), err
}

// Stop cancels the acquisition at host time now.
func (in *Instrument) Stop(now time.Time) error {
	return in.track(func() error {
		if err := in.acq.Stop(); err != nil {
			return err
		}
		in.clock.Pause(now)
		return nil
	})
}

// Resume continues a stopped acquisition, keeping its shots. Elapsed time
// continues from where Stop froze it.
func (in *Instrument) Resume(now time.Time) error {
	return in.track(func() error {
		if err := in.acq.Resume(); err != nil {
			return err
		}
		in.clock.Resume(now)
		return nil
	})
}

// Status returns the acquisition snapshot.
func (in *Instrument) Status() Status {
	return Status{
		State:      in.acq.State(),
		Shots:      in.acq.Count(),
		ElapsedSec: in.acq.Elapsed(),
		Runs:       in.acq.Runs(),
	}
}

// DisplayTrace returns the averaged trace, or a preview shot before the first tick.
func (in *Instrument) DisplayTrace() ([]TracePoint, error) {
	return in.acq.DisplayTrace()
}

// DisplaySamples is DisplayTrace without distances.
func (in *Instrument) DisplaySamples() ([]float64, error) {
	return in.acq.DisplaySamples()
}

// AnalysisTable returns the ground-truth event table.
func (in *Instrument) AnalysisTable() []AnalysisRecord {
	out := make([]AnalysisRecord, len(in.analysis))
	copy(out, in.analysis)
	return out
}

// Stats measures the displayed trace.
func (in *Instrument) Stats() (TraceStats, error) {
	samples, err := in.acq.DisplaySamples()
	if err != nil {
		return TraceStats{}, err
	}
	cfg, terminalKm := in.acq.SampleBasis()
	return ComputeTraceStats(samples, cfg, terminalKm), nil
}

// Journal returns the journal the instrument records into, possibly nil.
func (in *Instrument) Journal() *journal.Journal {
	return in.journal
}

// === internals ===

// refresh recomputes everything derived from the topology and cut.
func (in *Instrument) refresh() {
	in.effective = Effective(in.topology, in.cut)
	if in.cfg.AutoMode {
		in.autoRange()
	}
	in.analysis = Analyze(in.effective, in.cfg.Wavelength)
	in.discardShots("fiber changed")
}

func (in *Instrument) autoRange() {
	sel := SelectRange(in.topology, in.cut)
	applied := sel.ApplyTo(&in.cfg)
	in.journal.RecordAutoRange(journal.AutoRangeRecord{
		MaxDistanceKm: TerminalDistance(in.effective),
		RangeKm:       sel.RangeKm,
		PulseWidthNs:  sel.PulseWidthNs,
		Applied:       applied,
	})
	if applied {
		logrus.Debugf("auto range: %.0f km / %.0f ns", sel.RangeKm, sel.PulseWidthNs)
	}
}

func (in *Instrument) discardShots(reason string) {
	if in.acq == nil || in.acq.Count() == 0 {
		return
	}
	if in.acq.State() == StateRunning {
		logrus.Debugf("discarding %d shots: %s", in.acq.Count(), reason)
		in.acq.Reset()
	}
}

// checkFits rejects manual settings whose range does not cover the fiber.
func (in *Instrument) checkFits(cfg SimulationConfig) error {
	if cfg.AutoMode {
		return nil
	}
	if end := in.topology.EndDistance(); end > cfg.RangeKm {
		return &ConfigurationError{Field: "range_km", Value: cfg.RangeKm, Reason: fmt.Sprintf("shorter than the fiber (%.3f km)", end)}
	}
	return nil
}

func (in *Instrument) maxEventDistance() float64 {
	if in.cfg.AutoMode {
		return MaxAutoRangeKm()
	}
	return in.cfg.RangeKm
}

// track runs op and journals any state change it caused.
func (in *Instrument) track(op func() error) error {
	before := in.acq.State()
	err := op()
	if after := in.acq.State(); after != before {
		in.journal.RecordTransition(journal.TransitionRecord{
			From:       string(before),
			To:         string(after),
			ElapsedSec: in.acq.Elapsed(),
			Shots:      in.acq.Count(),
		})
	}
	return err
}

// finalize recomputes the analysis when an acquisition completes or stops.
func (in *Instrument) finalize(state AcquisitionState, elapsedSec float64) {
	in.analysis = Analyze(in.effective, in.cfg.Wavelength)
	logrus.Infof("acquisition %s after %.2fs, %d shots, total loss %.2f dB",
		state, elapsedSec, in.acq.Count(), TotalLossDb(in.analysis))
}

func warnIfImplausible(e FiberEvent) {
	if e.ReflectanceDb > CutReflectanceDb {
		logrus.Warnf("%s reflects more than an open glass-air end (%.1f dB)", e, CutReflectanceDb)
	}
}
