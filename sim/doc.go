// Package sim provides the physics and acquisition engine of the OTDR simulator.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - topology.go: the fiber model (ordered events) and the cut overlay (Effective)
//   - synth.go: single-shot trace synthesis (attenuation, event loss, reflections, dead zones, noise)
//   - acquisition.go: the averaging state machine (idle -> running -> stopped/completed)
//   - analysis.go: the ground-truth loss table, computed from the topology, never from samples
//   - instrument.go: the host-facing facade tying the above together
//
// # Architecture
//
// The engine is single-threaded and cooperative: a host clock calls
// Instrument.Tick at a fixed cadence, and every call is a bounded, non-blocking
// computation over fixed-size buffers. Randomness is injected through
// PartitionedRNG so a SimulationKey reproduces a trace bit for bit.
//
// Sub-packages:
//   - sim/journal/: pure-data acquisition journal (transitions, auto-range decisions, ticks)
//   - sim/scenario/: YAML scenario files and built-in presets
//   - sim/report/: JSON, CSV, PNG and HTML outputs built from engine results
package sim
