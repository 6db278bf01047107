// Package journal provides acquisition journal recording for instrument runs.
// This package has no dependencies on sim/; it stores pure data types.
package journal

// TransitionRecord captures a single acquisition state change.
type TransitionRecord struct {
	From       string
	To         string
	ElapsedSec float64
	Shots      int
}

// AutoRangeRecord captures a single auto-range evaluation.
type AutoRangeRecord struct {
	MaxDistanceKm float64
	RangeKm       float64
	PulseWidthNs  float64
	Applied       bool // false when the selection matched the current settings
}

// TickRecord captures one accumulated shot.
type TickRecord struct {
	Shot       int
	ElapsedSec float64
}
