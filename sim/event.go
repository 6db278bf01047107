// Defines FiberEvent, a discrete physical feature along the fiber under test.

package sim

import (
	"fmt"
	"math"
)

// EventType classifies a fiber event.
type EventType string

const (
	EventStart       EventType = "start"
	EventConnector   EventType = "connector"
	EventSplice      EventType = "splice"
	EventBend        EventType = "bend"
	EventDegradation EventType = "degradation"
	EventCut         EventType = "cut"
	EventEnd         EventType = "end"
)

// validEventTypes maps accepted event type strings.
var validEventTypes = map[EventType]bool{
	EventStart:       true,
	EventConnector:   true,
	EventSplice:      true,
	EventBend:        true,
	EventDegradation: true,
	EventCut:         true,
	EventEnd:         true,
}

// IsValidEventType returns true if the given string is a recognized event type.
func IsValidEventType(name string) bool {
	return validEventTypes[EventType(name)]
}

// Reflectance thresholds. They are deliberately different: an event between
// -65 and -60 dB rings the detector without drawing a visible peak.
const (
	// ReflectiveThresholdDb marks an event as reflective (visible spike, reported reflectance).
	ReflectiveThresholdDb = -60.0
	// DeadZoneThresholdDb starts a dead-zone ring-down during synthesis.
	DeadZoneThresholdDb = -65.0
)

// The synthetic event appended by a cut overlay.
const (
	CutEventID       = "cut"
	CutLossDb        = 50.0
	CutReflectanceDb = -14.0
)

// FiberEvent is a splice, connector, bend, stress point, break, or one of the
// fiber's two terminals.
type FiberEvent struct {
	ID            string    `json:"id" yaml:"id"`
	Type          EventType `json:"type" yaml:"type"`
	DistanceKm    float64   `json:"distance_km" yaml:"distance_km"`
	LossDb        float64   `json:"loss_db" yaml:"loss_db"`
	ReflectanceDb float64   `json:"reflectance_db" yaml:"reflectance_db"`
}

// IsReflective reports whether the event draws a visible reflection peak.
func (e FiberEvent) IsReflective() bool {
	return e.ReflectanceDb > ReflectiveThresholdDb
}

// TriggersDeadZone reports whether the event starts a detector ring-down.
func (e FiberEvent) TriggersDeadZone() bool {
	return e.ReflectanceDb > DeadZoneThresholdDb
}

// IsTerminal reports whether the event is the fiber's start or end.
func (e FiberEvent) IsTerminal() bool {
	return e.Type == EventStart || e.Type == EventEnd
}

// String returns a human-readable representation of the event.
func (e FiberEvent) String() string {
	return fmt.Sprintf("%s@%.3fkm (loss=%.2fdB, refl=%.1fdB)", e.Type, e.DistanceKm, e.LossDb, e.ReflectanceDb)
}

// validateValues checks the caller-supplied numbers of an event, independent of
// where it sits in a topology.
func (e FiberEvent) validateValues() string {
	if !validEventTypes[e.Type] {
		return fmt.Sprintf("unknown event type %q; valid: start, connector, splice, bend, degradation, end (cut is accepted only as an overlay)", e.Type)
	}
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"distance_km", e.DistanceKm},
		{"loss_db", e.LossDb},
		{"reflectance_db", e.ReflectanceDb},
	} {
		if math.IsNaN(f.val) || math.IsInf(f.val, 0) {
			return fmt.Sprintf("%s must be a finite number, got %f", f.name, f.val)
		}
	}
	if e.DistanceKm < 0 {
		return fmt.Sprintf("distance_km must be non-negative, got %f", e.DistanceKm)
	}
	if e.LossDb < 0 {
		return fmt.Sprintf("loss_db must be non-negative, got %f", e.LossDb)
	}
	if e.ReflectanceDb > 0 {
		return fmt.Sprintf("reflectance_db must not be positive, got %f", e.ReflectanceDb)
	}
	return ""
}
