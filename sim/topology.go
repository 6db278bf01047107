package sim

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Topology is the persisted model of the fiber under test: an ordered event
// list with exactly one start at 0 km and exactly one end at the maximum
// distance. Events are kept sorted by ascending distance.
//
// Topology is not safe for concurrent use; callers serialize mutations with
// acquisition ticks.
type Topology struct {
	events []FiberEvent
}

// NewTopology validates events and returns them as a Topology.
// Events without an ID are assigned a random UUID.
func NewTopology(events []FiberEvent) (*Topology, error) {
	t := &Topology{events: make([]FiberEvent, 0, len(events))}
	seen := make(map[string]bool, len(events))
	starts, ends := 0, 0
	for _, e := range events {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if seen[e.ID] {
			return nil, &ValidationError{Op: "build", EventID: e.ID, Reason: "duplicate event id"}
		}
		seen[e.ID] = true
		if reason := e.validateValues(); reason != "" {
			return nil, &ValidationError{Op: "build", EventID: e.ID, Reason: reason}
		}
		switch e.Type {
		case EventCut:
			return nil, &ValidationError{Op: "build", EventID: e.ID, Reason: "cut is an overlay, not a persisted event"}
		case EventStart:
			starts++
			if e.DistanceKm != 0 {
				return nil, &ValidationError{Op: "build", EventID: e.ID, Reason: fmt.Sprintf("start must be at 0 km, got %f", e.DistanceKm)}
			}
		case EventEnd:
			ends++
		}
		t.events = append(t.events, e)
	}
	if starts != 1 || ends != 1 {
		return nil, &ValidationError{Op: "build", Reason: fmt.Sprintf("need exactly one start and one end, got %d and %d", starts, ends)}
	}
	t.sort()
	end := t.events[len(t.events)-1]
	if end.Type != EventEnd {
		return nil, &ValidationError{Op: "build", EventID: end.ID, Reason: "event lies at or beyond the end of the fiber"}
	}
	for _, e := range t.events[:len(t.events)-1] {
		if !e.IsTerminal() && e.DistanceKm >= end.DistanceKm {
			return nil, &ValidationError{Op: "build", EventID: e.ID, Reason: "event lies at or beyond the end of the fiber"}
		}
	}
	if end.DistanceKm <= 0 {
		return nil, &ValidationError{Op: "build", EventID: end.ID, Reason: "end must lie beyond the start"}
	}
	return t, nil
}

// Events returns a copy of the events in ascending distance order.
func (t *Topology) Events() []FiberEvent {
	out := make([]FiberEvent, len(t.events))
	copy(out, t.events)
	return out
}

// Len returns the number of persisted events, start and end included.
func (t *Topology) Len() int {
	return len(t.events)
}

// Event looks up an event by ID.
func (t *Topology) Event(id string) (FiberEvent, bool) {
	if i := t.indexOf(id); i >= 0 {
		return t.events[i], true
	}
	return FiberEvent{}, false
}

// EndDistance returns the distance of the end event in km.
func (t *Topology) EndDistance() float64 {
	return t.events[len(t.events)-1].DistanceKm
}

// Clone returns an independent copy of the topology.
func (t *Topology) Clone() *Topology {
	return &Topology{events: t.Events()}
}

// Add inserts a new intermediate event. maxDistanceKm bounds the distance
// (the instrument range, or the widest auto-range candidate in auto mode).
// The stored event, with its assigned ID, is returned.
func (t *Topology) Add(e FiberEvent, maxDistanceKm float64) (FiberEvent, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if t.indexOf(e.ID) >= 0 {
		return FiberEvent{}, &ValidationError{Op: "add", EventID: e.ID, Reason: "duplicate event id"}
	}
	if e.IsTerminal() {
		return FiberEvent{}, &ValidationError{Op: "add", EventID: e.ID, Reason: "a fiber has exactly one start and one end", Err: ErrProtectedEvent}
	}
	if reason := t.placement(e, maxDistanceKm); reason != "" {
		return FiberEvent{}, &ValidationError{Op: "add", EventID: e.ID, Reason: reason}
	}
	t.events = append(t.events, e)
	t.sort()
	return e, nil
}

// Update replaces the event with the same ID. The start and end keep their
// types; the start stays at 0 km; the end may move but must remain beyond
// every other event.
func (t *Topology) Update(e FiberEvent, maxDistanceKm float64) error {
	i := t.indexOf(e.ID)
	if i < 0 {
		return &ValidationError{Op: "update", EventID: e.ID, Reason: "no such event", Err: ErrEventNotFound}
	}
	old := t.events[i]
	if old.IsTerminal() != e.IsTerminal() || (old.IsTerminal() && old.Type != e.Type) {
		return &ValidationError{Op: "update", EventID: e.ID, Reason: "cannot change the type of a start or end event", Err: ErrProtectedEvent}
	}
	if reason := t.placement(e, maxDistanceKm); reason != "" {
		return &ValidationError{Op: "update", EventID: e.ID, Reason: reason}
	}
	t.events[i] = e
	t.sort()
	return nil
}

// Delete removes an intermediate event. The start and end cannot be deleted.
func (t *Topology) Delete(id string) error {
	i := t.indexOf(id)
	if i < 0 {
		return &ValidationError{Op: "delete", EventID: id, Reason: "no such event", Err: ErrEventNotFound}
	}
	if t.events[i].IsTerminal() {
		return &ValidationError{Op: "delete", EventID: id, Reason: string(t.events[i].Type) + " is protected", Err: ErrProtectedEvent}
	}
	t.events = append(t.events[:i], t.events[i+1:]...)
	return nil
}

// placement returns why e cannot sit in the topology, or "" if it can.
// For updates, e replaces the stored event with the same ID.
func (t *Topology) placement(e FiberEvent, maxDistanceKm float64) string {
	if reason := e.validateValues(); reason != "" {
		return reason
	}
	if e.Type == EventCut {
		return "cut is an overlay, not a persisted event"
	}
	if e.DistanceKm > maxDistanceKm {
		return fmt.Sprintf("distance %.3f km outside [0, %.3f]", e.DistanceKm, maxDistanceKm)
	}
	switch e.Type {
	case EventStart:
		if e.DistanceKm != 0 {
			return "start must stay at 0 km"
		}
	case EventEnd:
		for _, other := range t.events {
			if other.ID != e.ID && !other.IsTerminal() && other.DistanceKm >= e.DistanceKm {
				return fmt.Sprintf("end at %.3f km would not lie beyond %s", e.DistanceKm, other)
			}
		}
		if e.DistanceKm <= 0 {
			return "end must lie beyond the start"
		}
	default:
		if end := t.EndDistance(); e.DistanceKm >= end {
			return fmt.Sprintf("distance %.3f km at or beyond the end of the fiber (%.3f km)", e.DistanceKm, end)
		}
	}
	return ""
}

func (t *Topology) indexOf(id string) int {
	for i, e := range t.events {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (t *Topology) sort() {
	sortEvents(t.events)
}

// sortEvents orders events by ascending distance; on ties the start comes
// first and the end last.
func sortEvents(events []FiberEvent) {
	rank := func(e FiberEvent) int {
		switch e.Type {
		case EventStart:
			return 0
		case EventEnd, EventCut:
			return 2
		}
		return 1
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].DistanceKm != events[j].DistanceKm {
			return events[i].DistanceKm < events[j].DistanceKm
		}
		return rank(events[i]) < rank(events[j])
	})
}

// === Cut overlay ===

// Cut is a transient break applied on read. It never modifies the Topology.
type Cut struct {
	DistanceKm float64 `json:"distance_km"`
}

// Event returns the synthetic event the cut contributes.
func (c Cut) Event() FiberEvent {
	return FiberEvent{
		ID:            CutEventID,
		Type:          EventCut,
		DistanceKm:    c.DistanceKm,
		LossDb:        CutLossDb,
		ReflectanceDb: CutReflectanceDb,
	}
}

// Effective returns what the fiber currently looks like: the topology's events
// in ascending distance order, truncated by cut if present. Every event at or
// beyond the cut is dropped and the synthetic cut event is appended.
func Effective(t *Topology, cut *Cut) []FiberEvent {
	if cut == nil {
		return t.Events()
	}
	out := make([]FiberEvent, 0, len(t.events)+1)
	for _, e := range t.events {
		if e.DistanceKm >= cut.DistanceKm {
			break
		}
		out = append(out, e)
	}
	return append(out, cut.Event())
}

// TerminalDistance returns the distance of the last event of an effective
// event list, or 0 for an empty list.
func TerminalDistance(events []FiberEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	return events[len(events)-1].DistanceKm
}
