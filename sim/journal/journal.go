package journal

// Level controls the verbosity of the journal.
type Level string

const (
	// LevelNone disables journaling (zero overhead).
	LevelNone Level = "none"
	// LevelTransitions captures state changes and auto-range decisions.
	LevelTransitions Level = "transitions"
	// LevelTicks additionally captures every accumulated shot.
	LevelTicks Level = "ticks"
)

// validLevels maps accepted level strings.
var validLevels = map[Level]bool{
	LevelNone:        true,
	LevelTransitions: true,
	LevelTicks:       true,
	"":               true, // empty defaults to none
}

// IsValidLevel returns true if the given level string is a recognized journal level.
func IsValidLevel(level string) bool {
	return validLevels[Level(level)]
}

// Journal collects records during an instrument session.
// A nil *Journal is valid and records nothing.
type Journal struct {
	Level       Level
	Transitions []TransitionRecord
	AutoRanges  []AutoRangeRecord
	Ticks       []TickRecord
}

// New creates a Journal ready for recording.
func New(level Level) *Journal {
	return &Journal{
		Level:       level,
		Transitions: make([]TransitionRecord, 0),
		AutoRanges:  make([]AutoRangeRecord, 0),
		Ticks:       make([]TickRecord, 0),
	}
}

func (j *Journal) enabled() bool {
	return j != nil && j.Level != LevelNone && j.Level != ""
}

// RecordTransition appends a state change record.
func (j *Journal) RecordTransition(record TransitionRecord) {
	if j.enabled() {
		j.Transitions = append(j.Transitions, record)
	}
}

// RecordAutoRange appends an auto-range record.
func (j *Journal) RecordAutoRange(record AutoRangeRecord) {
	if j.enabled() {
		j.AutoRanges = append(j.AutoRanges, record)
	}
}

// RecordTick appends a tick record when the level is LevelTicks.
func (j *Journal) RecordTick(record TickRecord) {
	if j.enabled() && j.Level == LevelTicks {
		j.Ticks = append(j.Ticks, record)
	}
}
