package journal

// Summary aggregates statistics from a Journal.
type Summary struct {
	Transitions       int     `json:"transitions"`
	Runs              int     `json:"runs"` // transitions into "running", resumes included
	Completed         int     `json:"completed"`
	Stopped           int     `json:"stopped"`
	AutoRangeChecks   int     `json:"auto_range_checks"`
	AutoRangeApplied  int     `json:"auto_range_applied"`
	Ticks             int     `json:"ticks"`
	MeanTickPeriodSec float64 `json:"mean_tick_period_sec"`
	FinalState        string  `json:"final_state"`
}

// Summarize computes aggregate statistics from a Journal.
// Safe for nil or empty journals (returns zero-value fields).
func Summarize(j *Journal) *Summary {
	summary := &Summary{}
	if j == nil {
		return summary
	}

	summary.Transitions = len(j.Transitions)
	for _, t := range j.Transitions {
		switch t.To {
		case "running":
			summary.Runs++
		case "completed":
			summary.Completed++
		case "stopped":
			summary.Stopped++
		}
	}
	if n := len(j.Transitions); n > 0 {
		summary.FinalState = j.Transitions[n-1].To
	}

	summary.AutoRangeChecks = len(j.AutoRanges)
	for _, a := range j.AutoRanges {
		if a.Applied {
			summary.AutoRangeApplied++
		}
	}

	summary.Ticks = len(j.Ticks)
	if n := len(j.Ticks); n > 1 {
		span := j.Ticks[n-1].ElapsedSec - j.Ticks[0].ElapsedSec
		summary.MeanTickPeriodSec = span / float64(n-1)
	}

	return summary
}
