package models

// FrequencyOutcome classifies the clock frequency stage.
type FrequencyOutcome int

const (
	// FrequencyNotRequested means boot.json carried no freq entry.
	FrequencyNotRequested FrequencyOutcome = iota
	// FrequencyApplied means the system clock was changed.
	FrequencyApplied
	// FrequencyRejected means the requested value is outside the vetted
	// range and the clock was left untouched.
	FrequencyRejected
)

func (o FrequencyOutcome) String() string {
	switch o {
	case FrequencyApplied:
		return "applied"
	case FrequencyRejected:
		return "rejected"
	default:
		return "not-requested"
	}
}

// FrequencyRequest holds the requested system clock frequency and what
// became of it.
type FrequencyRequest struct {
	RequestedHz int64
	Outcome     FrequencyOutcome
	Error       error // rejection reason or a failed hardware write
}
