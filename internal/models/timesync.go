package models

import "time"

// TimeSyncState classifies the outcome of the time synchronization stage.
type TimeSyncState int

const (
	// TimeSyncSkipped means rtc_set was false, there was no link, or the
	// hardware cannot do networking.
	TimeSyncSkipped TimeSyncState = iota
	// TimeSyncApplied means the RTC was set.
	TimeSyncApplied
	// TimeSyncFailed means no time server answered or the RTC write failed.
	TimeSyncFailed
)

func (s TimeSyncState) String() string {
	switch s {
	case TimeSyncApplied:
		return "applied"
	case TimeSyncFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// TimeSyncResult holds the outcome of the time synchronization stage.
// Read-only once produced; used only for reporting.
type TimeSyncResult struct {
	State  TimeSyncState
	UTC    time.Time // the fetched UTC instant, when applied
	Local  time.Time // UTC shifted by the configured offset, as committed
	Server string    // which time server answered
	Error  error
}
