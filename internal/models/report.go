package models

import "time"

// Stage names the steps of the boot sequence, in the order they run.
// The frequency change is always last; accepted values can still
// destabilize timing, so everything else must already be finished.
type Stage string

const (
	StageDelay     Stage = "delay"
	StageProbe     Stage = "probe"
	StageAssociate Stage = "associate"
	StageHostname  Stage = "hostname"
	StageTimeSync  Stage = "timesync"
	StageSummary   Stage = "summary"
	StageClockFreq Stage = "clockfreq"
	StageDone      Stage = "done"
)

// BootReport aggregates the per-stage results of one boot sequence. It is
// produced for reporting and tests; nothing reads it after handoff.
type BootReport struct {
	Profile     HardwareProfile
	Association *AssociationResult
	Hostname    *HostnameResult
	TimeSync    *TimeSyncResult
	Frequency   *FrequencyRequest

	// Stages lists the executed stages in order.
	Stages   []Stage
	Duration time.Duration
}
