// Package models contains the data structures used throughout picoboot.
package models

import "time"

// Verbosity is the effective reporting level, derived once at config
// resolution time.
type Verbosity int

const (
	// VerbositySilent suppresses all boot output.
	VerbositySilent Verbosity = iota
	// VerbosityNormal emits stage transitions and the board summary.
	VerbosityNormal
	// VerbosityDebug emits everything, including per-poll link status.
	VerbosityDebug
)

func (v Verbosity) String() string {
	switch v {
	case VerbositySilent:
		return "silent"
	case VerbosityDebug:
		return "debug"
	default:
		return "normal"
	}
}

// BootConfig holds the resolved boot configuration. It is constructed once
// from boot.json merged over defaults and never mutated afterwards.
type BootConfig struct {
	SSID             string // empty means no network association
	Key              string // empty means open network
	HostnameTemplate string // empty means leave the hostname alone

	StartDelay     time.Duration // blocking sleep before anything else
	ConnectTimeout time.Duration // association deadline
	ConnectPoll    time.Duration // link status poll interval

	FreqHz        int64 // requested system clock frequency
	FreqRequested bool  // false when boot.json has no freq entry

	UTCOffsetMinutes int // signed, applied to the fetched UTC instant

	SetRTC   bool
	Debug    bool
	Silent   bool
	FlashLED bool

	// Verbosity is the derived reporting level. Debug always produces
	// output, even when silent is requested.
	Verbosity Verbosity

	// LoadErr records why the config file could not be used. Non-nil
	// means this is the all-defaults config.
	LoadErr error
}

// EffectiveVerbosity computes the reporting level from the debug and silent
// flags. Debug wins over silent.
func EffectiveVerbosity(debug, silent bool) Verbosity {
	switch {
	case debug:
		return VerbosityDebug
	case silent:
		return VerbositySilent
	default:
		return VerbosityNormal
	}
}
