package models

import "time"

// AssociationState is the network associator's position in its state machine.
type AssociationState int

const (
	// AssociationIdle means association has not started.
	AssociationIdle AssociationState = iota
	// AssociationConnecting means the radio is joining the network.
	AssociationConnecting
	// AssociationConnected means the link is up and an address is assigned.
	AssociationConnected
	// AssociationFailed means the radio could not join within the deadline.
	AssociationFailed
	// AssociationSkipped means no ssid was configured or the hardware
	// cannot do networking.
	AssociationSkipped
)

func (s AssociationState) String() string {
	switch s {
	case AssociationConnecting:
		return "connecting"
	case AssociationConnected:
		return "connected"
	case AssociationFailed:
		return "failed"
	case AssociationSkipped:
		return "skipped"
	default:
		return "idle"
	}
}

// IFConfig holds the interface parameters assigned during association.
type IFConfig struct {
	Address    string
	Netmask    string
	Gateway    string
	Nameserver string
}

// AssociationResult holds the outcome of the network association stage.
// Error is non-nil only when State is AssociationFailed; a failed
// association never aborts the boot sequence.
type AssociationResult struct {
	State    AssociationState
	IFConfig IFConfig      // valid only when connected
	Attempts int           // link status polls performed
	Duration time.Duration // time spent associating
	Error    error
}

// Connected reports whether the stage ended with a usable link.
func (r *AssociationResult) Connected() bool {
	return r != nil && r.State == AssociationConnected
}

// HostnameOutcome is the result of the hostname stage.
type HostnameOutcome int

const (
	// HostnameSkipped means no template was configured or there was no link.
	HostnameSkipped HostnameOutcome = iota
	// HostnameApplied means the substituted name was set on the device.
	HostnameApplied
)

func (o HostnameOutcome) String() string {
	if o == HostnameApplied {
		return "applied"
	}
	return "skipped"
}

// HostnameResult holds the outcome of the hostname stage.
type HostnameResult struct {
	Outcome  HostnameOutcome
	Hostname string // the substituted name, when applied
	Error    error  // a failed identity-setter call; still non-fatal
}
