package models

// HardwareVariant classifies what the board can do.
type HardwareVariant int

const (
	// NetworkIncapable boards skip association, hostname, and time sync.
	NetworkIncapable HardwareVariant = iota
	// NetworkCapable boards have a working radio.
	NetworkCapable
)

func (v HardwareVariant) String() string {
	if v == NetworkCapable {
		return "network-capable"
	}
	return "network-incapable"
}

// HardwareProfile is the result of the one-time capability probe.
//
// The probe is best effort: a network-capable image on non-network hardware
// is reliably detected, but the reverse direction is not. An inconclusive
// probe degrades to NetworkIncapable rather than erroring.
type HardwareProfile struct {
	Variant  HardwareVariant
	UniqueID string // board identity, hex
	Machine  string // board/firmware description
	ProbeErr error  // why the probe classified the board as incapable, if it did
}
