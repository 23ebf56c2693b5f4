// Package hardware defines the driver interfaces the boot sequence runs
// against. The real drivers (radio, RTC, system clock) are external
// collaborators; picoboot only orchestrates them.
package hardware

import (
	"time"

	"github.com/picokit/picoboot/internal/models"
)

// LinkStatus is the radio's view of the association in progress.
type LinkStatus int

const (
	// LinkDown means the radio is not associated and not trying.
	LinkDown LinkStatus = iota
	// LinkJoining means association is in progress.
	LinkJoining
	// LinkUp means the radio is associated and has an address.
	LinkUp
	// LinkAuthFailed means the network rejected the credentials. Terminal.
	LinkAuthFailed
)

func (s LinkStatus) String() string {
	switch s {
	case LinkJoining:
		return "joining"
	case LinkUp:
		return "up"
	case LinkAuthFailed:
		return "auth-failed"
	default:
		return "down"
	}
}

// Radio is the wireless interface driver.
type Radio interface {
	// Enabled reports whether the radio is powered.
	Enabled() bool
	// SetEnabled powers the radio up or down.
	SetEnabled(on bool) error
	// Scan probes for access points. Used only as a capability check; the
	// results are not needed.
	Scan() error
	// Connect starts association with the given network. An empty key
	// means an open network. Connect returns immediately; progress is
	// observed via Status.
	Connect(ssid, key string) error
	// Status reports the current link state.
	Status() LinkStatus
	// IFConfig returns the assigned interface parameters. Only meaningful
	// while the link is up.
	IFConfig() (models.IFConfig, error)
	// SetHostname sets the device's network identity.
	SetHostname(name string) error
	// Hostname returns the current network identity.
	Hostname() string
}

// RTC is the battery-backed real-time clock, distinct from the CPU's
// execution clock.
type RTC interface {
	Set(t time.Time) error
	Now() (time.Time, error)
}

// Machine exposes board identity and the system clock frequency.
type Machine interface {
	UniqueID() string
	Description() string
	Freq() int64
	SetFreq(hz int64) error
}

// LED is the on-board status indicator.
type LED interface {
	// Pulse flashes the LED the given number of times. It must not block
	// for longer than the flashes themselves take.
	Pulse(times int)
}

// Board bundles the drivers the boot sequence needs. A nil Radio means the
// board has no radio at all (the capability probe will classify it as
// network-incapable).
type Board struct {
	Radio   Radio
	RTC     RTC
	Machine Machine
	LED     LED
}
