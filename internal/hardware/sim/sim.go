// Package sim provides an in-memory board driver. It backs the CLI when no
// real hardware is attached and the full-sequence tests.
package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/picokit/picoboot/internal/hardware"
	"github.com/picokit/picoboot/internal/models"
)

// Options configure the simulated board.
type Options struct {
	// Capable controls whether the radio probe (Scan) succeeds.
	Capable bool
	// Address is the IPv4 address assigned once the link comes up.
	Address string
	// ConnectAfter is how many Status polls the link spends joining
	// before it comes up. Zero means the first poll sees the link up.
	ConnectAfter int
	// FailConnect makes association terminate with an auth rejection.
	FailConnect bool
	// FreqHz is the initial system clock frequency.
	FreqHz int64
	// Now supplies the RTC's initial reading. Defaults to time.Now.
	Now func() time.Time
}

// Board is a simulated microcontroller board.
type Board struct {
	mu sync.Mutex

	opts     Options
	enabled  bool
	status   hardware.LinkStatus
	polls    int
	hostname string
	freqHz   int64
	rtc      time.Time
	rtcSet   bool
	pulses   []int
}

// New builds a simulated board from options.
func New(opts Options) *Board {
	if opts.Address == "" {
		opts.Address = "192.168.1.23"
	}
	if opts.FreqHz == 0 {
		opts.FreqHz = 125_000_000
	}
	return &Board{opts: opts, freqHz: opts.FreqHz}
}

// Drivers returns the board's drivers bundled for the boot sequence. The
// radio is omitted when the board is not capable of even probing.
func (b *Board) Drivers() hardware.Board {
	return hardware.Board{Radio: b, RTC: b, Machine: b, LED: b}
}

// Radio

func (b *Board) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled
}

func (b *Board) SetEnabled(on bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = on
	if !on {
		b.status = hardware.LinkDown
		b.polls = 0
	}
	return nil
}

func (b *Board) Scan() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.opts.Capable {
		return fmt.Errorf("radio not present")
	}
	if !b.enabled {
		return fmt.Errorf("radio not enabled")
	}
	return nil
}

func (b *Board) Connect(ssid, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.opts.Capable {
		return fmt.Errorf("radio not present")
	}
	if ssid == "" {
		return fmt.Errorf("empty ssid")
	}
	b.status = hardware.LinkJoining
	b.polls = 0
	return nil
}

func (b *Board) Status() hardware.LinkStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.status != hardware.LinkJoining {
		return b.status
	}
	b.polls++
	if b.polls > b.opts.ConnectAfter {
		if b.opts.FailConnect {
			b.status = hardware.LinkAuthFailed
		} else {
			b.status = hardware.LinkUp
		}
	}
	return b.status
}

func (b *Board) IFConfig() (models.IFConfig, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.status != hardware.LinkUp {
		return models.IFConfig{}, fmt.Errorf("link is not up")
	}
	return models.IFConfig{
		Address:    b.opts.Address,
		Netmask:    "255.255.255.0",
		Gateway:    "192.168.1.1",
		Nameserver: "192.168.1.1",
	}, nil
}

func (b *Board) SetHostname(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hostname = name
	return nil
}

func (b *Board) Hostname() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hostname
}

// RTC

func (b *Board) Set(t time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rtc = t
	b.rtcSet = true
	return nil
}

func (b *Board) Now() (time.Time, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rtcSet {
		return b.rtc, nil
	}
	if b.opts.Now != nil {
		return b.opts.Now(), nil
	}
	return time.Now(), nil
}

// RTCWasSet reports whether anything committed a time to the RTC.
func (b *Board) RTCWasSet() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rtcSet
}

// Machine

func (b *Board) UniqueID() string { return "e66141040b7d9923" }

func (b *Board) Description() string { return "picoboot simulated board" }

func (b *Board) Freq() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.freqHz
}

func (b *Board) SetFreq(hz int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.freqHz = hz
	return nil
}

// LED

func (b *Board) Pulse(times int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pulses = append(b.pulses, times)
}

// Pulses returns the recorded LED pulse counts, in order.
func (b *Board) Pulses() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]int, len(b.pulses))
	copy(out, b.pulses)
	return out
}
