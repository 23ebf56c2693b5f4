// Package clockfreq validates and applies the system clock frequency.
//
// The frequency change is the last action of the entire boot sequence:
// accepted values can still destabilize communication and timing the moment
// they take effect, so every other stage must already have finished and
// flushed its output.
package clockfreq

import (
	"fmt"

	"github.com/picokit/picoboot/internal/hardware"
	"github.com/picokit/picoboot/internal/models"
	"github.com/rs/zerolog"
)

// Vetted frequency range for the board, in Hz. Values outside it have been
// observed to destabilize or damage the hardware and are refused
// unconditionally; the range is not user-configurable.
const (
	MinSafeHz     = 60_000_000
	MaxSafeHz     = 133_000_000
	DefaultFreqHz = 125_000_000
)

// Service defines the interface for the clock frequency stage.
type Service interface {
	Apply(cfg *models.BootConfig) *models.FrequencyRequest
}

// Impl implements the clockfreq Service interface.
type Impl struct {
	machine hardware.Machine
	logger  zerolog.Logger
}

// New creates a new clock frequency service.
func New(logger zerolog.Logger, machine hardware.Machine) *Impl {
	return &Impl{machine: machine, logger: logger}
}

// Apply validates the requested frequency against the vetted range and
// writes it to the hardware. An out-of-range value is rejected and the
// original frequency left unchanged; rejection is never fatal.
func (s *Impl) Apply(cfg *models.BootConfig) *models.FrequencyRequest {
	result := &models.FrequencyRequest{Outcome: models.FrequencyNotRequested}

	if !cfg.FreqRequested {
		return result
	}

	result.RequestedHz = cfg.FreqHz

	if err := Validate(cfg.FreqHz); err != nil {
		result.Outcome = models.FrequencyRejected
		result.Error = err
		return result
	}

	if s.machine == nil {
		result.Outcome = models.FrequencyRejected
		result.Error = fmt.Errorf("no machine driver")
		return result
	}

	if err := s.machine.SetFreq(cfg.FreqHz); err != nil {
		result.Outcome = models.FrequencyRejected
		result.Error = fmt.Errorf("writing frequency: %w", err)
		return result
	}

	result.Outcome = models.FrequencyApplied
	return result
}

// Validate checks a requested frequency against the vetted range.
func Validate(hz int64) error {
	if hz < MinSafeHz {
		return fmt.Errorf("%d Hz is below the safe minimum of %d Hz", hz, MinSafeHz)
	}
	if hz > MaxSafeHz {
		return fmt.Errorf("%d Hz is above the published limit of %d Hz", hz, MaxSafeHz)
	}
	return nil
}
