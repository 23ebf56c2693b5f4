// Package probe detects the hardware variant by attempting to use the radio.
package probe

import (
	"sync"

	"github.com/picokit/picoboot/internal/hardware"
	"github.com/picokit/picoboot/internal/models"
	"github.com/rs/zerolog"
)

// Service defines the interface for the capability probe.
type Service interface {
	Detect() models.HardwareProfile
}

// Impl implements the probe Service interface. The probe runs once per boot;
// Detect is memoized.
type Impl struct {
	board  hardware.Board
	logger zerolog.Logger

	once    sync.Once
	profile models.HardwareProfile
}

// New creates a new capability probe.
func New(logger zerolog.Logger, board hardware.Board) *Impl {
	return &Impl{board: board, logger: logger}
}

// Detect classifies the board by trying to scan with the radio. A scan that
// completes without error means network-capable; anything else, including a
// missing radio driver, degrades to network-incapable. The reverse direction
// is not reliable: a radio-less image on capable hardware still classifies
// as incapable, which is the safe behavior.
func (s *Impl) Detect() models.HardwareProfile {
	s.once.Do(func() {
		s.profile = s.detect()
	})
	return s.profile
}

func (s *Impl) detect() models.HardwareProfile {
	p := models.HardwareProfile{Variant: models.NetworkIncapable}
	if s.board.Machine != nil {
		p.UniqueID = s.board.Machine.UniqueID()
		p.Machine = s.board.Machine.Description()
	}

	radio := s.board.Radio
	if radio == nil {
		s.logger.Debug().Msg("no radio driver, classifying as network-incapable")
		return p
	}

	// Probe non-disruptively: restore the radio's prior power state if we
	// had to enable it for the scan.
	wasEnabled := radio.Enabled()
	if err := radio.SetEnabled(true); err != nil {
		p.ProbeErr = err
		s.logger.Debug().Err(err).Msg("radio would not enable, classifying as network-incapable")
		return p
	}

	if err := radio.Scan(); err != nil {
		p.ProbeErr = err
		if !wasEnabled {
			_ = radio.SetEnabled(false)
		}
		s.logger.Debug().Err(err).Msg("radio scan failed, classifying as network-incapable")
		return p
	}

	if !wasEnabled {
		_ = radio.SetEnabled(false)
	}

	p.Variant = models.NetworkCapable
	return p
}
