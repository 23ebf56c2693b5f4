// Package wifi drives the radio through network association.
package wifi

import (
	"context"
	"fmt"
	"time"

	"github.com/picokit/picoboot/internal/hardware"
	"github.com/picokit/picoboot/internal/models"
	"github.com/picokit/picoboot/internal/services/reporter"
	"github.com/rs/zerolog"
)

// Service defines the interface for network association.
type Service interface {
	Associate(ctx context.Context, cfg *models.BootConfig, profile models.HardwareProfile) *models.AssociationResult
}

// Impl implements the wifi Service interface.
type Impl struct {
	radio    hardware.Radio
	reporter reporter.Service
	logger   zerolog.Logger
}

// New creates a new association service.
func New(logger zerolog.Logger, radio hardware.Radio, rep reporter.Service) *Impl {
	return &Impl{radio: radio, reporter: rep, logger: logger}
}

// Associate joins the configured network and waits for the link to come up.
// The wait is bounded by cfg.ConnectTimeout against a monotonic deadline;
// hitting it transitions to Failed rather than blocking the boot forever.
// Failure is never fatal: the result carries the reason and the caller
// continues without network.
func (s *Impl) Associate(ctx context.Context, cfg *models.BootConfig, profile models.HardwareProfile) *models.AssociationResult {
	result := &models.AssociationResult{State: models.AssociationIdle}

	if profile.Variant != models.NetworkCapable || cfg.SSID == "" || s.radio == nil {
		result.State = models.AssociationSkipped
		return result
	}

	start := time.Now()
	result.State = models.AssociationConnecting
	s.reporter.Pulse(reporter.PulseConnectTry)

	if err := s.radio.SetEnabled(true); err != nil {
		return s.fail(result, start, fmt.Errorf("enabling radio: %w", err))
	}
	if err := s.radio.Connect(cfg.SSID, cfg.Key); err != nil {
		return s.fail(result, start, fmt.Errorf("initiating association: %w", err))
	}

	deadline := start.Add(cfg.ConnectTimeout)
	for {
		select {
		case <-ctx.Done():
			return s.fail(result, start, ctx.Err())
		default:
		}

		status := s.radio.Status()
		result.Attempts++

		s.reporter.Debugf("link status", map[string]interface{}{
			"status":  status.String(),
			"attempt": result.Attempts,
		})

		switch status {
		case hardware.LinkUp:
			ifc, err := s.radio.IFConfig()
			if err != nil {
				return s.fail(result, start, fmt.Errorf("reading interface config: %w", err))
			}
			result.State = models.AssociationConnected
			result.IFConfig = ifc
			result.Duration = time.Since(start)
			s.reporter.Pulse(reporter.PulseConnected)
			return result
		case hardware.LinkAuthFailed:
			return s.fail(result, start, fmt.Errorf("network rejected credentials"))
		}

		if time.Now().After(deadline) {
			return s.fail(result, start, fmt.Errorf("no link after %s", cfg.ConnectTimeout))
		}

		select {
		case <-ctx.Done():
			return s.fail(result, start, ctx.Err())
		case <-time.After(cfg.ConnectPoll):
		}
	}
}

func (s *Impl) fail(result *models.AssociationResult, start time.Time, err error) *models.AssociationResult {
	result.State = models.AssociationFailed
	result.Error = err
	result.Duration = time.Since(start)

	// Power the radio back down so the next program starts clean.
	_ = s.radio.SetEnabled(false)

	s.logger.Debug().Err(err).Dur("elapsed", result.Duration).Msg("association failed")
	return result
}
