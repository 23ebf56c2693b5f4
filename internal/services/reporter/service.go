// Package reporter emits boot progress output and LED pulses. Reporting is
// purely observational: it never alters control flow and never errors.
package reporter

import (
	"github.com/picokit/picoboot/internal/hardware"
	"github.com/picokit/picoboot/internal/models"
	"github.com/rs/zerolog"
)

// LED pulse counts for the major stage transitions.
const (
	PulseStart      = 1
	PulseConnectTry = 2
	PulseConnected  = 3
	PulseTimeSet    = 4
	PulseDone       = 5
)

// Service defines the interface for boot reporting.
type Service interface {
	Stage(stage models.Stage, msg string)
	Debugf(msg string, fields map[string]interface{})
	Warn(msg string, err error)
	Pulse(times int)
	Summary(report *models.BootReport, board hardware.Board)
}

// Impl implements the reporter Service interface.
type Impl struct {
	logger    zerolog.Logger
	verbosity models.Verbosity
	flashLED  bool
	led       hardware.LED
}

// New creates a reporter gated by the config's derived verbosity. led may
// be nil when the board has no status indicator.
func New(logger zerolog.Logger, cfg *models.BootConfig, led hardware.LED) *Impl {
	return &Impl{
		logger:    logger,
		verbosity: cfg.Verbosity,
		flashLED:  cfg.FlashLED,
		led:       led,
	}
}

// Stage reports a stage transition. Emitted at normal verbosity and above.
func (r *Impl) Stage(stage models.Stage, msg string) {
	if r.verbosity < models.VerbosityNormal {
		return
	}
	r.logger.Info().Str("stage", string(stage)).Msg(msg)
}

// Debugf reports fine-grained progress. Emitted only in debug mode.
func (r *Impl) Debugf(msg string, fields map[string]interface{}) {
	if r.verbosity < models.VerbosityDebug {
		return
	}
	r.logger.Debug().Fields(fields).Msg(msg)
}

// Warn reports a recovered stage failure. Emitted at normal verbosity and
// above; failures are non-fatal so this is the only trace they leave.
func (r *Impl) Warn(msg string, err error) {
	if r.verbosity < models.VerbosityNormal {
		return
	}
	r.logger.Warn().Err(err).Msg(msg)
}

// Pulse flashes the status LED. Gated only by flash_led, independent of the
// textual verbosity.
func (r *Impl) Pulse(times int) {
	if !r.flashLED || r.led == nil {
		return
	}
	r.led.Pulse(times)
}

// Summary prints the board details the way the boot console shows them,
// before any frequency change is attempted.
func (r *Impl) Summary(report *models.BootReport, board hardware.Board) {
	if r.verbosity < models.VerbosityNormal {
		return
	}

	ev := r.logger.Info().
		Str("variant", report.Profile.Variant.String()).
		Str("unique_id", report.Profile.UniqueID).
		Str("machine", report.Profile.Machine)

	if board.Machine != nil {
		ev = ev.Int64("freq_hz", board.Machine.Freq())
	}
	if report.Association.Connected() {
		ifc := report.Association.IFConfig
		ev = ev.
			Str("address", ifc.Address).
			Str("netmask", ifc.Netmask).
			Str("gateway", ifc.Gateway).
			Str("nameserver", ifc.Nameserver)
		if board.Radio != nil {
			ev = ev.Str("hostname", board.Radio.Hostname())
		}
	}
	if board.RTC != nil {
		if now, err := board.RTC.Now(); err == nil {
			ev = ev.Time("rtc", now)
		}
	}

	ev.Msg("board summary")
}
