// Package runner orchestrates the boot sequence.
package runner

import (
	"context"
	"time"

	"github.com/picokit/picoboot/internal/hardware"
	"github.com/picokit/picoboot/internal/models"
	"github.com/picokit/picoboot/internal/services/clockfreq"
	"github.com/picokit/picoboot/internal/services/hostname"
	"github.com/picokit/picoboot/internal/services/probe"
	"github.com/picokit/picoboot/internal/services/reporter"
	"github.com/picokit/picoboot/internal/services/timesync"
	"github.com/picokit/picoboot/internal/services/wifi"
	"github.com/rs/zerolog"
)

// Service defines the interface for the boot sequence runner.
type Service interface {
	Run(ctx context.Context) *models.BootReport
}

// Impl implements the runner Service interface.
type Impl struct {
	cfg   *models.BootConfig
	board hardware.Board

	probeSvc    probe.Service
	wifiSvc     wifi.Service
	hostnameSvc hostname.Service
	timesyncSvc timesync.Service
	freqSvc     clockfreq.Service
	reporter    reporter.Service

	sleep  func(ctx context.Context, d time.Duration)
	logger zerolog.Logger
}

// New creates a boot sequence runner wired to the board's drivers.
func New(logger zerolog.Logger, cfg *models.BootConfig, board hardware.Board) *Impl {
	rep := reporter.New(logger, cfg, board.LED)
	return &Impl{
		cfg:         cfg,
		board:       board,
		probeSvc:    probe.New(logger, board),
		wifiSvc:     wifi.New(logger, board.Radio, rep),
		hostnameSvc: hostname.New(logger, board.Radio),
		timesyncSvc: timesync.New(logger, board.RTC),
		freqSvc:     clockfreq.New(logger, board.Machine),
		reporter:    rep,
		sleep:       sleepCtx,
		logger:      logger,
	}
}

// NewWithServices creates a runner with custom services (for testing).
func NewWithServices(
	logger zerolog.Logger,
	cfg *models.BootConfig,
	board hardware.Board,
	probeSvc probe.Service,
	wifiSvc wifi.Service,
	hostnameSvc hostname.Service,
	timesyncSvc timesync.Service,
	freqSvc clockfreq.Service,
	rep reporter.Service,
) *Impl {
	return &Impl{
		cfg:         cfg,
		board:       board,
		probeSvc:    probeSvc,
		wifiSvc:     wifiSvc,
		hostnameSvc: hostnameSvc,
		timesyncSvc: timesyncSvc,
		freqSvc:     freqSvc,
		reporter:    rep,
		sleep:       sleepCtx,
		logger:      logger,
	}
}

// Run executes the boot sequence in its fixed order: start delay, hardware
// probe, network association, hostname, time sync, board summary, and the
// clock frequency change strictly last. Every stage failure is recovered
// locally; the sequence always runs to completion. Nothing in the returned
// report is read again after handoff.
func (s *Impl) Run(ctx context.Context) *models.BootReport {
	start := time.Now()
	report := &models.BootReport{}

	// Give an external observer time to attach a console before anything
	// else happens.
	report.Stages = append(report.Stages, models.StageDelay)
	if s.cfg.StartDelay > 0 {
		s.sleep(ctx, s.cfg.StartDelay)
	}

	s.reporter.Pulse(reporter.PulseStart)
	if s.cfg.LoadErr != nil {
		s.reporter.Warn("no usable boot.json, continuing with defaults", s.cfg.LoadErr)
	}

	report.Stages = append(report.Stages, models.StageProbe)
	s.reporter.Stage(models.StageProbe, "detecting hardware variant")
	report.Profile = s.probeSvc.Detect()

	report.Stages = append(report.Stages, models.StageAssociate)
	s.reporter.Stage(models.StageAssociate, "associating with network")
	report.Association = s.wifiSvc.Associate(ctx, s.cfg, report.Profile)
	if report.Association.State == models.AssociationFailed {
		s.reporter.Warn("network association failed, continuing without network", report.Association.Error)
	}

	report.Stages = append(report.Stages, models.StageHostname)
	report.Hostname = s.hostnameSvc.Apply(s.cfg.HostnameTemplate, report.Association)
	if report.Hostname.Outcome == models.HostnameApplied {
		s.reporter.Stage(models.StageHostname, "hostname set to "+report.Hostname.Hostname)
	}

	report.Stages = append(report.Stages, models.StageTimeSync)
	s.reporter.Stage(models.StageTimeSync, "synchronizing time")
	report.TimeSync = s.timesyncSvc.Sync(ctx, s.cfg, report.Profile, report.Association)
	switch report.TimeSync.State {
	case models.TimeSyncApplied:
		s.reporter.Pulse(reporter.PulseTimeSet)
	case models.TimeSyncFailed:
		s.reporter.Warn("could not set RTC from network time", report.TimeSync.Error)
	}

	report.Stages = append(report.Stages, models.StageSummary)
	s.reporter.Summary(report, s.board)

	// The frequency change is last: all reporting above has already been
	// emitted and nothing after this point depends on the old clock.
	report.Stages = append(report.Stages, models.StageClockFreq)
	report.Frequency = s.freqSvc.Apply(s.cfg)
	switch report.Frequency.Outcome {
	case models.FrequencyApplied:
		s.reporter.Stage(models.StageClockFreq, "system clock frequency changed")
	case models.FrequencyRejected:
		s.reporter.Warn("unsafe clock frequency refused, frequency unchanged", report.Frequency.Error)
	}

	report.Stages = append(report.Stages, models.StageDone)
	s.reporter.Pulse(reporter.PulseDone)
	report.Duration = time.Since(start)

	s.logger.Debug().Dur("duration", report.Duration).Msg("boot sequence complete")
	return report
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
