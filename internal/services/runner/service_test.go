package runner

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/picokit/picoboot/internal/hardware"
	"github.com/picokit/picoboot/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock implementations.
type mockProbeService struct {
	detectFunc func() models.HardwareProfile
}

func (m *mockProbeService) Detect() models.HardwareProfile {
	if m.detectFunc != nil {
		return m.detectFunc()
	}
	return models.HardwareProfile{Variant: models.NetworkCapable, UniqueID: "cafe0123"}
}

type mockWifiService struct {
	associateFunc func(ctx context.Context, cfg *models.BootConfig, profile models.HardwareProfile) *models.AssociationResult
}

func (m *mockWifiService) Associate(ctx context.Context, cfg *models.BootConfig, profile models.HardwareProfile) *models.AssociationResult {
	if m.associateFunc != nil {
		return m.associateFunc(ctx, cfg, profile)
	}
	if profile.Variant != models.NetworkCapable || cfg.SSID == "" {
		return &models.AssociationResult{State: models.AssociationSkipped}
	}
	return &models.AssociationResult{
		State:    models.AssociationConnected,
		IFConfig: models.IFConfig{Address: "192.168.1.23"},
	}
}

type mockHostnameService struct {
	applyFunc func(template string, assoc *models.AssociationResult) *models.HostnameResult
	applied   string
}

func (m *mockHostnameService) Apply(template string, assoc *models.AssociationResult) *models.HostnameResult {
	if m.applyFunc != nil {
		return m.applyFunc(template, assoc)
	}
	if template == "" || !assoc.Connected() {
		return &models.HostnameResult{Outcome: models.HostnameSkipped}
	}
	m.applied = template
	return &models.HostnameResult{Outcome: models.HostnameApplied, Hostname: template}
}

type mockTimesyncService struct {
	syncFunc func(ctx context.Context, cfg *models.BootConfig, profile models.HardwareProfile, assoc *models.AssociationResult) *models.TimeSyncResult
	calls    int
}

func (m *mockTimesyncService) Sync(ctx context.Context, cfg *models.BootConfig, profile models.HardwareProfile, assoc *models.AssociationResult) *models.TimeSyncResult {
	m.calls++
	if m.syncFunc != nil {
		return m.syncFunc(ctx, cfg, profile, assoc)
	}
	if !cfg.SetRTC || profile.Variant != models.NetworkCapable || !assoc.Connected() {
		return &models.TimeSyncResult{State: models.TimeSyncSkipped}
	}
	return &models.TimeSyncResult{State: models.TimeSyncApplied}
}

type mockFreqService struct {
	applyFunc func(cfg *models.BootConfig) *models.FrequencyRequest
}

func (m *mockFreqService) Apply(cfg *models.BootConfig) *models.FrequencyRequest {
	if m.applyFunc != nil {
		return m.applyFunc(cfg)
	}
	if !cfg.FreqRequested {
		return &models.FrequencyRequest{Outcome: models.FrequencyNotRequested}
	}
	return &models.FrequencyRequest{Outcome: models.FrequencyApplied, RequestedHz: cfg.FreqHz}
}

// recordingReporter logs the order of reporter calls so ordering invariants
// can be asserted.
type recordingReporter struct {
	events []string
	pulses []int
}

func (r *recordingReporter) Stage(stage models.Stage, msg string) {
	r.events = append(r.events, "stage:"+string(stage))
}

func (r *recordingReporter) Debugf(msg string, fields map[string]interface{}) {
	r.events = append(r.events, "debug")
}

func (r *recordingReporter) Warn(msg string, err error) {
	r.events = append(r.events, "warn:"+msg)
}

func (r *recordingReporter) Pulse(times int) {
	r.pulses = append(r.pulses, times)
	r.events = append(r.events, "pulse")
}

func (r *recordingReporter) Summary(report *models.BootReport, board hardware.Board) {
	r.events = append(r.events, "summary")
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type runnerMocks struct {
	probe    *mockProbeService
	wifi     *mockWifiService
	hostname *mockHostnameService
	timesync *mockTimesyncService
	freq     *mockFreqService
	reporter *recordingReporter
}

func newTestRunner(cfg *models.BootConfig) (*Impl, *runnerMocks) {
	m := &runnerMocks{
		probe:    &mockProbeService{},
		wifi:     &mockWifiService{},
		hostname: &mockHostnameService{},
		timesync: &mockTimesyncService{},
		freq:     &mockFreqService{},
		reporter: &recordingReporter{},
	}
	r := NewWithServices(
		testLogger(),
		cfg,
		hardware.Board{},
		m.probe,
		m.wifi,
		m.hostname,
		m.timesync,
		m.freq,
		m.reporter,
	)
	return r, m
}

func TestRun_StageOrder_FrequencyChangeIsLast(t *testing.T) {
	cfg := &models.BootConfig{SSID: "home", SetRTC: true, FreqRequested: true, FreqHz: 100_000_000}
	r, _ := newTestRunner(cfg)

	report := r.Run(context.Background())

	assert.Equal(t, []models.Stage{
		models.StageDelay,
		models.StageProbe,
		models.StageAssociate,
		models.StageHostname,
		models.StageTimeSync,
		models.StageSummary,
		models.StageClockFreq,
		models.StageDone,
	}, report.Stages)
	assert.Equal(t, models.StageClockFreq, report.Stages[len(report.Stages)-2])
}

func TestRun_SummaryEmittedBeforeFrequencyChange(t *testing.T) {
	cfg := &models.BootConfig{SSID: "home", SetRTC: true, FreqRequested: true, FreqHz: 100_000_000}
	r, m := newTestRunner(cfg)

	freqApplied := false
	summarySeen := false
	m.freq.applyFunc = func(cfg *models.BootConfig) *models.FrequencyRequest {
		freqApplied = true
		for _, ev := range m.reporter.events {
			if ev == "summary" {
				summarySeen = true
			}
		}
		return &models.FrequencyRequest{Outcome: models.FrequencyApplied}
	}

	r.Run(context.Background())

	assert.True(t, freqApplied)
	assert.True(t, summarySeen, "summary must be flushed before the frequency write")
}

func TestRun_ConnectedEndToEnd(t *testing.T) {
	// config {"ssid":"home","key":"secret","hostname":"pico-#"} with the
	// address ending in .23 sets pico-23, attempts time sync, and
	// requests no frequency change.
	cfg := &models.BootConfig{
		SSID:             "home",
		Key:              "secret",
		HostnameTemplate: "pico-#",
		SetRTC:           true,
	}
	r, m := newTestRunner(cfg)
	m.hostname.applyFunc = func(template string, assoc *models.AssociationResult) *models.HostnameResult {
		require.True(t, assoc.Connected())
		return &models.HostnameResult{Outcome: models.HostnameApplied, Hostname: "pico-23"}
	}

	report := r.Run(context.Background())

	assert.Equal(t, models.AssociationConnected, report.Association.State)
	assert.Equal(t, "pico-23", report.Hostname.Hostname)
	assert.Equal(t, 1, m.timesync.calls)
	assert.Equal(t, models.TimeSyncApplied, report.TimeSync.State)
	assert.Equal(t, models.FrequencyNotRequested, report.Frequency.Outcome)
}

func TestRun_EmptyConfigOnIncapableHardware(t *testing.T) {
	cfg := &models.BootConfig{SetRTC: true, Verbosity: models.VerbositySilent}
	r, m := newTestRunner(cfg)
	m.probe.detectFunc = func() models.HardwareProfile {
		return models.HardwareProfile{Variant: models.NetworkIncapable}
	}

	report := r.Run(context.Background())

	assert.Equal(t, models.AssociationSkipped, report.Association.State)
	assert.Equal(t, models.HostnameSkipped, report.Hostname.Outcome)
	assert.Equal(t, models.TimeSyncSkipped, report.TimeSync.State)
	assert.Equal(t, models.FrequencyNotRequested, report.Frequency.Outcome)
}

func TestRun_UnsafeFrequencyRejectedAfterAllStages(t *testing.T) {
	cfg := &models.BootConfig{FreqRequested: true, FreqHz: 999_999_999, SetRTC: true}
	r, m := newTestRunner(cfg)
	m.freq.applyFunc = func(cfg *models.BootConfig) *models.FrequencyRequest {
		return &models.FrequencyRequest{
			Outcome:     models.FrequencyRejected,
			RequestedHz: cfg.FreqHz,
			Error:       errors.New("above the published limit"),
		}
	}

	report := r.Run(context.Background())

	assert.Equal(t, models.FrequencyRejected, report.Frequency.Outcome)
	// Prior stages still completed.
	assert.Contains(t, report.Stages, models.StageProbe)
	assert.Contains(t, report.Stages, models.StageSummary)
	assert.Equal(t, models.StageDone, report.Stages[len(report.Stages)-1])
	assert.Contains(t, m.reporter.events, "warn:unsafe clock frequency refused, frequency unchanged")
}

func TestRun_AssociationFailureIsNonFatal(t *testing.T) {
	cfg := &models.BootConfig{SSID: "home", SetRTC: true}
	r, m := newTestRunner(cfg)
	m.wifi.associateFunc = func(ctx context.Context, cfg *models.BootConfig, profile models.HardwareProfile) *models.AssociationResult {
		return &models.AssociationResult{State: models.AssociationFailed, Error: errors.New("timeout")}
	}

	report := r.Run(context.Background())

	assert.Equal(t, models.AssociationFailed, report.Association.State)
	assert.Equal(t, models.HostnameSkipped, report.Hostname.Outcome)
	assert.Equal(t, models.TimeSyncSkipped, report.TimeSync.State)
	assert.Equal(t, models.StageDone, report.Stages[len(report.Stages)-1])
}

func TestRun_ConfigLoadFailureIsReportedAndNonFatal(t *testing.T) {
	cfg := &models.BootConfig{SetRTC: true, LoadErr: errors.New("parsing config: unexpected EOF")}
	r, m := newTestRunner(cfg)

	report := r.Run(context.Background())

	assert.Equal(t, models.StageDone, report.Stages[len(report.Stages)-1])
	assert.Contains(t, m.reporter.events, "warn:no usable boot.json, continuing with defaults")
}

func TestRun_StartDelayRunsFirst(t *testing.T) {
	cfg := &models.BootConfig{StartDelay: time.Second, SetRTC: true}
	r, m := newTestRunner(cfg)

	var sleptBeforeProbe bool
	slept := false
	r.sleep = func(ctx context.Context, d time.Duration) {
		slept = true
		assert.Equal(t, time.Second, d)
	}
	m.probe.detectFunc = func() models.HardwareProfile {
		sleptBeforeProbe = slept
		return models.HardwareProfile{Variant: models.NetworkIncapable}
	}

	r.Run(context.Background())

	assert.True(t, slept)
	assert.True(t, sleptBeforeProbe)
}

func TestRun_LEDPulses(t *testing.T) {
	cfg := &models.BootConfig{SSID: "home", SetRTC: true, FlashLED: true}
	r, m := newTestRunner(cfg)

	r.Run(context.Background())

	// Start and done pulses come from the runner; connect/time pulses come
	// from the real services and are not part of this test.
	require.NotEmpty(t, m.reporter.pulses)
	assert.Equal(t, 1, m.reporter.pulses[0])
	assert.Equal(t, 5, m.reporter.pulses[len(m.reporter.pulses)-1])
}
