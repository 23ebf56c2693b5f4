// Package timesync fetches network time and commits it to the RTC.
package timesync

import (
	"context"
	"fmt"
	"time"

	"github.com/beevik/ntp"
	"github.com/picokit/picoboot/internal/hardware"
	"github.com/picokit/picoboot/internal/models"
	"github.com/rs/zerolog"
)

// TimeServers are queried in order; the first answer wins.
var TimeServers = []string{
	"time.nist.gov",
	"pool.ntp.org",
	"time.google.com",
	"time.windows.com",
}

// QueryTimeout bounds each individual server query.
const QueryTimeout = 1 * time.Second

// Service defines the interface for the time synchronization stage.
type Service interface {
	Sync(ctx context.Context, cfg *models.BootConfig, profile models.HardwareProfile, assoc *models.AssociationResult) *models.TimeSyncResult
}

// Client wraps the NTP query for mocking.
type Client interface {
	QueryTime(server string, timeout time.Duration) (time.Time, error)
}

// DefaultClient is the default implementation using beevik/ntp.
type DefaultClient struct{}

// QueryTime asks one server for the current UTC instant.
func (c *DefaultClient) QueryTime(server string, timeout time.Duration) (time.Time, error) {
	resp, err := ntp.QueryWithOptions(server, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return time.Time{}, err
	}
	if err := resp.Validate(); err != nil {
		return time.Time{}, err
	}
	return time.Now().Add(resp.ClockOffset).UTC(), nil
}

// Impl implements the timesync Service interface.
type Impl struct {
	client  Client
	rtc     hardware.RTC
	servers []string
	logger  zerolog.Logger
}

// New creates a new time synchronization service.
func New(logger zerolog.Logger, rtc hardware.RTC) *Impl {
	return &Impl{
		client:  &DefaultClient{},
		rtc:     rtc,
		servers: TimeServers,
		logger:  logger,
	}
}

// NewWithClient creates a time synchronization service with a custom NTP
// client and server list (for testing).
func NewWithClient(logger zerolog.Logger, rtc hardware.RTC, client Client, servers []string) *Impl {
	return &Impl{client: client, rtc: rtc, servers: servers, logger: logger}
}

// Sync fetches UTC from the first answering time server, shifts it by the
// configured offset in minutes, and commits the result to the RTC. Skipped
// when rtc_set is off, the hardware cannot do networking, or there is no
// link. Failure is non-fatal.
func (s *Impl) Sync(ctx context.Context, cfg *models.BootConfig, profile models.HardwareProfile, assoc *models.AssociationResult) *models.TimeSyncResult {
	result := &models.TimeSyncResult{State: models.TimeSyncSkipped}

	if !cfg.SetRTC || profile.Variant != models.NetworkCapable || !assoc.Connected() || s.rtc == nil {
		return result
	}

	utc, server, err := s.fetch(ctx)
	if err != nil {
		result.State = models.TimeSyncFailed
		result.Error = err
		return result
	}

	local := ApplyOffset(utc, cfg.UTCOffsetMinutes)
	if err := s.rtc.Set(local); err != nil {
		result.State = models.TimeSyncFailed
		result.Error = fmt.Errorf("setting RTC: %w", err)
		return result
	}

	result.State = models.TimeSyncApplied
	result.UTC = utc
	result.Local = local
	result.Server = server
	return result
}

func (s *Impl) fetch(ctx context.Context) (time.Time, string, error) {
	var lastErr error
	for _, server := range s.servers {
		select {
		case <-ctx.Done():
			return time.Time{}, "", ctx.Err()
		default:
		}

		utc, err := s.client.QueryTime(server, QueryTimeout)
		if err != nil {
			lastErr = err
			s.logger.Debug().Err(err).Str("server", server).Msg("time query failed")
			continue
		}
		return utc, server, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no time servers configured")
	}
	return time.Time{}, "", fmt.Errorf("no response from any time server: %w", lastErr)
}

// ApplyOffset shifts a UTC instant by a signed number of minutes. No
// timezone database or DST logic is involved.
func ApplyOffset(utc time.Time, minutes int) time.Time {
	return utc.Add(time.Duration(minutes) * time.Minute)
}
