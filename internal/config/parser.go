// Package config resolves the boot configuration from boot.json.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/picokit/picoboot/internal/models"
	"github.com/spf13/viper"
)

// DebugMarkerName is the sentinel file in the storage root that forces
// debug mode on, overriding the config file's own debug field.
const DebugMarkerName = "DEBUG"

// Defaults used when boot.json is absent, unreadable, or malformed, and for
// any field the file leaves out.
const (
	DefaultConnectTimeout = 30 * time.Second
	DefaultConnectPoll    = 500 * time.Millisecond
)

// Parser handles boot.json parsing.
type Parser struct {
	v *viper.Viper
}

// NewParser creates a new configuration parser.
func NewParser() *Parser {
	v := viper.New()
	v.SetConfigType("json")
	return &Parser{v: v}
}

// Defaults returns the all-defaults BootConfig: rtc_set on, no network, no
// frequency change, normal verbosity.
func Defaults() *models.BootConfig {
	cfg := &models.BootConfig{
		ConnectTimeout: DefaultConnectTimeout,
		ConnectPoll:    DefaultConnectPoll,
		SetRTC:         true,
	}
	cfg.Verbosity = models.EffectiveVerbosity(cfg.Debug, cfg.Silent)
	return cfg
}

// Resolve loads boot.json from path and merges it over the defaults. A
// missing, unreadable, or malformed file is not an error: the all-defaults
// config is returned with LoadErr recording the cause. rootDir is the
// storage root checked for the debug marker file.
func (p *Parser) Resolve(path, rootDir string) *models.BootConfig {
	marker := debugMarkerPresent(rootDir)

	data, err := os.ReadFile(path)
	if err != nil {
		cfg := Defaults()
		cfg.LoadErr = fmt.Errorf("reading %s: %w", path, err)
		applyDebugMarker(cfg, marker)
		return cfg
	}

	return p.ResolveReader(string(data), marker)
}

// ResolveReader parses boot.json content directly (useful for testing).
// debugMarker forces debug mode on regardless of the file's debug field.
func (p *Parser) ResolveReader(content string, debugMarker bool) *models.BootConfig {
	cfg := Defaults()

	if err := p.v.ReadConfig(strings.NewReader(content)); err != nil {
		cfg.LoadErr = fmt.Errorf("parsing config: %w", err)
		applyDebugMarker(cfg, debugMarker)
		return cfg
	}

	cfg.SSID = p.v.GetString("ssid")
	cfg.Key = p.v.GetString("key")
	cfg.HostnameTemplate = p.v.GetString("hostname")
	cfg.UTCOffsetMinutes = p.v.GetInt("utc_time_offset")

	// Invalid or negative delays fall back to 0, not to an error.
	if delay := p.v.GetInt("start_delay_seconds"); delay > 0 {
		cfg.StartDelay = time.Duration(delay) * time.Second
	}
	if timeout := p.v.GetInt("connect_timeout_seconds"); timeout > 0 {
		cfg.ConnectTimeout = time.Duration(timeout) * time.Second
	}
	if poll := p.v.GetInt("connect_poll_ms"); poll > 0 {
		cfg.ConnectPoll = time.Duration(poll) * time.Millisecond
	}

	if p.v.IsSet("freq") {
		cfg.FreqHz = p.v.GetInt64("freq")
		cfg.FreqRequested = true
	}

	// rtc_set is the documented key; set_rtc is honored for existing
	// boot.json files.
	if p.v.IsSet("rtc_set") {
		cfg.SetRTC = p.v.GetBool("rtc_set")
	} else if p.v.IsSet("set_rtc") {
		cfg.SetRTC = p.v.GetBool("set_rtc")
	}

	cfg.Debug = p.v.GetBool("debug")
	cfg.Silent = p.v.GetBool("silent")
	cfg.FlashLED = p.v.GetBool("flash_led")

	applyDebugMarker(cfg, debugMarker)
	return cfg
}

// applyDebugMarker forces debug on and recomputes the derived verbosity.
// The marker is an override, not a merge.
func applyDebugMarker(cfg *models.BootConfig, marker bool) {
	if marker {
		cfg.Debug = true
	}
	cfg.Verbosity = models.EffectiveVerbosity(cfg.Debug, cfg.Silent)
}

func debugMarkerPresent(rootDir string) bool {
	if rootDir == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(rootDir, DebugMarkerName))
	return err == nil
}
