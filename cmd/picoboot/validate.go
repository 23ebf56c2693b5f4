package main

import (
	"fmt"
	"path/filepath"

	"github.com/picokit/picoboot/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Resolve the boot config and print a summary",
	Long: `Resolve the boot configuration without touching any hardware.

Resolution never fails: an absent or malformed boot.json resolves to the
all-defaults configuration, which is what the boot sequence would run with.`,
	RunE: validateConfig,
}

func validateConfig(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = filepath.Join(rootDir, "boot.json")
	}

	cfg := config.NewParser().Resolve(path, rootDir)

	if cfg.LoadErr != nil {
		log.Warn().Err(cfg.LoadErr).Str("file", path).Msg("config not usable, showing defaults")
		fmt.Println("Config file could not be used; the boot sequence would run with defaults.")
	} else {
		fmt.Println("Configuration resolved cleanly!")
	}
	fmt.Println()
	fmt.Println("Resolved configuration:")
	fmt.Printf("  SSID: %s\n", orNone(cfg.SSID))
	if cfg.SSID != "" {
		if cfg.Key != "" {
			fmt.Printf("  Key: (configured)\n")
		} else {
			fmt.Printf("  Key: (open network)\n")
		}
	}
	fmt.Printf("  Hostname template: %s\n", orNone(cfg.HostnameTemplate))
	fmt.Printf("  Start delay: %s\n", cfg.StartDelay)
	fmt.Printf("  Connect timeout: %s (poll %s)\n", cfg.ConnectTimeout, cfg.ConnectPoll)
	fmt.Printf("  Set RTC: %v\n", cfg.SetRTC)
	fmt.Printf("  UTC offset: %d minute(s)\n", cfg.UTCOffsetMinutes)
	if cfg.FreqRequested {
		fmt.Printf("  Clock frequency: %d Hz\n", cfg.FreqHz)
	} else {
		fmt.Printf("  Clock frequency: (unchanged)\n")
	}
	fmt.Println()
	fmt.Println("Reporting:")
	fmt.Printf("  Debug: %v\n", cfg.Debug)
	fmt.Printf("  Silent: %v\n", cfg.Silent)
	fmt.Printf("  Effective verbosity: %s\n", cfg.Verbosity)
	fmt.Printf("  Flash LED: %v\n", cfg.FlashLED)

	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
