package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/picokit/picoboot/internal/config"
	"github.com/picokit/picoboot/internal/hardware/sim"
	"github.com/picokit/picoboot/internal/services/runner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Simulated board knobs, for running the sequence without hardware.
	// Real boards supply their own drivers and skip these.
	simCapable      bool
	simAddress      string
	simConnectAfter int
	simFailConnect  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the boot sequence",
	Long: `Execute the complete boot sequence:
1. Start delay (if configured)
2. Hardware variant probe
3. Network association (if capable and ssid is configured)
4. Hostname from template (if configured and connected)
5. Time sync to the RTC (unless rtc_set is false)
6. Board summary
7. System clock frequency change (vetted values only, strictly last)

Every step is best effort; the sequence always runs to completion.`,
	RunE: runBoot,
}

func init() {
	runCmd.Flags().BoolVar(&simCapable, "sim-capable", true, "simulated board has a working radio")
	runCmd.Flags().StringVar(&simAddress, "sim-address", "192.168.1.23", "address the simulated board is assigned")
	runCmd.Flags().IntVar(&simConnectAfter, "sim-connect-after", 2, "status polls before the simulated link comes up")
	runCmd.Flags().BoolVar(&simFailConnect, "sim-fail-connect", false, "simulated network rejects the credentials")
}

func runBoot(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = filepath.Join(rootDir, "boot.json")
	}

	cfg := config.NewParser().Resolve(path, rootDir)
	if cfg.LoadErr != nil {
		log.Warn().Err(cfg.LoadErr).Str("file", path).Msg("no usable boot config, using defaults")
	} else {
		log.Info().
			Str("config", path).
			Str("verbosity", cfg.Verbosity.String()).
			Bool("rtc_set", cfg.SetRTC).
			Msg("configuration resolved")
	}

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("received signal, shutting down")
		cancel()
	}()

	board := sim.New(sim.Options{
		Capable:      simCapable,
		Address:      simAddress,
		ConnectAfter: simConnectAfter,
		FailConnect:  simFailConnect,
	})

	runnerSvc := runner.New(log.Logger, cfg, board.Drivers())
	report := runnerSvc.Run(ctx)

	// Handoff: stage failures are never fatal, so the exit is clean
	// regardless of what the report carries.
	log.Info().
		Str("association", report.Association.State.String()).
		Str("timesync", report.TimeSync.State.String()).
		Str("frequency", report.Frequency.Outcome.String()).
		Dur("duration", report.Duration).
		Msg("boot sequence completed")

	return nil
}
