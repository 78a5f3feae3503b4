package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"codeberg.org/mutker/lightsweep/internal/config"
	"codeberg.org/mutker/lightsweep/internal/errors"
	"codeberg.org/mutker/lightsweep/internal/light"
	"codeberg.org/mutker/lightsweep/internal/logger"
	"codeberg.org/mutker/lightsweep/internal/powermeter"
	"codeberg.org/mutker/lightsweep/internal/runner"
	"codeberg.org/mutker/lightsweep/internal/session"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Args[1:]...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	logger.Init(cfg.LogLevel, logger.IsService())
	logger.Debug().Msg("Config loaded")

	ctrl, err := newLightController(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize light controller")
	}

	meter, err := newPowerMeter(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize power meter")
	}

	journal, err := session.NewRepository(cfg.SessionDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize session journal")
	}
	defer func() {
		if err := journal.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close session journal")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	r := runner.New(ctrl, meter, cfg, confirm, journal)

	if cfg.StandbyOnly {
		err = r.RunStandby(ctx)
	} else {
		err = r.Run(ctx)
	}
	if err != nil {
		logger.Error().Err(err).Msg("measurement session failed")
		return 1
	}

	logger.Info().Msg("Exiting...")

	return 0
}

func newLightController(cfg *config.Config) (light.Controller, error) {
	switch cfg.LightDriver {
	case "sim":
		return light.NewSimController(cfg.SimModelID, cfg.SimMinMired, cfg.SimMaxMired), nil
	default:
		return nil, errors.WithData(light.ErrUnknownDriver, cfg.LightDriver)
	}
}

func newPowerMeter(cfg *config.Config) (powermeter.Sampler, error) {
	switch cfg.MeterDriver {
	case "sim":
		return powermeter.NewSimSampler(cfg.SimWatts), nil
	default:
		return nil, errors.WithData(powermeter.ErrUnknownDriver, cfg.MeterDriver)
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

// confirm asks a yes/no question on the terminal, defaulting to yes
func confirm(prompt string) bool {
	fmt.Printf("%s [Y/n]: ", prompt)

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return true
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "n", "no":
		return false
	default:
		return true
	}
}
