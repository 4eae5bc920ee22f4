package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	config := resolveConfig()
	if level, err := zerolog.ParseLevel(config.Log.Level); err != nil {
		log.Warn().Str("level", config.Log.Level).Msg("unknown log level, staying on info")
	} else {
		zerolog.SetGlobalLevel(level)
	}

	services, err := setupServices(config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up services")
	}
	defer services.Close()

	log.Info().
		Int("initial_duration", config.Clock.InitialDurationSeconds).
		Int("low_threshold", config.Clock.LowThresholdSeconds).
		Int("critical_threshold", config.Clock.CriticalThresholdSeconds).
		Str("stats_path", config.Stats.Path).
		Msg("starting chess clock")

	// The renderer must subscribe before the engine goroutine starts
	// publishing; the bus itself is not locked.
	newRenderer(services.Bus, os.Stdout)
	input := newInputLoop(services.Engine, services.Stats, os.Stdin, os.Stdout)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engineDone := make(chan error, 1)
	go func() {
		engineDone <- services.Engine.Run(ctx)
	}()

	statsDone := make(chan error, 1)
	go func() {
		statsDone <- services.Stats.Run(ctx)
	}()

	go func() {
		if err := input.Run(ctx); err != nil {
			log.Error().Err(err).Msg("input loop failed")
		}
	}()

	// Wait for interrupt signal or the quit command
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case <-input.Quit():
		log.Info().Msg("quit requested")
	}

	// Graceful shutdown
	cancel()
	waitOrGiveUp(engineDone, "clock engine")
	waitOrGiveUp(statsDone, "stats recorder")

	log.Info().Msg("chess clock shutdown complete")
}

func waitOrGiveUp(done <-chan error, name string) {
	select {
	case err := <-done:
		if err != nil {
			log.Error().Err(err).Str("service", name).Msg("service exited with error")
		}
	case <-time.After(5 * time.Second):
		log.Error().Str("service", name).Msg("service did not stop in time")
	}
}
