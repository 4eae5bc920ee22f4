package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/chessclock/go/internal/gallery"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	baseDir := getEnv("GALLERY_BASE_DIR", "web")
	themesPath := getEnv("GALLERY_THEMES_PATH", "themes.yaml")

	themes, err := gallery.LoadThemes(themesPath)
	if err != nil {
		log.Warn().Err(err).Msg("using built-in theme table")
		themes = gallery.DefaultThemes()
	}

	log.Info().
		Str("base_dir", baseDir).
		Int("themes", len(themes)).
		Msg("starting theme gallery")

	server := gallery.NewServer(baseDir, themes)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx)
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
		if err := <-done; err != nil {
			log.Error().Err(err).Msg("gallery exited with error")
		}
	case err := <-done:
		if err != nil {
			log.Fatal().Err(err).Msg("gallery failed")
		}
	}

	log.Info().Msg("gallery shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
