package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "clock.yaml"

type Config struct {
	Clock struct {
		InitialDurationSeconds   int `yaml:"initial_duration_seconds"`
		LowThresholdSeconds      int `yaml:"low_threshold_seconds"`
		CriticalThresholdSeconds int `yaml:"critical_threshold_seconds"`
		TickIntervalMs           int `yaml:"tick_interval_ms"`
	} `yaml:"clock"`
	Stats struct {
		Path string `yaml:"path"`
	} `yaml:"stats"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func defaultConfig() *Config {
	config := &Config{}
	config.Clock.InitialDurationSeconds = 300
	config.Clock.LowThresholdSeconds = 60
	config.Clock.CriticalThresholdSeconds = 10
	config.Clock.TickIntervalMs = 1000
	config.Stats.Path = "chessclock.db"
	config.Log.Level = "info"
	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := defaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// resolveConfig loads the yaml file when present, falls back to defaults
// otherwise, and lets environment variables override either source.
func resolveConfig() *Config {
	path := getEnv("CLOCK_CONFIG_PATH", defaultConfigPath)

	config, err := loadConfig(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("could not load config file, using defaults")
		}
		config = defaultConfig()
	}

	config.Clock.InitialDurationSeconds = getEnvAsInt("CLOCK_INITIAL_DURATION", config.Clock.InitialDurationSeconds)
	config.Clock.LowThresholdSeconds = getEnvAsInt("CLOCK_LOW_THRESHOLD", config.Clock.LowThresholdSeconds)
	config.Clock.CriticalThresholdSeconds = getEnvAsInt("CLOCK_CRITICAL_THRESHOLD", config.Clock.CriticalThresholdSeconds)
	config.Clock.TickIntervalMs = getEnvAsInt("CLOCK_TICK_INTERVAL_MS", config.Clock.TickIntervalMs)
	config.Stats.Path = getEnv("STATS_DB_PATH", config.Stats.Path)
	config.Log.Level = getEnv("LOG_LEVEL", config.Log.Level)

	return config
}
