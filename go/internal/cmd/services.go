package main

import (
	"fmt"
	"time"

	"github.com/mcdev12/chessclock/go/internal/clock/engine"
	"github.com/mcdev12/chessclock/go/internal/clock/events"
	"github.com/mcdev12/chessclock/go/internal/clock/stats"
	"github.com/mcdev12/chessclock/go/internal/clock/store"
	"github.com/mcdev12/chessclock/go/internal/pubsub"
)

type Services struct {
	Bus    *pubsub.Bus[events.Event]
	Store  *store.Store
	Engine *engine.Engine
	Stats  *stats.Recorder

	statsRepo *stats.Repository
}

func setupServices(config *Config) (*Services, error) {
	// Wire up the dependency chain
	// Bus → Store → Engine → Recorder, all subscribed before anything runs

	bus := pubsub.NewBus[events.Event]()
	clockStore := store.New(config.Clock.InitialDurationSeconds)

	clockEngine := engine.New(bus, clockStore, engine.Config{
		LowThreshold:      config.Clock.LowThresholdSeconds,
		CriticalThreshold: config.Clock.CriticalThresholdSeconds,
		TickInterval:      time.Duration(config.Clock.TickIntervalMs) * time.Millisecond,
	})

	statsRepo, err := stats.OpenRepository(config.Stats.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stats repository: %w", err)
	}
	recorder := stats.NewRecorder(statsRepo, bus)

	return &Services{
		Bus:       bus,
		Store:     clockStore,
		Engine:    clockEngine,
		Stats:     recorder,
		statsRepo: statsRepo,
	}, nil
}

func (s *Services) Close() {
	s.Engine.Stop()
	s.Stats.Stop()
	s.Store.Close()
	_ = s.statsRepo.Close()
}
