// Package events defines the closed set of messages that ride the clock bus:
// the topics the engine publishes for consumers and the intent topics
// consumers raise for the engine. Every payload type implements Event, and
// nothing outside this package can, so the topic/payload pairing is checked at
// compile time instead of failing silently at runtime.
package events

import "github.com/mcdev12/chessclock/go/internal/pubsub"

// Topics published by the engine for consumers.
const (
	TopicStarted      pubsub.Topic = "clock.started"
	TopicTick         pubsub.Topic = "clock.tick"
	TopicTurnSwitched pubsub.Topic = "clock.turnSwitched"
	TopicLowTime      pubsub.Topic = "clock.lowTime"
	TopicCriticalTime pubsub.Topic = "clock.criticalTime"
	TopicVictory      pubsub.Topic = "clock.victory"
	TopicPaused       pubsub.Topic = "clock.paused"
	TopicResumed      pubsub.Topic = "clock.resumed"
	TopicReset        pubsub.Topic = "clock.reset"
)

// Intent topics raised by input collaborators and consumed by the engine.
const (
	TopicTurnRequest      pubsub.Topic = "intent.turnRequest"
	TopicPauseToggle      pubsub.Topic = "intent.pauseToggle"
	TopicResetRequest     pubsub.Topic = "intent.reset"
	TopicDurationSelected pubsub.Topic = "intent.durationSelected"
)

// Event is the sealed message union for the clock bus.
type Event interface {
	pubsub.Message
	isEvent()
}
