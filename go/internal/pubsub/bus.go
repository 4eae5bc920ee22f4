// Package pubsub implements the in-process message channel shared by the
// clock core and its consumers: topic-keyed delivery, synchronous on the
// publishing goroutine, in subscription order, with per-listener fault
// isolation.
package pubsub

import (
	"runtime/debug"

	"github.com/rs/zerolog/log"
)

// Topic names a single message stream on a Bus.
type Topic string

// Message is the minimal contract for anything published on a Bus. Payload
// types declare their own topic so a message can never be published under the
// wrong name.
type Message interface {
	MessageTopic() Topic
}

// Handler consumes messages delivered for one subscription.
type Handler[M Message] func(msg M)

// CancelFunc removes one subscription. Calling it more than once is a no-op.
type CancelFunc func()

type subscription[M Message] struct {
	topic   Topic
	fn      Handler[M]
	once    bool
	removed bool
}

// Bus delivers messages to topic subscribers. Delivery is synchronous: Publish
// returns only after every listener has run. A Bus is not safe for concurrent
// use; the clock drives it from a single goroutine and re-entrant publishes
// from inside a handler are allowed and complete before the outer publish
// moves to its next listener.
type Bus[M Message] struct {
	subs   map[Topic][]*subscription[M]
	faults int
}

// NewBus creates an empty bus.
func NewBus[M Message]() *Bus[M] {
	return &Bus[M]{
		subs: make(map[Topic][]*subscription[M]),
	}
}

// Subscribe registers fn for every future publish on topic and returns the
// cancel capability for exactly this registration.
func (b *Bus[M]) Subscribe(topic Topic, fn Handler[M]) CancelFunc {
	return b.add(topic, fn, false)
}

// SubscribeOnce registers fn for at most one delivery. The subscription is
// removed before fn runs, so re-entrant publishes cannot deliver twice.
func (b *Bus[M]) SubscribeOnce(topic Topic, fn Handler[M]) CancelFunc {
	return b.add(topic, fn, true)
}

func (b *Bus[M]) add(topic Topic, fn Handler[M], once bool) CancelFunc {
	sub := &subscription[M]{topic: topic, fn: fn, once: once}
	b.subs[topic] = append(b.subs[topic], sub)
	return func() { b.remove(sub) }
}

// Publish invokes every listener currently subscribed to the message's topic,
// in subscription order. A topic with no listeners is a silent no-op.
// Listeners added during delivery only see later publishes; listeners removed
// during delivery are skipped.
func (b *Bus[M]) Publish(msg M) {
	topic := msg.MessageTopic()
	subs := b.subs[topic]
	if len(subs) == 0 {
		return
	}

	// Snapshot so handlers can subscribe/unsubscribe without corrupting the walk
	snapshot := make([]*subscription[M], len(subs))
	copy(snapshot, subs)

	for _, sub := range snapshot {
		if sub.removed {
			continue
		}
		if sub.once {
			b.remove(sub)
		}
		b.invoke(sub, msg)
	}
}

// invoke runs one listener, recovering a panic so the remaining listeners and
// the publisher are unaffected.
func (b *Bus[M]) invoke(sub *subscription[M], msg M) {
	defer func() {
		if r := recover(); r != nil {
			b.faults++
			log.Error().
				Str("topic", string(sub.topic)).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("listener panicked during delivery")
		}
	}()
	sub.fn(msg)
}

func (b *Bus[M]) remove(sub *subscription[M]) {
	if sub.removed {
		return
	}
	sub.removed = true
	list := b.subs[sub.topic]
	for i, s := range list {
		if s == sub {
			b.subs[sub.topic] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(b.subs[sub.topic]) == 0 {
		delete(b.subs, sub.topic)
	}
}

// UnsubscribeAll drops every listener for one topic.
func (b *Bus[M]) UnsubscribeAll(topic Topic) {
	for _, sub := range b.subs[topic] {
		sub.removed = true
	}
	delete(b.subs, topic)
}

// Reset drops every listener on every topic. Used during teardown and tests.
func (b *Bus[M]) Reset() {
	for topic := range b.subs {
		b.UnsubscribeAll(topic)
	}
}

// ListenerCount reports how many listeners are subscribed to topic.
func (b *Bus[M]) ListenerCount(topic Topic) int {
	return len(b.subs[topic])
}

// Faults reports how many listener panics the bus has recovered.
func (b *Bus[M]) Faults() int {
	return b.faults
}
