// Package store holds the authoritative clock record. Every mutation goes
// through a typed command, observers see each change only after the whole
// command has been applied, and commands issued from inside an observer are
// queued until the current command's notification pass finishes.
package store

import (
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/chessclock/go/internal/models"
)

// ObserverFunc receives the record before and after a command. Both are deep
// copies; mutating them never touches the store.
type ObserverFunc func(before, after Record)

type observer struct {
	field   Field
	fn      ObserverFunc
	removed bool
}

// Store is the single writer-guarded holder of the clock record. It is not
// safe for concurrent use: the engine drives it from one goroutine and
// observers run synchronously on that goroutine.
type Store struct {
	record    Record
	observers map[Field][]*observer
	clock     clockwork.Clock
	faults    int

	// finish-before-next: commands from inside a notification pass are
	// deferred, never interleaved
	applying bool
	pending  []Command
}

// New creates a store with both clocks seeded to defaultDuration, no turn
// owner, and a fresh match id. An out-of-range duration falls back to
// DefaultDurationSeconds.
func New(defaultDuration int) *Store {
	if err := validDuration(defaultDuration); err != nil {
		log.Warn().
			Err(err).
			Int("seconds", defaultDuration).
			Int("fallback", DefaultDurationSeconds).
			Msg("invalid initial duration, using fallback")
		defaultDuration = DefaultDurationSeconds
	}
	return &Store{
		record: Record{
			TimeRemaining:   [2]int{defaultDuration, defaultDuration},
			DefaultDuration: defaultDuration,
			MatchID:         uuid.New(),
		},
		observers: make(map[Field][]*observer),
		clock:     clockwork.NewRealClock(),
	}
}

// SetClock swaps the wall clock used for match log timestamps. Tests install
// a clockwork fake here.
func (s *Store) SetClock(clock clockwork.Clock) {
	s.clock = clock
}

// Snapshot returns a deep copy of the current record. It is never stale: a
// snapshot taken inside an observer already includes the command that
// triggered the notification.
func (s *Store) Snapshot() Record {
	return s.record.clone()
}

// ActivePlayer returns the current turn owner, NoPlayer when idle or finished.
func (s *Store) ActivePlayer() models.PlayerID {
	return s.record.ActivePlayer
}

// Running reports whether the countdown is live.
func (s *Store) Running() bool {
	return s.record.Running
}

// Remaining returns the seconds left on player p's clock.
func (s *Store) Remaining(p models.PlayerID) int {
	return s.record.Remaining(p)
}

// DefaultDuration returns the seed value applied on reset.
func (s *Store) DefaultDuration() int {
	return s.record.DefaultDuration
}

// MatchID returns the id of the current match.
func (s *Store) MatchID() uuid.UUID {
	return s.record.MatchID
}

// Observe registers fn for changes to one field. fn runs after any command
// that changed the field's value. The returned cancel removes exactly this
// registration and is safe to call twice.
func (s *Store) Observe(field Field, fn ObserverFunc) (cancel func()) {
	return s.addObserver(field, fn)
}

// ObserveAll registers fn to run after every successful command, changed
// fields or not, after all per-field observers.
func (s *Store) ObserveAll(fn ObserverFunc) (cancel func()) {
	return s.addObserver(fieldAny, fn)
}

func (s *Store) addObserver(field Field, fn ObserverFunc) func() {
	ob := &observer{field: field, fn: fn}
	s.observers[field] = append(s.observers[field], ob)
	return func() { s.removeObserver(ob) }
}

func (s *Store) removeObserver(ob *observer) {
	if ob.removed {
		return
	}
	ob.removed = true
	list := s.observers[ob.field]
	for i, o := range list {
		if o == ob {
			s.observers[ob.field] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(s.observers[ob.field]) == 0 {
		delete(s.observers, ob.field)
	}
}

// Close drops every observer and any deferred commands. The record itself
// stays readable; Close is teardown, not reset.
func (s *Store) Close() {
	s.observers = make(map[Field][]*observer)
	s.pending = nil
}

// Faults reports how many observer panics the store has recovered.
func (s *Store) Faults() int {
	return s.faults
}

// Apply validates and applies one command, then notifies observers of every
// changed field followed by the wildcard observers. Invalid input leaves the
// record untouched and returns the reason.
//
// When called from inside an observer the command is deferred until the
// in-flight command finishes its notification pass; a deferred command's
// validation failure is logged rather than returned.
func (s *Store) Apply(cmd Command) error {
	if s.applying {
		s.pending = append(s.pending, cmd)
		log.Debug().
			Str("command", cmd.name()).
			Msg("command deferred until in-flight command completes")
		return nil
	}

	s.applying = true
	defer func() { s.applying = false }()

	err := s.applyOne(cmd)

	for len(s.pending) > 0 {
		next := s.pending[0]
		s.pending = s.pending[1:]
		if deferred := s.applyOne(next); deferred != nil {
			log.Warn().
				Err(deferred).
				Str("command", next.name()).
				Msg("deferred command rejected")
		}
	}
	return err
}

func (s *Store) applyOne(cmd Command) error {
	before := s.record.clone()
	if err := s.mutate(cmd); err != nil {
		log.Warn().
			Err(err).
			Str("command", cmd.name()).
			Msg("command rejected")
		return err
	}
	after := s.record.clone()
	s.notify(before, after)
	return nil
}

// mutate validates cmd against the current record and applies its field
// changes. It either applies everything or, on a validation error, nothing.
func (s *Store) mutate(cmd Command) error {
	switch c := cmd.(type) {
	case SetDuration:
		if err := validDuration(c.Seconds); err != nil {
			return fmt.Errorf("set duration to %d: %w", c.Seconds, err)
		}
		s.record.DefaultDuration = c.Seconds

	case SeedTimes:
		if err := validDuration(c.Seconds); err != nil {
			return fmt.Errorf("seed times to %d: %w", c.Seconds, err)
		}
		s.record.TimeRemaining[0] = c.Seconds
		s.record.TimeRemaining[1] = c.Seconds

	case DecrementActive:
		if !s.record.Running || !s.record.ActivePlayer.Valid() {
			return fmt.Errorf("decrement active: %w", ErrClockNotRunning)
		}
		if i := s.record.ActivePlayer.Index(); s.record.TimeRemaining[i] > 0 {
			s.record.TimeRemaining[i]--
		}

	case SetActivePlayer:
		if c.Player != models.NoPlayer && !c.Player.Valid() {
			return fmt.Errorf("set active player to %d: %w", c.Player, ErrInvalidPlayer)
		}
		s.record.ActivePlayer = c.Player
		s.record.Running = c.Player != models.NoPlayer

	case RecordMove:
		if !c.Player.Valid() {
			return fmt.Errorf("record move by %d: %w", c.Player, ErrInvalidPlayer)
		}
		if c.Player != s.record.ActivePlayer {
			return fmt.Errorf("record move by %d: %w", c.Player, ErrNotActivePlayer)
		}
		i := c.Player.Index()
		s.record.MovesMade[i]++
		s.record.MatchLog = append(s.record.MatchLog, models.MoveRecord{
			Player:        c.Player,
			At:            s.clock.Now(),
			TimeRemaining: s.record.TimeRemaining[i],
		})

	case SetPaused:
		if !s.record.ActivePlayer.Valid() {
			return fmt.Errorf("set paused to %t: %w", c.Paused, ErrNoOwner)
		}
		s.record.Running = !c.Paused

	case Reset:
		d := s.record.DefaultDuration
		s.record = Record{
			TimeRemaining:   [2]int{d, d},
			DefaultDuration: d,
			MatchID:         uuid.New(),
		}

	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
	return nil
}

func (s *Store) notify(before, after Record) {
	for _, field := range diffFields(before, after) {
		for _, ob := range s.snapshotObservers(field) {
			s.invoke(ob, before, after)
		}
	}
	for _, ob := range s.snapshotObservers(fieldAny) {
		s.invoke(ob, before, after)
	}
}

func (s *Store) snapshotObservers(field Field) []*observer {
	list := s.observers[field]
	if len(list) == 0 {
		return nil
	}
	snapshot := make([]*observer, len(list))
	copy(snapshot, list)
	return snapshot
}

// invoke runs one observer, recovering a panic so sibling observers and the
// command caller are unaffected.
func (s *Store) invoke(ob *observer, before, after Record) {
	if ob.removed {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.faults++
			log.Error().
				Str("field", string(ob.field)).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("observer panicked during notification")
		}
	}()
	ob.fn(before, after)
}

func validDuration(seconds int) error {
	if seconds <= 0 || seconds >= MaxDurationSeconds {
		return ErrInvalidDuration
	}
	return nil
}
