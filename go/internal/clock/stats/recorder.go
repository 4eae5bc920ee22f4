package stats

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/chessclock/go/internal/clock/events"
	"github.com/mcdev12/chessclock/go/internal/pubsub"
)

const pendingSize = 8

// Recorder follows a match over the bus and hands finished results to the
// repository. Bus handlers run on the engine's goroutine, so they only
// assemble summaries; the actual writes happen on the Run goroutine.
type Recorder struct {
	repo    *Repository
	clock   clockwork.Clock
	pending chan MatchSummary
	cancels []pubsub.CancelFunc

	live *liveMatch
}

// liveMatch is the in-flight match being tracked between start and victory
type liveMatch struct {
	matchID   string
	startedAt time.Time
	moves     [2]int
}

// NewRecorder subscribes to the match lifecycle topics
func NewRecorder(repo *Repository, bus *pubsub.Bus[events.Event]) *Recorder {
	r := &Recorder{
		repo:    repo,
		clock:   clockwork.NewRealClock(),
		pending: make(chan MatchSummary, pendingSize),
	}
	r.cancels = append(r.cancels,
		bus.Subscribe(events.TopicStarted, func(msg events.Event) {
			if payload, ok := msg.(events.StartedPayload); ok {
				r.onStarted(payload)
			}
		}),
		bus.Subscribe(events.TopicTurnSwitched, func(msg events.Event) {
			if payload, ok := msg.(events.TurnSwitchedPayload); ok {
				r.onTurnSwitched(payload)
			}
		}),
		bus.Subscribe(events.TopicVictory, func(msg events.Event) {
			if payload, ok := msg.(events.VictoryPayload); ok {
				r.onVictory(payload)
			}
		}),
		bus.Subscribe(events.TopicReset, func(msg events.Event) {
			r.live = nil
		}),
	)
	return r
}

// SetClock swaps the timestamp source for tests
func (r *Recorder) SetClock(clock clockwork.Clock) {
	r.clock = clock
}

// Stop drops the recorder's bus subscriptions
func (r *Recorder) Stop() {
	for _, cancel := range r.cancels {
		cancel()
	}
	r.cancels = nil
}

func (r *Recorder) onStarted(payload events.StartedPayload) {
	r.live = &liveMatch{
		matchID:   payload.MatchID,
		startedAt: r.clock.Now(),
	}
}

func (r *Recorder) onTurnSwitched(payload events.TurnSwitchedPayload) {
	if r.live == nil || !payload.From.Valid() {
		return
	}
	r.live.moves[payload.From.Index()]++
}

func (r *Recorder) onVictory(payload events.VictoryPayload) {
	if r.live == nil || r.live.matchID != payload.MatchID {
		log.Warn().Str("match_id", payload.MatchID).Msg("victory for an untracked match, result dropped")
		return
	}
	summary := MatchSummary{
		MatchID:                payload.MatchID,
		Winner:                 payload.Winner,
		Loser:                  payload.Loser,
		WinnerSecondsRemaining: payload.WinnerSecondsRemaining,
		Moves:                  r.live.moves,
		StartedAt:              r.live.startedAt,
		FinishedAt:             r.clock.Now(),
	}
	r.live = nil

	select {
	case r.pending <- summary:
	default:
		log.Warn().Str("match_id", summary.MatchID).Msg("stats writer backed up, result dropped")
	}
}

const saveTimeout = 2 * time.Second

// Run writes queued results until ctx is cancelled, then drains whatever is
// left before returning. An accepted result is written even during shutdown,
// so each write carries its own deadline instead of the loop context.
func (r *Recorder) Run(ctx context.Context) error {
	log.Info().Msg("stats recorder running")
	for {
		select {
		case <-ctx.Done():
			r.drain()
			log.Info().Msg("stats recorder stopped")
			return nil
		case summary := <-r.pending:
			r.save(summary)
		}
	}
}

func (r *Recorder) drain() {
	for {
		select {
		case summary := <-r.pending:
			r.save(summary)
		default:
			return
		}
	}
}

func (r *Recorder) save(summary MatchSummary) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := r.repo.SaveResult(ctx, summary); err != nil {
		log.Error().Err(err).Str("match_id", summary.MatchID).Msg("failed to save match result")
		return
	}
	log.Info().
		Str("match_id", summary.MatchID).
		Int("winner", int(summary.Winner)).
		Msg("match result saved")
}

// Tallies reports both players' aggregate records
func (r *Recorder) Tallies(ctx context.Context) ([]PlayerTally, error) {
	return r.repo.TallyByPlayer(ctx)
}

// Recent lists the latest finished matches
func (r *Recorder) Recent(ctx context.Context, limit int) ([]MatchSummary, error) {
	return r.repo.RecentResults(ctx, limit)
}
