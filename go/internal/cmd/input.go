package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/chessclock/go/internal/clock/engine"
	"github.com/mcdev12/chessclock/go/internal/clock/events"
	"github.com/mcdev12/chessclock/go/internal/clock/stats"
	"github.com/mcdev12/chessclock/go/internal/models"
)

const usage = `commands:
  1        press player one's button
  2        press player two's button
  p        pause / resume
  r        reset the match
  d <sec>  set the match duration in seconds
  s        show the head-to-head record
  q        quit
`

// inputLoop reads one-key commands from the terminal and turns them into
// engine intents.
type inputLoop struct {
	engine *engine.Engine
	stats  *stats.Recorder
	in     io.Reader
	out    io.Writer
	quit   chan struct{}
}

func newInputLoop(eng *engine.Engine, recorder *stats.Recorder, in io.Reader, out io.Writer) *inputLoop {
	return &inputLoop{
		engine: eng,
		stats:  recorder,
		in:     in,
		out:    out,
		quit:   make(chan struct{}),
	}
}

// Quit is closed when the player types q.
func (l *inputLoop) Quit() <-chan struct{} {
	return l.quit
}

// Run consumes lines until the input closes or the player quits. Reads on a
// terminal cannot be interrupted by ctx; cancellation only stops the
// dispatching.
func (l *inputLoop) Run(ctx context.Context) error {
	fmt.Fprint(l.out, usage)

	scanner := bufio.NewScanner(l.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		if done := l.handle(ctx, strings.TrimSpace(scanner.Text())); done {
			return nil
		}
	}
	return scanner.Err()
}

// handle reports true when the loop should exit
func (l *inputLoop) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "1":
		l.engine.Dispatch(events.TurnRequestPayload{Player: models.PlayerOne})
	case "2":
		l.engine.Dispatch(events.TurnRequestPayload{Player: models.PlayerTwo})
	case "p":
		l.engine.Dispatch(events.PauseTogglePayload{})
	case "r":
		l.engine.Dispatch(events.ResetRequestPayload{})
	case "d":
		if len(fields) != 2 {
			fmt.Fprintln(l.out, "usage: d <seconds>")
			return false
		}
		seconds, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Fprintln(l.out, "usage: d <seconds>")
			return false
		}
		l.engine.Dispatch(events.DurationSelectedPayload{Seconds: seconds})
	case "s":
		l.printTallies(ctx)
	case "q":
		close(l.quit)
		return true
	default:
		fmt.Fprint(l.out, usage)
	}
	return false
}

func (l *inputLoop) printTallies(ctx context.Context) {
	tallies, err := l.stats.Tallies(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load tallies")
		return
	}
	fmt.Fprintln(l.out, "\nplayer  wins  losses  moves")
	for _, tally := range tallies {
		fmt.Fprintf(l.out, "%6d  %4d  %6d  %5d\n", tally.Player, tally.Wins, tally.Losses, tally.Moves)
	}
}
