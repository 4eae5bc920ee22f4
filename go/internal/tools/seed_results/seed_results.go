package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/chessclock/go/internal/clock/stats"
	"github.com/mcdev12/chessclock/go/internal/models"
)

// Seeds the stats database with synthetic finished matches so the tallies
// view has something to show during development.
func main() {
	count := 20
	if len(os.Args) > 1 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n <= 0 {
			fmt.Fprintln(os.Stderr, "usage: seed_results [count]")
			os.Exit(1)
		}
		count = n
	}

	path := os.Getenv("STATS_DB_PATH")
	if path == "" {
		path = "chessclock.db"
	}

	repo, err := stats.OpenRepository(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open stats db: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close()

	var inserted, errs int
	finished := time.Now().UTC().Add(-time.Duration(count) * time.Hour)

	for i := 0; i < count; i++ {
		winner := models.PlayerID(rand.Intn(2) + 1)
		summary := stats.MatchSummary{
			MatchID:                uuid.New().String(),
			Winner:                 winner,
			Loser:                  winner.Opponent(),
			WinnerSecondsRemaining: rand.Intn(120) + 1,
			Moves:                  [2]int{20 + rand.Intn(40), 20 + rand.Intn(40)},
			StartedAt:              finished.Add(-25 * time.Minute),
			FinishedAt:             finished,
		}
		if err := repo.SaveResult(context.Background(), summary); err != nil {
			fmt.Fprintf(os.Stderr, "error inserting result %s: %v\n", summary.MatchID, err)
			errs++
		} else {
			inserted++
		}
		finished = finished.Add(time.Hour)
	}

	fmt.Printf(
		"Results seed complete: %d total, %d inserted, %d errors\n",
		count, inserted, errs,
	)
}
