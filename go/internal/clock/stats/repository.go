package stats

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcdev12/chessclock/go/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS match_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	match_id TEXT NOT NULL,
	winner INTEGER NOT NULL,
	loser INTEGER NOT NULL,
	winner_seconds_remaining INTEGER NOT NULL,
	moves_player_one INTEGER NOT NULL,
	moves_player_two INTEGER NOT NULL,
	started_at INTEGER NOT NULL,
	finished_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_match_results_finished_at ON match_results(finished_at);
`

// Repository implements match result data access on SQLite
type Repository struct {
	db *sql.DB
}

// OpenRepository opens the result database at path, creating the schema if
// needed
func OpenRepository(path string) (*Repository, error) {
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open stats db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping stats db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create stats schema: %w", err)
	}
	return &Repository{db: db}, nil
}

// Close releases the database connection
func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveResult persists one finished match
func (r *Repository) SaveResult(ctx context.Context, summary MatchSummary) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO match_results (
	match_id,
	winner,
	loser,
	winner_seconds_remaining,
	moves_player_one,
	moves_player_two,
	started_at,
	finished_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		summary.MatchID,
		int(summary.Winner),
		int(summary.Loser),
		summary.WinnerSecondsRemaining,
		summary.Moves[0],
		summary.Moves[1],
		summary.StartedAt.UTC().UnixMilli(),
		summary.FinishedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save match result: %w", err)
	}
	return nil
}

// TallyByPlayer aggregates wins, losses, and moves for both players
func (r *Repository) TallyByPlayer(ctx context.Context) ([]PlayerTally, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT
	COUNT(CASE WHEN winner = 1 THEN 1 END),
	COUNT(CASE WHEN loser = 1 THEN 1 END),
	COALESCE(SUM(moves_player_one), 0),
	COUNT(CASE WHEN winner = 2 THEN 1 END),
	COUNT(CASE WHEN loser = 2 THEN 1 END),
	COALESCE(SUM(moves_player_two), 0)
FROM match_results
`)

	var one, two PlayerTally
	one.Player = models.PlayerOne
	two.Player = models.PlayerTwo
	if err := row.Scan(
		&one.Wins, &one.Losses, &one.Moves,
		&two.Wins, &two.Losses, &two.Moves,
	); err != nil {
		return nil, fmt.Errorf("failed to tally results: %w", err)
	}
	return []PlayerTally{one, two}, nil
}

// RecentResults lists the newest finished matches, most recent first
func (r *Repository) RecentResults(ctx context.Context, limit int) ([]MatchSummary, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT
	match_id,
	winner,
	loser,
	winner_seconds_remaining,
	moves_player_one,
	moves_player_two,
	started_at,
	finished_at
FROM match_results
ORDER BY finished_at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent results: %w", err)
	}
	defer rows.Close()

	results := make([]MatchSummary, 0, limit)
	for rows.Next() {
		var summary MatchSummary
		var winner, loser int
		var startedAt, finishedAt int64
		if err := rows.Scan(
			&summary.MatchID,
			&winner,
			&loser,
			&summary.WinnerSecondsRemaining,
			&summary.Moves[0],
			&summary.Moves[1],
			&startedAt,
			&finishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan match result: %w", err)
		}
		summary.Winner = models.PlayerID(winner)
		summary.Loser = models.PlayerID(loser)
		summary.StartedAt = time.UnixMilli(startedAt).UTC()
		summary.FinishedAt = time.UnixMilli(finishedAt).UTC()
		results = append(results, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate match results: %w", err)
	}
	return results, nil
}
