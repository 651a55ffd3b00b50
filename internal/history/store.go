// Package history persists win-probability rows so later recomputes can
// report the change in the home probability against the last stored value.
// The engine itself never touches the store; the caller reads the previous
// row before a Predict call and appends the result after.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/matchpulse/winprob/pkg/engine"
)

const schema = `
CREATE TABLE IF NOT EXISTS win_prob_history (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	match_id    TEXT    NOT NULL,
	computed_at INTEGER NOT NULL,
	minute      INTEGER NOT NULL,
	p_home      REAL    NOT NULL,
	p_draw      REAL    NOT NULL,
	p_away      REAL    NOT NULL,
	delta_home  REAL    NOT NULL,
	quality     TEXT    NOT NULL,
	confidence  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_match ON win_prob_history (match_id, computed_at);
`

// Store is a SQLite-backed append-only log of prediction rows keyed by match id
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}
	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}
	log.Debug().Str("path", path).Msg("history store opened")
	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Entry is one stored row together with when and at what match minute it was
// computed.
type Entry struct {
	MatchID    string
	ComputedAt time.Time
	Minute     int
	Row        engine.WinProbRow
}

// Append stores one computed row for the match
func (s *Store) Append(matchID string, computedAt time.Time, minute int, row engine.WinProbRow) error {
	_, err := s.db.Exec(
		`INSERT INTO win_prob_history
		 (match_id, computed_at, minute, p_home, p_draw, p_away, delta_home, quality, confidence)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		matchID, computedAt.Unix(), minute,
		row.PHome, row.PDraw, row.PAway, row.DeltaHome,
		string(row.Quality), row.Confidence,
	)
	if err != nil {
		return fmt.Errorf("failed to append history row for %s: %w", matchID, err)
	}
	return nil
}

// Latest returns the most recently stored row for the match, or nil when the
// match has no history yet.
func (s *Store) Latest(matchID string) (*engine.WinProbRow, error) {
	var (
		row     engine.WinProbRow
		quality string
	)
	err := s.db.QueryRow(
		`SELECT p_home, p_draw, p_away, delta_home, quality, confidence
		 FROM win_prob_history WHERE match_id = ?
		 ORDER BY computed_at DESC, id DESC LIMIT 1`,
		matchID,
	).Scan(&row.PHome, &row.PDraw, &row.PAway, &row.DeltaHome, &quality, &row.Confidence)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read latest history row for %s: %w", matchID, err)
	}
	row.Quality = engine.ModelQuality(quality)
	return &row, nil
}

// List returns the match's stored rows oldest first, capped at limit when
// limit is positive.
func (s *Store) List(matchID string, limit int) ([]Entry, error) {
	query := `SELECT match_id, computed_at, minute, p_home, p_draw, p_away, delta_home, quality, confidence
		 FROM win_prob_history WHERE match_id = ? ORDER BY computed_at ASC, id ASC`
	args := []interface{}{matchID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history for %s: %w", matchID, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			entry   Entry
			unix    int64
			quality string
		)
		if err := rows.Scan(&entry.MatchID, &unix, &entry.Minute,
			&entry.Row.PHome, &entry.Row.PDraw, &entry.Row.PAway, &entry.Row.DeltaHome,
			&quality, &entry.Row.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan history row for %s: %w", matchID, err)
		}
		entry.ComputedAt = time.Unix(unix, 0)
		entry.Row.Quality = engine.ModelQuality(quality)
		out = append(out, entry)
	}
	return out, rows.Err()
}
