package trackers

import (
	"database/sql"
	"fmt"

	ts "github.com/samuelfneumann/pyramid/timestep"
)

const schema = `
CREATE TABLE IF NOT EXISTS episodes (
	run_id       TEXT    NOT NULL,
	episode      INTEGER NOT NULL,
	ep_return    REAL    NOT NULL,
	final_reward REAL    NOT NULL,
	blocks       INTEGER NOT NULL,
	end_type     TEXT    NOT NULL,
	PRIMARY KEY (run_id, episode)
)`

// Episode is a single episode recorded by an SQLite Tracker
type Episode struct {
	Episode     int
	Return      float64
	FinalReward float64
	Blocks      int
	EndType     string
}

// SQLite records a row per finished episode in an SQL database, keyed
// by a run identifier so that many training runs can share a database.
// Rows are written as soon as an episode finishes, so the data of an
// interrupted run survives.
type SQLite struct {
	db    *sql.DB
	runID string

	episode       int
	currentReturn float64
	err           error
}

// NewSQLite returns a new SQLite Tracker which writes to db, creating
// the episodes table if needed
func NewSQLite(db *sql.DB, runID string) (*SQLite, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("newSQLite: could not create schema: %w", err)
	}
	return &SQLite{db: db, runID: runID}, nil
}

// Track accumulates the episodic return and inserts a row when t is
// the last TimeStep of an episode. Write errors are reported by Save.
func (s *SQLite) Track(t ts.TimeStep) {
	if t.First() {
		s.currentReturn = 0
	}
	s.currentReturn += t.Reward
	if !t.Last() {
		return
	}

	s.episode++
	_, err := s.db.Exec(
		`INSERT INTO episodes (run_id, episode, ep_return, final_reward, `+
			`blocks, end_type) VALUES (?, ?, ?, ?, ?, ?)`,
		s.runID, s.episode, s.currentReturn, t.Reward, t.Blocks,
		t.EndType.String(),
	)
	if err != nil && s.err == nil {
		s.err = fmt.Errorf("track: episode %v: %w", s.episode, err)
	}
	s.currentReturn = 0
}

// Save reports the first error encountered while writing rows
func (s *SQLite) Save() error {
	return s.err
}

// Episodes returns every episode recorded for the tracker's run, in
// order
func (s *SQLite) Episodes() ([]Episode, error) {
	rows, err := s.db.Query(
		`SELECT episode, ep_return, final_reward, blocks, end_type `+
			`FROM episodes WHERE run_id = ? ORDER BY episode`, s.runID)
	if err != nil {
		return nil, fmt.Errorf("episodes: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		var e Episode
		if err := rows.Scan(&e.Episode, &e.Return, &e.FinalReward,
			&e.Blocks, &e.EndType); err != nil {
			return nil, fmt.Errorf("episodes: %w", err)
		}
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}
