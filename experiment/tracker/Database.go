package tracker

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/samuelfneumann/sflearn/timestep"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS episodes (
	run         TEXT NOT NULL,
	task        INTEGER NOT NULL,
	episode     INTEGER NOT NULL,
	ep_return   REAL NOT NULL,
	length      INTEGER NOT NULL,
	created_at  TEXT NOT NULL,
	PRIMARY KEY (run, task, episode)
);
`

// Episode is a finished episode recorded in a Store
type Episode struct {
	Run     string
	Task    int
	Episode int
	Return  float64
	Length  int
}

// Store records finished episodes of experiments in SQLite
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert records episodes in a single transaction
func (s *Store) Insert(episodes []Episode) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, e := range episodes {
		_, err := tx.Exec(
			`INSERT INTO episodes (run, task, episode, ep_return, length, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			e.Run, e.Task, e.Episode, e.Return, e.Length, now,
		)
		if err != nil {
			return fmt.Errorf("insert episode: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Episodes returns the recorded episodes of a task in a run, in
// episode order
func (s *Store) Episodes(run string, task int) ([]Episode, error) {
	rows, err := s.db.Query(
		`SELECT run, task, episode, ep_return, length FROM episodes
		 WHERE run = ? AND task = ? ORDER BY episode`,
		run, task,
	)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		var e Episode
		if err := rows.Scan(&e.Run, &e.Task, &e.Episode, &e.Return,
			&e.Length); err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}

// Database tracks the return and length of each episode and saves them
// to a Store, labelled with a run and the current task
type Database[S comparable] struct {
	store    *Store
	run      string
	task     int
	episodes map[int]int // Episodes finished per task
	current  float64
	pending  []Episode
}

// NewDatabase returns a Database tracker which saves to store under
// run
func NewDatabase[S comparable](store *Store, run string) *Database[S] {
	return &Database[S]{
		store:    store,
		run:      run,
		episodes: make(map[int]int),
	}
}

// SetTask sets the task that subsequent episodes are recorded under
func (d *Database[S]) SetTask(task int) {
	d.task = task
	d.current = 0
}

// Track accumulates the return of the current episode and records the
// episode once it has finished
func (d *Database[S]) Track(t timestep.TimeStep[S]) {
	if t.First() {
		d.current = 0
	}
	d.current += t.Reward
	if !t.Last() {
		return
	}

	d.pending = append(d.pending, Episode{
		Run:     d.run,
		Task:    d.task,
		Episode: d.episodes[d.task],
		Return:  d.current,
		Length:  t.Number,
	})
	d.episodes[d.task]++
	d.current = 0
}

// Save writes all episodes recorded since the last Save to the Store
func (d *Database[S]) Save() error {
	if err := d.store.Insert(d.pending); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	d.pending = nil
	return nil
}
