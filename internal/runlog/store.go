// Package runlog is an append-only SQLite audit trail of process-run
// events. It never seeds interpreter state on startup —
// there is deliberately no "resume from database" path — so persisting run
// history does not reintroduce the cross-reboot resumption the interpreter
// itself explicitly does not support.
package runlog

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a SQLite-backed append-only log of run events.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("runlog: failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS run_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		process_name TEXT NOT NULL,
		step_index INTEGER NOT NULL,
		step_name TEXT NOT NULL,
		event TEXT NOT NULL,
		detail TEXT,
		occurred_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_run_events_run_id ON run_events(run_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("runlog: failed to create schema: %w", err)
	}
	return nil
}

// Event is one audit-trail row. agitatord appends one for every observed
// tick: Kind is the tick result ("Active", "AwaitingUser", "Done") and
// Detail the WaitUser message or the latched fault, if any. Step starts and
// confirmations are not recorded as kinds of their own.
type Event struct {
	RunID       string
	ProcessName string
	StepIndex   int
	StepName    string
	Kind        string
	Detail      string
	OccurredAt  time.Time
}

// Append records one event. Failures to write the audit trail are reported
// to the caller but never block the interpreter itself — runlog is
// observability, not control flow.
func (s *Store) Append(ev Event) error {
	query := `
		INSERT INTO run_events (run_id, process_name, step_index, step_name, event, detail, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query, ev.RunID, ev.ProcessName, ev.StepIndex, ev.StepName, ev.Kind, ev.Detail, ev.OccurredAt)
	if err != nil {
		return fmt.Errorf("runlog: failed to append event: %w", err)
	}
	return nil
}

// EventsForRun returns every recorded event for a run, oldest first.
func (s *Store) EventsForRun(runID string) ([]Event, error) {
	query := `
		SELECT run_id, process_name, step_index, step_name, event, detail, occurred_at
		FROM run_events WHERE run_id = ? ORDER BY id ASC
	`
	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("runlog: failed to query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.RunID, &ev.ProcessName, &ev.StepIndex, &ev.StepName, &ev.Kind, &ev.Detail, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("runlog: failed to scan event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
