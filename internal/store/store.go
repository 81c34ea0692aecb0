// Package store implements the SQLite-backed persistence layer: CRUD
// on probe configurations and webhooks, append-only alarm/data rows
// fed by a background writer, and a retention sweep.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/sifis-home/netspot-control/internal/apierr"
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

const schema = `
CREATE TABLE IF NOT EXISTS configurations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	config TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS webhooks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	config TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS alarms (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	time INTEGER NOT NULL,
	message TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS data (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	time INTEGER NOT NULL,
	message TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alarms_time ON alarms(time);
CREATE INDEX IF NOT EXISTS idx_data_time ON data(time);
`

// RetentionWindow is how long alarm/data rows are kept before the
// writer's periodic sweep deletes them.
const RetentionWindow = time.Hour

// SweepInterval is how often the retention sweep runs.
const SweepInterval = 60 * time.Second

// DefaultQueryLimit is the row cap the REST layer applies to
// /netspots/alarms and /netspots/data when neither time nor last is
// given.
const DefaultQueryLimit = 100

// Store owns the single SQLite connection. REST-driven CRUD and the
// background writer task serialize through the same *sqlx.DB; the
// driver's own connection pool is capped at one connection so this is
// effectively a mutex around one statement at a time.
type Store struct {
	db *sqlx.DB
	mu sync.Mutex
}

// Open connects to the SQLite file at path (created if absent) in
// WAL mode and runs the schema bootstrap. This is the sole migrator:
// plain idempotent CREATE TABLE IF NOT EXISTS, not a versioned
// migration engine.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)", path)
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, apierr.New(apierr.StartupFatal, fmt.Errorf("open database: %w", err))
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apierr.New(apierr.StartupFatal, fmt.Errorf("run schema: %w", err))
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Checkpoint flushes the WAL file back into the main database file.
// Callers that copy the raw database file out from under a live,
// WAL-mode connection (see storebackup.Export) must checkpoint first,
// or the copy can miss rows still sitting only in the WAL.
func (s *Store) Checkpoint() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return apierr.New(apierr.PersistenceUnexpected, fmt.Errorf("checkpoint WAL: %w", err))
	}
	return nil
}

// rowCountError maps a rows-affected outcome for an update/delete
// statement: 0 -> NotFound, >1 is impossible for an id-keyed
// statement and is treated as PersistenceUnexpected, 1 -> nil.
func rowCountError(result sql.Result, notFoundMsg string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return apierr.New(apierr.PersistenceUnexpected, err)
	}
	switch n {
	case 0:
		return apierr.New(apierr.NotFound, fmt.Errorf("%s", notFoundMsg))
	case 1:
		return nil
	default:
		return apierr.New(apierr.PersistenceUnexpected, fmt.Errorf("%s: %d rows affected, expected 1", notFoundMsg, n))
	}
}
