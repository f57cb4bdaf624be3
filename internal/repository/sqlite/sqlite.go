// Package sqlite implements the repository interfaces on SQLite, through the
// pure-Go modernc.org/sqlite driver.
//
// CONCURRENCY MODEL:
// SQLite allows one writer at a time. Every transaction we open is a
// BEGIN IMMEDIATE (the _txlock=immediate DSN option), so a transaction takes
// the write lock up front instead of upgrading halfway through. Two swipe
// transactions therefore run one after the other, never interleaved, and
// "check reciprocity, then create the match" can't be split by another
// writer. busy_timeout bounds how long a writer waits for the lock; when it
// expires we report apperror.ErrStorageConflict so the caller can retry.
//
// The unique indexes on swipes and matches still refuse a duplicate row if
// application code ever raced.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	// The aliased import registers the "sqlite" driver with database/sql and
	// gives us the driver's error type for classifying constraint failures.
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/sparko/internal/apperror"
)

// MemoryPath opens a private in-memory database. Handy for tests.
const MemoryPath = ":memory:"

// busyTimeoutMS is how long a connection waits on a locked database before
// giving up with SQLITE_BUSY.
const busyTimeoutMS = 5000

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// querier is the subset of *sql.DB and *sql.Tx the query helpers need, so the
// same SQL runs both inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/sparko.db"  → file-based database (persistent)
//   - ":memory:"        → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every connection to ":memory:" is its own empty database, so an
	// in-memory pool must be exactly one connection wide.
	if dbPath == MemoryPath {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// dsn appends per-connection settings to path. Pragmas set with Exec would
// only reach whichever pooled connection ran them; DSN pragmas are applied to
// every connection the pool opens.
func dsn(path string) string {
	v := url.Values{}
	v.Add("_pragma", "foreign_keys(1)")
	v.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMS))
	if path != MemoryPath {
		v.Add("_pragma", "journal_mode(WAL)")
	}
	v.Set("_txlock", "immediate")
	v.Set("_time_format", "sqlite")
	return path + "?" + v.Encode()
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate runs all database migrations.
//
// CREATE TABLE IF NOT EXISTS is idempotent, so this runs on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			email                TEXT UNIQUE,
			github_id            INTEGER UNIQUE,
			password_hash        TEXT NOT NULL DEFAULT '',
			name                 TEXT NOT NULL DEFAULT '',
			age                  INTEGER NOT NULL DEFAULT 0,
			location             TEXT NOT NULL DEFAULT '',
			photo_url            TEXT NOT NULL DEFAULT '',
			active_role          TEXT NOT NULL DEFAULT 'entrepreneur'
			                     CHECK (active_role IN ('entrepreneur', 'investor', 'partner')),
			super_spark_count    INTEGER NOT NULL DEFAULT 3
			                     CHECK (super_spark_count BETWEEN 0 AND 3),
			super_spark_reset_at DATETIME NOT NULL,
			created_at           DATETIME NOT NULL,
			updated_at           DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// One profile per (user, role). Common fields are columns; the
	// role-specific record is stored as JSON in details.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id                    INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id               INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role                  TEXT NOT NULL
			                      CHECK (role IN ('entrepreneur', 'investor', 'partner')),
			title                 TEXT NOT NULL DEFAULT '',
			company               TEXT NOT NULL DEFAULT '',
			tagline               TEXT NOT NULL DEFAULT '',
			bio                   TEXT NOT NULL DEFAULT '',
			skills                TEXT NOT NULL DEFAULT '[]',
			details               TEXT NOT NULL DEFAULT '{}',
			is_complete           INTEGER NOT NULL DEFAULT 0,
			completion_percentage INTEGER NOT NULL DEFAULT 0,
			created_at            DATETIME NOT NULL,
			updated_at            DATETIME NOT NULL,
			UNIQUE (user_id, role)
		);
		CREATE INDEX IF NOT EXISTS idx_profiles_discovery ON profiles(role, is_complete);
	`)
	if err != nil {
		return fmt.Errorf("creating profiles table: %w", err)
	}

	// The swipe ledger is append-only. The UNIQUE constraint is the
	// duplicate-swipe rule; its leading swiper_id column also serves the
	// discovery exclusion subquery.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS swipes (
			id          TEXT PRIMARY KEY,
			swiper_id   INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			swiped_id   INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			swiper_role TEXT NOT NULL,
			swiped_role TEXT NOT NULL,
			action      TEXT NOT NULL CHECK (action IN ('like', 'skip', 'super_spark')),
			created_at  DATETIME NOT NULL,
			UNIQUE (swiper_id, swiped_id, swiper_role, swiped_role)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating swipes table: %w", err)
	}

	// user1_id < user2_id is enforced here too, so a non-canonical row can
	// never slip past the unique index.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS matches (
			id            TEXT PRIMARY KEY,
			user1_id      INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user2_id      INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user1_role    TEXT NOT NULL,
			user2_role    TEXT NOT NULL,
			chat_unlocked INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL,
			CHECK (user1_id < user2_id),
			UNIQUE (user1_id, user1_role, user2_id, user2_role)
		);
		CREATE INDEX IF NOT EXISTS idx_matches_user2 ON matches(user2_id, user2_role);
	`)
	if err != nil {
		return fmt.Errorf("creating matches table: %w", err)
	}

	return nil
}

// sqliteCode extracts the extended result code from a driver error.
func sqliteCode(err error) (int, bool) {
	var se *moderncsqlite.Error
	if errors.As(err, &se) {
		return se.Code(), true
	}
	return 0, false
}

func isUniqueViolation(err error) bool {
	code, ok := sqliteCode(err)
	if !ok {
		return false
	}
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	// primary code only, if extended result codes are off
	return code == sqlite3.SQLITE_CONSTRAINT && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isBusy(err error) bool {
	code, ok := sqliteCode(err)
	if !ok {
		return false
	}
	primary := code & 0xff
	return primary == sqlite3.SQLITE_BUSY || primary == sqlite3.SQLITE_LOCKED
}

// wrapBusy turns a lock timeout into a retryable StorageConflict and wraps
// anything else with context.
func wrapBusy(err error, what string) error {
	if isBusy(err) {
		return apperror.StorageConflict(what)
	}
	return fmt.Errorf("sqlite: %s: %w", what, err)
}
