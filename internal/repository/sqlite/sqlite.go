// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database: a single file, no separate server to
// install or manage. A student portal serving one campus fits comfortably
// in this model, and tests get a throwaway database with ":memory:".
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// the SQLite sources, so it works everywhere Go works.
//
// The database/sql pattern is always:
//  1. sql.Open(driverName, dataSourceName) creates a connection pool
//  2. db.QueryRowContext / db.ExecContext run statements
//  3. row.Scan(&field1, &field2) reads results into Go variables
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/sakif/student-portal/internal/apperror"

	// Side-effect import: the driver's init() registers itself with
	// database/sql under the name "sqlite".
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// The server owns one DB for its lifetime and closes it on shutdown.
type DB struct {
	conn *sql.DB
}

// New creates a SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/portal.db"  file-based, persistent
//   - ":memory:"        in-memory, for tests, lost on close
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// sql.Open only creates the pool; Ping forces a real connection so a bad
	// path or permission problem surfaces here instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress.
	// SQLite's default locking would serialize every request.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. The complaints table
	// relies on ON DELETE CASCADE, so they must be on.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Always defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent,
// so restarting against an existing database is safe.
//
// The UNIQUE constraints on email, roll_no, and phone are the real guard
// against duplicate registrations. The service layer also pre-checks them to
// report every violation at once, but the pre-check has a time-of-check/
// time-of-use gap; the index does not.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL,
			email       TEXT NOT NULL UNIQUE,
			roll_no     TEXT NOT NULL UNIQUE,
			department  TEXT NOT NULL,
			phone       TEXT NOT NULL UNIQUE,
			password    TEXT NOT NULL,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_login  DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS complaints (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			student_id  INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title       TEXT NOT NULL,
			category    TEXT NOT NULL,
			description TEXT NOT NULL,
			status      TEXT NOT NULL DEFAULT 'Pending'
			            CHECK (status IN ('Pending', 'In Progress', 'Resolved')),
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_complaints_student_id ON complaints(student_id);
		CREATE INDEX IF NOT EXISTS idx_complaints_created_at ON complaints(created_at);
		CREATE INDEX IF NOT EXISTS idx_complaints_status ON complaints(status);
	`)
	if err != nil {
		return fmt.Errorf("creating complaints table: %w", err)
	}

	return nil
}

// uniqueViolations maps SQLite's UNIQUE error text to the user-facing
// violation strings. modernc.org/sqlite reports constraint failures as
// "constraint failed: UNIQUE constraint failed: users.email (2067)", naming
// every column in the violated index.
var uniqueViolations = map[string]string{
	"users.email":   "Email already exists",
	"users.roll_no": "Roll number already exists",
	"users.phone":   "Phone number already exists",
}

// translateUniqueErr converts a UNIQUE constraint failure into the conflict
// AppError the API contract promises. This is the backstop for the race
// between the service layer's pre-checks and the INSERT: even if two
// registrations for the same email pass the pre-check simultaneously, the
// index rejects the second and the caller still sees a 409, not a 500.
//
// Returns nil if err is not a UNIQUE violation.
func translateUniqueErr(err error) *apperror.AppError {
	if err == nil || !strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return nil
	}
	var violations []string
	for column, message := range uniqueViolations {
		if strings.Contains(err.Error(), column) {
			violations = append(violations, message)
		}
	}
	if len(violations) == 0 {
		violations = append(violations, "Duplicate value")
	}
	return apperror.Conflict(violations)
}
