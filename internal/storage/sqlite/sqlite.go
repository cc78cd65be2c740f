// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using database/sql and the mattn/go-sqlite3
// driver.
//
// WHY A WHOLE-TABLE REWRITE?
// ──────────────────────────
// The contact book is small and the store always hands over the complete
// collection, so Save replaces the table content inside a single
// transaction. Readers never observe a half-written collection: either
// the commit lands or the old rows stay.
//
// Only a file SQLite itself rejects as "not a database" or "malformed" is
// reported as storage.ErrUnreadable. A locked or unopenable database is a
// plain error: the data may be perfectly healthy, it just is not
// reachable right now.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/contacts/internal/storage"
	"github.com/aanand-mishra/contacts/internal/types"
)

// SQLite is the database implementation of storage.Storage.
// *sql.DB is a connection pool and is safe for concurrent use.
type SQLite struct {
	Db *sql.DB
}

// ─────────────────────────────────────────────────────────────────────────────
// New opens (or creates) the database at path and makes sure the contacts
// table exists.
//
// path is handed to the driver as its DSN, so driver options may follow a
// "?", e.g. "contacts.db?_busy_timeout=1000".
//
// sql.Open does not touch the file; the first real I/O is the CREATE TABLE
// below, which is therefore where a foreign or corrupt file is detected.
// ─────────────────────────────────────────────────────────────────────────────
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Schema:
	//   id    — rowid alias; ORDER BY id gives insertion order back
	//   name  — sort and search key
	//   phone — digits only, validated before it gets here
	//   email — validated shape
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS contacts (
			id    INTEGER PRIMARY KEY AUTOINCREMENT,
			name  TEXT NOT NULL,
			phone TEXT NOT NULL,
			email TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, classify("sqlite.New: create table", err)
	}

	return &SQLite{Db: db}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Load returns every contact row in insertion order.
//
// Returns an empty slice (not nil) for an empty table so callers can range
// over the result or encode it as [] without a nil check.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Load() ([]types.Record, error) {
	rows, err := s.Db.Query("SELECT name, phone, email FROM contacts ORDER BY id")
	if err != nil {
		return nil, classify("sqlite.Load: query", err)
	}
	defer rows.Close()

	records := make([]types.Record, 0)
	for rows.Next() {
		var r types.Record
		if err := rows.Scan(&r.Name, &r.Phone, &r.Email); err != nil {
			return nil, classify("sqlite.Load: scan row", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("sqlite.Load: rows iteration", err)
	}

	return records, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Save replaces all rows with records in one transaction.
//
// The INSERT is prepared once inside the transaction and executed per
// record; the ? placeholders keep user input out of the SQL text.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Save(records []types.Record) error {
	tx, err := s.Db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite.Save: begin: %w", err)
	}
	// Rollback after Commit is a no-op returning sql.ErrTxDone.
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM contacts"); err != nil {
		return fmt.Errorf("sqlite.Save: clear: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO contacts (name, phone, email) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("sqlite.Save: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(r.Name, r.Phone, r.Email); err != nil {
			return fmt.Errorf("sqlite.Save: insert %q: %w", r.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite.Save: commit: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// classify wraps err as storage.ErrUnreadable only when SQLite says the
// file is not a database or is corrupt. Busy, locked, permission and
// every other failure keep their own identity.
func classify(op string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		(sqliteErr.Code == sqlite3.ErrNotADB || sqliteErr.Code == sqlite3.ErrCorrupt) {
		return fmt.Errorf("%w: %s: %v", storage.ErrUnreadable, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
