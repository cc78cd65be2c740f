// Package storage defines the contract a persistence backend must satisfy
// to hold the contact book.
//
// The store always works on the whole collection: Load returns every
// record and Save replaces every record. Contact books are small, and a
// full rewrite keeps each backend trivially consistent with memory.
//
// Backends:
//
//   - jsonfile: a single JSON array on disk (the default)
//   - sqlite:   one table in a SQLite database
package storage

import (
	"errors"

	"github.com/aanand-mishra/contacts/internal/types"
)

// ErrUnreadable means persisted data exists but cannot be parsed as a
// contact collection. A missing store is never an error.
var ErrUnreadable = errors.New("storage: persisted contacts are unreadable")

// Storage is the persistence contract used by the contact store.
type Storage interface {
	// Load returns every persisted record in stored order.
	// Returns an empty slice (not nil) when nothing has been saved yet,
	// and an error wrapping ErrUnreadable when the data is malformed.
	Load() ([]types.Record, error)

	// Save replaces the persisted collection with records.
	// A failed Save leaves the previously saved collection intact.
	Save(records []types.Record) error

	// Close releases any resources held by the backend.
	Close() error
}
