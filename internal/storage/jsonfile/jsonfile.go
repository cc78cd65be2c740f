// Package jsonfile stores the contact book as one JSON array:
//
//	[{"name":"Bob","phone":"5551234","email":"bob@x.com"}]
//
// Writes go to a temporary file in the same directory which is then
// renamed over the target, so a crash mid-write leaves either the old or
// the new file on disk, never a truncated one.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aanand-mishra/contacts/internal/storage"
	"github.com/aanand-mishra/contacts/internal/types"
)

// Store is the JSON-file implementation of storage.Storage.
type Store struct {
	path string
}

// New returns a Store backed by the file at path. The file and its
// directory are created on the first Save.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load reads the whole file. A missing file yields an empty collection.
func (s *Store) Load() ([]types.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []types.Record{}, nil
		}
		return nil, fmt.Errorf("jsonfile.Load: read %s: %w", s.path, err)
	}

	var records []types.Record
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", storage.ErrUnreadable, s.path, err)
	}
	// "null" decodes to a nil slice; anything after the array is garbage.
	if records == nil {
		return nil, fmt.Errorf("%w: %s: not a JSON array", storage.ErrUnreadable, s.path)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: %s: trailing data after array", storage.ErrUnreadable, s.path)
	}
	return records, nil
}

// Save writes records to a temp file and atomically renames it into place.
// The temp file is removed on any failure.
func (s *Store) Save(records []types.Record) (err error) {
	if records == nil {
		records = []types.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile.Save: marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("jsonfile.Save: create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("jsonfile.Save: create temp: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("jsonfile.Save: write temp: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("jsonfile.Save: sync temp: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("jsonfile.Save: close temp: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("jsonfile.Save: chmod temp: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("jsonfile.Save: rename into %s: %w", s.path, err)
	}
	return nil
}

// Close is a no-op; the file is only open during Load and Save.
func (s *Store) Close() error {
	return nil
}
