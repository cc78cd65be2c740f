// Package contactstore is the single source of truth for contacts.
//
// A Store holds the collection in memory, validates every write, keeps
// the display order (name ascending, stable for equal names) and writes
// the full collection back to its storage.Storage after each mutation.
//
// Contacts are addressed two ways:
//
//   - by ID, an opaque handle assigned when a contact is added or loaded
//     and stable for the life of the Store (preferred)
//   - by row, a 0-based position in the current ListSorted order, for
//     adapters that only know what they last rendered
//
// All methods are safe for concurrent use; a mutex serialises them.
package contactstore

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/aanand-mishra/contacts/internal/storage"
	"github.com/aanand-mishra/contacts/internal/types"
	"github.com/aanand-mishra/contacts/internal/validation"
)

var (
	// ErrIndexOutOfRange means a row does not match an existing contact.
	ErrIndexOutOfRange = errors.New("contactstore: index out of range")

	// ErrNotFound means no contact carries the given ID.
	ErrNotFound = errors.New("contactstore: contact not found")
)

// Store owns the in-memory contact collection.
type Store struct {
	mu       sync.Mutex
	storage  storage.Storage
	log      *slog.Logger
	contacts []types.Contact
}

// Open loads the persisted collection from st and returns a ready Store.
// Malformed data, including records that fail validation, is reported as
// storage.ErrUnreadable.
func Open(st storage.Storage, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	records, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("contactstore.Open: %w", err)
	}

	contacts := make([]types.Contact, 0, len(records))
	for i, r := range records {
		if err := validation.Contact(r.Name, r.Phone, r.Email); err != nil {
			return nil, fmt.Errorf("contactstore.Open: %w: record %d: %v", storage.ErrUnreadable, i, err)
		}
		contacts = append(contacts, newContact(r.Name, r.Phone, r.Email))
	}

	log.Debug("contacts loaded", slog.Int("count", len(contacts)))
	return &Store{storage: st, log: log, contacts: contacts}, nil
}

func newContact(name, phone, email string) types.Contact {
	return types.Contact{ID: uuid.NewString(), Name: name, Phone: phone, Email: email}
}

// Len returns the number of contacts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.contacts)
}

// ListSorted returns a copy of every contact in display order.
func (s *Store) ListSorted() []types.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked()
}

// Search returns the contacts whose name contains query, ignoring case,
// in display order. An empty query matches everything.
func (s *Store) Search(query string) []types.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(query)
	matches := make([]types.Contact, 0)
	for _, c := range s.sortedLocked() {
		if strings.Contains(strings.ToLower(c.Name), q) {
			matches = append(matches, c)
		}
	}
	return matches
}

// Get returns the contact with the given ID.
func (s *Store) Get(id string) (types.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return types.Contact{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.contacts[i], nil
}

// Add validates the fields, appends a new contact and saves.
// On any error the collection is unchanged.
func (s *Store) Add(name, phone, email string) (types.Contact, error) {
	if err := validation.Contact(name, phone, email); err != nil {
		return types.Contact{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := newContact(name, phone, email)
	prev := s.contacts
	s.contacts = append(slices.Clip(prev), c)
	if err := s.saveLocked(); err != nil {
		s.contacts = prev
		return types.Contact{}, err
	}

	s.log.Debug("contact added", slog.String("id", c.ID))
	return c, nil
}

// Update validates the fields and overwrites the contact with the given ID.
func (s *Store) Update(id, name, phone, email string) (types.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return types.Contact{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.updateLocked(i, name, phone, email)
}

// UpdateAt overwrites the contact at row of the current display order.
// The row is checked before the fields.
func (s *Store) UpdateAt(row int, name, phone, email string) (types.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.resolveRowLocked(row)
	if err != nil {
		return types.Contact{}, err
	}
	return s.updateLocked(i, name, phone, email)
}

// Remove deletes the contact with the given ID and saves.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.removeLocked(i)
}

// RemoveAt deletes the contact at row of the current display order.
// An out-of-range row leaves the collection unchanged.
func (s *Store) RemoveAt(row int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.resolveRowLocked(row)
	if err != nil {
		return err
	}
	return s.removeLocked(i)
}

// Save writes the current collection to storage.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// Close saves the collection and releases the storage backend.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saveErr := s.saveLocked()
	closeErr := s.storage.Close()
	if saveErr != nil {
		return saveErr
	}
	if closeErr != nil {
		return fmt.Errorf("contactstore.Close: %w", closeErr)
	}
	return nil
}

func (s *Store) updateLocked(i int, name, phone, email string) (types.Contact, error) {
	if err := validation.Contact(name, phone, email); err != nil {
		return types.Contact{}, err
	}

	old := s.contacts[i]
	s.contacts[i].Name, s.contacts[i].Phone, s.contacts[i].Email = name, phone, email
	if err := s.saveLocked(); err != nil {
		s.contacts[i] = old
		return types.Contact{}, err
	}

	s.log.Debug("contact updated", slog.String("id", old.ID))
	return s.contacts[i], nil
}

func (s *Store) removeLocked(i int) error {
	removed := s.contacts[i]
	prev := s.contacts
	s.contacts = slices.Delete(slices.Clone(prev), i, i+1)
	if err := s.saveLocked(); err != nil {
		s.contacts = prev
		return err
	}

	s.log.Debug("contact removed", slog.String("id", removed.ID))
	return nil
}

// resolveRowLocked maps a display row to an index into s.contacts.
func (s *Store) resolveRowLocked(row int) (int, error) {
	sorted := s.sortedLocked()
	if row < 0 || row >= len(sorted) {
		return -1, fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, row, len(sorted))
	}
	return s.indexOfLocked(sorted[row].ID), nil
}

func (s *Store) indexOfLocked(id string) int {
	return slices.IndexFunc(s.contacts, func(c types.Contact) bool { return c.ID == id })
}

func (s *Store) sortedLocked() []types.Contact {
	sorted := slices.Clone(s.contacts)
	slices.SortStableFunc(sorted, func(a, b types.Contact) int {
		return strings.Compare(a.Name, b.Name)
	})
	if sorted == nil {
		sorted = []types.Contact{}
	}
	return sorted
}

func (s *Store) saveLocked() error {
	records := make([]types.Record, len(s.contacts))
	for i, c := range s.contacts {
		records[i] = c.Record()
	}
	if err := s.storage.Save(records); err != nil {
		return fmt.Errorf("contactstore: save: %w", err)
	}
	return nil
}
