// Package contact contains the HTTP handlers for the contact resource.
//
// Handlers are built by factories that close over the store:
//
//	router.HandleFunc("POST /api/contacts", contact.New(store))
//
// They hold no contact data of their own. Every request reads from or
// writes through the store, and list responses are always in display
// order.
package contact

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/contacts/internal/contactstore"
	"github.com/aanand-mishra/contacts/internal/types"
	"github.com/aanand-mishra/contacts/internal/utils/response"
	"github.com/aanand-mishra/contacts/internal/validation"
)

// Store is the subset of *contactstore.Store the handlers need.
type Store interface {
	ListSorted() []types.Contact
	Search(query string) []types.Contact
	Get(id string) (types.Contact, error)
	Add(name, phone, email string) (types.Contact, error)
	Update(id, name, phone, email string) (types.Contact, error)
	Remove(id string) error
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/contacts
// Creates a contact from the JSON request body.
//
// Request body (JSON):
//
//	{ "name": "Bob", "phone": "5551234", "email": "bob@x.com" }
//
// Success response (201 Created), the stored contact with its handle:
//
//	{ "id": "6f1c…", "name": "Bob", "phone": "5551234", "email": "bob@x.com" }
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, or failed validation
//	500 Internal     — the contact could not be saved
//
// ─────────────────────────────────────────────────────────────────────────────
func New(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a contact")

		in, ok := decodeRecord(w, r)
		if !ok {
			return
		}

		created, err := store.Add(in.Name, in.Phone, in.Email)
		if err != nil {
			writeStoreError(w, "error creating contact", err)
			return
		}

		slog.Info("contact created", slog.String("id", created.ID))
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/contacts and GET /api/contacts?q=term
//
// Without q every contact is returned, sorted by name. With q only the
// contacts whose name contains q (ignoring case) come back, in the same
// order. ?q= with an empty value matches everything.
//
// Success response (200 OK):
//
//	[
//	  { "id": "…", "name": "Amy", "phone": "000",     "email": "amy@x.com" },
//	  { "id": "…", "name": "Bob", "phone": "5551234", "email": "bob@x.com" }
//	]
//
// An empty result is [] rather than null.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if !query.Has("q") {
			slog.Info("listing contacts")
			response.WriteJSON(w, http.StatusOK, store.ListSorted())
			return
		}

		q := query.Get("q")
		slog.Info("searching contacts", slog.String("q", q))
		response.WriteJSON(w, http.StatusOK, store.Search(q))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/contacts/{id}
// Fetches one contact by its handle.
//
// Error responses:
//
//	404 Not Found    — no contact carries that id
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a contact", slog.String("id", id))

		c, err := store.Get(id)
		if err != nil {
			writeStoreError(w, "error getting contact", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, c)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/contacts/{id}
// Replaces ALL fields of an existing contact; the id stays the same.
//
// Request body (JSON), every field required:
//
//	{ "name": "Robert", "phone": "5559999", "email": "rob@x.com" }
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, or failed validation
//	404 Not Found    — no contact carries that id
//	500 Internal     — the change could not be saved (and was not applied)
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating a contact", slog.String("id", id))

		in, ok := decodeRecord(w, r)
		if !ok {
			return
		}

		updated, err := store.Update(id, in.Name, in.Phone, in.Email)
		if err != nil {
			writeStoreError(w, "error updating contact", err)
			return
		}

		slog.Info("contact updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/contacts/{id}
//
// Success response (200 OK):
//
//	{ "status": "deleted" }
//
// Error responses:
//
//	404 Not Found    — no contact carries that id
//	500 Internal     — the removal could not be saved (and was not applied)
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a contact", slog.String("id", id))

		if err := store.Remove(id); err != nil {
			writeStoreError(w, "error deleting contact", err)
			return
		}

		slog.Info("contact deleted", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// decodeRecord reads the request body. On failure it has already written
// a 400 response and returns false.
func decodeRecord(w http.ResponseWriter, r *http.Request) (types.Record, bool) {
	var in types.Record
	err := json.NewDecoder(r.Body).Decode(&in)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return in, false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return in, false
	}
	return in, true
}

// writeStoreError maps store errors onto HTTP statuses:
//
//	*validation.Error          → 400 with kind and fields
//	ErrNotFound / out of range → 404
//	anything else              → 500, logged
func writeStoreError(w http.ResponseWriter, msg string, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(verr))
	case errors.Is(err, contactstore.ErrNotFound), errors.Is(err, contactstore.ErrIndexOutOfRange):
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
	default:
		slog.Error(msg, slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
	}
}

// Register wires every contact route onto router.
//
//	POST   /api/contacts        create
//	GET    /api/contacts        list, or search with ?q=
//	GET    /api/contacts/{id}   fetch one
//	PUT    /api/contacts/{id}   replace fields
//	DELETE /api/contacts/{id}   delete
func Register(router *http.ServeMux, store Store) {
	router.HandleFunc("POST /api/contacts", New(store))
	router.HandleFunc("GET /api/contacts", GetList(store))
	router.HandleFunc("GET /api/contacts/{id}", GetByID(store))
	router.HandleFunc("PUT /api/contacts/{id}", Update(store))
	router.HandleFunc("DELETE /api/contacts/{id}", Delete(store))
}
