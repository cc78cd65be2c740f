// Package response provides helpers for writing consistent JSON HTTP
// responses. Success bodies may be any shape; error bodies always are
//
//	{ "status": "error", "error": "invalid email format", "kind": "invalid_email", "fields": ["email"] }
//
// with kind and fields present only for validation failures.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aanand-mishra/contacts/internal/validation"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope returned for error cases.
//
// Kind and Fields use omitempty, so a plain error encodes as
//
//	{ "status": "error", "error": "request body is empty" }
//
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status string   `json:"status"`
	Error  string   `json:"error"`
	Kind   string   `json:"kind,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ─────────────────────────────────────────────────────────────────────────────
// WriteJSON writes data as JSON with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
// ─────────────────────────────────────────────────────────────────────────────
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any error into the standard envelope.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ValidationError renders a contact validation failure so a client can
// point at the offending input:
//
//	{ "status": "error", "error": "phone number should contain only digits",
//	  "kind": "invalid_phone", "fields": ["phone"] }
//
// Errors that are not a *validation.Error fall back to GeneralError.
// ─────────────────────────────────────────────────────────────────────────────
func ValidationError(err error) Response {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		return GeneralError(err)
	}
	return Response{
		Status: StatusError,
		Error:  verr.Error(),
		Kind:   string(verr.Kind),
		Fields: verr.Fields,
	}
}
