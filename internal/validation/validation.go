// Package validation checks contact fields before they reach the store.
//
// Rules are expressed as go-playground/validator struct tags. Two custom
// tags are registered on top of the built-in "required":
//
//	digits      — the value is one or more ASCII digits, nothing else
//	emailshape  — one "@", then at least one "." after it, no empty segments
//
// The validator reports every failing field at once; Contact collapses that
// into a single *Error, picking the first failing rule in the order
// missing field → phone → email so user-facing messages stay predictable.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind names the rule a contact failed.
type Kind string

const (
	KindMissingField Kind = "missing_field"
	KindInvalidPhone Kind = "invalid_phone"
	KindInvalidEmail Kind = "invalid_email"
)

// Sentinels for errors.Is. Every *Error unwraps to exactly one of these.
var (
	ErrMissingField = errors.New("all fields are required")
	ErrInvalidPhone = errors.New("phone number should contain only digits")
	ErrInvalidEmail = errors.New("invalid email format")
)

var (
	digitsRe = regexp.MustCompile(`^[0-9]+$`)
	emailRe  = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
)

// Error is returned when a contact fails validation. Fields lists the
// offending fields by their JSON names; for KindMissingField it holds every
// empty field, for the format kinds it holds the single field checked.
type Error struct {
	Kind   Kind
	Fields []string
}

func (e *Error) Error() string {
	if e.Kind == KindMissingField {
		return fmt.Sprintf("%s: missing %s", ErrMissingField, strings.Join(e.Fields, ", "))
	}
	return e.Unwrap().Error()
}

func (e *Error) Unwrap() error {
	switch e.Kind {
	case KindMissingField:
		return ErrMissingField
	case KindInvalidPhone:
		return ErrInvalidPhone
	default:
		return ErrInvalidEmail
	}
}

// input mirrors the three user-editable fields of types.Contact.
// Struct order matters only for the Fields slice of a missing-field error.
type input struct {
	Name  string `json:"name"  validate:"required"`
	Phone string `json:"phone" validate:"required,digits"`
	Email string `json:"email" validate:"required,emailshape"`
}

// validate is safe for concurrent use and caches struct metadata,
// so one instance serves the whole process.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON name ("phone") rather than the Go name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// RegisterValidation only fails on an empty or reserved tag name.
	must(v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	}))
	must(v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// IsValidPhone reports whether phone is non-empty and made only of 0-9.
func IsValidPhone(phone string) bool {
	return digitsRe.MatchString(phone)
}

// IsValidEmail reports whether email has the shape local@domain.tld with
// exactly one "@".
func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// Contact validates a name/phone/email triple. It returns nil or a *Error.
func Contact(name, phone, email string) error {
	err := validate.Struct(input{Name: name, Phone: phone, Email: email})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// InvalidValidationError: only possible with a non-struct argument.
		return fmt.Errorf("validation.Contact: %w", err)
	}

	var missing []string
	var phoneBad, emailBad bool
	for _, fe := range fieldErrs {
		switch {
		case fe.Tag() == "required":
			missing = append(missing, fe.Field())
		case fe.Tag() == "digits":
			phoneBad = true
		case fe.Tag() == "emailshape":
			emailBad = true
		}
	}

	switch {
	case len(missing) > 0:
		return &Error{Kind: KindMissingField, Fields: missing}
	case phoneBad:
		return &Error{Kind: KindInvalidPhone, Fields: []string{"phone"}}
	case emailBad:
		return &Error{Kind: KindInvalidEmail, Fields: []string{"email"}}
	}
	return fmt.Errorf("validation.Contact: %w", err)
}
