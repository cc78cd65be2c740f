// Package types holds the data structures shared across the application.
// Keeping them in one place lets storage, the store, and the adapters all
// import them without depending on each other.
package types

// Contact is a single entry in the contact book.
//
// ID is an opaque handle assigned by the store when the contact is created
// or loaded. It lives for one session only and is never written to the
// contacts file, which keeps exactly name, phone and email.
type Contact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Record is the persisted shape of a Contact: exactly the three user fields.
type Record struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Record strips the session ID from c.
func (c Contact) Record() Record {
	return Record{Name: c.Name, Phone: c.Phone, Email: c.Email}
}
