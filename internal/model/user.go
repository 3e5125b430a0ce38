// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered student account.
//
// The primary key is a numeric, database-generated ID. The email, roll number,
// and phone columns each carry a UNIQUE index in the schema; registration must
// reject (not overwrite) a write that would duplicate any of them.
//
// WHY `json:"-"` ON Password?
// The Password field holds the bcrypt hash, never the plaintext. Tagging it
// with "-" means encoding/json skips it entirely, so no handler can leak it
// into a response by accident. The exclusion is enforced at the type level
// rather than by remembering to blank the field before encoding.
//
// WHY LastLogin *time.Time (a pointer)?
// A user who has registered but never logged in has no last-login time.
// The DB column is NULL-able, and a nil pointer is Go's natural mapping for
// SQL NULL. With `omitempty`, a nil LastLogin disappears from the JSON output
// instead of rendering as a zero date.
type User struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	RollNo     string     `json:"roll_no"`
	Department string     `json:"department"`
	Phone      string     `json:"phone"`
	Password   string     `json:"-"` // bcrypt hash, never serialized
	CreatedAt  time.Time  `json:"created_at"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}
