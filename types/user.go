package types

import "time"

// User represents an account in the system.
type User struct {
	// ID is the unique identifier of the user, assigned by the store on
	// creation. Issued session tokens use it as their subject.
	ID int `json:"id" db:"id"`

	// Email is the unique login key, stored as given.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
