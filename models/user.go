package models

import "time"

// User represents a registered account.
// It maps to the `users` table in SQLite. PasswordHash is an opaque bcrypt
// digest; nothing outside internal/auth inspects it.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
