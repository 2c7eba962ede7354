// Package models defines the server-side persistence models.
package models

import "time"

// User is an account record. Email doubles as the login name and is unique
// at the store level. Only the bcrypt hash of the password is persisted.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
