package models

import "time"

// Task belongs to exactly one user; the owner is set at creation time and
// never changes. Timestamps are assigned by the database.
type Task struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
