package models

import "time"

// AuthToken is an opaque bearer token bound 1:1 to a user. It is created
// lazily on first signup/login and deleted on logout.
type AuthToken struct {
	Key       string
	UserID    int64
	CreatedAt time.Time
}
