package model

import "time"

// User is the account holding bookings and seat locks. Authentication depth
// (registration, login, session management) is explicitly out of scope for
// the reservation core; this struct exists so the durable store and the
// lock registry have something concrete to key on.
type User struct {
	ID           uint64
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
