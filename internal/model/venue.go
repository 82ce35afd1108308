package model

import "time"

// Venue is the physical location hosting one or more events. It is kept
// deliberately thin: venue CRUD and directory/search concerns belong to the
// outer service layer and are out of scope for the reservation core.
type Venue struct {
	ID        uint64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
