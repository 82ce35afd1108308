// Package queue holds the background consumer that drains the seat
// availability invalidation exchange published by internal/invalidate.
package queue

import "time"

// SeatAvailabilityChangedEvent mirrors invalidate.SeatAvailabilityChanged on
// the wire. It is declared independently rather than imported so the
// consumer binary depends only on the encoding, not on the coordinator's
// internal packages.
type SeatAvailabilityChangedEvent struct {
	EventID   uint64    `json:"event_id"`
	SeatIDs   []uint64  `json:"seat_ids"`
	Reason    string    `json:"reason"`
	ChangedAt time.Time `json:"changed_at"`
}
