package model

// SeatStatus is the durable-store status of a Seat.
type SeatStatus string

const (
	SeatAvailable   SeatStatus = "AVAILABLE"
	SeatBooked      SeatStatus = "BOOKED"
	SeatMaintenance SeatStatus = "MAINTENANCE"
)

// Seat is a physical seat at a venue. price_modifier scales an event's
// base_price_cents; a seat with no override carries PriceModifier == 1.0.
// Uniqueness of (VenueID, Section, Row, Number) is enforced by the durable
// store's unique index, not in Go.
type Seat struct {
	ID             uint64
	VenueID        uint64
	Section        string
	Row            string
	Number         uint32
	Type           string
	Status         SeatStatus
	PriceModifier  float64
}
