package model

import "time"

// BookingStatus is the lifecycle state of a Booking. Valid transitions are
// PENDING->CONFIRMED, PENDING->CANCELLED, CONFIRMED->CANCELLED and (reserved,
// not implemented here) CONFIRMED->REFUNDED. CANCELLED and REFUNDED are
// terminal.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingRefunded  BookingStatus = "REFUNDED"
)

// Booking is a durable record converting a set of held seat locks into a
// persistent purchase. TotalPriceCents is fixed-point with an implicit two
// decimal places (i.e. it is already expressed in cents).
type Booking struct {
	ID                 uint64
	UserID             uint64
	EventID            uint64
	TotalPriceCents    int64
	Status             BookingStatus
	PaymentIntentID    *string
	BookingDate        time.Time
	ConfirmedAt        *time.Time
	CancelledAt        *time.Time
	CancellationReason *string
	Seats              []BookingSeat
}

// BookingSeat records a single seat attached to a Booking and the price it
// was sold at, frozen at commit time so later base-price changes never
// retroactively alter a past sale.
type BookingSeat struct {
	ID             uint64
	BookingID      uint64
	SeatID         uint64
	PriceAtBooking int64
}
