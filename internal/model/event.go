package model

import "time"

// EventStatus is the lifecycle state of an Event.
type EventStatus string

const (
	EventDraft       EventStatus = "DRAFT"
	EventPublished   EventStatus = "PUBLISHED"
	EventSalesOpen   EventStatus = "SALES_OPEN"
	EventSalesClosed EventStatus = "SALES_CLOSED"
	EventCompleted   EventStatus = "COMPLETED"
	EventCancelled   EventStatus = "CANCELLED"
)

// Event represents a scheduled ticketed event at a venue. available_seats is
// decremented only through the conditional update performed by
// repository.EventRepo.DecrementAvailabilityTx; callers must never assign to
// it directly outside that path.
type Event struct {
	ID             uint64
	VenueID        uint64
	EventDate      time.Time
	BasePriceCents uint32
	MaxCapacity    uint32
	AvailableSeats uint32
	Status         EventStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CanPurchaseTickets reports whether seats for this event may currently be
// committed. It is the single source of truth for the spec's purchasability
// predicate: status SALES_OPEN, inventory remaining, and the event has not
// already started.
func (e Event) CanPurchaseTickets(now time.Time) bool {
	return e.Status == EventSalesOpen && e.AvailableSeats > 0 && now.Before(e.EventDate)
}
