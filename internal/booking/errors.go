package booking

import "fmt"

// Reason is one of a fixed, stable set of failure codes returned verbatim to
// callers. Handlers map these onto HTTP status codes; nothing internal ever
// retries on the strength of a Reason alone.
type Reason string

const (
	ReasonInvalidRequest    Reason = "INVALID_REQUEST"
	ReasonInvalidLocks      Reason = "INVALID_LOCKS"
	ReasonEventNotFound     Reason = "EVENT_NOT_FOUND"
	ReasonSalesClosed       Reason = "SALES_CLOSED"
	ReasonSeatsNotFound     Reason = "SEATS_NOT_FOUND"
	ReasonSeatsNotAvailable Reason = "SEATS_NOT_AVAILABLE"
	ReasonBookingNotFound   Reason = "BOOKING_NOT_FOUND"
	ReasonInvalidStatus     Reason = "INVALID_STATUS"
	ReasonAlreadyCancelled  Reason = "ALREADY_CANCELLED"
	ReasonSystemError       Reason = "SYSTEM_ERROR"
)

// Error is the typed failure returned by every coordinator operation. Reason
// is the stable code; Err (when present) carries the underlying cause for
// logs and is never surfaced to the caller.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("booking: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("booking: %s", e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

func fail(reason Reason, err error) *Error {
	return &Error{Reason: reason, Err: err}
}
