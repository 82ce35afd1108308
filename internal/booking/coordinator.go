// Package booking implements the transactional commit pipeline (component
// C): turning a set of seat locks the caller already holds into a durable
// booking row, and later confirming or cancelling it. It is grounded on the
// row-locking, commit-guarded transaction shape of
// handler.CustomerHandler.ConfirmSeats, generalized from a fixed
// show/seat_holds schema to the event/seat/lock-registry model this project
// uses, and built as a plain constructor-injected type rather than an Echo
// handler so it carries no HTTP dependency.
package booking

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/ticketcore/seatlock/internal/invalidate"
	"github.com/ticketcore/seatlock/internal/lock"
	"github.com/ticketcore/seatlock/internal/model"
	"github.com/ticketcore/seatlock/internal/money"
	"github.com/ticketcore/seatlock/internal/repository"
)

// SeatLock is one (seat, lock) pair the caller claims to hold when
// requesting a Commit. The coordinator re-validates every one of them
// against the lock registry before touching the database.
type SeatLock struct {
	SeatID uint64
	LockID string
}

// Coordinator is the booking commit pipeline. All dependencies are
// constructor-injected; there is no package-level state and no service
// locator, so a test can assemble one from a sqlmock *sql.DB and a miniredis
// lock.Client with no other wiring.
type Coordinator struct {
	events   *repository.EventRepo
	seats    *repository.SeatRepo
	bookings *repository.BookingRepo
	locks    *lock.Client
	notify   invalidate.Hook
}

// New constructs a Coordinator. notify may be invalidate.NoopHook{} when no
// broker is configured.
func New(events *repository.EventRepo, seats *repository.SeatRepo, bookings *repository.BookingRepo, locks *lock.Client, notify invalidate.Hook) *Coordinator {
	if notify == nil {
		notify = invalidate.NoopHook{}
	}
	return &Coordinator{events: events, seats: seats, bookings: bookings, locks: locks, notify: notify}
}

// Commit turns a caller's held seat locks into a durable, PENDING booking.
// The sequence, in order:
//  1. reject an empty or duplicate-seat request (INVALID_REQUEST)
//  2. pre-validate every lock against the registry, outside the transaction
//     (INVALID_LOCKS) — an optimisation that fails fast before opening a tx
//  3. open a transaction and lock the event row FOR UPDATE
//  4. check the event exists and is currently purchasable (EVENT_NOT_FOUND / SALES_CLOSED)
//  5. lock the requested seats FOR UPDATE in ascending ID order (SEATS_NOT_FOUND)
//  6. check every seat is AVAILABLE (SEATS_NOT_AVAILABLE)
//  7. re-validate every lock again, inside the transaction (INVALID_LOCKS) —
//     the authoritative check, narrowing the race window between a
//     registry read and the commit to the transaction's duration
//  8. price the seats and banker's-round the total once, at the sum
//  9. conditionally decrement the event's available_seats counter; zero
//     rows affected here means capacity and seat status have drifted out
//     of sync after every earlier check passed, an invariant violation
//     logged at WARN and surfaced as SALES_CLOSED, not SEATS_NOT_AVAILABLE
//  10. insert the booking (with payment_intent_id carried through verbatim)
//      and its booking_seats rows, mark the seats BOOKED
//  11. commit, then best-effort release the locks and fire the invalidation hook
//
// Locking seats in ascending ID order, regardless of the order the caller
// listed them in, is what lets two overlapping bookings (seats {1,2} and
// {2,3}) serialize on seat 2 instead of deadlocking against each other.
func (co *Coordinator) Commit(ctx context.Context, eventID, userID uint64, claims []SeatLock, paymentIntentID *string) (*model.Booking, error) {
	if len(claims) == 0 {
		return nil, fail(ReasonInvalidRequest, errors.New("no seats requested"))
	}
	seatIDs := make([]uint64, 0, len(claims))
	seen := make(map[uint64]struct{}, len(claims))
	for _, cl := range claims {
		if _, dup := seen[cl.SeatID]; dup {
			return nil, fail(ReasonInvalidRequest, errors.New("duplicate seat in request"))
		}
		seen[cl.SeatID] = struct{}{}
		seatIDs = append(seatIDs, cl.SeatID)
	}

	if err := co.validateLocks(ctx, claims, userID); err != nil {
		return nil, err
	}

	db := co.bookings.DB()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fail(ReasonSystemError, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	event, err := co.events.FindForUpdateTx(ctx, tx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fail(ReasonEventNotFound, nil)
		}
		return nil, fail(ReasonSystemError, err)
	}
	if !event.CanPurchaseTickets(time.Now().UTC()) {
		return nil, fail(ReasonSalesClosed, nil)
	}

	seats, err := co.seats.FindForUpdateTx(ctx, tx, seatIDs)
	if err != nil {
		return nil, fail(ReasonSystemError, err)
	}
	if len(seats) != len(seatIDs) {
		return nil, fail(ReasonSeatsNotFound, nil)
	}
	bySeat := make(map[uint64]model.Seat, len(seats))
	for _, s := range seats {
		if s.VenueID != event.VenueID {
			return nil, fail(ReasonSeatsNotFound, nil)
		}
		bySeat[s.ID] = s
	}
	for _, id := range seatIDs {
		if bySeat[id].Status != model.SeatAvailable {
			return nil, fail(ReasonSeatsNotAvailable, nil)
		}
	}

	// Authoritative re-check: step 2's pre-validation ran before the
	// transaction opened and before any seat was locked, so it only narrows
	// the race window down to "between then and now". Re-querying the
	// registry here, with the seat rows already held FOR UPDATE, narrows it
	// further to the transaction's own duration.
	if err := co.validateLocks(ctx, claims, userID); err != nil {
		return nil, err
	}

	prices := make([]float64, len(seatIDs))
	lineItems := make([]model.BookingSeat, len(seatIDs))
	for i, id := range seatIDs {
		price := money.SeatPrice(event.BasePriceCents, bySeat[id].PriceModifier)
		prices[i] = price
		lineItems[i] = model.BookingSeat{SeatID: id, PriceAtBooking: int64(price)}
	}
	total := money.Sum(prices)

	if err := co.events.DecrementAvailabilityTx(ctx, tx, eventID, uint32(len(seatIDs))); err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			// Every earlier check (event purchasable, seats AVAILABLE)
			// passed, so a rejected conditional decrement here means the
			// event's available_seats counter has drifted out of sync
			// with seat status under us — a configuration/invariant
			// violation, not an ordinary sold-out race.
			log.Printf("warn: booking: inventory drift on event %d: conditional decrement matched no rows after all prior checks passed", eventID)
			return nil, fail(ReasonSalesClosed, err)
		}
		return nil, fail(ReasonSystemError, err)
	}

	now := time.Now().UTC()
	bookingID, err := co.bookings.InsertTx(ctx, tx, model.Booking{
		UserID:          userID,
		EventID:         eventID,
		TotalPriceCents: total,
		Status:          model.BookingPending,
		PaymentIntentID: paymentIntentID,
		BookingDate:     now,
	})
	if err != nil {
		return nil, fail(ReasonSystemError, err)
	}
	for i := range lineItems {
		lineItems[i].BookingID = bookingID
	}
	if err := co.bookings.InsertSeatsTx(ctx, tx, bookingID, lineItems); err != nil {
		return nil, fail(ReasonSystemError, err)
	}
	if err := co.seats.UpdateStatusBatchTx(ctx, tx, seatIDs, model.SeatBooked); err != nil {
		return nil, fail(ReasonSystemError, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fail(ReasonSystemError, err)
	}
	committed = true

	co.releaseLocks(ctx, claims, userID)
	co.notify.Publish(ctx, invalidate.SeatAvailabilityChanged{
		EventID: eventID, SeatIDs: seatIDs, Reason: "booked", ChangedAt: now,
	})

	return &model.Booking{
		ID: bookingID, UserID: userID, EventID: eventID, TotalPriceCents: total,
		Status: model.BookingPending, PaymentIntentID: paymentIntentID, BookingDate: now, Seats: lineItems,
	}, nil
}

// validateLocks re-checks every claim against the lock registry, used both
// as Commit's pre-validation (outside the transaction) and its authoritative
// re-validation (inside it, after the seat rows are locked).
func (co *Coordinator) validateLocks(ctx context.Context, claims []SeatLock, userID uint64) error {
	for _, cl := range claims {
		ok, err := co.locks.Validate(ctx, cl.SeatID, userID, cl.LockID)
		if err != nil {
			return fail(ReasonSystemError, err)
		}
		if !ok {
			return fail(ReasonInvalidLocks, nil)
		}
	}
	return nil
}

// Confirm transitions a PENDING booking with a matching payment_intent_id to
// CONFIRMED, stamping ConfirmedAt. It re-locks the booking row FOR UPDATE so
// a concurrent Cancel cannot race it. A status other than PENDING or a
// payment_intent_id that doesn't match the one recorded at Commit both fail
// with INVALID_STATUS.
func (co *Coordinator) Confirm(ctx context.Context, bookingID uint64, paymentIntentID string) (*model.Booking, error) {
	b, err := co.transitionBooking(ctx, bookingID, func(b *model.Booking) error {
		if b.Status != model.BookingPending {
			return fail(ReasonInvalidStatus, nil)
		}
		if b.PaymentIntentID == nil || *b.PaymentIntentID != paymentIntentID {
			return fail(ReasonInvalidStatus, errors.New("payment_intent_id does not match booking"))
		}
		return nil
	}, model.BookingConfirmed, "confirmed_at")
	if err != nil {
		return nil, err
	}
	co.notify.Publish(ctx, invalidate.SeatAvailabilityChanged{
		EventID: b.EventID, SeatIDs: seatIDsOf(b), Reason: "confirmed", ChangedAt: time.Now().UTC(),
	})
	return b, nil
}

// Cancel transitions a booking to CANCELLED, restores the event's
// available_seats counter and frees the affected seats back to AVAILABLE.
// Cancelling an already-cancelled booking returns ALREADY_CANCELLED rather
// than silently succeeding, so a caller can tell a duplicate request from a
// fresh one.
func (co *Coordinator) Cancel(ctx context.Context, bookingID uint64, reason string) (*model.Booking, error) {
	db := co.bookings.DB()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fail(ReasonSystemError, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := co.bookings.GetByIDTx(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fail(ReasonBookingNotFound, nil)
		}
		return nil, fail(ReasonSystemError, err)
	}
	if b.Status == model.BookingCancelled {
		return nil, fail(ReasonAlreadyCancelled, nil)
	}

	now := time.Now().UTC()
	if err := co.bookings.UpdateStatusTx(ctx, tx, bookingID, model.BookingCancelled, "cancelled_at", now); err != nil {
		return nil, fail(ReasonSystemError, err)
	}
	if reason != "" {
		if err := co.bookings.SetCancellationReasonTx(ctx, tx, bookingID, reason); err != nil {
			return nil, fail(ReasonSystemError, err)
		}
	}
	seatIDs := seatIDsOf(b)
	if err := co.seats.UpdateStatusBatchTx(ctx, tx, seatIDs, model.SeatAvailable); err != nil {
		return nil, fail(ReasonSystemError, err)
	}
	if err := co.events.RestoreAvailabilityTx(ctx, tx, b.EventID, uint32(len(seatIDs))); err != nil {
		return nil, fail(ReasonSystemError, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fail(ReasonSystemError, err)
	}
	committed = true

	b.Status = model.BookingCancelled
	b.CancelledAt = &now
	co.notify.Publish(ctx, invalidate.SeatAvailabilityChanged{
		EventID: b.EventID, SeatIDs: seatIDs, Reason: "cancelled", ChangedAt: now,
	})
	return b, nil
}

func (co *Coordinator) transitionBooking(ctx context.Context, bookingID uint64, guard func(*model.Booking) error, newStatus model.BookingStatus, timestampCol string) (*model.Booking, error) {
	db := co.bookings.DB()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fail(ReasonSystemError, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := co.bookings.GetByIDTx(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fail(ReasonBookingNotFound, nil)
		}
		return nil, fail(ReasonSystemError, err)
	}
	if err := guard(b); err != nil {
		var be *Error
		if errors.As(err, &be) {
			return nil, be
		}
		return nil, fail(ReasonSystemError, err)
	}

	now := time.Now().UTC()
	if err := co.bookings.UpdateStatusTx(ctx, tx, bookingID, newStatus, timestampCol, now); err != nil {
		return nil, fail(ReasonSystemError, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fail(ReasonSystemError, err)
	}
	committed = true

	b.Status = newStatus
	switch timestampCol {
	case "confirmed_at":
		b.ConfirmedAt = &now
	case "cancelled_at":
		b.CancelledAt = &now
	}
	return b, nil
}

// releaseLocks best-effort releases every lock in claims. A release failure
// here (the lease already expired, or the registry is briefly unreachable)
// is not fatal: the booking has already committed, and an unreleased lock
// only costs the user the rest of its TTL before the seat frees itself.
func (co *Coordinator) releaseLocks(ctx context.Context, claims []SeatLock, userID uint64) {
	for _, cl := range claims {
		_ = co.locks.Release(ctx, cl.SeatID, userID, cl.LockID)
	}
}

func seatIDsOf(b *model.Booking) []uint64 {
	ids := make([]uint64, len(b.Seats))
	for i, s := range b.Seats {
		ids[i] = s.SeatID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
