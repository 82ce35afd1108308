package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ticketcore/seatlock/internal/model"
)

// EventRepo encapsulates database operations for events. An event owns an
// available_seats counter that the booking coordinator decrements inside the
// same transaction that inserts a booking, so the counter and the seat rows
// never drift apart.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo given a DB handle.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// GetByID returns the event with the given ID, or ErrNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	return scanEvent(r.db.QueryRowContext(ctx, eventSelectQuery+" WHERE id = ?", id))
}

// FindForUpdateTx returns the event row locked FOR UPDATE within tx, so that
// concurrent commits against the same event serialize on this row.
func (r *EventRepo) FindForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Event, error) {
	return scanEvent(tx.QueryRowContext(ctx, eventSelectQuery+" WHERE id = ? FOR UPDATE", id))
}

const eventSelectQuery = `SELECT id, venue_id, event_date, base_price_cents, max_capacity,
	available_seats, status, created_at, updated_at FROM events`

func scanEvent(row *sql.Row) (*model.Event, error) {
	var e model.Event
	var status string
	err := row.Scan(&e.ID, &e.VenueID, &e.EventDate, &e.BasePriceCents, &e.MaxCapacity,
		&e.AvailableSeats, &status, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.Status = model.EventStatus(status)
	return &e, nil
}

// DecrementAvailabilityTx atomically reduces available_seats by n, guarded
// by available_seats >= n so the counter can never go negative even under
// concurrent commits against the same event. It returns ErrNoRows when the
// guard rejects the update (not enough seats left). Reaching this path at
// all means the per-seat status check a few statements earlier disagreed
// with the event's own counter — an invariant violation the coordinator
// treats as the counter having closed out from under the request, not as an
// ordinary seat conflict, and logs at WARN accordingly.
func (r *EventRepo) DecrementAvailabilityTx(ctx context.Context, tx *sql.Tx, id uint64, n uint32) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE events SET available_seats = available_seats - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND available_seats >= ?`,
		n, id, n)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoRows
	}
	return nil
}

// RestoreAvailabilityTx reverses a prior decrement, used by Cancel to put
// canceled seats back into circulation.
func (r *EventRepo) RestoreAvailabilityTx(ctx context.Context, tx *sql.Tx, id uint64, n uint32) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE events SET available_seats = available_seats + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		n, id)
	return err
}
