package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ticketcore/seatlock/internal/model"
)

// BookingRepo encapsulates database operations for bookings and their seat
// line items.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo given a DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// DB returns the underlying sql.DB so the booking coordinator can open its
// own transactions spanning multiple repositories.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// InsertTx inserts a new booking row and returns its generated ID.
func (r *BookingRepo) InsertTx(ctx context.Context, tx *sql.Tx, b model.Booking) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (user_id, event_id, total_price_cents, status, payment_intent_id, booking_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.UserID, b.EventID, b.TotalPriceCents, string(b.Status), b.PaymentIntentID, b.BookingDate)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// InsertSeatsTx inserts the booking_seats line items for bookingID in a
// single multi-row statement.
func (r *BookingRepo) InsertSeatsTx(ctx context.Context, tx *sql.Tx, bookingID uint64, seats []model.BookingSeat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO booking_seats (booking_id, seat_id, price_at_booking) VALUES `
	args := make([]interface{}, 0, len(seats)*3)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, bookingID, s.SeatID, s.PriceAtBooking)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// UpdateStatusTx transitions a booking's status within tx. timestampCol
// names the column to stamp with now (confirmed_at or cancelled_at); pass
// "" to skip stamping a column.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, bookingID uint64, status model.BookingStatus, timestampCol string, now time.Time) error {
	query := `UPDATE bookings SET status = ?`
	args := []interface{}{string(status)}
	switch timestampCol {
	case "confirmed_at":
		query += `, confirmed_at = ?`
		args = append(args, now)
	case "cancelled_at":
		query += `, cancelled_at = ?`
		args = append(args, now)
	}
	query += ` WHERE id = ?`
	args = append(args, bookingID)
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// SetCancellationReasonTx records why a booking was cancelled.
func (r *BookingRepo) SetCancellationReasonTx(ctx context.Context, tx *sql.Tx, bookingID uint64, reason string) error {
	_, err := tx.ExecContext(ctx, `UPDATE bookings SET cancellation_reason = ? WHERE id = ?`, reason, bookingID)
	return err
}

// GetByIDTx returns a booking and its seat IDs locked FOR UPDATE within tx,
// used by Confirm and Cancel to re-check the current status before
// transitioning it.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT id, user_id, event_id, total_price_cents, status, payment_intent_id, booking_date,
		        confirmed_at, cancelled_at, cancellation_reason
		 FROM bookings WHERE id = ? FOR UPDATE`, id)
	b, err := scanBooking(row)
	if err != nil {
		return nil, err
	}
	seats, err := r.seatsForBookingTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	b.Seats = seats
	return b, nil
}

// GetByID returns a booking and its seats without locking, for read paths.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, event_id, total_price_cents, status, payment_intent_id, booking_date,
		        confirmed_at, cancelled_at, cancellation_reason
		 FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, booking_id, seat_id, price_at_booking FROM booking_seats WHERE booking_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats, err := scanBookingSeats(rows)
	if err != nil {
		return nil, err
	}
	b.Seats = seats
	return b, nil
}

func (r *BookingRepo) seatsForBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64) ([]model.BookingSeat, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, booking_id, seat_id, price_at_booking FROM booking_seats WHERE booking_id = ? FOR UPDATE`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookingSeats(rows)
}

// ListByUser returns every booking placed by userID, most recent first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, event_id, total_price_cents, status, payment_intent_id, booking_date,
		        confirmed_at, cancelled_at, cancellation_reason
		 FROM bookings WHERE user_id = ? ORDER BY booking_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBookingRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*model.Booking, error) {
	b, err := scanBookingRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

func scanBookingRow(row rowScanner) (*model.Booking, error) {
	var b model.Booking
	var status string
	var paymentIntentID sql.NullString
	var confirmedAt, cancelledAt sql.NullTime
	var cancellationReason sql.NullString
	err := row.Scan(&b.ID, &b.UserID, &b.EventID, &b.TotalPriceCents, &status, &paymentIntentID,
		&b.BookingDate, &confirmedAt, &cancelledAt, &cancellationReason)
	if err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	if paymentIntentID.Valid {
		b.PaymentIntentID = &paymentIntentID.String
	}
	if confirmedAt.Valid {
		b.ConfirmedAt = &confirmedAt.Time
	}
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}
	if cancellationReason.Valid {
		b.CancellationReason = &cancellationReason.String
	}
	return &b, nil
}

func scanBookingSeats(rows *sql.Rows) ([]model.BookingSeat, error) {
	var out []model.BookingSeat
	for rows.Next() {
		var s model.BookingSeat
		if err := rows.Scan(&s.ID, &s.BookingID, &s.SeatID, &s.PriceAtBooking); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
