package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/ticketcore/seatlock/internal/model"
)

// SeatRepo encapsulates database operations for seats.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo given a DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// ListByVenue returns every seat belonging to venueID, ordered by section,
// row and number, for the advisory availability listing.
func (r *SeatRepo) ListByVenue(ctx context.Context, venueID uint64) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, venue_id, section, row_label, number, type, status, price_modifier
		 FROM seats WHERE venue_id = ? ORDER BY section, row_label, number`, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSeats(rows)
}

// FindForUpdateTx returns the seats identified by seatIDs, locked FOR UPDATE,
// in ascending ID order. Every caller that locks more than one seat within a
// transaction must go through this method: it sorts a copy of seatIDs before
// locking (the coordinator passes them deduplicated, in the caller's order),
// which is what makes two overlapping bookings acquire their row locks in the
// same global order and never deadlock against each other.
func (r *SeatRepo) FindForUpdateTx(ctx context.Context, tx *sql.Tx, seatIDs []uint64) ([]model.Seat, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}
	sorted := append([]uint64(nil), seatIDs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	placeholders := make([]string, len(sorted))
	args := make([]interface{}, len(sorted))
	for i, id := range sorted {
		placeholders[i] = "?"
		args[i] = id
	}
	query := `SELECT id, venue_id, section, row_label, number, type, status, price_modifier
	          FROM seats WHERE id IN (` + strings.Join(placeholders, ",") + `)
	          ORDER BY id FOR UPDATE`
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSeats(rows)
}

func scanSeats(rows *sql.Rows) ([]model.Seat, error) {
	var out []model.Seat
	for rows.Next() {
		var s model.Seat
		var status string
		if err := rows.Scan(&s.ID, &s.VenueID, &s.Section, &s.Row, &s.Number, &s.Type, &status, &s.PriceModifier); err != nil {
			return nil, err
		}
		s.Status = model.SeatStatus(status)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatusBatchTx sets status for every seat in seatIDs within tx.
func (r *SeatRepo) UpdateStatusBatchTx(ctx context.Context, tx *sql.Tx, seatIDs []uint64, status model.SeatStatus) error {
	if len(seatIDs) == 0 {
		return nil
	}
	placeholders := make([]string, len(seatIDs))
	args := make([]interface{}, 0, len(seatIDs)+1)
	args = append(args, string(status))
	for i, id := range seatIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}
	query := `UPDATE seats SET status = ? WHERE id IN (` + strings.Join(placeholders, ",") + `)`
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}
