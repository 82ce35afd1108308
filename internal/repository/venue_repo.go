package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ticketcore/seatlock/internal/model"
)

// VenueRepo encapsulates database operations for venues.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo constructs a VenueRepo given a DB handle.
func NewVenueRepo(db *sql.DB) *VenueRepo {
	return &VenueRepo{db: db}
}

// GetByID returns the venue with the given ID, or ErrNotFound.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (*model.Venue, error) {
	var v model.Venue
	err := r.db.QueryRowContext(ctx, `SELECT id, name, created_at, updated_at FROM venues WHERE id = ?`, id).
		Scan(&v.ID, &v.Name, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
