package repository

import (
	"context"

	"github.com/Mnunley1/Renegade-Race-sub001/internal/models"
)

type ReservationRepository struct {
	db DBTX
}

func NewReservationRepository(db DBTX) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	query := `
		SELECT id, vehicle_id, renter_id, owner_id, status, starts_at, ends_at, created_at, updated_at
		FROM reservations
		WHERE id = $1
	`
	var reservation models.Reservation
	err := r.db.QueryRow(ctx, query, id).Scan(
		&reservation.ID,
		&reservation.VehicleID,
		&reservation.RenterID,
		&reservation.OwnerID,
		&reservation.Status,
		&reservation.StartsAt,
		&reservation.EndsAt,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}
