package repository

import (
	"context"

	"github.com/Mnunley1/Renegade-Race-sub001/internal/models"
)

type VehicleRepository struct {
	db DBTX
}

func NewVehicleRepository(db DBTX) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) GetByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	query := `
		SELECT id, owner_id, title, make, model, year, daily_rate, created_at, updated_at
		FROM vehicles
		WHERE id = $1
	`
	var vehicle models.Vehicle
	err := r.db.QueryRow(ctx, query, id).Scan(
		&vehicle.ID,
		&vehicle.OwnerID,
		&vehicle.Title,
		&vehicle.Make,
		&vehicle.Model,
		&vehicle.Year,
		&vehicle.DailyRate,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}
