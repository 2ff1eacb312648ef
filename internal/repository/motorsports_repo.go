package repository

import (
	"context"

	"github.com/Mnunley1/Renegade-Race-sub001/internal/models"
)

type TeamRepository struct {
	db DBTX
}

func NewTeamRepository(db DBTX) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	query := `
		SELECT id, name, owner_id, created_at
		FROM teams
		WHERE id = $1
	`
	var team models.Team
	err := r.db.QueryRow(ctx, query, id).
		Scan(&team.ID, &team.Name, &team.OwnerID, &team.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

type DriverProfileRepository struct {
	db DBTX
}

func NewDriverProfileRepository(db DBTX) *DriverProfileRepository {
	return &DriverProfileRepository{db: db}
}

func (r *DriverProfileRepository) GetByID(ctx context.Context, id int64) (*models.DriverProfile, error) {
	query := `
		SELECT id, user_id, display_name, discipline, created_at
		FROM driver_profiles
		WHERE id = $1
	`
	var profile models.DriverProfile
	err := r.db.QueryRow(ctx, query, id).
		Scan(&profile.ID, &profile.UserID, &profile.DisplayName, &profile.Discipline, &profile.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
