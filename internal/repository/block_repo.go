package repository

import (
	"context"

	"github.com/Mnunley1/Renegade-Race-sub001/internal/models"
)

type BlockRepository struct {
	db DBTX
}

func NewBlockRepository(db DBTX) *BlockRepository {
	return &BlockRepository{db: db}
}

func (r *BlockRepository) Create(ctx context.Context, blockerID, blockedID int64) (*models.Block, error) {
	query := `
		INSERT INTO blocks (blocker_id, blocked_id)
		VALUES ($1, $2)
		ON CONFLICT (blocker_id, blocked_id)
		DO UPDATE SET created_at = blocks.created_at
		RETURNING id, blocker_id, blocked_id, created_at
	`
	var block models.Block
	err := r.db.QueryRow(ctx, query, blockerID, blockedID).
		Scan(&block.ID, &block.BlockerID, &block.BlockedID, &block.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &block, nil
}

func (r *BlockRepository) Delete(ctx context.Context, blockerID, blockedID int64) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM blocks
		WHERE blocker_id = $1 AND blocked_id = $2
	`, blockerID, blockedID)
	return err
}

// ExistsBetween reports whether either user has blocked the other.
func (r *BlockRepository) ExistsBetween(ctx context.Context, userA, userB int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM blocks
			WHERE (blocker_id = $1 AND blocked_id = $2)
			   OR (blocker_id = $2 AND blocked_id = $1)
		)
	`, userA, userB).Scan(&exists)
	return exists, err
}
