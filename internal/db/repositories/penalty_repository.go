package repositories

import (
	"context"
	"fmt"

	models "robotique/eventmanager/internal/models/gorm"

	"gorm.io/gorm"
)

// PenaltyRepository appends to and reads the penalty history. Rows are
// never updated or deleted.
type PenaltyRepository struct {
	db *gorm.DB
}

func NewPenaltyRepository(db *gorm.DB) *PenaltyRepository {
	return &PenaltyRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *PenaltyRepository) WithTx(tx *gorm.DB) *PenaltyRepository {
	return &PenaltyRepository{db: tx}
}

func (r *PenaltyRepository) Append(ctx context.Context, penalty *models.Penalty) error {
	if err := r.db.WithContext(ctx).Create(penalty).Error; err != nil {
		return fmt.Errorf("failed to append penalty record: %w", err)
	}
	return nil
}

// ListByUser returns the user's penalty history, newest first.
func (r *PenaltyRepository) ListByUser(ctx context.Context, userID string) ([]models.Penalty, error) {
	var rows []models.Penalty
	err := r.db.WithContext(ctx).
		Preload("Admin").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list penalties: %w", err)
	}
	return rows, nil
}

// CountByUser returns how many penalty rows the user has accrued.
func (r *PenaltyRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Penalty{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
