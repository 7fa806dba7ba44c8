package repositories

import (
	"context"
	"errors"
	"fmt"

	"robotique/eventmanager/internal/constants"
	models "robotique/eventmanager/internal/models/gorm"

	"gorm.io/gorm"
)

// ErrUserNotFound is returned when a user id resolves to nothing.
var ErrUserNotFound = errors.New("user not found")

type UserRepositoryGORM struct {
	db *gorm.DB
}

func NewUserRepositoryGORM(db *gorm.DB) *UserRepositoryGORM {
	return &UserRepositoryGORM{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *UserRepositoryGORM) WithTx(tx *gorm.DB) *UserRepositoryGORM {
	return &UserRepositoryGORM{db: tx}
}

func (r *UserRepositoryGORM) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (r *UserRepositoryGORM) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// GetOrCreateSystemUser returns the designated SYSTEM identity, the
// non-human actor recorded on automatic penalties.
func (r *UserRepositoryGORM) GetOrCreateSystemUser(ctx context.Context) (*models.User, error) {
	user := models.User{
		Username:    constants.SystemUsername,
		DisplayName: "SYSTEM",
		Role:        constants.RoleCore,
	}
	err := r.db.WithContext(ctx).
		Where("username = ?", constants.SystemUsername).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get or create system user: %w", err)
	}
	return &user, nil
}

// CompareAndSetPenalty persists the user's penalty fields only if the
// stored level still equals prevLevel. Returns false when a concurrent
// mutation won the race; the caller re-reads and retries so level
// changes are never lost.
func (r *UserRepositoryGORM) CompareAndSetPenalty(ctx context.Context, user *models.User, prevLevel int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND penalty_level = ?", user.ID, prevLevel).
		Updates(map[string]interface{}{
			"penalty_level":    user.PenaltyLevel,
			"penalty_status":   user.PenaltyStatus,
			"is_active_member": user.IsActiveMember,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to update penalty state: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *UserRepositoryGORM) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
