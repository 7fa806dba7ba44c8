package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	models "robotique/eventmanager/internal/models/gorm"

	"gorm.io/gorm"
)

// ErrEventNotFound is returned when an event id resolves to nothing.
var ErrEventNotFound = errors.New("event not found")

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *EventRepository) WithTx(tx *gorm.DB) *EventRepository {
	return &EventRepository{db: tx}
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	return &event, nil
}

// FindEndedUnprocessed returns events whose window has passed and whose
// no-show sweep has not run yet.
func (r *EventRepository) FindEndedUnprocessed(ctx context.Context, now time.Time) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("end_time < ? AND penalties_processed = ?", now, false).
		Order("end_time ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query ended events: %w", err)
	}
	return events, nil
}

// MarkPenaltiesProcessed flips penalties_processed false->true with
// compare-and-swap semantics. Exactly one of any set of concurrent
// callers gets true; the losers must skip the sweep. The flag is
// monotonic and never reset.
func (r *EventRepository) MarkPenaltiesProcessed(ctx context.Context, eventID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ? AND penalties_processed = ?", eventID, false).
		Update("penalties_processed", true)
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark event processed: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// AssignedUsers returns the users assigned to the event, with their
// groups loaded for display.
func (r *EventRepository) AssignedUsers(ctx context.Context, eventID string) ([]models.User, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Preload("AssignedUsers").
		Preload("AssignedUsers.Group").
		First(&event, "id = ?", eventID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load assigned users: %w", err)
	}
	return event.AssignedUsers, nil
}

// IsAssigned reports whether the user is on the event's roster.
func (r *EventRepository) IsAssigned(ctx context.Context, eventID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("event_assignments").
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}
	return count > 0, nil
}

// ReplaceAssignments sets the event's roster to exactly the given
// users. Capacity against max_attendees is the caller's check.
func (r *EventRepository) ReplaceAssignments(ctx context.Context, event *models.Event, users []models.User) error {
	err := r.db.WithContext(ctx).Model(event).Association("AssignedUsers").Replace(users)
	if err != nil {
		return fmt.Errorf("failed to replace assignments: %w", err)
	}
	return nil
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}
