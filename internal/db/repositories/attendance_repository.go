package repositories

import (
	"context"
	"errors"
	"fmt"

	models "robotique/eventmanager/internal/models/gorm"

	"gorm.io/gorm"
)

var (
	// ErrAlreadyCheckedIn is returned when an attendance row already
	// exists for the (event, user) pair.
	ErrAlreadyCheckedIn = errors.New("user already checked in")
	// ErrAttendanceNotFound is returned by RemoveAttendance when there
	// is nothing to undo.
	ErrAttendanceNotFound = errors.New("attendance record not found")
)

// AttendanceRepository is the ledger of check-ins: at most one row per
// (event, user), enforced by the composite unique index. Concurrent
// duplicate scans resolve to exactly one created row; all other callers
// observe ErrAlreadyCheckedIn.
type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *AttendanceRepository) WithTx(tx *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: tx}
}

// RecordAttendance atomically creates the attendance row for the pair.
// The insert races on the unique index, not on a prior existence check,
// so two concurrent scans can never both succeed.
func (r *AttendanceRepository) RecordAttendance(ctx context.Context, eventID, userID string, scannerID *string, bannedSnapshot bool) (*models.Attendance, error) {
	att := &models.Attendance{
		EventID:        eventID,
		UserID:         userID,
		ScannerID:      scannerID,
		BannedSnapshot: bannedSnapshot,
	}

	if err := r.db.WithContext(ctx).Create(att).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, fmt.Errorf("failed to record attendance: %w", err)
	}
	return att, nil
}

// HasOverlap reports whether the user holds an attendance for any other
// event whose [start, end] window intersects this event's window,
// bounds inclusive. This is a conflict-of-commitment check, not a
// capacity check.
func (r *AttendanceRepository) HasOverlap(ctx context.Context, userID string, event *models.Event) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Attendance{}).
		Joins("JOIN events ON events.id = attendances.event_id").
		Where("attendances.user_id = ? AND attendances.event_id <> ?", userID, event.ID).
		Where("events.start_time <= ? AND events.end_time >= ?", event.EndTime, event.StartTime).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping attendance: %w", err)
	}
	return count > 0, nil
}

func (r *AttendanceRepository) IsCheckedIn(ctx context.Context, eventID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Attendance{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check attendance: %w", err)
	}
	return count > 0, nil
}

// RemoveAttendance deletes the row for the pair. Callers enforce the
// no-undo-after-event-end rule.
func (r *AttendanceRepository) RemoveAttendance(ctx context.Context, eventID, userID string) error {
	res := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&models.Attendance{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove attendance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAttendanceNotFound
	}
	return nil
}

// ListByEvent returns the event's attendance rows with scanners loaded.
func (r *AttendanceRepository) ListByEvent(ctx context.Context, eventID string) ([]models.Attendance, error) {
	var rows []models.Attendance
	err := r.db.WithContext(ctx).
		Preload("Scanner").
		Where("event_id = ?", eventID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return rows, nil
}

// CheckedInUserIDs returns the set of user ids holding an attendance
// for the event.
func (r *AttendanceRepository) CheckedInUserIDs(ctx context.Context, eventID string) (map[string]bool, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Attendance{}).
		Where("event_id = ?", eventID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list checked-in users: %w", err)
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// CountByEvent returns the number of attendance rows for the event.
func (r *AttendanceRepository) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Attendance{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count, err
}
