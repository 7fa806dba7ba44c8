package services

import (
	"context"
	"time"

	"robotique/eventmanager/internal/common"
	"robotique/eventmanager/internal/db/repositories"
	models "robotique/eventmanager/internal/models/gorm"

	"gorm.io/gorm"
)

// CheckinService covers the non-scan attendance paths: manual single
// check-in, undo, and bulk check-in. None of them are allowed once the
// event has ended; attendance of an ended event is history, not state.
type CheckinService struct {
	db         *gorm.DB
	events     *repositories.EventRepository
	users      *repositories.UserRepositoryGORM
	attendance *repositories.AttendanceRepository
	cache      common.CacheInterface

	// now is swappable for tests
	now func() time.Time
}

func NewCheckinService(
	db *gorm.DB,
	events *repositories.EventRepository,
	users *repositories.UserRepositoryGORM,
	attendance *repositories.AttendanceRepository,
	cache common.CacheInterface,
) *CheckinService {
	return &CheckinService{
		db:         db,
		events:     events,
		users:      users,
		attendance: attendance,
		cache:      cache,
		now:        time.Now,
	}
}

func (s *CheckinService) invalidate(eventID string) {
	if s.cache != nil {
		s.cache.Delete(eventDetailsCacheKey(eventID))
	}
}

// ManualCheckin records attendance for an assigned user without a
// token, on behalf of scannerID (nil = system/self-service).
func (s *CheckinService) ManualCheckin(ctx context.Context, eventID, userID string, scannerID *string) (*models.Attendance, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.HasEnded(s.now()) {
		return nil, ErrEventEnded
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	assigned, err := s.events.IsAssigned(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if !assigned {
		return nil, ErrNotAssigned
	}

	att, err := s.attendance.RecordAttendance(ctx, eventID, userID, scannerID, user.IsBanned())
	if err != nil {
		return nil, err
	}
	s.invalidate(eventID)
	return att, nil
}

// UndoCheckin deletes the attendance row. Refused once the event has
// ended.
func (s *CheckinService) UndoCheckin(ctx context.Context, eventID, userID string) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.HasEnded(s.now()) {
		return ErrEventEnded
	}

	if err := s.attendance.RemoveAttendance(ctx, eventID, userID); err != nil {
		return err
	}
	s.invalidate(eventID)
	return nil
}

// BulkCheckin records attendance for several users at once, skipping
// unknown, unassigned and already-checked users. Returns how many rows
// were created.
func (s *CheckinService) BulkCheckin(ctx context.Context, eventID string, userIDs []string, scannerID *string) (int, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if event.HasEnded(s.now()) {
		return 0, ErrEventEnded
	}

	count := 0
	for _, userID := range userIDs {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			continue
		}
		assigned, err := s.events.IsAssigned(ctx, eventID, userID)
		if err != nil || !assigned {
			continue
		}
		if _, err := s.attendance.RecordAttendance(ctx, eventID, userID, scannerID, user.IsBanned()); err != nil {
			continue
		}
		count++
	}
	if count > 0 {
		s.invalidate(eventID)
	}
	return count, nil
}
