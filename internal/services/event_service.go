package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"robotique/eventmanager/internal/common"
	"robotique/eventmanager/internal/db/repositories"
	"robotique/eventmanager/internal/logging"
	"robotique/eventmanager/internal/models/dtos/responses"
	models "robotique/eventmanager/internal/models/gorm"

	"gorm.io/gorm"
)

var (
	// ErrEventAlreadyProcessed means the no-show sweep already ran (or
	// is running) for the event; the caller lost the processed-flag
	// compare-and-swap.
	ErrEventAlreadyProcessed = errors.New("event penalties already processed")
	// ErrEventEnded rejects attendance mutations after the event
	// window has passed.
	ErrEventEnded = errors.New("event has ended")
	// ErrNotAssigned rejects manual check-in for users outside the
	// event roster.
	ErrNotAssigned = errors.New("user not assigned to event")
	// ErrCapacityExceeded rejects rosters larger than max_attendees.
	ErrCapacityExceeded = errors.New("assignment exceeds max attendees")
)

const eventDetailsCacheTTL = 5 * time.Second

func eventDetailsCacheKey(eventID string) string {
	return "event_details:" + eventID
}

// EventService covers the event-facing collaborator surface: details
// with attendee status, roster assignment, and the end-of-event
// no-show processing shared with the background sweep.
type EventService struct {
	db         *gorm.DB
	events     *repositories.EventRepository
	users      *repositories.UserRepositoryGORM
	attendance *repositories.AttendanceRepository
	penalties  *PenaltyService
	cache      common.CacheInterface

	// now and autoNoShow are swappable for tests; autoNoShow defaults
	// to the penalty engine bound to the sweep transaction.
	now        func() time.Time
	autoNoShow func(ctx context.Context, tx *gorm.DB, event *models.Event) (penaltiesAdded, noShowCount int, err error)
}

func NewEventService(
	db *gorm.DB,
	events *repositories.EventRepository,
	users *repositories.UserRepositoryGORM,
	attendance *repositories.AttendanceRepository,
	penalties *PenaltyService,
	cache common.CacheInterface,
) *EventService {
	s := &EventService{
		db:         db,
		events:     events,
		users:      users,
		attendance: attendance,
		penalties:  penalties,
		cache:      cache,
		now:        time.Now,
	}
	s.autoNoShow = func(ctx context.Context, tx *gorm.DB, event *models.Event) (int, int, error) {
		return s.penalties.WithTx(tx).AutoNoShow(ctx, event)
	}
	return s
}

// ProcessEnded runs the no-show sweep for one event, gated by the
// penalties_processed compare-and-swap. Flag flip and sweep share one
// transaction: a failure rolls both back, leaving the event eligible
// for retry on the next tick. Exactly one of any set of concurrent
// callers observes processed == true.
func (s *EventService) ProcessEnded(ctx context.Context, event *models.Event) (penaltiesAdded, noShowCount int, processed bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		won, txErr := s.events.WithTx(tx).MarkPenaltiesProcessed(ctx, event.ID)
		if txErr != nil {
			return txErr
		}
		if !won {
			return nil
		}
		processed = true

		penaltiesAdded, noShowCount, txErr = s.autoNoShow(ctx, tx, event)
		return txErr
	})
	if err != nil {
		processed = false
		return 0, 0, false, fmt.Errorf("no-show processing for event %s: %w", event.ID, err)
	}
	if processed && s.cache != nil {
		s.cache.Delete(eventDetailsCacheKey(event.ID))
	}
	return penaltiesAdded, noShowCount, processed, nil
}

// EndEventAndPenalize is the foreground "end event now" admin action.
// It races the background sweep on the same flag; the loser gets
// ErrEventAlreadyProcessed.
func (s *EventService) EndEventAndPenalize(ctx context.Context, eventID string) (penaltiesAdded, noShowCount, attendedCount int, err error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return 0, 0, 0, err
	}

	added, noShows, processed, err := s.ProcessEnded(ctx, event)
	if err != nil {
		return 0, 0, 0, err
	}
	if !processed {
		return 0, 0, 0, ErrEventAlreadyProcessed
	}

	attended, err := s.attendance.CountByEvent(ctx, eventID)
	if err != nil {
		return 0, 0, 0, err
	}

	logging.Info("Event ended and penalized",
		"event_id", event.ID,
		"penalties_added", added,
		"no_shows", noShows,
		"attended", attended,
	)
	return added, noShows, int(attended), nil
}

// Details returns the event with its attendee list and check-in state,
// pending first. Reading an ended, unprocessed event triggers the
// inline sweep behind the same CAS gate as the background job.
func (s *EventService) Details(ctx context.Context, eventID string) (*responses.EventDetailsResponse, error) {
	if s.cache != nil {
		if cached, found := s.cache.Get(eventDetailsCacheKey(eventID)); found {
			if resp, ok := cached.(*responses.EventDetailsResponse); ok {
				return resp, nil
			}
		}
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	status := event.StatusAt(now)

	if status == models.EventStatusEnded && !event.PenaltiesProcessed {
		if _, _, processed, err := s.ProcessEnded(ctx, event); err != nil {
			// One bad sweep must not hide the event itself.
			logging.Error("Inline no-show processing failed",
				"event_id", event.ID,
				"error", err.Error(),
			)
		} else if processed {
			event.PenaltiesProcessed = true
		}
	}

	assigned, err := s.events.AssignedUsers(ctx, eventID)
	if err != nil {
		return nil, err
	}
	attendances, err := s.attendance.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	byUser := make(map[string]*models.Attendance, len(attendances))
	for i := range attendances {
		byUser[attendances[i].UserID] = &attendances[i]
	}

	attendees := make([]responses.Attendee, 0, len(assigned))
	for i := range assigned {
		user := &assigned[i]
		a := responses.Attendee{
			UserID:      user.ID,
			Username:    user.Username,
			DisplayName: user.DisplayName,
		}
		if a.DisplayName == "" {
			a.DisplayName = user.Username
		}
		if user.Group != nil {
			name := user.Group.Name
			a.Group = &name
		}
		if att := byUser[user.ID]; att != nil {
			a.IsChecked = true
			a.CheckedAt = &att.CheckedAt
			if att.Scanner != nil {
				scanner := att.Scanner.Username
				a.Scanner = &scanner
			}
		}
		attendees = append(attendees, a)
	}

	// Pending first, then by username
	sort.SliceStable(attendees, func(i, j int) bool {
		if attendees[i].IsChecked != attendees[j].IsChecked {
			return !attendees[i].IsChecked
		}
		return strings.ToLower(attendees[i].Username) < strings.ToLower(attendees[j].Username)
	})

	resp := &responses.EventDetailsResponse{
		OK: true,
		Event: responses.EventInfo{
			ID:                 event.ID,
			Title:              event.Title,
			Description:        event.Description,
			StartTime:          event.StartTime,
			EndTime:            event.EndTime,
			Status:             status,
			PenaltiesProcessed: event.PenaltiesProcessed,
		},
		Attendees: attendees,
	}

	if s.cache != nil {
		s.cache.Set(eventDetailsCacheKey(eventID), resp, eventDetailsCacheTTL)
	}
	return resp, nil
}

// AssignUsers replaces the event roster, bounded by max_attendees.
func (s *EventService) AssignUsers(ctx context.Context, eventID string, userIDs []string) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}

	if event.MaxAttendees != nil && len(userIDs) > *event.MaxAttendees {
		return ErrCapacityExceeded
	}

	users := make([]models.User, 0, len(userIDs))
	for _, id := range userIDs {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		users = append(users, *user)
	}

	if err := s.events.ReplaceAssignments(ctx, event, users); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Delete(eventDetailsCacheKey(eventID))
	}
	return nil
}
