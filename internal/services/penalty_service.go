package services

import (
	"context"
	"errors"
	"fmt"

	"robotique/eventmanager/internal/constants"
	"robotique/eventmanager/internal/db/repositories"
	"robotique/eventmanager/internal/logging"
	models "robotique/eventmanager/internal/models/gorm"

	"gorm.io/gorm"
)

// maxPenaltyRetries bounds the optimistic-concurrency retry loop on a
// user's penalty fields.
const maxPenaltyRetries = 3

var (
	// ErrConcurrentPenaltyUpdate is returned when retries on a user's
	// penalty row are exhausted.
	ErrConcurrentPenaltyUpdate = errors.New("concurrent penalty update, retries exhausted")

	errPenaltyConflict = errors.New("penalty level changed underneath")
)

// PenaltyService is the penalty engine. Every mutation is one atomic
// unit: compute new level, derive status and active flag, persist the
// user, append exactly one history record. Concurrent mutators on the
// same user serialize through compare-and-swap on penalty_level.
type PenaltyService struct {
	db         *gorm.DB
	users      *repositories.UserRepositoryGORM
	penalties  *repositories.PenaltyRepository
	events     *repositories.EventRepository
	attendance *repositories.AttendanceRepository
}

func NewPenaltyService(
	db *gorm.DB,
	users *repositories.UserRepositoryGORM,
	penalties *repositories.PenaltyRepository,
	events *repositories.EventRepository,
	attendance *repositories.AttendanceRepository,
) *PenaltyService {
	return &PenaltyService{
		db:         db,
		users:      users,
		penalties:  penalties,
		events:     events,
		attendance: attendance,
	}
}

// WithTx returns a service bound to the given transaction.
func (s *PenaltyService) WithTx(tx *gorm.DB) *PenaltyService {
	return &PenaltyService{
		db:         tx,
		users:      s.users.WithTx(tx),
		penalties:  s.penalties.WithTx(tx),
		events:     s.events.WithTx(tx),
		attendance: s.attendance.WithTx(tx),
	}
}

// Add raises the user's penalty level by one.
func (s *PenaltyService) Add(ctx context.Context, userID, reason string, adminID *string) (*models.User, error) {
	if reason == "" {
		reason = "No reason given"
	}
	return s.mutate(ctx, userID, constants.PenaltyTypeAdd, reason, adminID, func(level int) int {
		return level + 1
	})
}

// Reduce lowers the user's penalty level by one, floored at zero.
func (s *PenaltyService) Reduce(ctx context.Context, userID, reason string, adminID *string) (*models.User, error) {
	return s.mutate(ctx, userID, constants.PenaltyTypeReduce, "(REDUCED) "+reason, adminID, func(level int) int {
		if level <= 0 {
			return 0
		}
		return level - 1
	})
}

// Pardon resets the user to a clean slate: level 0, status ok, active.
func (s *PenaltyService) Pardon(ctx context.Context, userID, reason string, adminID *string) (*models.User, error) {
	return s.mutate(ctx, userID, constants.PenaltyTypePardon, "(PARDON) "+reason, adminID, func(int) int {
		return 0
	})
}

// Ban forces the user to banned standing. The level jumps to the ban
// threshold if it was below, so level and status stay consistent with
// the derivation table afterwards.
func (s *PenaltyService) Ban(ctx context.Context, userID, reason string, adminID *string) (*models.User, error) {
	return s.mutate(ctx, userID, constants.PenaltyTypeBan, "(BAN) "+reason, adminID, func(level int) int {
		if level < constants.BanThreshold {
			return constants.BanThreshold
		}
		return level
	})
}

// AutoNoShow penalizes every user assigned to the event without an
// attendance record, skipping users already banned and the SYSTEM
// identity. Penalties are issued by the SYSTEM identity. Returns
// (penalties added, total no-shows).
//
// The engine does not deduplicate across invocations: calling it twice
// for the same event double-penalizes. Single invocation per event is
// the caller's contract, enforced by the penalties_processed
// compare-and-swap.
func (s *PenaltyService) AutoNoShow(ctx context.Context, event *models.Event) (int, int, error) {
	system, err := s.users.GetOrCreateSystemUser(ctx)
	if err != nil {
		return 0, 0, err
	}

	assigned, err := s.events.AssignedUsers(ctx, event.ID)
	if err != nil {
		return 0, 0, err
	}

	checkedIn, err := s.attendance.CheckedInUserIDs(ctx, event.ID)
	if err != nil {
		return 0, 0, err
	}

	reason := fmt.Sprintf("Failed to check in during the event (%s)", event.Title)

	penaltiesAdded := 0
	noShowCount := 0
	for i := range assigned {
		user := &assigned[i]
		if checkedIn[user.ID] {
			continue
		}
		noShowCount++

		if user.IsBanned() {
			continue
		}
		if user.IsSystem() {
			continue
		}

		if _, err := s.Add(ctx, user.ID, reason, &system.ID); err != nil {
			return penaltiesAdded, noShowCount, fmt.Errorf("no-show penalty for user %s: %w", user.ID, err)
		}
		penaltiesAdded++
	}

	return penaltiesAdded, noShowCount, nil
}

// History returns the user's penalty records, newest first.
func (s *PenaltyService) History(ctx context.Context, userID string) ([]models.Penalty, error) {
	return s.penalties.ListByUser(ctx, userID)
}

// CountForUser returns the total number of penalty records the user
// has accrued.
func (s *PenaltyService) CountForUser(ctx context.Context, userID string) (int64, error) {
	return s.penalties.CountByUser(ctx, userID)
}

func (s *PenaltyService) mutate(ctx context.Context, userID string, typ constants.PenaltyType, reason string, adminID *string, compute func(current int) int) (*models.User, error) {
	for attempt := 0; attempt < maxPenaltyRetries; attempt++ {
		var updated *models.User

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			users := s.users.WithTx(tx)

			user, err := users.GetByID(ctx, userID)
			if err != nil {
				return err
			}

			prev := user.PenaltyLevel
			user.SetPenaltyLevel(compute(prev))

			ok, err := users.CompareAndSetPenalty(ctx, user, prev)
			if err != nil {
				return err
			}
			if !ok {
				return errPenaltyConflict
			}

			record := &models.Penalty{
				UserID:        user.ID,
				Type:          typ,
				Reason:        reason,
				AdminID:       adminID,
				PreviousLevel: prev,
			}
			if err := s.penalties.WithTx(tx).Append(ctx, record); err != nil {
				return err
			}

			updated = user
			return nil
		})

		if errors.Is(err, errPenaltyConflict) {
			logging.Debug("Penalty CAS conflict, retrying",
				"user_id", userID,
				"attempt", attempt+1,
			)
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}

	return nil, fmt.Errorf("penalty %s for user %s: %w", typ, userID, ErrConcurrentPenaltyUpdate)
}
