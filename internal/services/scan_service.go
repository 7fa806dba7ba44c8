package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"robotique/eventmanager/internal/constants"
	"robotique/eventmanager/internal/db/repositories"
	"robotique/eventmanager/internal/logging"
	"robotique/eventmanager/internal/token"

	"gorm.io/gorm"
)

// ScanOutcome is the terminal result of one scan attempt. Code is ""
// on success and one of the stable constants.Code* values otherwise.
type ScanOutcome struct {
	OK      bool
	Code    string
	EventID string
	UserID  string

	// Set on success
	CheckedAt *time.Time

	// Set on window rejections for client display
	Now   *time.Time
	Start *time.Time
	End   *time.Time

	// Set on overlap penalties
	PenaltyLevel *int
}

// ScanService runs the scan-time validation pipeline: decode the
// token, resolve the pair, then ban check, window check, overlap
// check and attendance creation in order, short-circuiting on the
// first failure. Everything after token decode runs inside one
// transaction, so the overlap-penalty-and-reject path and the
// attendance-creation path are each atomic.
type ScanService struct {
	db         *gorm.DB
	codec      *token.Codec
	users      *repositories.UserRepositoryGORM
	events     *repositories.EventRepository
	attendance *repositories.AttendanceRepository
	penalties  *PenaltyService

	// now is swappable for tests
	now func() time.Time
}

func NewScanService(
	db *gorm.DB,
	codec *token.Codec,
	users *repositories.UserRepositoryGORM,
	events *repositories.EventRepository,
	attendance *repositories.AttendanceRepository,
	penalties *PenaltyService,
) *ScanService {
	return &ScanService{
		db:         db,
		codec:      codec,
		users:      users,
		events:     events,
		attendance: attendance,
		penalties:  penalties,
		now:        time.Now,
	}
}

func reject(code string) *ScanOutcome {
	return &ScanOutcome{OK: false, Code: code}
}

// Scan validates a raw token scanned by scannerID and records the
// attendance when every check passes. Each step is terminal; there
// are no retries.
func (s *ScanService) Scan(ctx context.Context, rawToken, scannerID string) (*ScanOutcome, error) {
	pair, err := s.codec.Verify(rawToken)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrTokenExpired):
			return reject(constants.CodeTokenExpired), nil
		default:
			return reject(constants.CodeTokenInvalid), nil
		}
	}

	var outcome *ScanOutcome
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		outcome, txErr = s.scanTx(ctx, tx, pair, scannerID)
		return txErr
	})
	if err != nil {
		return nil, fmt.Errorf("scan transaction failed: %w", err)
	}

	logging.Info("Scan processed",
		"event_id", outcome.EventID,
		"user_id", outcome.UserID,
		"scanner_id", scannerID,
		"ok", outcome.OK,
		"code", outcome.Code,
	)
	return outcome, nil
}

// scanTx runs the pipeline steps after token decode. Rejections are
// returned as outcomes, not errors, so the overlap penalty commits
// while the scan itself is refused.
func (s *ScanService) scanTx(ctx context.Context, tx *gorm.DB, pair *token.Pair, scannerID string) (*ScanOutcome, error) {
	event, err := s.events.WithTx(tx).GetByID(ctx, pair.EventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return reject(constants.CodeNoEvent), nil
		}
		return nil, err
	}

	user, err := s.users.WithTx(tx).GetByID(ctx, pair.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return reject(constants.CodeNoUser), nil
		}
		return nil, err
	}

	base := ScanOutcome{EventID: event.ID, UserID: user.ID}

	if user.IsBanned() {
		out := base
		out.Code = constants.CodeUserBanned
		return &out, nil
	}

	now := s.now()
	if !event.IsRunning(now) {
		out := base
		out.Code = constants.CodeOutsideEventTime
		out.Now = &now
		out.Start = &event.StartTime
		out.End = &event.EndTime
		return &out, nil
	}

	overlap, err := s.attendance.WithTx(tx).HasOverlap(ctx, user.ID, event)
	if err != nil {
		return nil, err
	}

	if overlap {
		// Penalty path: the scan is refused but the penalty and its
		// history record commit with this transaction.
		reason := fmt.Sprintf("Overlapping event scanned (%s)", event.Title)
		updated, err := s.penalties.WithTx(tx).Add(ctx, user.ID, reason, &scannerID)
		if err != nil {
			return nil, err
		}

		out := base
		out.PenaltyLevel = &updated.PenaltyLevel
		if updated.IsBanned() {
			out.Code = constants.CodeBannedOverlaps
		} else {
			out.Code = constants.CodeWarningOverlap
		}
		return &out, nil
	}

	att, err := s.attendance.WithTx(tx).RecordAttendance(ctx, event.ID, user.ID, &scannerID, user.IsBanned())
	if err != nil {
		if errors.Is(err, repositories.ErrAlreadyCheckedIn) {
			out := base
			out.Code = constants.CodeAlreadyCheckedIn
			return &out, nil
		}
		return nil, err
	}

	out := base
	out.OK = true
	out.CheckedAt = &att.CheckedAt
	return &out, nil
}

// CheckStatus reports whether the user is checked in to the event and
// whether they are banned.
func (s *ScanService) CheckStatus(ctx context.Context, eventID, userID string) (checkedIn, banned bool, err error) {
	if _, err = s.events.GetByID(ctx, eventID); err != nil {
		return false, false, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, false, err
	}
	checkedIn, err = s.attendance.IsCheckedIn(ctx, eventID, userID)
	if err != nil {
		return false, false, err
	}
	return checkedIn, user.IsBanned(), nil
}
