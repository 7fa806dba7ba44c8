package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"robotique/eventmanager/internal/db/repositories"
)

var checkinBase = time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)

func TestManualCheckin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice", 0)
	scanner := env.createUser(t, "scanner", 0)
	event := env.createEvent(t, "Workshop", checkinBase, checkinBase.Add(2*time.Hour), user)
	env.fixedNow(checkinBase.Add(time.Hour))

	att, err := env.checkinSvc.ManualCheckin(ctx, event.ID, user.ID, &scanner.ID)
	if err != nil {
		t.Fatalf("ManualCheckin failed: %v", err)
	}
	if att.ScannerID == nil || *att.ScannerID != scanner.ID {
		t.Error("Expected scanner recorded on attendance")
	}

	_, err = env.checkinSvc.ManualCheckin(ctx, event.ID, user.ID, &scanner.ID)
	if !errors.Is(err, repositories.ErrAlreadyCheckedIn) {
		t.Errorf("Expected ErrAlreadyCheckedIn, got %v", err)
	}
}

func TestManualCheckinUnassigned(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "bob", 0)
	event := env.createEvent(t, "Workshop", checkinBase, checkinBase.Add(2*time.Hour))
	env.fixedNow(checkinBase.Add(time.Hour))

	_, err := env.checkinSvc.ManualCheckin(ctx, event.ID, user.ID, nil)
	if !errors.Is(err, ErrNotAssigned) {
		t.Errorf("Expected ErrNotAssigned, got %v", err)
	}
}

func TestManualCheckinEndedEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "carol", 0)
	event := env.createEvent(t, "Workshop", checkinBase, checkinBase.Add(2*time.Hour), user)
	env.fixedNow(checkinBase.Add(3 * time.Hour))

	_, err := env.checkinSvc.ManualCheckin(ctx, event.ID, user.ID, nil)
	if !errors.Is(err, ErrEventEnded) {
		t.Errorf("Expected ErrEventEnded, got %v", err)
	}
}

func TestManualCheckinBannedSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	banned := env.createUser(t, "dave", 3)
	event := env.createEvent(t, "Workshop", checkinBase, checkinBase.Add(2*time.Hour), banned)
	env.fixedNow(checkinBase.Add(time.Hour))

	// Manual check-in is the escape hatch for banned users; the row
	// carries the standing at check-in time.
	att, err := env.checkinSvc.ManualCheckin(ctx, event.ID, banned.ID, nil)
	if err != nil {
		t.Fatalf("ManualCheckin failed: %v", err)
	}
	if !att.BannedSnapshot {
		t.Error("Expected banned_snapshot set")
	}
}

func TestUndoCheckin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "erin", 0)
	event := env.createEvent(t, "Workshop", checkinBase, checkinBase.Add(2*time.Hour), user)
	env.fixedNow(checkinBase.Add(time.Hour))

	if err := env.checkinSvc.UndoCheckin(ctx, event.ID, user.ID); !errors.Is(err, repositories.ErrAttendanceNotFound) {
		t.Errorf("Expected ErrAttendanceNotFound, got %v", err)
	}

	if _, err := env.checkinSvc.ManualCheckin(ctx, event.ID, user.ID, nil); err != nil {
		t.Fatalf("ManualCheckin failed: %v", err)
	}
	if err := env.checkinSvc.UndoCheckin(ctx, event.ID, user.ID); err != nil {
		t.Fatalf("UndoCheckin failed: %v", err)
	}
	if got := env.attendanceCount(t, event.ID); got != 0 {
		t.Errorf("Expected attendance removed, %d rows remain", got)
	}

	// Attendance of an ended event is history.
	env.fixedNow(checkinBase.Add(3 * time.Hour))
	if err := env.checkinSvc.UndoCheckin(ctx, event.ID, user.ID); !errors.Is(err, ErrEventEnded) {
		t.Errorf("Expected ErrEventEnded, got %v", err)
	}
}

func TestBulkCheckin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.createUser(t, "alice", 0)
	b := env.createUser(t, "bob", 0)
	outsider := env.createUser(t, "outsider", 0)
	event := env.createEvent(t, "Workshop", checkinBase, checkinBase.Add(2*time.Hour), a, b)
	env.fixedNow(checkinBase.Add(time.Hour))

	if _, err := env.checkinSvc.ManualCheckin(ctx, event.ID, a.ID, nil); err != nil {
		t.Fatalf("ManualCheckin failed: %v", err)
	}

	// Duplicate, unassigned and unknown ids are skipped, not errors.
	count, err := env.checkinSvc.BulkCheckin(ctx, event.ID, []string{a.ID, b.ID, outsider.ID, "missing-id"}, nil)
	if err != nil {
		t.Fatalf("BulkCheckin failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 new check-in, got %d", count)
	}
	if got := env.attendanceCount(t, event.ID); got != 2 {
		t.Errorf("Expected 2 attendance rows, got %d", got)
	}
}
