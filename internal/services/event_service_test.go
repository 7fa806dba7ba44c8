package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"robotique/eventmanager/internal/jobs"
	models "robotique/eventmanager/internal/models/gorm"

	"gorm.io/gorm"
)

var eventBase = time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)

func TestProcessEndedRunsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	absent := env.createUser(t, "alice", 0)
	event := env.createEvent(t, "Workshop", eventBase, eventBase.Add(2*time.Hour), absent)

	added, noShows, processed, err := env.eventSvc.ProcessEnded(ctx, event)
	if err != nil {
		t.Fatalf("ProcessEnded failed: %v", err)
	}
	if !processed {
		t.Fatal("Expected first caller to win the processed flag")
	}
	if added != 1 || noShows != 1 {
		t.Errorf("Expected 1 penalty / 1 no-show, got %d/%d", added, noShows)
	}

	var stored models.Event
	if err := env.db.First(&stored, "id = ?", event.ID).Error; err != nil {
		t.Fatalf("failed to reload event: %v", err)
	}
	if !stored.PenaltiesProcessed {
		t.Error("Expected penalties_processed flag set")
	}

	// Second run is a no-op: the flag is monotonic.
	added, noShows, processed, err = env.eventSvc.ProcessEnded(ctx, event)
	if err != nil {
		t.Fatalf("Second ProcessEnded failed: %v", err)
	}
	if processed || added != 0 || noShows != 0 {
		t.Errorf("Expected no-op, got processed=%v added=%d noShows=%d", processed, added, noShows)
	}

	if got := env.reloadUser(t, absent.ID); got.PenaltyLevel != 1 {
		t.Errorf("Expected exactly one penalty, user is at level %d", got.PenaltyLevel)
	}
}

func TestEndEventAndPenalizeLoser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	absent := env.createUser(t, "bob", 0)
	present := env.createUser(t, "frank", 0)
	event := env.createEvent(t, "Workshop", eventBase, eventBase.Add(2*time.Hour), absent, present)

	if _, err := env.attendance.RecordAttendance(ctx, event.ID, present.ID, nil, false); err != nil {
		t.Fatalf("RecordAttendance failed: %v", err)
	}

	added, noShows, attended, err := env.eventSvc.EndEventAndPenalize(ctx, event.ID)
	if err != nil {
		t.Fatalf("EndEventAndPenalize failed: %v", err)
	}
	if added != 1 || noShows != 1 || attended != 1 {
		t.Errorf("Expected 1 penalty / 1 no-show / 1 attended, got %d/%d/%d", added, noShows, attended)
	}

	_, _, _, err = env.eventSvc.EndEventAndPenalize(ctx, event.ID)
	if !errors.Is(err, ErrEventAlreadyProcessed) {
		t.Errorf("Expected ErrEventAlreadyProcessed, got %v", err)
	}
}

func TestEndEventConcurrentWithSweep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	absent := env.createUser(t, "erin", 0)
	event := env.createEvent(t, "Workshop", eventBase, eventBase.Add(2*time.Hour), absent)

	var engineRuns atomic.Int32
	engine := env.eventSvc.autoNoShow
	env.eventSvc.autoNoShow = func(ctx context.Context, tx *gorm.DB, ev *models.Event) (int, int, error) {
		engineRuns.Add(1)
		return engine(ctx, tx, ev)
	}

	job := jobs.NewPenaltySweepJob(env.events, env.eventSvc, nil, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := job.Run(ctx); err != nil {
			t.Errorf("Sweep run failed: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		// Either side may win the flag; the loser gets the sentinel.
		if _, _, _, err := env.eventSvc.EndEventAndPenalize(ctx, event.ID); err != nil && !errors.Is(err, ErrEventAlreadyProcessed) {
			t.Errorf("EndEventAndPenalize failed: %v", err)
		}
	}()
	wg.Wait()

	if got := engineRuns.Load(); got != 1 {
		t.Fatalf("Expected exactly one no-show engine run, got %d", got)
	}

	var stored models.Event
	if err := env.db.First(&stored, "id = ?", event.ID).Error; err != nil {
		t.Fatalf("failed to reload event: %v", err)
	}
	if !stored.PenaltiesProcessed {
		t.Error("Expected penalties_processed flag set")
	}
	if got := env.reloadUser(t, absent.ID); got.PenaltyLevel != 1 {
		t.Errorf("Expected exactly one penalty, user is at level %d", got.PenaltyLevel)
	}
}

func TestDetailsInlineSweep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	absent := env.createUser(t, "carol", 0)
	event := env.createEvent(t, "Workshop", eventBase, eventBase.Add(2*time.Hour), absent)
	env.fixedNow(eventBase.Add(3 * time.Hour))

	resp, err := env.eventSvc.Details(ctx, event.ID)
	if err != nil {
		t.Fatalf("Details failed: %v", err)
	}
	if resp.Event.Status != models.EventStatusEnded {
		t.Errorf("Expected status ended, got %s", resp.Event.Status)
	}
	if !resp.Event.PenaltiesProcessed {
		t.Error("Expected reading an ended event to trigger the sweep")
	}
	if got := env.reloadUser(t, absent.ID); got.PenaltyLevel != 1 {
		t.Errorf("Expected no-show penalty from inline sweep, level is %d", got.PenaltyLevel)
	}
}

func TestDetailsAttendeeOrdering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	zoe := env.createUser(t, "zoe", 0)
	adam := env.createUser(t, "Adam", 0)
	mia := env.createUser(t, "mia", 0)
	event := env.createEvent(t, "Workshop", eventBase, eventBase.Add(2*time.Hour), zoe, adam, mia)
	env.fixedNow(eventBase.Add(time.Hour))

	if _, err := env.attendance.RecordAttendance(ctx, event.ID, adam.ID, nil, false); err != nil {
		t.Fatalf("RecordAttendance failed: %v", err)
	}

	resp, err := env.eventSvc.Details(ctx, event.ID)
	if err != nil {
		t.Fatalf("Details failed: %v", err)
	}
	if len(resp.Attendees) != 3 {
		t.Fatalf("Expected 3 attendees, got %d", len(resp.Attendees))
	}

	// Pending first, case-insensitive username order, checked last.
	want := []string{"mia", "zoe", "Adam"}
	for i, username := range want {
		if resp.Attendees[i].Username != username {
			t.Errorf("Position %d: expected %s, got %s", i, username, resp.Attendees[i].Username)
		}
	}
	if resp.Attendees[2].CheckedAt == nil {
		t.Error("Expected CheckedAt on the checked attendee")
	}
}

func TestDetailsCached(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "dave", 0)
	event := env.createEvent(t, "Workshop", eventBase, eventBase.Add(2*time.Hour), user)
	env.fixedNow(eventBase.Add(time.Hour))

	first, err := env.eventSvc.Details(ctx, event.ID)
	if err != nil {
		t.Fatalf("Details failed: %v", err)
	}

	// A write that bypasses the service does not show up until the
	// entry expires or is invalidated.
	if _, err := env.attendance.RecordAttendance(ctx, event.ID, user.ID, nil, false); err != nil {
		t.Fatalf("RecordAttendance failed: %v", err)
	}
	second, err := env.eventSvc.Details(ctx, event.ID)
	if err != nil {
		t.Fatalf("Details failed: %v", err)
	}
	if second != first {
		t.Error("Expected cached response on immediate re-read")
	}
}

func TestAssignUsersCapacity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.createUser(t, "alice", 0)
	b := env.createUser(t, "bob", 0)
	max := 1
	event := &models.Event{
		Title:        "Limited",
		StartTime:    eventBase,
		EndTime:      eventBase.Add(time.Hour),
		MaxAttendees: &max,
	}
	if err := env.db.Create(event).Error; err != nil {
		t.Fatalf("failed to create event: %v", err)
	}

	err := env.eventSvc.AssignUsers(ctx, event.ID, []string{a.ID, b.ID})
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("Expected ErrCapacityExceeded, got %v", err)
	}

	if err := env.eventSvc.AssignUsers(ctx, event.ID, []string{a.ID}); err != nil {
		t.Fatalf("AssignUsers failed: %v", err)
	}
	assigned, err := env.events.AssignedUsers(ctx, event.ID)
	if err != nil {
		t.Fatalf("AssignedUsers failed: %v", err)
	}
	if len(assigned) != 1 || assigned[0].ID != a.ID {
		t.Errorf("Unexpected roster: %+v", assigned)
	}
}

func TestAssignUsersReplaces(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.createUser(t, "alice", 0)
	b := env.createUser(t, "bob", 0)
	event := env.createEvent(t, "Workshop", eventBase, eventBase.Add(time.Hour), a)

	if err := env.eventSvc.AssignUsers(ctx, event.ID, []string{b.ID}); err != nil {
		t.Fatalf("AssignUsers failed: %v", err)
	}
	assigned, err := env.events.AssignedUsers(ctx, event.ID)
	if err != nil {
		t.Fatalf("AssignedUsers failed: %v", err)
	}
	if len(assigned) != 1 || assigned[0].ID != b.ID {
		t.Errorf("Expected roster replaced with bob, got %+v", assigned)
	}
}
