package services

import (
	"testing"
	"time"

	"robotique/eventmanager/internal/common"
	"robotique/eventmanager/internal/db/repositories"
	models "robotique/eventmanager/internal/models/gorm"
	"robotique/eventmanager/internal/token"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db         *gorm.DB
	users      *repositories.UserRepositoryGORM
	events     *repositories.EventRepository
	attendance *repositories.AttendanceRepository
	penalties  *repositories.PenaltyRepository

	codec      *token.Codec
	penaltySvc *PenaltyService
	scanSvc    *ScanService
	eventSvc   *EventService
	checkinSvc *CheckinService
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	// A single connection keeps every session on the same in-memory
	// database and serializes concurrent writers the way sqlite needs.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Group{},
		&models.User{},
		&models.Event{},
		&models.Attendance{},
		&models.Penalty{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)

	env := &testEnv{
		db:         db,
		users:      repositories.NewUserRepositoryGORM(db),
		events:     repositories.NewEventRepository(db),
		attendance: repositories.NewAttendanceRepository(db),
		penalties:  repositories.NewPenaltyRepository(db),
		codec:      token.NewCodec([]byte("test-secret")),
	}
	env.penaltySvc = NewPenaltyService(db, env.users, env.penalties, env.events, env.attendance)
	env.scanSvc = NewScanService(db, env.codec, env.users, env.events, env.attendance, env.penaltySvc)
	env.eventSvc = NewEventService(db, env.events, env.users, env.attendance, env.penaltySvc, common.NewCacheService(60, 600))
	env.checkinSvc = NewCheckinService(db, env.events, env.users, env.attendance, common.NewCacheService(60, 600))
	return env
}

func (e *testEnv) createUser(t *testing.T, username string, level int) *models.User {
	t.Helper()
	user := &models.User{
		Username:    username,
		DisplayName: username,
	}
	user.SetPenaltyLevel(level)
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func (e *testEnv) createEvent(t *testing.T, title string, start, end time.Time, assigned ...*models.User) *models.Event {
	t.Helper()
	event := &models.Event{
		Title:     title,
		StartTime: start,
		EndTime:   end,
	}
	for _, u := range assigned {
		event.AssignedUsers = append(event.AssignedUsers, *u)
	}
	if err := e.db.Create(event).Error; err != nil {
		t.Fatalf("failed to create event %s: %v", title, err)
	}
	return event
}

func (e *testEnv) attendanceCount(t *testing.T, eventID string) int64 {
	t.Helper()
	var count int64
	if err := e.db.Model(&models.Attendance{}).Where("event_id = ?", eventID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count attendance: %v", err)
	}
	return count
}

func (e *testEnv) reloadUser(t *testing.T, id string) *models.User {
	t.Helper()
	var user models.User
	if err := e.db.First(&user, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	return &user
}

// fixedNow pins all service clocks to one instant.
func (e *testEnv) fixedNow(at time.Time) {
	clock := func() time.Time { return at }
	e.scanSvc.now = clock
	e.eventSvc.now = clock
	e.checkinSvc.now = clock
}
