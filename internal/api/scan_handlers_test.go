package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"robotique/eventmanager/internal/auth"
	"robotique/eventmanager/internal/constants"
	"robotique/eventmanager/internal/db/repositories"
	"robotique/eventmanager/internal/models/dtos"
	"robotique/eventmanager/internal/models/dtos/responses"
	models "robotique/eventmanager/internal/models/gorm"
	"robotique/eventmanager/internal/services"
	"robotique/eventmanager/internal/token"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type handlerEnv struct {
	db      *gorm.DB
	codec   *token.Codec
	scanSvc *services.ScanService
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
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

	users := repositories.NewUserRepositoryGORM(db)
	events := repositories.NewEventRepository(db)
	attendance := repositories.NewAttendanceRepository(db)
	penalties := repositories.NewPenaltyRepository(db)

	codec := token.NewCodec([]byte("test-secret"))
	penaltySvc := services.NewPenaltyService(db, users, penalties, events, attendance)
	scanSvc := services.NewScanService(db, codec, users, events, attendance, penaltySvc)

	return &handlerEnv{db: db, codec: codec, scanSvc: scanSvc}
}

func scannerContext(ctx context.Context, userID string) context.Context {
	return auth.SetUserClaims(ctx, &auth.APIKeyClaims{
		UserUUID:    userID,
		UsernameVal: "scanner",
		RoleValue:   constants.RoleScanner,
	})
}

func TestScanHandlerSuccess(t *testing.T) {
	env := newHandlerEnv(t)

	user := &models.User{Username: "alice", DisplayName: "alice"}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	scanner := &models.User{Username: "scanner", DisplayName: "scanner", Role: constants.RoleScanner}
	if err := env.db.Create(scanner).Error; err != nil {
		t.Fatalf("failed to create scanner: %v", err)
	}
	now := time.Now()
	event := &models.Event{
		Title:         "Workshop",
		StartTime:     now.Add(-time.Hour),
		EndTime:       now.Add(time.Hour),
		AssignedUsers: []models.User{*user},
	}
	if err := env.db.Create(event).Error; err != nil {
		t.Fatalf("failed to create event: %v", err)
	}

	raw, err := env.codec.Issue(event.ID, user.ID, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	body, _ := json.Marshal(dtos.ScanRequest{Token: raw})
	req := httptest.NewRequest("POST", "/api/v1/scan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(scannerContext(req.Context(), scanner.ID))

	rr := httptest.NewRecorder()
	ScanHandler(env.scanSvc, nil, nil).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp responses.ScanResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.OK {
		t.Errorf("Expected ok response, got error %q", resp.Error)
	}
	if resp.UserID != user.ID || resp.EventID != event.ID {
		t.Errorf("Unexpected pair in response: %s / %s", resp.UserID, resp.EventID)
	}
}

func TestScanHandlerBadRequest(t *testing.T) {
	env := newHandlerEnv(t)

	req := httptest.NewRequest("POST", "/api/v1/scan", bytes.NewReader([]byte(`{}`)))
	req = req.WithContext(scannerContext(req.Context(), "scanner-1"))

	rr := httptest.NewRecorder()
	ScanHandler(env.scanSvc, nil, nil).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}

	var resp responses.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Error != constants.CodeBadRequest {
		t.Errorf("Expected %s, got %q", constants.CodeBadRequest, resp.Error)
	}
}

func TestScanHandlerMissingClaims(t *testing.T) {
	env := newHandlerEnv(t)

	body, _ := json.Marshal(dtos.ScanRequest{Token: "whatever"})
	req := httptest.NewRequest("POST", "/api/v1/scan", bytes.NewReader(body))

	rr := httptest.NewRecorder()
	ScanHandler(env.scanSvc, nil, nil).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}
}

func TestScanHandlerInvalidToken(t *testing.T) {
	env := newHandlerEnv(t)

	body, _ := json.Marshal(dtos.ScanRequest{Token: "not-a-token"})
	req := httptest.NewRequest("POST", "/api/v1/scan", bytes.NewReader(body))
	req = req.WithContext(scannerContext(req.Context(), "scanner-1"))

	rr := httptest.NewRecorder()
	ScanHandler(env.scanSvc, nil, nil).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}

	var resp responses.ScanResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Error != constants.CodeTokenInvalid {
		t.Errorf("Expected %s, got %q", constants.CodeTokenInvalid, resp.Error)
	}
}
