package api

import (
	"os"

	"robotique/eventmanager/internal/common"
	"robotique/eventmanager/internal/db"
	"robotique/eventmanager/internal/db/repositories"
	"robotique/eventmanager/internal/logging"
	"robotique/eventmanager/internal/metrics"
	"robotique/eventmanager/internal/services"
	"robotique/eventmanager/internal/token"
)

type Repositories struct {
	Users      *repositories.UserRepositoryGORM
	Events     *repositories.EventRepository
	Attendance *repositories.AttendanceRepository
	Penalties  *repositories.PenaltyRepository
	AuditLogs  *repositories.AuditLogRepo
	Keys       *repositories.KeysRepo
}

type Services struct {
	Cache   common.CacheInterface
	Codec   *token.Codec
	Scan    *services.ScanService
	Penalty *services.PenaltyService
	Event   *services.EventService
	Checkin *services.CheckinService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Metrics  *metrics.MetricsRegistry
}

func InitDependencies(metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {

	repos := &Repositories{
		Users:      repositories.NewUserRepositoryGORM(db.PgDB),
		Events:     repositories.NewEventRepository(db.PgDB),
		Attendance: repositories.NewAttendanceRepository(db.PgDB),
		Penalties:  repositories.NewPenaltyRepository(db.PgDB),
		AuditLogs:  repositories.NewAuditLogRepo(db.DB),
		Keys:       repositories.NewApiKeysRepo(db.DB),
	}

	// Redis when configured, in-process cache otherwise.
	var cacheSvc common.CacheInterface
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisSvc, err := common.NewRedisCacheService(addr, os.Getenv("REDIS_PASSWORD"))
		if err != nil {
			logging.Warn("Redis unavailable, falling back to in-process cache", "error", err.Error())
			cacheSvc = common.NewCacheService(60, 600)
		} else {
			cacheSvc = redisSvc
		}
	} else {
		cacheSvc = common.NewCacheService(60, 600)
	}

	codec := token.NewCodec([]byte(os.Getenv("TOKEN_SECRET")))

	penaltySvc := services.NewPenaltyService(db.PgDB, repos.Users, repos.Penalties, repos.Events, repos.Attendance)
	scanSvc := services.NewScanService(db.PgDB, codec, repos.Users, repos.Events, repos.Attendance, penaltySvc)
	eventSvc := services.NewEventService(db.PgDB, repos.Events, repos.Users, repos.Attendance, penaltySvc, cacheSvc)
	checkinSvc := services.NewCheckinService(db.PgDB, repos.Events, repos.Users, repos.Attendance, cacheSvc)

	svcs := &Services{
		Cache:   cacheSvc,
		Codec:   codec,
		Scan:    scanSvc,
		Penalty: penaltySvc,
		Event:   eventSvc,
		Checkin: checkinSvc,
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Metrics:  metricsReg,
	}, nil
}
