package routes

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"robotique/eventmanager/internal/api"
	"robotique/eventmanager/internal/db"
	"robotique/eventmanager/internal/jobs"
	"robotique/eventmanager/internal/logging"
	"robotique/eventmanager/internal/metrics"
	"robotique/eventmanager/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func RegisterRoutes(upSince time.Time) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// Initialize metrics registry
	metricsReg := metrics.NewMetricsRegistry()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:8081"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-API-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	logging.Info("Router initialized with metrics and logging middleware")
	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(db.DB, upSince))

	// Initialize dependencies using DI pattern
	deps, err := api.InitDependencies(metricsReg)
	if err != nil {
		panic("Failed to initialize dependencies: " + err.Error())
	}

	// Background no-show sweep
	sweepInterval := time.Minute
	if raw := os.Getenv("SWEEP_INTERVAL_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			sweepInterval = time.Duration(secs) * time.Second
		}
	}
	jobs.InitializeJobs(
		context.Background(),
		deps.Repo.Events,
		deps.Services.Event,
		deps.Repo.AuditLogs,
		metricsReg,
		sweepInterval,
	)

	// Register API routes
	RegisterAPIRoutes(r, metricsReg, deps)

	return r
}
