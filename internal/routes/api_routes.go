package routes

import (
	"robotique/eventmanager/internal/api"
	"robotique/eventmanager/internal/metrics"
	"robotique/eventmanager/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
// This keeps API route registration separate from the main router setup
func RegisterAPIRoutes(r chi.Router, metricsReg *metrics.MetricsRegistry, deps *api.Dependencies) {

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.MetricsMiddleware(metricsReg))
		v1.Use(middleware.AuthMiddleware(deps.Repo.Users, deps.Repo.Keys)) // global: all routes must carry a valid API key

		// Scanner group: scanning devices and above
		v1.Group(func(scanner chi.Router) {
			scanner.Use(middleware.RequireScanner())

			scanner.Group(func(scan chi.Router) {
				scan.Use(middleware.RateLimitMiddleware)
				scan.Post("/scan", api.ScanHandler(deps.Services.Scan, deps.Repo.AuditLogs, metricsReg))
			})

			scanner.Get("/check_status", api.CheckStatusHandler(deps.Services.Scan))
			scanner.Get("/events/{eventID}", api.EventDetailsHandler(deps.Services.Event))
			scanner.Post("/events/{eventID}/checkin/{userID}", api.ManualCheckinHandler(deps.Services.Checkin, deps.Repo.AuditLogs))
			scanner.Delete("/events/{eventID}/checkin/{userID}", api.UndoCheckinHandler(deps.Services.Checkin, deps.Repo.AuditLogs))
			scanner.Get("/events/{eventID}/tokens/{userID}", api.IssueTokenHandler(deps.Services.Codec, deps.Repo.Events, deps.Repo.Users))

			// Admin group (scanner perms implied)
			scanner.Group(func(admin chi.Router) {
				admin.Use(middleware.RequireAdmin())

				admin.Post("/events/{eventID}/end", api.EndEventHandler(deps.Services.Event, deps.Repo.AuditLogs))
				admin.Post("/events/{eventID}/assign", api.AssignUsersHandler(deps.Services.Event, deps.Repo.AuditLogs))
				admin.Post("/events/{eventID}/checkin/bulk", api.BulkCheckinHandler(deps.Services.Checkin, deps.Repo.AuditLogs))
				admin.Post("/events/{eventID}/tokens", api.BulkIssueTokensHandler(deps.Services.Codec, deps.Repo.Events, deps.Repo.AuditLogs))

				admin.Post("/users/{userID}/penalty/add", api.PenaltyAddHandler(deps.Services.Penalty, deps.Repo.AuditLogs, metricsReg))
				admin.Post("/users/{userID}/penalty/reduce", api.PenaltyReduceHandler(deps.Services.Penalty, deps.Repo.AuditLogs, metricsReg))
				admin.Post("/users/{userID}/penalty/pardon", api.PenaltyPardonHandler(deps.Services.Penalty, deps.Repo.AuditLogs, metricsReg))
				admin.Post("/users/{userID}/penalty/ban", api.PenaltyBanHandler(deps.Services.Penalty, deps.Repo.AuditLogs, metricsReg))
				admin.Get("/users/{userID}/penalties", api.PenaltyHistoryHandler(deps.Services.Penalty))

				admin.Get("/logs", api.LogsHandler(deps.Repo.AuditLogs))
			})
		})
	})
}
