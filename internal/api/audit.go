package api

import (
	"context"
	"net/http"

	"robotique/eventmanager/internal/auth"
	"robotique/eventmanager/internal/db/repositories"
	"robotique/eventmanager/internal/logging"
	"robotique/eventmanager/internal/models/entities"
)

// auditEntry builds a log row from the request's claims and client
// address.
func auditEntry(r *http.Request, action, details string) *entities.AuditLog {
	entry := &entities.AuditLog{
		Action:  action,
		Details: details,
	}
	if claims := auth.GetUserClaims(r.Context()); claims != nil {
		actorID := claims.UserID()
		entry.ActorID = &actorID
	}
	ip := getClientIP(r)
	entry.IPAddress = &ip
	return entry
}

// writeAudit persists an audit row; failures are logged, never
// surfaced to the caller.
func writeAudit(ctx context.Context, repo *repositories.AuditLogRepo, entry *entities.AuditLog) {
	if repo == nil {
		return
	}
	if err := repo.Insert(ctx, entry); err != nil {
		logging.Warn("Failed to write audit log",
			"action", entry.Action,
			"error", err.Error(),
		)
	}
}
