package api

import (
	"net/http"
	"strconv"

	"robotique/eventmanager/internal/db/repositories"
	"robotique/eventmanager/internal/models/dtos/responses"
)

const defaultLogsLimit = 100

// LogsHandler handles GET /api/v1/logs
//
// Query params: action (exact match), search (substring over details),
// limit (default 100). Newest entries first.
func LogsHandler(auditRepo *repositories.AuditLogRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action := r.URL.Query().Get("action")
		search := r.URL.Query().Get("search")
		limit := defaultLogsLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}

		rows, err := auditRepo.List(r.Context(), action, search, limit)
		if err != nil {
			respondJSON(w, http.StatusInternalServerError, responses.ErrorResponse{OK: false, Error: "internal_error"})
			return
		}

		logs := make([]responses.LogEntry, 0, len(rows))
		for _, row := range rows {
			logs = append(logs, responses.LogEntry{
				ID:          row.ID,
				Action:      row.Action,
				Actor:       row.ActorID,
				TargetUser:  row.TargetUserID,
				TargetEvent: row.TargetEventID,
				Details:     row.Details,
				IPAddress:   row.IPAddress,
				Timestamp:   row.CreatedAt,
			})
		}

		respondJSON(w, http.StatusOK, responses.LogsResponse{OK: true, Logs: logs})
	}
}
