package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"robotique/eventmanager/internal/auth"
	"robotique/eventmanager/internal/constants"
	"robotique/eventmanager/internal/db/repositories"
	"robotique/eventmanager/internal/models/dtos"
	"robotique/eventmanager/internal/models/dtos/responses"
	"robotique/eventmanager/internal/services"

	"github.com/go-chi/chi/v5"
)

func scannerIDFromRequest(r *http.Request) *string {
	if claims := auth.GetUserClaims(r.Context()); claims != nil {
		id := claims.UserID()
		return &id
	}
	return nil
}

// ManualCheckinHandler handles POST /api/v1/events/{eventID}/checkin/{userID}
func ManualCheckinHandler(svc *services.CheckinService, auditRepo *repositories.AuditLogRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "eventID")
		userID := chi.URLParam(r, "userID")

		att, err := svc.ManualCheckin(r.Context(), eventID, userID, scannerIDFromRequest(r))
		if err != nil {
			respondServiceError(w, err)
			return
		}

		entry := auditEntry(r, constants.ActionCheckin,
			fmt.Sprintf("Checked in user %s to event %s", userID, eventID))
		entry.TargetUserID = &userID
		entry.TargetEventID = &eventID
		writeAudit(r.Context(), auditRepo, entry)

		respondJSON(w, http.StatusOK, responses.CheckinResponse{
			OK:        true,
			CheckedAt: &att.CheckedAt,
		})
	}
}

// UndoCheckinHandler handles DELETE /api/v1/events/{eventID}/checkin/{userID}
func UndoCheckinHandler(svc *services.CheckinService, auditRepo *repositories.AuditLogRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "eventID")
		userID := chi.URLParam(r, "userID")

		if err := svc.UndoCheckin(r.Context(), eventID, userID); err != nil {
			respondServiceError(w, err)
			return
		}

		entry := auditEntry(r, constants.ActionCheckinUndo,
			fmt.Sprintf("Undid check-in for user %s on event %s", userID, eventID))
		entry.TargetUserID = &userID
		entry.TargetEventID = &eventID
		writeAudit(r.Context(), auditRepo, entry)

		respondJSON(w, http.StatusOK, responses.CheckinResponse{OK: true})
	}
}

// BulkCheckinHandler handles POST /api/v1/events/{eventID}/checkin/bulk
func BulkCheckinHandler(svc *services.CheckinService, auditRepo *repositories.AuditLogRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "eventID")

		var req dtos.UserIDsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondCode(w, http.StatusBadRequest, constants.CodeBadRequest)
			return
		}

		count, err := svc.BulkCheckin(r.Context(), eventID, req.UserIDs, scannerIDFromRequest(r))
		if err != nil {
			respondServiceError(w, err)
			return
		}

		entry := auditEntry(r, constants.ActionCheckinBulk,
			fmt.Sprintf("Bulk checked in %d users to event %s", count, eventID))
		entry.TargetEventID = &eventID
		writeAudit(r.Context(), auditRepo, entry)

		respondJSON(w, http.StatusOK, responses.CountResponse{OK: true, Count: count})
	}
}
