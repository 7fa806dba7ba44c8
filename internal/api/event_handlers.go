package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"robotique/eventmanager/internal/constants"
	"robotique/eventmanager/internal/db/repositories"
	"robotique/eventmanager/internal/models/dtos"
	"robotique/eventmanager/internal/models/dtos/responses"
	"robotique/eventmanager/internal/services"

	"github.com/go-chi/chi/v5"
)

// EventDetailsHandler handles GET /api/v1/events/{eventID}
//
// Reading an ended, unprocessed event triggers the inline no-show
// sweep behind the processed-flag gate.
func EventDetailsHandler(svc *services.EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "eventID")

		details, err := svc.Details(r.Context(), eventID)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, details)
	}
}

// EndEventHandler handles POST /api/v1/events/{eventID}/end
func EndEventHandler(svc *services.EventService, auditRepo *repositories.AuditLogRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "eventID")

		added, noShows, attended, err := svc.EndEventAndPenalize(r.Context(), eventID)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		entry := auditEntry(r, constants.ActionEventEnd,
			fmt.Sprintf("Manually ended event %s. Applied %d penalties for %d no-shows", eventID, added, noShows))
		entry.TargetEventID = &eventID
		writeAudit(r.Context(), auditRepo, entry)

		respondJSON(w, http.StatusOK, responses.EndEventResponse{
			OK:             true,
			PenaltiesAdded: added,
			TotalNoShows:   noShows,
			TotalAttended:  attended,
		})
	}
}

// AssignUsersHandler handles POST /api/v1/events/{eventID}/assign
func AssignUsersHandler(svc *services.EventService, auditRepo *repositories.AuditLogRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "eventID")

		var req dtos.UserIDsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondCode(w, http.StatusBadRequest, constants.CodeBadRequest)
			return
		}

		if err := svc.AssignUsers(r.Context(), eventID, req.UserIDs); err != nil {
			respondServiceError(w, err)
			return
		}

		entry := auditEntry(r, constants.ActionEventAssign,
			fmt.Sprintf("Assigned %d users to event %s", len(req.UserIDs), eventID))
		entry.TargetEventID = &eventID
		writeAudit(r.Context(), auditRepo, entry)

		respondJSON(w, http.StatusOK, responses.CountResponse{OK: true, Count: len(req.UserIDs)})
	}
}
