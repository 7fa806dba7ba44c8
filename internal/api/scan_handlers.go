package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"robotique/eventmanager/internal/auth"
	"robotique/eventmanager/internal/constants"
	"robotique/eventmanager/internal/db/repositories"
	"robotique/eventmanager/internal/metrics"
	"robotique/eventmanager/internal/models/dtos"
	"robotique/eventmanager/internal/models/dtos/responses"
	"robotique/eventmanager/internal/services"
)

// ScanHandler handles POST /api/v1/scan
//
// Body: {"token": "<signed check-in token>"}. The caller is already
// authenticated and role-checked by middleware; this handler only runs
// the validation pipeline and translates its outcome to the wire.
func ScanHandler(scanSvc *services.ScanService, auditRepo *repositories.AuditLogRepo, metricsReg *metrics.MetricsRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.ScanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
			if metricsReg != nil {
				metricsReg.ScansTotal.WithLabelValues(constants.CodeBadRequest).Inc()
			}
			respondCode(w, http.StatusBadRequest, constants.CodeBadRequest)
			return
		}

		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		outcome, err := scanSvc.Scan(r.Context(), req.Token, claims.UserID())
		if err != nil {
			respondJSON(w, http.StatusInternalServerError, responses.ErrorResponse{OK: false, Error: "internal_error"})
			return
		}

		if metricsReg != nil {
			label := outcome.Code
			if outcome.OK {
				label = "ok"
			}
			metricsReg.ScansTotal.WithLabelValues(label).Inc()
		}

		if outcome.OK {
			entry := auditEntry(r, constants.ActionCheckin,
				fmt.Sprintf("Checked in user %s to event %s via scan", outcome.UserID, outcome.EventID))
			entry.TargetUserID = &outcome.UserID
			entry.TargetEventID = &outcome.EventID
			writeAudit(r.Context(), auditRepo, entry)

			respondJSON(w, http.StatusOK, responses.ScanResponse{
				OK:        true,
				UserID:    outcome.UserID,
				EventID:   outcome.EventID,
				CheckedAt: outcome.CheckedAt,
			})
			return
		}

		resp := responses.ScanResponse{
			OK:           false,
			Error:        outcome.Code,
			UserID:       outcome.UserID,
			EventID:      outcome.EventID,
			Now:          outcome.Now,
			Start:        outcome.Start,
			End:          outcome.End,
			PenaltyLevel: outcome.PenaltyLevel,
		}
		respondJSON(w, httpStatusForCode(outcome.Code), resp)
	}
}

// CheckStatusHandler handles GET /api/v1/check_status?event_id=&user_id=
func CheckStatusHandler(scanSvc *services.ScanService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := r.URL.Query().Get("event_id")
		userID := r.URL.Query().Get("user_id")
		if eventID == "" || userID == "" {
			respondCode(w, http.StatusBadRequest, constants.CodeBadRequest)
			return
		}

		checkedIn, banned, err := scanSvc.CheckStatus(r.Context(), eventID, userID)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, responses.CheckStatusResponse{
			OK:        true,
			CheckedIn: checkedIn,
			Banned:    banned,
		})
	}
}
