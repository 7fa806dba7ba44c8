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
	models "robotique/eventmanager/internal/models/gorm"
	"robotique/eventmanager/internal/services"

	"github.com/go-chi/chi/v5"
)

type penaltyMutator func(svc *services.PenaltyService, r *http.Request, userID, reason string, adminID *string) (*models.User, error)

// penaltyHandler is the shared shape of the four admin penalty
// endpoints: decode reason, apply the mutation, audit, report the new
// standing.
func penaltyHandler(
	svc *services.PenaltyService,
	auditRepo *repositories.AuditLogRepo,
	metricsReg *metrics.MetricsRegistry,
	action string,
	penaltyType constants.PenaltyType,
	mutate penaltyMutator,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")

		var req dtos.PenaltyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondCode(w, http.StatusBadRequest, constants.CodeBadRequest)
			return
		}

		var adminID *string
		if claims := auth.GetUserClaims(r.Context()); claims != nil {
			id := claims.UserID()
			adminID = &id
		}

		user, err := mutate(svc, r, userID, req.Reason, adminID)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		if metricsReg != nil {
			metricsReg.PenaltiesAppliedTotal.WithLabelValues(penaltyType.String()).Inc()
		}

		entry := auditEntry(r, action,
			fmt.Sprintf("Penalty %s for '%s'. Reason: %s. New level: %d", penaltyType, user.Username, req.Reason, user.PenaltyLevel))
		entry.TargetUserID = &user.ID
		writeAudit(r.Context(), auditRepo, entry)

		respondJSON(w, http.StatusOK, responses.PenaltyStateResponse{
			OK:             true,
			PenaltyLevel:   user.PenaltyLevel,
			PenaltyStatus:  user.PenaltyStatus.String(),
			IsActiveMember: user.IsActiveMember,
		})
	}
}

// PenaltyAddHandler handles POST /api/v1/users/{userID}/penalty/add
func PenaltyAddHandler(svc *services.PenaltyService, auditRepo *repositories.AuditLogRepo, metricsReg *metrics.MetricsRegistry) http.HandlerFunc {
	return penaltyHandler(svc, auditRepo, metricsReg, constants.ActionPenaltyAdd, constants.PenaltyTypeAdd,
		func(svc *services.PenaltyService, r *http.Request, userID, reason string, adminID *string) (*models.User, error) {
			return svc.Add(r.Context(), userID, reason, adminID)
		})
}

// PenaltyReduceHandler handles POST /api/v1/users/{userID}/penalty/reduce
func PenaltyReduceHandler(svc *services.PenaltyService, auditRepo *repositories.AuditLogRepo, metricsReg *metrics.MetricsRegistry) http.HandlerFunc {
	return penaltyHandler(svc, auditRepo, metricsReg, constants.ActionPenaltyReduce, constants.PenaltyTypeReduce,
		func(svc *services.PenaltyService, r *http.Request, userID, reason string, adminID *string) (*models.User, error) {
			return svc.Reduce(r.Context(), userID, reason, adminID)
		})
}

// PenaltyPardonHandler handles POST /api/v1/users/{userID}/penalty/pardon
func PenaltyPardonHandler(svc *services.PenaltyService, auditRepo *repositories.AuditLogRepo, metricsReg *metrics.MetricsRegistry) http.HandlerFunc {
	return penaltyHandler(svc, auditRepo, metricsReg, constants.ActionPenaltyPardon, constants.PenaltyTypePardon,
		func(svc *services.PenaltyService, r *http.Request, userID, reason string, adminID *string) (*models.User, error) {
			return svc.Pardon(r.Context(), userID, reason, adminID)
		})
}

// PenaltyBanHandler handles POST /api/v1/users/{userID}/penalty/ban
func PenaltyBanHandler(svc *services.PenaltyService, auditRepo *repositories.AuditLogRepo, metricsReg *metrics.MetricsRegistry) http.HandlerFunc {
	return penaltyHandler(svc, auditRepo, metricsReg, constants.ActionPenaltyBan, constants.PenaltyTypeBan,
		func(svc *services.PenaltyService, r *http.Request, userID, reason string, adminID *string) (*models.User, error) {
			return svc.Ban(r.Context(), userID, reason, adminID)
		})
}

// PenaltyHistoryHandler handles GET /api/v1/users/{userID}/penalties
func PenaltyHistoryHandler(svc *services.PenaltyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")

		history, err := svc.History(r.Context(), userID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		total, err := svc.CountForUser(r.Context(), userID)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		records := make([]responses.PenaltyRecord, 0, len(history))
		for i := range history {
			p := &history[i]
			rec := responses.PenaltyRecord{
				ID:            p.ID,
				Type:          p.Type.String(),
				Reason:        p.Reason,
				PreviousLevel: p.PreviousLevel,
				CreatedAt:     p.CreatedAt,
			}
			if p.Admin != nil {
				admin := p.Admin.Username
				rec.Admin = &admin
			}
			records = append(records, rec)
		}

		respondJSON(w, http.StatusOK, responses.PenaltyHistoryResponse{OK: true, Total: total, Penalties: records})
	}
}
