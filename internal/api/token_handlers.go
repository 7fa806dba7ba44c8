package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"robotique/eventmanager/internal/auth"
	"robotique/eventmanager/internal/constants"
	"robotique/eventmanager/internal/db/repositories"
	"robotique/eventmanager/internal/models/dtos"
	"robotique/eventmanager/internal/models/dtos/responses"
	"robotique/eventmanager/internal/token"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// IssueTokenHandler handles GET /api/v1/events/{eventID}/tokens/{userID}
//
// Admins can issue for anyone; other roles only for themselves.
func IssueTokenHandler(codec *token.Codec, events *repositories.EventRepository, users *repositories.UserRepositoryGORM) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "eventID")
		userID := chi.URLParam(r, "userID")

		claims := auth.GetUserClaims(r.Context())
		if claims == nil || (!claims.Role().CanAdminister() && claims.UserID() != userID) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		if _, err := events.GetByID(r.Context(), eventID); err != nil {
			respondServiceError(w, err)
			return
		}
		if _, err := users.GetByID(r.Context(), userID); err != nil {
			respondServiceError(w, err)
			return
		}

		signed, err := codec.Issue(eventID, userID, token.DefaultTTL)
		if err != nil {
			respondJSON(w, http.StatusInternalServerError, responses.ErrorResponse{OK: false, Error: "internal_error"})
			return
		}

		respondJSON(w, http.StatusOK, responses.TokenResponse{
			OK:        true,
			Token:     signed,
			ExpiresAt: time.Now().Add(token.DefaultTTL),
		})
	}
}

// BulkIssueTokensHandler handles POST /api/v1/events/{eventID}/tokens
//
// Issues a check-in token for every user assigned to the event.
func BulkIssueTokensHandler(codec *token.Codec, events *repositories.EventRepository, auditRepo *repositories.AuditLogRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "eventID")

		var req dtos.IssueTokenRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		ttl := token.DefaultTTL
		if req.TTLSeconds > 0 {
			ttl = time.Duration(req.TTLSeconds) * time.Second
		}

		assigned, err := events.AssignedUsers(r.Context(), eventID)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		var (
			mu     sync.Mutex
			tokens = make([]responses.UserToken, 0, len(assigned))
		)
		g, _ := errgroup.WithContext(r.Context())
		g.SetLimit(8)

		for i := range assigned {
			user := assigned[i]
			g.Go(func() error {
				signed, err := codec.Issue(eventID, user.ID, ttl)
				if err != nil {
					return err
				}
				mu.Lock()
				tokens = append(tokens, responses.UserToken{
					UserID:   user.ID,
					Username: user.Username,
					Token:    signed,
				})
				mu.Unlock()
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			respondJSON(w, http.StatusInternalServerError, responses.ErrorResponse{OK: false, Error: "internal_error"})
			return
		}

		entry := auditEntry(r, constants.ActionTokenIssued,
			fmt.Sprintf("Issued %d check-in tokens for event %s", len(tokens), eventID))
		entry.TargetEventID = &eventID
		writeAudit(r.Context(), auditRepo, entry)

		respondJSON(w, http.StatusOK, responses.BulkTokensResponse{OK: true, Tokens: tokens})
	}
}
