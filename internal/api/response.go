package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"robotique/eventmanager/internal/constants"
	"robotique/eventmanager/internal/db/repositories"
	"robotique/eventmanager/internal/models/dtos/responses"
	"robotique/eventmanager/internal/services"
)

func respondJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondCode(w http.ResponseWriter, statusCode int, code string) {
	respondJSON(w, statusCode, responses.ErrorResponse{OK: false, Error: code})
}

// httpStatusForCode maps a stable error code to its HTTP status. Raw
// error text never crosses the boundary; devices only see these codes.
func httpStatusForCode(code string) int {
	switch code {
	case constants.CodeUserBanned, constants.CodeBannedOverlaps:
		return http.StatusForbidden
	case constants.CodeNoEvent, constants.CodeNoUser, constants.CodeAttendanceMissing:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// respondServiceError translates the typed service and repository
// failures to their wire codes. Anything unrecognized is a 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var code string
	switch {
	case errors.Is(err, repositories.ErrEventNotFound):
		code = constants.CodeNoEvent
	case errors.Is(err, repositories.ErrUserNotFound):
		code = constants.CodeNoUser
	case errors.Is(err, repositories.ErrAlreadyCheckedIn):
		code = constants.CodeAlreadyCheckedIn
	case errors.Is(err, repositories.ErrAttendanceNotFound):
		code = constants.CodeAttendanceMissing
	case errors.Is(err, services.ErrEventEnded):
		code = constants.CodeEventEnded
	case errors.Is(err, services.ErrNotAssigned):
		code = constants.CodeNotAssigned
	case errors.Is(err, services.ErrEventAlreadyProcessed):
		code = constants.CodeAlreadyProcessed
	case errors.Is(err, services.ErrCapacityExceeded):
		code = constants.CodeCapacityExceeded
	default:
		respondJSON(w, http.StatusInternalServerError, responses.ErrorResponse{OK: false, Error: "internal_error"})
		return
	}
	respondCode(w, httpStatusForCode(code), code)
}

// getClientIP extracts the client address, honoring X-Forwarded-For.
func getClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for i := 0; i < len(fwd); i++ {
			if fwd[i] == ',' {
				return fwd[:i]
			}
		}
		return fwd
	}
	return r.RemoteAddr
}
