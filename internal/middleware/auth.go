package middleware

import (
	"net/http"

	"robotique/eventmanager/internal/auth"
	"robotique/eventmanager/internal/db/repositories"
)

// AuthMiddleware resolves an X-API-Key header to user claims. Scanning
// devices and admin tooling both authenticate this way; there is no
// session login on the API surface.
func AuthMiddleware(userRepo *repositories.UserRepositoryGORM, keysRepo *repositories.KeysRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				http.Error(w, "Unauthorized. Missing API Key", http.StatusUnauthorized)
				return
			}

			keyRes, err := keysRepo.GetStatus(r.Context(), apiKey)
			if err != nil {
				http.Error(w, "Unauthorized. Invalid API Key", http.StatusUnauthorized)
				return
			}

			if !keyRes.IsActive {
				http.Error(w, "Unauthorized. Inactive API Key", http.StatusUnauthorized)
				return
			}

			user, err := userRepo.GetByID(r.Context(), keyRes.UserID)
			if err != nil {
				http.Error(w, "Unauthorized. Unknown key owner", http.StatusUnauthorized)
				return
			}

			claims := &auth.APIKeyClaims{
				UserUUID:    user.ID,
				UsernameVal: user.Username,
				RoleValue:   user.Role,
			}

			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
