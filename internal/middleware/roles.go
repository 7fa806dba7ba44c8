package middleware

import (
	"net/http"

	"robotique/eventmanager/internal/auth"
)

// RequireScanner admits scanner, moderator, admin and core roles.
func RequireScanner() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			claims := auth.GetUserClaims(r.Context())

			if claims == nil || !claims.Role().CanScan() {
				http.Error(w, "Forbidden. Need scanner perms", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin admits moderator, admin and core roles.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			claims := auth.GetUserClaims(r.Context())

			if claims == nil || !claims.Role().CanAdminister() {
				http.Error(w, "Forbidden. Need admin perms", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
