package middleware

import (
	"net/http"

	"hrperf/internal/transport/http/api"
)

// RequirePermission rejects requests without an actor (401) or whose role
// lacks permission (403).
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActor(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !actor.Can(permission) {
				api.Fail(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
