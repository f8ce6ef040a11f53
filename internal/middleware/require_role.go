package middleware

import (
	"net/http"
	"strings"
)

// RequireRole corta el request si no hay claims o el rol no está en la
// lista. Reemplaza los checks de rol copiados handler por handler: un solo
// guard, montado por grupo de rutas.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaims(r.Context())
			if !ok || strings.TrimSpace(claims.UserID) == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if _, ok := allowed[strings.ToLower(strings.TrimSpace(claims.Role))]; !ok {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
