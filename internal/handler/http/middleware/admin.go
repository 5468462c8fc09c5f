package middleware

import (
	"net/http"

	"github.com/LoosePrince/Huisheen/internal/handler/http/response"
)

// AdminOnly restricts a route to operator accounts. It must run after
// AuthRequired.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		admin, ok := r.Context().Value(isAdminKey).(bool)
		if !ok || !admin {
			response.Forbidden(w, "Administrator privilege required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
