package httpx

import (
	"net/http"

	"github.com/ecobazaarx/ecobazaar/pkg/api"
)

// RequireRole gates a handler behind a role check on the verified claims.
// Admins pass any gate. Must run after AuthnMiddleware.
func RequireRole(required string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromCtx(r.Context())
			if !ok {
				api.ErrMissingToken.WriteError(w)
				return
			}

			if !claims.Authorize(required) {
				api.ErrForbidden.WriteError(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
