package http

import (
	"errors"
	"net/http"

	"github.com/ecobazaarx/ecobazaar/internal/store"
	"github.com/ecobazaarx/ecobazaar/pkg/api"
	"github.com/ecobazaarx/ecobazaar/pkg/httpx"
	"github.com/ecobazaarx/ecobazaar/pkg/slogx"
)

// requireActive refuses authenticated requests from deactivated
// accounts. Tokens have no server-side revocation, so deactivation is
// enforced here on every authenticated request rather than waiting for
// the token to expire.
func (r *Router) requireActive() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()

			account, err := r.store.Accounts().GetAccountByID(ctx, httpx.AccountIDFromCtx(ctx))
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					// Token subject no longer exists; treat as a dead session.
					api.ErrInvalidToken.WriteError(w)
					return
				}
				slogx.FromContext(ctx).Error("account status check failed", "error", err)
				api.ErrServerError.WriteError(w)
				return
			}
			if !account.IsActive {
				api.ErrAccountDeactivated.WriteError(w)
				return
			}

			next.ServeHTTP(w, req)
		})
	}
}
