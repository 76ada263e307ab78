package http

import (
	"errors"
	"net/http"

	"github.com/ecobazaarx/ecobazaar/internal/service"
	"github.com/ecobazaarx/ecobazaar/pkg/api"
	"github.com/ecobazaarx/ecobazaar/pkg/httpx"
	"github.com/ecobazaarx/ecobazaar/pkg/slogx"
)

type MeHandler struct {
	UserService *service.UserService
}

// ServeHTTP returns the authenticated account's own profile.
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	account, err := h.UserService.GetByID(ctx, httpx.AccountIDFromCtx(ctx))
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			// Token subject no longer exists; treat as a dead session.
			api.ErrInvalidToken.WriteError(w)
			return
		}
		log.Error("profile fetch failed", "error", err)
		api.ErrServerError.WriteError(w)
		return
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toAPIAccount(account))
}
