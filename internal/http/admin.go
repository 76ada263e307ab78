package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ecobazaarx/ecobazaar/internal/service"
	"github.com/ecobazaarx/ecobazaar/pkg/api"
	"github.com/ecobazaarx/ecobazaar/pkg/httpx"
	"github.com/ecobazaarx/ecobazaar/pkg/slogx"
)

type AdminHandler struct {
	UserService *service.UserService
}

func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	q := r.URL.Query()

	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	accounts, total, err := h.UserService.List(ctx, q.Get("role"), limit, offset)
	if err != nil {
		log.Error("account listing failed", "error", err)
		api.ErrServerError.WriteError(w)
		return
	}

	out := api.AccountList{
		Users:  make([]api.Account, 0, len(accounts)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, a := range accounts {
		out.Users = append(out.Users, toAPIAccount(a))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h *AdminHandler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req setActiveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		api.ErrValidation.WithMessage("invalid request body").WriteError(w)
		return
	}

	if err := h.UserService.SetActive(ctx, r.PathValue("id"), req.Active); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			api.ErrNotFound.WithMessage("Account not found").WriteError(w)
			return
		}
		log.Error("account activation change failed", "error", err)
		api.ErrServerError.WriteError(w)
		return
	}

	msg := "Account deactivated"
	if req.Active {
		msg = "Account activated"
	}
	httpx.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: msg})
}

type verifySellerRequest struct {
	Verified bool `json:"verified"`
}

func (h *AdminHandler) HandleVerifySeller(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req verifySellerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		api.ErrValidation.WithMessage("invalid request body").WriteError(w)
		return
	}

	if err := h.UserService.VerifySeller(ctx, r.PathValue("id"), req.Verified); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			api.ErrNotFound.WithMessage("Seller not found").WriteError(w)
			return
		}
		log.Error("seller verification change failed", "error", err)
		api.ErrServerError.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Seller verification updated"})
}

func (h *AdminHandler) HandleSellerStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	total, verified, active, err := h.UserService.SellerOverview(ctx)
	if err != nil {
		log.Error("seller stats failed", "error", err)
		api.ErrServerError.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, api.SellerStats{
		TotalSellers:    total,
		VerifiedSellers: verified,
		ActiveSellers:   active,
	})
}
