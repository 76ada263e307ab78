package http

import (
	"errors"
	"net/http"

	"github.com/ecobazaarx/ecobazaar/internal/service"
	"github.com/ecobazaarx/ecobazaar/internal/store"
	"github.com/ecobazaarx/ecobazaar/pkg/api"
	"github.com/ecobazaarx/ecobazaar/pkg/httpx"
	"github.com/ecobazaarx/ecobazaar/pkg/slogx"
)

type AuthHandler struct {
	AuthService *service.AuthService

	// RevealResetTokens puts the issued reset token in the password-reset
	// response instead of delivering it out of band. Local development
	// only; there is no mail delivery in this build.
	RevealResetTokens bool
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req api.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		api.ErrValidation.WithMessage("invalid request body").WriteError(w)
		return
	}

	account, err := h.AuthService.Register(ctx, service.RegisterParams{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		Role:         req.Role,
		BusinessName: req.BusinessName,
		BusinessType: req.BusinessType,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			api.ErrValidation.WithMessage(err.Error()).WriteError(w)
		case errors.Is(err, service.ErrDuplicateEmail):
			api.ErrDuplicateIdentity.WithMessage("Email is already registered").WriteError(w)
		case errors.Is(err, service.ErrDuplicateUsername):
			api.ErrDuplicateIdentity.WithMessage("Username is already taken").WriteError(w)
		default:
			log.Error("registration failed", "error", err)
			api.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, api.RegisterResponse{
		Message: "Account created successfully",
		User:    toAPIAccount(account),
	})
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req api.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		api.ErrValidation.WithMessage("invalid request body").WriteError(w)
		return
	}

	account, token, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			api.ErrInvalidCredentials.WriteError(w)
		case errors.Is(err, service.ErrAccountLocked):
			api.ErrAccountLocked.WriteError(w)
		case errors.Is(err, service.ErrAccountDeactivated):
			api.ErrAccountDeactivated.WriteError(w)
		default:
			log.Error("login failed", "error", err)
			api.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, api.LoginResponse{
		Message: "Login successful",
		Token:   token,
		User:    toAPIAccount(account),
	})
}

func (h *AuthHandler) HandlePasswordReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req api.PasswordResetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		api.ErrValidation.WithMessage("invalid request body").WriteError(w)
		return
	}

	// The response never reveals whether the email is registered.
	resp := api.PasswordResetResponse{
		Message: "If the email is registered, a reset token has been issued",
	}

	token, err := h.AuthService.StartPasswordReset(ctx, req.Email)
	switch {
	case err == nil:
		if h.RevealResetTokens {
			resp.ResetToken = token
		}
	case errors.Is(err, store.ErrNotFound):
		// fall through to the generic response
	default:
		log.Error("password reset failed", "error", err)
		api.ErrServerError.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) HandlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req api.PasswordResetConfirmRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		api.ErrValidation.WithMessage("invalid request body").WriteError(w)
		return
	}

	err := h.AuthService.ConfirmPasswordReset(ctx, req.Token, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			api.ErrValidation.WithMessage(err.Error()).WriteError(w)
		case errors.Is(err, service.ErrInvalidResetToken):
			api.ErrInvalidToken.WithMessage("Reset token is invalid or expired").WriteError(w)
		default:
			log.Error("password reset confirm failed", "error", err)
			api.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, api.MessageResponse{
		Message: "Password updated successfully",
	})
}
