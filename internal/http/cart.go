package http

import (
	"errors"
	"net/http"

	"github.com/ecobazaarx/ecobazaar/internal/service"
	"github.com/ecobazaarx/ecobazaar/pkg/api"
	"github.com/ecobazaarx/ecobazaar/pkg/httpx"
	"github.com/ecobazaarx/ecobazaar/pkg/slogx"
)

type CartHandler struct {
	CartService *service.CartService
}

func (h *CartHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	cart, err := h.CartService.Get(ctx, httpx.AccountIDFromCtx(ctx))
	if err != nil {
		log.Error("cart fetch failed", "error", err)
		api.ErrServerError.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAPICart(cart))
}

func (h *CartHandler) HandleSet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req api.CartItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		api.ErrValidation.WithMessage("invalid request body").WriteError(w)
		return
	}

	accountID := httpx.AccountIDFromCtx(ctx)
	err := h.CartService.SetItem(ctx, accountID, req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			api.ErrValidation.WithMessage(err.Error()).WriteError(w)
		case errors.Is(err, service.ErrProductNotFound):
			api.ErrNotFound.WithMessage("Product not found").WriteError(w)
		case errors.Is(err, service.ErrInsufficientStock):
			api.ErrConflict.WithMessage("Not enough stock available").WriteError(w)
		default:
			log.Error("cart update failed", "error", err)
			api.ErrServerError.WriteError(w)
		}
		return
	}

	cart, err := h.CartService.Get(ctx, accountID)
	if err != nil {
		log.Error("cart fetch failed", "error", err)
		api.ErrServerError.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAPICart(cart))
}

func (h *CartHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	err := h.CartService.RemoveItem(ctx, httpx.AccountIDFromCtx(ctx), r.PathValue("productID"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			api.ErrNotFound.WithMessage("Product is not in the cart").WriteError(w)
			return
		}
		log.Error("cart item removal failed", "error", err)
		api.ErrServerError.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Item removed"})
}

func (h *CartHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := h.CartService.Clear(ctx, httpx.AccountIDFromCtx(ctx)); err != nil {
		log.Error("cart clear failed", "error", err)
		api.ErrServerError.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Cart cleared"})
}
