package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ecobazaarx/ecobazaar/internal/domain"
	"github.com/ecobazaarx/ecobazaar/internal/service"
	"github.com/ecobazaarx/ecobazaar/pkg/api"
	"github.com/ecobazaarx/ecobazaar/pkg/httpx"
	"github.com/ecobazaarx/ecobazaar/pkg/slogx"
)

type OrdersHandler struct {
	OrderService *service.OrderService
}

func actor(r *http.Request) (string, domain.Role) {
	ctx := r.Context()
	return httpx.AccountIDFromCtx(ctx), domain.ParseRole(httpx.RoleFromCtx(ctx))
}

func (h *OrdersHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	order, err := h.OrderService.Checkout(ctx, httpx.AccountIDFromCtx(ctx))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			api.ErrValidation.WithMessage("Cart is empty").WriteError(w)
		case errors.Is(err, service.ErrInsufficientStock):
			api.ErrConflict.WithMessage("Not enough stock available").WriteError(w)
		default:
			log.Error("checkout failed", "error", err)
			api.ErrServerError.WriteError(w)
		}
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toAPIOrder(order))
}

func (h *OrdersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	q := r.URL.Query()

	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	actorID, actorRole := actor(r)
	orders, err := h.OrderService.List(ctx, actorID, actorRole, limit, offset)
	if err != nil {
		log.Error("order listing failed", "error", err)
		api.ErrServerError.WriteError(w)
		return
	}

	out := make([]api.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, toAPIOrder(o))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	actorID, actorRole := actor(r)

	order, err := h.OrderService.Get(ctx, actorID, actorRole, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			api.ErrNotFound.WithMessage("Order not found").WriteError(w)
			return
		}
		log.Error("order fetch failed", "error", err)
		api.ErrServerError.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAPIOrder(order))
}

func (h *OrdersHandler) HandleIntent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	actorID, actorRole := actor(r)

	intent, err := h.OrderService.Intent(ctx, actorID, actorRole, r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			api.ErrNotFound.WithMessage("Order not found").WriteError(w)
		case errors.Is(err, service.ErrOrderNotPayable):
			api.ErrConflict.WithMessage("Order is not awaiting payment").WriteError(w)
		default:
			log.Error("payment intent failed", "error", err)
			api.ErrServerError.WriteError(w)
		}
		return
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toAPIPaymentIntent(intent))
}

func (h *OrdersHandler) HandleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	actorID, actorRole := actor(r)

	order, err := h.OrderService.ConfirmPayment(ctx, actorID, actorRole, r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			api.ErrNotFound.WithMessage("Order not found").WriteError(w)
		case errors.Is(err, service.ErrOrderNotPayable):
			api.ErrConflict.WithMessage("Order has already been paid or cancelled").WriteError(w)
		default:
			log.Error("payment confirmation failed", "error", err)
			api.ErrServerError.WriteError(w)
		}
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAPIOrder(order))
}

func (h *OrdersHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	actorID, actorRole := actor(r)

	err := h.OrderService.Cancel(ctx, actorID, actorRole, r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			api.ErrNotFound.WithMessage("Order not found").WriteError(w)
		case errors.Is(err, service.ErrOrderNotPayable):
			api.ErrConflict.WithMessage("Only pending orders can be cancelled").WriteError(w)
		default:
			log.Error("order cancel failed", "error", err)
			api.ErrServerError.WriteError(w)
		}
		return
	}
	httpx.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Order cancelled"})
}
