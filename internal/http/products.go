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

type ProductsHandler struct {
	ProductService *service.ProductService
}

func (h *ProductsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	q := r.URL.Query()

	filter := domain.ProductFilter{
		Category: q.Get("category"),
		SellerID: q.Get("seller_id"),
		Search:   q.Get("search"),
	}
	if v := q.Get("featured"); v != "" {
		featured := v == "true" || v == "1"
		filter.Featured = &featured
	}
	if v := q.Get("max_carbon"); v != "" {
		filter.MaxCarbonGrams, _ = strconv.ParseInt(v, 10, 64)
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	products, total, err := h.ProductService.List(ctx, filter)
	if err != nil {
		log.Error("product listing failed", "error", err)
		api.ErrServerError.WriteError(w)
		return
	}

	out := api.ProductList{
		Products: make([]api.Product, 0, len(products)),
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}
	for _, p := range products {
		out.Products = append(out.Products, toAPIProduct(p))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *ProductsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	product, err := h.ProductService.Get(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			api.ErrNotFound.WithMessage("Product not found").WriteError(w)
			return
		}
		log.Error("product fetch failed", "error", err)
		api.ErrServerError.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAPIProduct(product))
}

func (h *ProductsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req api.ProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		api.ErrValidation.WithMessage("invalid request body").WriteError(w)
		return
	}

	product, err := h.ProductService.Create(ctx, httpx.AccountIDFromCtx(ctx), service.ProductParams{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		PricePaise:  req.PricePaise,
		CarbonGrams: req.CarbonGrams,
		Stock:       req.Stock,
		Featured:    req.Featured,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			api.ErrValidation.WithMessage(err.Error()).WriteError(w)
			return
		}
		log.Error("product create failed", "error", err)
		api.ErrServerError.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toAPIProduct(product))
}

func (h *ProductsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req api.ProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		api.ErrValidation.WithMessage("invalid request body").WriteError(w)
		return
	}

	product, err := h.ProductService.Update(ctx,
		httpx.AccountIDFromCtx(ctx),
		domain.ParseRole(httpx.RoleFromCtx(ctx)),
		r.PathValue("id"),
		service.ProductParams{
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
			PricePaise:  req.PricePaise,
			CarbonGrams: req.CarbonGrams,
			Stock:       req.Stock,
			Featured:    req.Featured,
			ImageURL:    req.ImageURL,
		})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			api.ErrValidation.WithMessage(err.Error()).WriteError(w)
		case errors.Is(err, service.ErrProductNotFound):
			api.ErrNotFound.WithMessage("Product not found").WriteError(w)
		case errors.Is(err, service.ErrForbidden):
			api.ErrForbidden.WithMessage("You can only modify your own products").WriteError(w)
		default:
			log.Error("product update failed", "error", err)
			api.ErrServerError.WriteError(w)
		}
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAPIProduct(product))
}

func (h *ProductsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	err := h.ProductService.Delete(ctx,
		httpx.AccountIDFromCtx(ctx),
		domain.ParseRole(httpx.RoleFromCtx(ctx)),
		r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			api.ErrNotFound.WithMessage("Product not found").WriteError(w)
		case errors.Is(err, service.ErrForbidden):
			api.ErrForbidden.WithMessage("You can only delete your own products").WriteError(w)
		default:
			log.Error("product delete failed", "error", err)
			api.ErrServerError.WriteError(w)
		}
		return
	}
	httpx.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Product deleted"})
}
