package http

import (
	"net/http"

	"github.com/ecobazaarx/ecobazaar/internal/service"
	"github.com/ecobazaarx/ecobazaar/pkg/api"
	"github.com/ecobazaarx/ecobazaar/pkg/httpx"
	"github.com/ecobazaarx/ecobazaar/pkg/slogx"
)

type SellerHandler struct {
	ProductService *service.ProductService
}

// HandleStats returns the authenticated seller's own dashboard figures.
func (h *SellerHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	stats, err := h.ProductService.Stats(ctx, httpx.AccountIDFromCtx(ctx))
	if err != nil {
		log.Error("seller dashboard failed", "error", err)
		api.ErrServerError.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, api.SellerDashboard{
		ProductCount:    stats.ProductCount,
		UnitsSold:       stats.UnitsSold,
		RevenuePaise:    stats.RevenuePaise,
		CarbonSoldGrams: stats.CarbonSoldGrams,
	})
}
