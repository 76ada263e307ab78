package http

import (
	"net/http"
	"time"

	"github.com/ecobazaarx/ecobazaar/pkg/api"
	"github.com/ecobazaarx/ecobazaar/pkg/httpx"
)

// LivezHandler always reports ok while the process is running.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, api.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
