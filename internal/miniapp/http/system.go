package http

import (
	"net/http"
	"time"

	"github.com/swapline/miniapp/internal/miniapp/store"
	"github.com/swapline/miniapp/pkg/httpx"
)

// HealthResponse is the body for the liveness and readiness probes.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

// LivezHandler reports process liveness.
//
//	@Summary	Liveness probe
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Router		/livez [get]
func LivezHandler(startTime time.Time, buildVersion string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: buildVersion,
		})
	})
}

// ReadyzHandler reports readiness, degrading when the database is
// unreachable.
//
//	@Summary	Readiness probe
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Failure	503	{object}	HealthResponse
//	@Router		/readyz [get]
func ReadyzHandler(startTime time.Time, buildVersion string, st store.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: buildVersion,
		}

		if err := st.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			httpx.WriteJSON(w, http.StatusServiceUnavailable, resp)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, resp)
	})
}
