package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/threadly-dev/threadly/shared/api"
	"github.com/threadly-dev/threadly/shared/logger"
)

const readyTimeout = 2 * time.Second

// Health answers as long as the process serves HTTP.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Ready pings the database; any failure turns the probe into a 503.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	resp := api.ReadyResponse{Ready: true, Checks: map[string]string{"database": "ok"}}
	if err := h.health.Ping(ctx); err != nil {
		logger.Log.Warn("readiness check failed", "dependency", "database", "error", err)
		resp.Ready = false
		resp.Checks["database"] = "unavailable"
		writeJSONStatus(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, resp)
}
