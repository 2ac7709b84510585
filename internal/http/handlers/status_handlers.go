package handlers

import (
	"net/http"
	"time"
)

// StatusHandler serves the root status and health endpoints. Both bypass the
// gate pipeline entirely.
type StatusHandler struct {
	start time.Time
}

func NewStatusHandler() *StatusHandler {
	return &StatusHandler{start: time.Now()}
}

func (h *StatusHandler) Root(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, StatusResponse{Name: "Postgres Products API", Status: "ok"})
}

func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Uptime: time.Since(h.start).Seconds()})
}
