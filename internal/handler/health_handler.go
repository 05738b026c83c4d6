package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/keketsolithane/keketso/internal/store"
)

type HealthHandler struct {
	store   store.Pinger
	timeout time.Duration
}

func NewHealthHandler(p store.Pinger) *HealthHandler {
	return &HealthHandler{store: p, timeout: 3 * time.Second}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
