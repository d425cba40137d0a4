package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/clubhouse/internal/api/response"
	"github.com/mcoot/clubhouse/internal/dependencies/clock"
	"github.com/mcoot/clubhouse/internal/middleware"
	"github.com/mcoot/clubhouse/internal/storage"
)

const pingTimeout = 2 * time.Second

// HealthHandler reports liveness and storage connectivity
type HealthHandler struct {
	storage storage.Storage
	clock   clock.Clock
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(storage storage.Storage, clock clock.Clock) *HealthHandler {
	return &HealthHandler{
		storage: storage,
		clock:   clock,
	}
}

// Check handles GET /api/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	body := response.Health{Status: "OK", Timestamp: h.clock.Now(), Storage: "ok"}
	status := http.StatusOK
	if err := h.storage.Ping(ctx); err != nil {
		middleware.Logger(r.Context()).Warn("storage ping failed", slog.String("error", err.Error()))
		body.Status = "DEGRADED"
		body.Storage = "unavailable"
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, status, body)
}
