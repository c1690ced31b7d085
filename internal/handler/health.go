package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/GoArmGo/UserService/internal/core/ports"
)

// HealthHandler отвечает на /healthz, проверяя соединение с бд.
type HealthHandler struct {
	checker ports.HealthChecker
	logger  *slog.Logger
}

func NewHealthHandler(checker ports.HealthChecker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{checker: checker, logger: logger}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.checker.PingContext(ctx); err != nil {
		h.logger.Warn("health check failed", "error", err)
		respondWithJSON(w, http.StatusServiceUnavailable, statusResponse{
			Status:  statusError,
			Message: "database unavailable",
		}, h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, statusResponse{Status: "ok", Message: "healthy"}, h.logger)
}
