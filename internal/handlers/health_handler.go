package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/iyunix/go-llamachat/internal/services"
)

// HealthChecker is satisfied by the chat service, which probes the inference backend.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	checker HealthChecker
	logger  services.Logger
}

func NewHealthHandler(checker HealthChecker, logger services.Logger) *HealthHandler {
	return &HealthHandler{checker: checker, logger: logger}
}

// Health answers 200 when the inference backend responds and 503 otherwise.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.checker.HealthCheck(ctx); err != nil {
		h.logger.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":    "degraded",
			"inference": "unreachable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "inference": "ok"})
}
