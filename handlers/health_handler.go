package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/juyterman1000/smartllm-router/utils"
)

// Pinger is anything with a health check, typically the database pool.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db     Pinger // nil when no durable store is configured
	logger *zap.Logger
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(db Pinger, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{db: db, logger: logger}
}

// Live serves GET /healthz. The process is alive if it can answer.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, map[string]string{"status": "healthy"})
}

// Ready serves GET /readyz, checking downstream dependencies.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.HealthCheck(r.Context()); err != nil {
			h.logger.Warn("readiness check failed", zap.Error(err))
			_ = utils.WriteError(w, http.StatusServiceUnavailable, "not_ready", "database unavailable", nil)
			return
		}
	}
	_ = utils.WriteOK(w, map[string]string{"status": "ready"})
}
