package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/juyterman1000/smartllm-router/utils"
)

const defaultWindowDays = 7

// AnalyticsHandler serves the usage aggregate.
type AnalyticsHandler struct {
	service RouterService
	logger  *zap.Logger
}

// NewAnalyticsHandler creates an analytics handler.
func NewAnalyticsHandler(service RouterService, logger *zap.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsHandler{service: service, logger: logger}
}

// Get serves GET /v1/analytics?window_days=7.
func (h *AnalyticsHandler) Get(w http.ResponseWriter, r *http.Request) {
	window := defaultWindowDays
	if raw := r.URL.Query().Get("window_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			_ = utils.WriteBadRequest(w, "window_days must be a non-negative integer", nil)
			return
		}
		window = parsed
	}

	_ = utils.WriteOK(w, h.service.Analytics(window))
}
