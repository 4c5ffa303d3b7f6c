package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/juyterman1000/smartllm-router/utils"
)

// ModelsHandler lists the model catalog.
type ModelsHandler struct {
	service RouterService
	logger  *zap.Logger
}

// NewModelsHandler creates a models handler.
func NewModelsHandler(service RouterService, logger *zap.Logger) *ModelsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelsHandler{service: service, logger: logger}
}

// List serves GET /v1/models.
func (h *ModelsHandler) List(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, map[string]interface{}{"models": h.service.Models()})
}
