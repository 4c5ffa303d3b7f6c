package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/juyterman1000/smartllm-router/services/rules"
	"github.com/juyterman1000/smartllm-router/utils"
)

// RulesHandler manages custom routing rules.
type RulesHandler struct {
	service RouterService
	logger  *zap.Logger
}

// NewRulesHandler creates a rules handler.
func NewRulesHandler(service RouterService, logger *zap.Logger) *RulesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RulesHandler{service: service, logger: logger}
}

// List serves GET /v1/rules in evaluation order.
func (h *RulesHandler) List(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, map[string]interface{}{"rules": h.service.Rules()})
}

// Create serves POST /v1/rules.
func (h *RulesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var rule rules.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		_ = utils.WriteBadRequest(w, "invalid JSON body", nil)
		return
	}

	if err := h.service.AddRule(rule); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, rule)
}

// Delete serves DELETE /v1/rules/{name}.
func (h *RulesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !h.service.RemoveRule(name) {
		_ = utils.WriteNotFound(w, "rule not found: "+name)
		return
	}
	utils.WriteNoContent(w)
}

// Clear serves DELETE /v1/rules.
func (h *RulesHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.service.ClearRules()
	utils.WriteNoContent(w)
}
