package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/juyterman1000/smartllm-router/models"
	"github.com/juyterman1000/smartllm-router/services/router"
	"github.com/juyterman1000/smartllm-router/utils"
)

// CompletionRequest is the inbound chat completion payload.
type CompletionRequest struct {
	// Model pins an explicit catalog model; empty or "auto" routes
	// automatically.
	Model string `json:"model,omitempty"`

	// Strategy overrides the configured routing strategy for this request.
	Strategy string `json:"strategy,omitempty" validate:"omitempty,oneof=cost_optimized quality_first balanced"`

	Messages []ChatMessage `json:"messages" validate:"required,min=1,dive"`

	MaxTokens   int     `json:"max_tokens,omitempty" validate:"omitempty,gt=0"`
	Temperature float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
}

// ChatMessage is a single conversation message.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

// CompletionHandler serves POST /v1/completions.
type CompletionHandler struct {
	service RouterService
	logger  *zap.Logger
}

// NewCompletionHandler creates a completion handler.
func NewCompletionHandler(service RouterService, logger *zap.Logger) *CompletionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompletionHandler{service: service, logger: logger}
}

// Create routes one completion request.
func (h *CompletionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "invalid JSON body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), fieldsToDetails(utils.GetValidationFields(err)))
		return
	}

	messages := make([]models.Message, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = models.Message{Role: m.Role, Content: m.Content}
	}

	resp, err := h.service.Route(r.Context(), router.Request{
		Messages:    messages,
		Model:       req.Model,
		Strategy:    req.Strategy,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, resp)
}

func fieldsToDetails(fields map[string]string) map[string]interface{} {
	if fields == nil {
		return nil
	}
	details := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		details[k] = v
	}
	return details
}
