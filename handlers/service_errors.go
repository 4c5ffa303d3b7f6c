package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/juyterman1000/smartllm-router/services"
	"github.com/juyterman1000/smartllm-router/utils"
)

// HandleServiceError maps domain errors to HTTP responses.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	var details map[string]interface{}
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		details = domainErr.Details
	}

	var status int
	var code string
	switch services.TypeOf(err) {
	case services.ErrorTypeValidation, services.ErrorTypeConfiguration:
		status, code = http.StatusBadRequest, "bad_request"
	case services.ErrorTypeUnknownModel:
		status, code = http.StatusNotFound, "unknown_model"
	case services.ErrorTypeMissingCredential:
		status, code = http.StatusServiceUnavailable, "missing_credential"
	case services.ErrorTypeProviderFailure:
		status, code = http.StatusBadGateway, "provider_failure"
	default:
		status, code = http.StatusInternalServerError, "internal_error"
		logger.Error("unhandled service error", zap.Error(err))
	}

	if writeErr := utils.WriteError(w, status, code, err.Error(), details); writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}
}
