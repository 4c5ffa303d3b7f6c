// Package services holds the error taxonomy shared by the routing services.
package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a routing error.
type ErrorType string

const (
	// ErrorTypeUnknownModel marks an explicit model name that is not in the
	// catalog. Fatal to the request, never retried.
	ErrorTypeUnknownModel ErrorType = "unknown_model"

	// ErrorTypeMissingCredential marks a resolved provider with no API key
	// configured. Fatal, surfaced to the caller.
	ErrorTypeMissingCredential ErrorType = "missing_credential"

	// ErrorTypeProviderFailure marks an upstream invocation failure. Retried
	// once via the fallback model when fallback is enabled.
	ErrorTypeProviderFailure ErrorType = "provider_failure"

	// ErrorTypeConfiguration marks an invalid strategy name, malformed rule
	// or bad catalog configuration.
	ErrorTypeConfiguration ErrorType = "configuration"

	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeInternal   ErrorType = "internal"
)

// DomainError is a structured error carrying its category and context.
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by type so sentinel comparisons work through
// wrapping.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail attaches a key/value detail to the error.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error.
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

var (
	ErrUnknownModel      = NewDomainError(ErrorTypeUnknownModel, "unknown model", nil)
	ErrMissingCredential = NewDomainError(ErrorTypeMissingCredential, "no credential configured for provider", nil)
	ErrProviderFailure   = NewDomainError(ErrorTypeProviderFailure, "provider invocation failed", nil)
	ErrInvalidStrategy   = NewDomainError(ErrorTypeConfiguration, "invalid routing strategy", nil)
	ErrInvalidRule       = NewDomainError(ErrorTypeConfiguration, "malformed routing rule", nil)
	ErrInvalidCatalog    = NewDomainError(ErrorTypeConfiguration, "invalid model catalog", nil)
)

// NewUnknownModelError builds an unknown-model error for the given name.
func NewUnknownModelError(model string) *DomainError {
	return NewDomainError(ErrorTypeUnknownModel, fmt.Sprintf("unknown model: %s", model), nil).
		WithDetail("model", model)
}

// NewMissingCredentialError builds a missing-credential error for a provider.
func NewMissingCredentialError(provider string) *DomainError {
	return NewDomainError(ErrorTypeMissingCredential,
		fmt.Sprintf("no API key configured for provider %s", provider), nil).
		WithDetail("provider", provider)
}

// NewProviderFailureError wraps an upstream invocation error.
func NewProviderFailureError(provider string, err error) *DomainError {
	return NewDomainError(ErrorTypeProviderFailure,
		fmt.Sprintf("provider %s invocation failed", provider), err).
		WithDetail("provider", provider)
}

// TypeOf returns the domain error type for err, or ErrorTypeInternal when err
// is not a DomainError.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ErrorTypeInternal
}
