package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	err := NewUnknownModelError("gpt-99")

	assert.True(t, errors.Is(err, ErrUnknownModel))
	assert.False(t, errors.Is(err, ErrMissingCredential))
}

func TestDomainError_IsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("route failed: %w", NewMissingCredentialError("anthropic"))

	assert.True(t, errors.Is(err, ErrMissingCredential))
	assert.Equal(t, ErrorTypeMissingCredential, TypeOf(err))
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewProviderFailureError("openai", cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrProviderFailure))
}

func TestDomainError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := NewDomainError(ErrorTypeConfiguration, "bad tier ladder", nil)
		assert.Equal(t, "configuration: bad tier ladder", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		err := NewDomainError(ErrorTypeProviderFailure, "upstream down", errors.New("503"))
		assert.Contains(t, err.Error(), "upstream down")
		assert.Contains(t, err.Error(), "503")
	})
}

func TestTypeOf_NonDomainError(t *testing.T) {
	assert.Equal(t, ErrorTypeInternal, TypeOf(errors.New("plain")))
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewUnknownModelError("nope")
	assert.Equal(t, "nope", err.Details["model"])
}
