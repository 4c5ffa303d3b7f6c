// Package providers defines the unified backend interface and the adapter
// registry. Each adapter translates the router's chat format to one
// upstream API.
package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/juyterman1000/smartllm-router/models"
)

// Provider is one upstream LLM backend.
type Provider interface {
	// Name returns the provider identity.
	Name() models.Provider

	// Invoke runs a chat completion against the named model. Cancellation
	// and deadlines come from ctx.
	Invoke(ctx context.Context, model string, messages []models.Message, opts InvokeOptions) (*Invocation, error)
}

// InvokeOptions carries the optional generation parameters.
type InvokeOptions struct {
	MaxTokens   int
	Temperature float64
}

// Invocation is the unified result of one completion call.
type Invocation struct {
	Content      string
	InputTokens  int
	OutputTokens int
}

// Config holds the per-provider HTTP settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// Defaults applied by every adapter when a Config field is zero.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 2
	DefaultRetryDelay = 500 * time.Millisecond
)

// WithDefaults fills zero fields, using baseURL when none is configured.
func (c Config) WithDefaults(baseURL string) Config {
	if c.BaseURL == "" {
		c.BaseURL = baseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	return c
}

// ProviderError is a failed upstream call with enough context to decide
// whether a retry or fallback is worthwhile.
type ProviderError struct {
	Provider   models.Provider
	StatusCode int
	Message    string

	// Retryable marks transport failures and 5xx/429 responses.
	Retryable bool

	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %s: %s (status %d)", e.Provider, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a provider error.
func NewProviderError(provider models.Provider, statusCode int, message string, retryable bool, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
		Retryable:  retryable,
		Cause:      cause,
	}
}

// IsRetryable reports whether err is a retryable provider error.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}
