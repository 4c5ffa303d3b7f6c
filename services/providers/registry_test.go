package providers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juyterman1000/smartllm-router/models"
	"github.com/juyterman1000/smartllm-router/services"
)

type stubProvider struct {
	name models.Provider
}

func (s *stubProvider) Name() models.Provider { return s.name }

func (s *stubProvider) Invoke(context.Context, string, []models.Message, InvokeOptions) (*Invocation, error) {
	return &Invocation{Content: "ok"}, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, r.Len())

	r.Register(&stubProvider{name: models.ProviderOpenAI})
	r.Register(&stubProvider{name: models.ProviderAnthropic})

	t.Run("resolve registered", func(t *testing.T) {
		p, err := r.Resolve(models.ProviderOpenAI)
		require.NoError(t, err)
		assert.Equal(t, models.ProviderOpenAI, p.Name())
	})

	t.Run("unregistered is missing credential", func(t *testing.T) {
		_, err := r.Resolve(models.ProviderGoogle)
		require.Error(t, err)
		assert.True(t, errors.Is(err, services.ErrMissingCredential))
	})

	t.Run("has and names", func(t *testing.T) {
		assert.True(t, r.Has(models.ProviderAnthropic))
		assert.False(t, r.Has(models.ProviderMistral))
		assert.ElementsMatch(t,
			[]models.Provider{models.ProviderOpenAI, models.ProviderAnthropic},
			r.Names())
	})

	t.Run("register replaces", func(t *testing.T) {
		r.Register(&stubProvider{name: models.ProviderOpenAI})
		assert.Equal(t, 2, r.Len())
	})
}

func TestProviderError(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := NewProviderError(models.ProviderOpenAI, 503, "upstream unavailable", true, cause)

	assert.Contains(t, err.Error(), "openai")
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, cause, errors.Unwrap(err))

	t.Run("retryable detection", func(t *testing.T) {
		assert.True(t, IsRetryable(err))
		assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", err)))
		assert.False(t, IsRetryable(NewProviderError(models.ProviderOpenAI, 400, "bad request", false, nil)))
		assert.False(t, IsRetryable(errors.New("plain")))
	})
}
