package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/juyterman1000/smartllm-router/models"
	"github.com/juyterman1000/smartllm-router/services"
	"github.com/juyterman1000/smartllm-router/services/cache"
	"github.com/juyterman1000/smartllm-router/services/catalog"
	"github.com/juyterman1000/smartllm-router/services/providers"
	"github.com/juyterman1000/smartllm-router/services/rules"
	"github.com/juyterman1000/smartllm-router/services/selector"
	"github.com/juyterman1000/smartllm-router/services/tracker"
)

// scriptedProvider returns canned invocations per model name.
type scriptedProvider struct {
	name    models.Provider
	results map[string]*providers.Invocation
	errs    map[string]error
	calls   []string
}

func (s *scriptedProvider) Name() models.Provider { return s.name }

func (s *scriptedProvider) Invoke(_ context.Context, model string, _ []models.Message, _ providers.InvokeOptions) (*providers.Invocation, error) {
	s.calls = append(s.calls, model)
	if err, ok := s.errs[model]; ok {
		return nil, err
	}
	if inv, ok := s.results[model]; ok {
		return inv, nil
	}
	return &providers.Invocation{Content: "canned", InputTokens: 10, OutputTokens: 5}, nil
}

type fixture struct {
	router   *Router
	openai   *scriptedProvider
	registry *providers.Registry
	tracker  *tracker.Tracker
	cache    *cache.Memory
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	cat := catalog.New(zap.NewNop())
	sel, err := selector.New(cat, selector.StrategyCostOptimized, selector.Config{}, zap.NewNop())
	require.NoError(t, err)

	openai := &scriptedProvider{
		name:    models.ProviderOpenAI,
		results: map[string]*providers.Invocation{},
		errs:    map[string]error{},
	}
	registry := providers.NewRegistry()
	registry.Register(openai)
	for _, name := range []models.Provider{models.ProviderAnthropic, models.ProviderGoogle, models.ProviderMistral} {
		registry.Register(&scriptedProvider{name: name, results: map[string]*providers.Invocation{}, errs: map[string]error{}})
	}

	tr := tracker.New(nil, zap.NewNop())
	respCache := cache.NewMemory(time.Hour, zap.NewNop())

	return &fixture{
		router: New(cat, rules.NewEngine(zap.NewNop()), sel, respCache,
			registry, tr, nil, opts, zap.NewNop()),
		openai:   openai,
		registry: registry,
		tracker:  tr,
		cache:    respCache,
	}
}

func userMessage(text string) []models.Message {
	return []models.Message{{Role: "user", Content: text}}
}

func TestRouteSimpleQuery(t *testing.T) {
	f := newFixture(t, Options{})

	resp, err := f.router.Route(context.Background(), Request{
		Messages: userMessage("What is the capital of France?"),
	})
	require.NoError(t, err)

	// A trivial question lands on the cheapest tier.
	assert.Equal(t, "mistral-7b", resp.Model)
	assert.Equal(t, models.ProviderMistral, resp.Provider)
	assert.NotEmpty(t, resp.Content)
	assert.Greater(t, resp.Savings, 0.0)
	assert.False(t, resp.Cached)

	assert.Equal(t, 1, f.tracker.Len())
}

func TestRouteExplicitModel(t *testing.T) {
	f := newFixture(t, Options{})

	resp, err := f.router.Route(context.Background(), Request{
		Messages: userMessage("hello"),
		Model:    "gpt-4",
	})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", resp.Model)

	t.Run("unknown model is fatal", func(t *testing.T) {
		_, err := f.router.Route(context.Background(), Request{
			Messages: userMessage("something nobody asked before"),
			Model:    "gpt-99",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, services.ErrUnknownModel))
		assert.Equal(t, 1, f.tracker.Len(), "failed request must not be tracked")
	})
}

func TestRouteRuleOverridesStrategy(t *testing.T) {
	f := newFixture(t, Options{})
	require.NoError(t, f.router.AddRule(rules.TaskIs("code-to-top-tier", models.TaskCode, "gpt-4", 100)))

	resp, err := f.router.Route(context.Background(), Request{
		Messages: userMessage("Write a Python function to implement quicksort"),
	})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", resp.Model)
}

func TestRouteStrategyOverride(t *testing.T) {
	f := newFixture(t, Options{})

	resp, err := f.router.Route(context.Background(), Request{
		Messages: userMessage("What is the capital of France?"),
		Strategy: "quality_first",
	})
	require.NoError(t, err)
	assert.Equal(t, "gemini-pro", resp.Model)

	_, err = f.router.Route(context.Background(), Request{
		Messages: userMessage("hello again"),
		Strategy: "nope",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrInvalidStrategy))
}

func TestRouteCaching(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	req := Request{Messages: userMessage("What is the capital of France?")}

	first, err := f.router.Route(ctx, req)
	require.NoError(t, err)

	second, err := f.router.Route(ctx, req)
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, 1, f.tracker.Len(), "cache hits are not re-tracked")
}

func TestRouteFallback(t *testing.T) {
	t.Run("enabled retries with fallback model", func(t *testing.T) {
		f := newFixture(t, Options{EnableFallback: true})
		f.openai.errs["gpt-4"] = providers.NewProviderError(models.ProviderOpenAI, 503, "down", true, nil)
		f.openai.results["gpt-3.5-turbo"] = &providers.Invocation{Content: "rescued", InputTokens: 10, OutputTokens: 5}

		resp, err := f.router.Route(context.Background(), Request{
			Messages: userMessage("hello"),
			Model:    "gpt-4",
		})
		require.NoError(t, err)

		// Truthful attribution: the response names the model that served it.
		assert.Equal(t, "gpt-3.5-turbo", resp.Model)
		assert.Equal(t, "rescued", resp.Content)
		assert.Equal(t, []string{"gpt-4", "gpt-3.5-turbo"}, f.openai.calls)
	})

	t.Run("disabled surfaces the failure", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.openai.errs["gpt-4"] = providers.NewProviderError(models.ProviderOpenAI, 503, "down", true, nil)

		_, err := f.router.Route(context.Background(), Request{
			Messages: userMessage("hello"),
			Model:    "gpt-4",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, services.ErrProviderFailure))
		assert.Equal(t, 0, f.tracker.Len())
	})

	t.Run("fallback failure surfaces the original error", func(t *testing.T) {
		f := newFixture(t, Options{EnableFallback: true})
		f.openai.errs["gpt-4"] = providers.NewProviderError(models.ProviderOpenAI, 503, "primary down", true, nil)
		f.openai.errs["gpt-3.5-turbo"] = providers.NewProviderError(models.ProviderOpenAI, 503, "fallback down", true, nil)

		_, err := f.router.Route(context.Background(), Request{
			Messages: userMessage("hello"),
			Model:    "gpt-4",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "openai")
	})
}

func TestRouteMissingCredential(t *testing.T) {
	f := newFixture(t, Options{EnableFallback: true})

	// Rebuild the registry with no anthropic adapter.
	empty := providers.NewRegistry()
	empty.Register(f.openai)
	f.router.registry = empty

	_, err := f.router.Route(context.Background(), Request{
		Messages: userMessage("hello"),
		Model:    "claude-3-opus",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrMissingCredential), "no fallback for missing credentials")
}

func TestRouteAnalytics(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	_, err := f.router.Route(ctx, Request{Messages: userMessage("What is the capital of France?")})
	require.NoError(t, err)
	_, err = f.router.Route(ctx, Request{Messages: userMessage("Write a Python function to implement quicksort")})
	require.NoError(t, err)

	a := f.router.Analytics(7)
	assert.Equal(t, 2, a.TotalRequests)
	assert.Greater(t, a.TotalSavings, 0.0)
}

func TestRouteEmptyMessages(t *testing.T) {
	f := newFixture(t, Options{})

	// No user message degrades to the general defaults rather than failing.
	resp, err := f.router.Route(context.Background(), Request{
		Messages: []models.Message{{Role: "system", Content: "be nice"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Model)
}
