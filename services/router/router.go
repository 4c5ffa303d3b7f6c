// Package router orchestrates the full routing pipeline: cache lookup,
// complexity analysis, model selection, provider invocation, cost accounting
// and usage tracking.
package router

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juyterman1000/smartllm-router/metrics"
	"github.com/juyterman1000/smartllm-router/models"
	"github.com/juyterman1000/smartllm-router/services"
	"github.com/juyterman1000/smartllm-router/services/analyzer"
	"github.com/juyterman1000/smartllm-router/services/cache"
	"github.com/juyterman1000/smartllm-router/services/catalog"
	"github.com/juyterman1000/smartllm-router/services/costing"
	"github.com/juyterman1000/smartllm-router/services/providers"
	"github.com/juyterman1000/smartllm-router/services/rules"
	"github.com/juyterman1000/smartllm-router/services/selector"
	"github.com/juyterman1000/smartllm-router/services/tracker"
)

// AutoModel requests automatic selection instead of an explicit model.
const AutoModel = "auto"

// Request is one routing request.
type Request struct {
	// Messages is the conversation; the last user message is the query
	// analyzed for routing.
	Messages []models.Message

	// Model pins an explicit catalog model. Empty or "auto" selects
	// automatically.
	Model string

	// Strategy optionally overrides the configured strategy for this
	// request only.
	Strategy string

	MaxTokens   int
	Temperature float64
}

// Options configures a Router.
type Options struct {
	// InvokeTimeout bounds each provider call. Zero disables the
	// per-request deadline.
	InvokeTimeout time.Duration

	// EnableFallback retries a failed invocation once against the
	// catalog's fallback model.
	EnableFallback bool
}

// Router owns the shared routing state. Create one at startup and share it
// across requests; all methods are safe for concurrent use.
type Router struct {
	analyzer *analyzer.Analyzer
	catalog  *catalog.Catalog
	rules    *rules.Engine
	selector *selector.Selector
	costing  *costing.Calculator
	cache    cache.Cache
	tracker  *tracker.Tracker
	registry *providers.Registry
	metrics  *metrics.Metrics
	opts     Options
	logger   *zap.Logger
}

// New wires a router from its collaborators. cache and metrics may be nil
// to disable caching and instrumentation.
func New(
	cat *catalog.Catalog,
	ruleEngine *rules.Engine,
	sel *selector.Selector,
	respCache cache.Cache,
	registry *providers.Registry,
	usage *tracker.Tracker,
	m *metrics.Metrics,
	opts Options,
	logger *zap.Logger,
) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		analyzer: analyzer.New(),
		catalog:  cat,
		rules:    ruleEngine,
		selector: sel,
		costing:  costing.New(cat),
		cache:    respCache,
		tracker:  usage,
		registry: registry,
		metrics:  m,
		opts:     opts,
		logger:   logger,
	}
}

// Route runs the pipeline for one request.
func (r *Router) Route(ctx context.Context, req Request) (*models.RouterResponse, error) {
	query := lastUserMessage(req.Messages)

	if r.cache != nil && query != "" {
		if cached, ok, err := r.cache.Get(ctx, query); err != nil {
			r.logger.Warn("cache lookup failed", zap.Error(err))
		} else if ok {
			r.metrics.CacheHit()
			r.logger.Debug("cache hit", zap.String("model", cached.Model))
			return cached, nil
		} else {
			r.metrics.CacheMiss()
		}
	}

	complexity := r.analyzer.Analyze(query)

	model, err := r.selectModel(req, complexity)
	if err != nil {
		return nil, err
	}

	r.logger.Info("model selected",
		zap.String("model", model.Name),
		zap.String("provider", string(model.Provider)),
		zap.String("task_type", string(complexity.TaskType)),
		zap.Float64("complexity_score", complexity.ComplexityScore),
	)

	start := time.Now()
	inv, servedBy, err := r.invoke(ctx, model, req)
	if err != nil {
		r.metrics.RequestFailed(servedBy.Name, string(servedBy.Provider))
		return nil, err
	}
	latency := time.Since(start)

	inputTokens := inv.InputTokens
	if inputTokens == 0 {
		inputTokens = complexity.TokenCount
	}

	cost := r.costing.Cost(servedBy, inputTokens, inv.OutputTokens)
	savings := r.costing.Savings(servedBy, inputTokens, inv.OutputTokens)

	resp := &models.RouterResponse{
		ID:           uuid.New(),
		Content:      inv.Content,
		Model:        servedBy.Name,
		Provider:     servedBy.Provider,
		InputTokens:  inputTokens,
		OutputTokens: inv.OutputTokens,
		Cost:         cost,
		Savings:      savings,
		LatencyMs:    latency.Milliseconds(),
	}

	r.tracker.Record(ctx, models.UsageRecord{
		ID:           resp.ID,
		Timestamp:    time.Now(),
		Model:        servedBy.Name,
		Provider:     servedBy.Provider,
		InputTokens:  inputTokens,
		OutputTokens: inv.OutputTokens,
		Cost:         cost,
		Savings:      savings,
		Latency:      latency,
	})
	r.metrics.RequestCompleted(servedBy.Name, string(servedBy.Provider), cost, savings, latency)

	if r.cache != nil && query != "" {
		if err := r.cache.Put(ctx, query, *resp); err != nil {
			r.logger.Warn("cache write failed", zap.Error(err))
		}
	}

	return resp, nil
}

// selectModel resolves the explicit model pin, or runs rules then strategy.
func (r *Router) selectModel(req Request, complexity models.QueryComplexity) (models.Model, error) {
	if req.Model != "" && req.Model != AutoModel {
		return r.catalog.Get(req.Model)
	}

	if r.rules != nil {
		if name, ok := r.rules.Evaluate(complexity, r.catalog.Has); ok {
			return r.catalog.Get(name)
		}
	}

	if req.Strategy != "" {
		strategy, err := selector.ParseStrategy(req.Strategy)
		if err != nil {
			return models.Model{}, err
		}
		return r.selector.SelectFor(strategy, complexity), nil
	}
	return r.selector.Select(complexity), nil
}

// invoke calls the selected model's provider, retrying once against the
// fallback model when enabled. The returned model is the one that actually
// served the response so accounting stays truthful.
func (r *Router) invoke(ctx context.Context, model models.Model, req Request) (*providers.Invocation, models.Model, error) {
	inv, err := r.invokeOne(ctx, model, req)
	if err == nil {
		return inv, model, nil
	}

	// Only upstream failures are worth a fallback. A missing credential is
	// fatal and surfaces as-is.
	if services.TypeOf(err) != services.ErrorTypeProviderFailure {
		return nil, model, err
	}

	fallback := r.catalog.Fallback()
	if !r.opts.EnableFallback || fallback.Name == model.Name {
		return nil, model, err
	}

	r.logger.Warn("invocation failed, retrying with fallback model",
		zap.String("model", model.Name),
		zap.String("fallback", fallback.Name),
		zap.Error(err),
	)

	inv, fbErr := r.invokeOne(ctx, fallback, req)
	if fbErr != nil {
		// Surface the original failure; the fallback attempt is logged.
		r.logger.Error("fallback invocation failed", zap.Error(fbErr))
		return nil, model, err
	}
	return inv, fallback, nil
}

func (r *Router) invokeOne(ctx context.Context, model models.Model, req Request) (*providers.Invocation, error) {
	provider, err := r.registry.Resolve(model.Provider)
	if err != nil {
		return nil, err
	}

	if r.opts.InvokeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.InvokeTimeout)
		defer cancel()
	}

	inv, err := provider.Invoke(ctx, model.Name, req.Messages, providers.InvokeOptions{
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, services.NewProviderFailureError(string(model.Provider), err).
			WithDetail("model", model.Name)
	}
	return inv, nil
}

// AddRule registers a custom routing rule.
func (r *Router) AddRule(rule rules.Rule) error {
	return r.rules.Add(rule)
}

// RemoveRule deletes a rule by name.
func (r *Router) RemoveRule(name string) bool {
	return r.rules.Remove(name)
}

// Rules returns the registered rules in evaluation order.
func (r *Router) Rules() []rules.Rule {
	return r.rules.List()
}

// ClearRules drops all custom rules.
func (r *Router) ClearRules() {
	r.rules.Clear()
}

// Analytics returns the usage aggregate for the trailing window.
func (r *Router) Analytics(windowDays int) tracker.Analytics {
	return r.tracker.Analytics(windowDays)
}

// Models lists the catalog contents.
func (r *Router) Models() []models.Model {
	return r.catalog.List()
}

func lastUserMessage(messages []models.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}
