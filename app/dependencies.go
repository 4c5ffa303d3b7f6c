// Package app wires the application's dependency graph.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/juyterman1000/smartllm-router/config"
	"github.com/juyterman1000/smartllm-router/metrics"
	"github.com/juyterman1000/smartllm-router/middleware"
	"github.com/juyterman1000/smartllm-router/models"
	"github.com/juyterman1000/smartllm-router/repositories/postgres"
	"github.com/juyterman1000/smartllm-router/services/cache"
	"github.com/juyterman1000/smartllm-router/services/catalog"
	"github.com/juyterman1000/smartllm-router/services/providers"
	"github.com/juyterman1000/smartllm-router/services/providers/anthropic"
	"github.com/juyterman1000/smartllm-router/services/providers/google"
	"github.com/juyterman1000/smartllm-router/services/providers/openai"
	"github.com/juyterman1000/smartllm-router/services/router"
	"github.com/juyterman1000/smartllm-router/services/rules"
	"github.com/juyterman1000/smartllm-router/services/selector"
	"github.com/juyterman1000/smartllm-router/services/tracker"
)

// Dependencies holds the application's shared state, created once at
// startup and torn down at shutdown.
type Dependencies struct {
	Config  *config.Config
	Logger  *zap.Logger
	Catalog *catalog.Catalog
	Router  *router.Router
	Auth    *middleware.Auth
	DB      *postgres.DB // nil when no durable store is configured

	stopWatcher context.CancelFunc
	redisCache  *cache.Redis
}

// New builds the dependency graph from configuration.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{Config: cfg, Logger: logger}

	// Model catalog, optionally file-backed with hot reload.
	var cat *catalog.Catalog
	if cfg.Routing.CatalogPath != "" {
		var err error
		cat, err = catalog.NewFromFile(cfg.Routing.CatalogPath, logger)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	} else {
		cat = catalog.New(logger)
	}
	deps.Catalog = cat

	if cfg.Routing.WatchCatalog {
		watchCtx, cancel := context.WithCancel(ctx)
		deps.stopWatcher = cancel
		go func() {
			if err := cat.Watch(watchCtx, cfg.Routing.CatalogPath); err != nil {
				logger.Error("catalog watcher exited", zap.Error(err))
			}
		}()
	}

	sel, err := selector.New(cat, selector.Strategy(cfg.Routing.Strategy), selector.Config{}, logger)
	if err != nil {
		return nil, err
	}

	respCache, err := deps.buildCache(ctx)
	if err != nil {
		return nil, err
	}

	registry := buildRegistry(cfg.Providers, logger)

	// Durable usage store is optional; without it usage stays in memory.
	var store tracker.UsageStore
	if cfg.Database != nil {
		db, err := postgres.NewDB(*cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("connect usage store: %w", err)
		}
		deps.DB = db

		repo := postgres.NewUsageRepository(db, logger)
		if err := repo.InitSchema(ctx); err != nil {
			return nil, err
		}
		store = repo
	}
	usage := tracker.New(store, logger)

	var m *metrics.Metrics
	if cfg.Observability.MetricsEnabled {
		m = metrics.New(prometheus.DefaultRegisterer)
	}

	deps.Router = router.New(cat, rules.NewEngine(logger), sel, respCache,
		registry, usage, m,
		router.Options{
			InvokeTimeout:  cfg.Routing.InvokeTimeout,
			EnableFallback: cfg.Routing.EnableFallback,
		},
		logger,
	)
	deps.Auth = middleware.NewAuth(cfg.Auth.JWTSecret, logger)

	logger.Info("dependencies initialized",
		zap.String("strategy", cfg.Routing.Strategy),
		zap.Int("providers", registry.Len()),
		zap.Int("models", cat.Len()),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.Bool("durable_usage", deps.DB != nil),
	)
	return deps, nil
}

func (d *Dependencies) buildCache(ctx context.Context) (cache.Cache, error) {
	if !d.Config.Cache.Enabled {
		return nil, nil
	}
	if d.Config.Cache.Backend == "redis" {
		rc, err := cache.NewRedis(ctx,
			d.Config.Cache.RedisAddr,
			d.Config.Cache.RedisPassword,
			d.Config.Cache.RedisDB,
			d.Config.Cache.TTL,
			d.Logger,
		)
		if err != nil {
			return nil, err
		}
		d.redisCache = rc
		return rc, nil
	}
	return cache.NewMemory(d.Config.Cache.TTL, d.Logger), nil
}

func buildRegistry(cfg config.ProvidersConfig, logger *zap.Logger) *providers.Registry {
	registry := providers.NewRegistry()

	if cfg.OpenAI.APIKey != "" {
		registry.Register(openai.New(providerConfig(cfg.OpenAI)))
	}
	if cfg.Anthropic.APIKey != "" {
		registry.Register(anthropic.New(providerConfig(cfg.Anthropic)))
	}
	if cfg.Google.APIKey != "" {
		registry.Register(google.New(providerConfig(cfg.Google)))
	}
	if cfg.Mistral.APIKey != "" {
		registry.Register(openai.NewCompatible(models.ProviderMistral, providerConfig(cfg.Mistral)))
	}

	if registry.Len() == 0 {
		logger.Warn("no provider API keys configured, all invocations will fail")
	}
	return registry
}

func providerConfig(cfg config.ProviderConfig) providers.Config {
	return providers.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
	}
}

// Close releases held resources.
func (d *Dependencies) Close() {
	if d.stopWatcher != nil {
		d.stopWatcher()
	}
	if d.redisCache != nil {
		if err := d.redisCache.Close(); err != nil {
			d.Logger.Warn("closing redis cache", zap.Error(err))
		}
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			d.Logger.Warn("closing database", zap.Error(err))
		}
	}
}
