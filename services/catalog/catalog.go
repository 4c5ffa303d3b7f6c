// Package catalog is the static registry of available models and their
// cost, capability and quality metadata.
//
// A catalog snapshot is immutable; reloads (from the YAML file watcher)
// swap the whole snapshot under a lock so concurrent readers never observe
// a partially updated registry.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/juyterman1000/smartllm-router/models"
	"github.com/juyterman1000/smartllm-router/services"
)

// File is the on-disk catalog document.
type File struct {
	// BaselineModel is the highest-quality general-purpose reference model
	// used for savings computation.
	BaselineModel string `yaml:"baseline_model"`

	// LongContextModel is the designated target for long-context queries.
	LongContextModel string `yaml:"long_context_model"`

	// FallbackModel is the reliable model retried when a primary
	// invocation fails and fallback is enabled.
	FallbackModel string `yaml:"fallback_model"`

	Models []models.Model `yaml:"models"`
}

// snapshot is one immutable catalog generation.
type snapshot struct {
	byName      map[string]models.Model
	names       []string // sorted
	baseline    string
	longContext string
	fallback    string
}

// Catalog holds the current snapshot and swaps it atomically on reload.
type Catalog struct {
	mu     sync.RWMutex
	snap   *snapshot
	logger *zap.Logger
}

// New creates a catalog from the built-in default model set.
func New(logger *zap.Logger) *Catalog {
	snap, err := buildSnapshot(defaultFile())
	if err != nil {
		// The built-in set is validated by tests; this is unreachable.
		panic(fmt.Sprintf("catalog: default model set invalid: %v", err))
	}
	return &Catalog{snap: snap, logger: logger}
}

// NewFromFile creates a catalog from a YAML file.
func NewFromFile(path string, logger *zap.Logger) (*Catalog, error) {
	snap, err := loadSnapshot(path)
	if err != nil {
		return nil, err
	}

	logger.Info("loaded model catalog",
		zap.String("path", path),
		zap.Int("model_count", len(snap.names)))

	return &Catalog{snap: snap, logger: logger}, nil
}

// Reload replaces the current snapshot with the contents of path. On error
// the previous snapshot stays active.
func (c *Catalog) Reload(path string) error {
	snap, err := loadSnapshot(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	c.logger.Info("reloaded model catalog",
		zap.String("path", path),
		zap.Int("model_count", len(snap.names)))
	return nil
}

// Get looks up a model by name. An unknown name is a configuration error for
// the request that asked for it.
func (c *Catalog) Get(name string) (models.Model, error) {
	snap := c.snapshot()
	m, ok := snap.byName[name]
	if !ok {
		return models.Model{}, services.NewUnknownModelError(name)
	}
	return m, nil
}

// Has reports whether a model name exists in the catalog.
func (c *Catalog) Has(name string) bool {
	_, ok := c.snapshot().byName[name]
	return ok
}

// List returns all models sorted by name.
func (c *Catalog) List() []models.Model {
	snap := c.snapshot()
	out := make([]models.Model, 0, len(snap.names))
	for _, name := range snap.names {
		out = append(out, snap.byName[name])
	}
	return out
}

// Baseline returns the designated reference model for savings computation.
func (c *Catalog) Baseline() models.Model {
	snap := c.snapshot()
	return snap.byName[snap.baseline]
}

// LongContext returns the designated long-context model.
func (c *Catalog) LongContext() models.Model {
	snap := c.snapshot()
	return snap.byName[snap.longContext]
}

// Fallback returns the designated fallback model.
func (c *Catalog) Fallback() models.Model {
	snap := c.snapshot()
	return snap.byName[snap.fallback]
}

// Len returns the number of models in the catalog.
func (c *Catalog) Len() int {
	return len(c.snapshot().names)
}

func (c *Catalog) snapshot() *snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

func loadSnapshot(path string) (*snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %q: %w", path, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, services.NewDomainError(services.ErrorTypeConfiguration,
			fmt.Sprintf("catalog: parse %q", path), err)
	}

	return buildSnapshot(file)
}

func buildSnapshot(file File) (*snapshot, error) {
	if len(file.Models) == 0 {
		return nil, services.NewDomainError(services.ErrorTypeConfiguration,
			"catalog: no models defined", nil)
	}

	byName := make(map[string]models.Model, len(file.Models))
	names := make([]string, 0, len(file.Models))

	for _, m := range file.Models {
		if m.Name == "" {
			return nil, services.NewDomainError(services.ErrorTypeConfiguration,
				"catalog: model with empty name", nil)
		}
		if _, dup := byName[m.Name]; dup {
			return nil, services.NewDomainError(services.ErrorTypeConfiguration,
				fmt.Sprintf("catalog: duplicate model %q", m.Name), nil)
		}
		if m.Provider == "" {
			return nil, services.NewDomainError(services.ErrorTypeConfiguration,
				fmt.Sprintf("catalog: model %q has no provider", m.Name), nil)
		}
		if m.CostPer1KInput < 0 || m.CostPer1KOutput < 0 {
			return nil, services.NewDomainError(services.ErrorTypeConfiguration,
				fmt.Sprintf("catalog: model %q has negative pricing", m.Name), nil)
		}
		byName[m.Name] = m
		names = append(names, m.Name)
	}
	sort.Strings(names)

	for field, name := range map[string]string{
		"baseline_model":     file.BaselineModel,
		"long_context_model": file.LongContextModel,
		"fallback_model":     file.FallbackModel,
	} {
		if name == "" {
			return nil, services.NewDomainError(services.ErrorTypeConfiguration,
				fmt.Sprintf("catalog: %s is required", field), nil)
		}
		if _, ok := byName[name]; !ok {
			return nil, services.NewDomainError(services.ErrorTypeConfiguration,
				fmt.Sprintf("catalog: %s %q not in model list", field, name), nil)
		}
	}

	return &snapshot{
		byName:      byName,
		names:       names,
		baseline:    file.BaselineModel,
		longContext: file.LongContextModel,
		fallback:    file.FallbackModel,
	}, nil
}

// defaultFile is the built-in model set used when no catalog file is
// configured. Prices are per 1K tokens; speed and quality are on a 1-10
// scale.
func defaultFile() File {
	return File{
		BaselineModel:    "gpt-4",
		LongContextModel: "claude-3-haiku",
		FallbackModel:    "gpt-3.5-turbo",
		Models: []models.Model{
			{
				Name: "gpt-3.5-turbo", Provider: models.ProviderOpenAI,
				CostPer1KInput: 0.0005, CostPer1KOutput: 0.0015,
				MaxTokens: 4096, SpeedScore: 9, QualityScore: 7,
				Capabilities: []models.Capability{
					models.CapabilityGeneral, models.CapabilityCodeGeneration, models.CapabilitySummarization,
				},
			},
			{
				Name: "gpt-4o-mini", Provider: models.ProviderOpenAI,
				CostPer1KInput: 0.00015, CostPer1KOutput: 0.0006,
				MaxTokens: 128000, SpeedScore: 9, QualityScore: 9,
				Capabilities: []models.Capability{
					models.CapabilityGeneral, models.CapabilityCodeGeneration,
					models.CapabilitySummarization, models.CapabilityReasoning,
				},
			},
			{
				Name: "gpt-4", Provider: models.ProviderOpenAI,
				CostPer1KInput: 0.03, CostPer1KOutput: 0.06,
				MaxTokens: 8192, SpeedScore: 6, QualityScore: 10,
				Capabilities: []models.Capability{models.CapabilityAll},
			},
			{
				Name: "claude-3-haiku", Provider: models.ProviderAnthropic,
				CostPer1KInput: 0.00025, CostPer1KOutput: 0.00125,
				MaxTokens: 200000, SpeedScore: 10, QualityScore: 7.5,
				Capabilities: []models.Capability{
					models.CapabilityGeneral, models.CapabilitySummarization, models.CapabilityLongContext,
				},
			},
			{
				Name: "claude-3-opus", Provider: models.ProviderAnthropic,
				CostPer1KInput: 0.015, CostPer1KOutput: 0.075,
				MaxTokens: 200000, SpeedScore: 5, QualityScore: 10,
				Capabilities: []models.Capability{models.CapabilityAll},
			},
			{
				Name: "mistral-7b", Provider: models.ProviderMistral,
				CostPer1KInput: 0.0002, CostPer1KOutput: 0.0002,
				MaxTokens: 8192, SpeedScore: 8, QualityScore: 6,
				Capabilities: []models.Capability{
					models.CapabilityGeneral, models.CapabilityCodeGeneration,
				},
			},
			{
				Name: "gemini-pro", Provider: models.ProviderGoogle,
				CostPer1KInput: 0.00025, CostPer1KOutput: 0.0005,
				MaxTokens: 32000, SpeedScore: 8, QualityScore: 8,
				Capabilities: []models.Capability{
					models.CapabilityGeneral, models.CapabilityCodeGeneration, models.CapabilityMathReasoning,
				},
			},
		},
	}
}
