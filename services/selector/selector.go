// Package selector maps a complexity descriptor to a model via the active
// routing strategy. Selection never invokes a provider and holds no mutable
// state, so a Selector is safe for concurrent use.
package selector

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/juyterman1000/smartllm-router/models"
	"github.com/juyterman1000/smartllm-router/services"
	"github.com/juyterman1000/smartllm-router/services/catalog"
)

// Strategy names a built-in selection policy.
type Strategy string

const (
	// StrategyCostOptimized picks the cheapest model that clears the
	// complexity bar. This is the default.
	StrategyCostOptimized Strategy = "cost_optimized"

	// StrategyQualityFirst biases toward the strongest models and only
	// sends trivial queries to the budget tier.
	StrategyQualityFirst Strategy = "quality_first"

	// StrategyBalanced weighs capability needs before the generic tiering.
	StrategyBalanced Strategy = "balanced"
)

// ParseStrategy validates a strategy name. The empty string selects the
// default strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyCostOptimized, StrategyQualityFirst, StrategyBalanced:
		return Strategy(s), nil
	case "":
		return StrategyCostOptimized, nil
	}
	return "", services.NewDomainError(services.ErrorTypeConfiguration,
		fmt.Sprintf("invalid routing strategy %q", s), nil).WithDetail("strategy", s)
}

// Capability override cutoffs used by the balanced strategy.
const (
	balancedCodeCutoff = 0.7
	balancedMathCutoff = 0.6
)

// Ladder is a complexity-ordered sequence of model tiers with score cuts
// between adjacent tiers. A score below Cuts[i] selects Models[i]; a score
// at or above every cut selects the last model. Tier order tracks query
// complexity, not price, so a higher tier may happen to be cheaper.
type Ladder struct {
	Cuts   []float64 `json:"cuts" yaml:"cuts"`
	Models []string  `json:"models" yaml:"models"`
}

// pick returns the tier model for the score.
func (l Ladder) pick(score float64) string {
	for i, cut := range l.Cuts {
		if score < cut {
			return l.Models[i]
		}
	}
	return l.Models[len(l.Models)-1]
}

// validate checks shape, cut ordering and model existence. Strictly
// ascending cuts make the tier assignment deterministic: a given score
// always lands in exactly one tier.
func (l Ladder) validate(name string, cat *catalog.Catalog) error {
	if len(l.Models) != len(l.Cuts)+1 {
		return services.NewDomainError(services.ErrorTypeConfiguration,
			fmt.Sprintf("%s ladder: %d models require %d cuts", name, len(l.Models), len(l.Models)-1), nil)
	}
	for i := 1; i < len(l.Cuts); i++ {
		if l.Cuts[i] <= l.Cuts[i-1] {
			return services.NewDomainError(services.ErrorTypeConfiguration,
				fmt.Sprintf("%s ladder: cuts must be strictly ascending", name), nil)
		}
	}
	for _, mName := range l.Models {
		if _, err := cat.Get(mName); err != nil {
			return services.NewDomainError(services.ErrorTypeConfiguration,
				fmt.Sprintf("%s ladder references model %q not in catalog", name, mName), err)
		}
	}
	return nil
}

// Config holds the per-strategy tier ladders. Zero values take the defaults.
type Config struct {
	CostOptimized Ladder `json:"cost_optimized" yaml:"cost_optimized"`
	QualityFirst  Ladder `json:"quality_first" yaml:"quality_first"`
	Balanced      Ladder `json:"balanced" yaml:"balanced"`
}

// DefaultConfig returns the stock ladders over the default catalog.
func DefaultConfig() Config {
	return Config{
		CostOptimized: Ladder{
			Cuts:   []float64{0.3, 0.5, 0.7, 0.85},
			Models: []string{"mistral-7b", "claude-3-haiku", "gpt-3.5-turbo", "gemini-pro", "gpt-4"},
		},
		QualityFirst: Ladder{
			Cuts:   []float64{0.2, 0.6},
			Models: []string{"gpt-3.5-turbo", "gemini-pro", "gpt-4"},
		},
		Balanced: Ladder{
			Cuts:   []float64{0.4, 0.7},
			Models: []string{"claude-3-haiku", "gpt-3.5-turbo", "gpt-4"},
		},
	}
}

// Selector chooses a model for an analyzed query.
type Selector struct {
	catalog  *catalog.Catalog
	strategy Strategy
	config   Config
	logger   *zap.Logger
}

// New creates a selector over the given catalog. A zero Config takes the
// default ladders; all ladders are validated against the catalog up front.
func New(cat *catalog.Catalog, strategy Strategy, cfg Config, logger *zap.Logger) (*Selector, error) {
	strategy, err := ParseStrategy(string(strategy))
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	defaults := DefaultConfig()
	if len(cfg.CostOptimized.Models) == 0 {
		cfg.CostOptimized = defaults.CostOptimized
	}
	if len(cfg.QualityFirst.Models) == 0 {
		cfg.QualityFirst = defaults.QualityFirst
	}
	if len(cfg.Balanced.Models) == 0 {
		cfg.Balanced = defaults.Balanced
	}

	if err := cfg.CostOptimized.validate("cost_optimized", cat); err != nil {
		return nil, err
	}
	if err := cfg.QualityFirst.validate("quality_first", cat); err != nil {
		return nil, err
	}
	if err := cfg.Balanced.validate("balanced", cat); err != nil {
		return nil, err
	}

	return &Selector{catalog: cat, strategy: strategy, config: cfg, logger: logger}, nil
}

// Strategy returns the active strategy.
func (s *Selector) Strategy() Strategy {
	return s.strategy
}

// Select picks a model for the descriptor under the configured strategy.
func (s *Selector) Select(c models.QueryComplexity) models.Model {
	return s.SelectFor(s.strategy, c)
}

// SelectFor picks a model under an explicit strategy, for per-request
// overrides. Long-context handling is a capability concern, applied only by
// the balanced strategy; the other strategies score the ladder as usual.
func (s *Selector) SelectFor(strategy Strategy, c models.QueryComplexity) models.Model {
	var name string
	switch strategy {
	case StrategyQualityFirst:
		name = s.config.QualityFirst.pick(c.ComplexityScore)
	case StrategyBalanced:
		name = s.balanced(c)
	default:
		name = s.config.CostOptimized.pick(c.ComplexityScore)
	}

	model, err := s.catalog.Get(name)
	if err != nil {
		fallback := s.catalog.Fallback()
		s.logger.Warn("selected model missing from catalog, using fallback",
			zap.String("selected", name),
			zap.String("fallback", fallback.Name),
		)
		return fallback
	}
	return model
}

// balanced checks capability overrides in a fixed order before falling
// through to the generic ladder.
func (s *Selector) balanced(c models.QueryComplexity) string {
	if c.RequiresCapability(models.CapabilityCodeGeneration) {
		if c.ComplexityScore > balancedCodeCutoff {
			return "gpt-4"
		}
		return "gpt-3.5-turbo"
	}
	if c.RequiresCapability(models.CapabilityLongContext) {
		return s.catalog.LongContext().Name
	}
	if c.RequiresCapability(models.CapabilityMathReasoning) {
		if c.ComplexityScore > balancedMathCutoff {
			return "gpt-4"
		}
		return "gemini-pro"
	}
	return s.config.Balanced.pick(c.ComplexityScore)
}
