package selector

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/juyterman1000/smartllm-router/models"
	"github.com/juyterman1000/smartllm-router/services"
	"github.com/juyterman1000/smartllm-router/services/catalog"
)

func newSelector(t *testing.T, strategy Strategy) *Selector {
	t.Helper()
	s, err := New(catalog.New(zap.NewNop()), strategy, Config{}, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestParseStrategy(t *testing.T) {
	for _, valid := range []string{"cost_optimized", "quality_first", "balanced"} {
		got, err := ParseStrategy(valid)
		require.NoError(t, err)
		assert.Equal(t, Strategy(valid), got)
	}

	got, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyCostOptimized, got)

	_, err = ParseStrategy("speed_first")
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrInvalidStrategy))
}

func TestSelectCostOptimized(t *testing.T) {
	s := newSelector(t, StrategyCostOptimized)

	cases := []struct {
		name  string
		score float64
		want  string
	}{
		{"trivial", 0.1, "mistral-7b"},
		{"simple", 0.4, "claude-3-haiku"},
		{"moderate", 0.6, "gpt-3.5-turbo"},
		{"hard", 0.8, "gemini-pro"},
		{"hardest", 0.9, "gpt-4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Select(models.QueryComplexity{ComplexityScore: tc.score})
			assert.Equal(t, tc.want, got.Name)
		})
	}
}

func TestSelectQualityFirst(t *testing.T) {
	s := newSelector(t, StrategyQualityFirst)

	cases := []struct {
		score float64
		want  string
	}{
		{0.1, "gpt-3.5-turbo"},
		{0.4, "gemini-pro"},
		{0.7, "gpt-4"},
	}
	for _, tc := range cases {
		got := s.Select(models.QueryComplexity{ComplexityScore: tc.score})
		assert.Equal(t, tc.want, got.Name)
	}
}

func TestSelectBalanced(t *testing.T) {
	s := newSelector(t, StrategyBalanced)

	t.Run("code override", func(t *testing.T) {
		caps := []models.Capability{models.CapabilityCodeGeneration}

		got := s.Select(models.QueryComplexity{ComplexityScore: 0.8, RequiredCapabilities: caps})
		assert.Equal(t, "gpt-4", got.Name)

		got = s.Select(models.QueryComplexity{ComplexityScore: 0.5, RequiredCapabilities: caps})
		assert.Equal(t, "gpt-3.5-turbo", got.Name)
	})

	t.Run("long context override", func(t *testing.T) {
		got := s.Select(models.QueryComplexity{
			ComplexityScore:      0.3,
			RequiredCapabilities: []models.Capability{models.CapabilityLongContext},
		})
		assert.Equal(t, "claude-3-haiku", got.Name)
	})

	t.Run("math override", func(t *testing.T) {
		caps := []models.Capability{models.CapabilityMathReasoning}

		got := s.Select(models.QueryComplexity{ComplexityScore: 0.7, RequiredCapabilities: caps})
		assert.Equal(t, "gpt-4", got.Name)

		got = s.Select(models.QueryComplexity{ComplexityScore: 0.5, RequiredCapabilities: caps})
		assert.Equal(t, "gemini-pro", got.Name)
	})

	t.Run("default ladder", func(t *testing.T) {
		cases := []struct {
			score float64
			want  string
		}{
			{0.2, "claude-3-haiku"},
			{0.5, "gpt-3.5-turbo"},
			{0.9, "gpt-4"},
		}
		for _, tc := range cases {
			got := s.Select(models.QueryComplexity{ComplexityScore: tc.score})
			assert.Equal(t, tc.want, got.Name)
		}
	})
}

func TestNewWithDefaultLadders(t *testing.T) {
	cat := catalog.New(zap.NewNop())
	for _, strategy := range []Strategy{StrategyCostOptimized, StrategyQualityFirst, StrategyBalanced} {
		_, err := New(cat, strategy, Config{}, zap.NewNop())
		require.NoError(t, err, "strategy %s", strategy)
	}
}

func TestSelectLongInputUsesStrategyLadder(t *testing.T) {
	// Token count does not short-circuit strategy selection. Only the
	// balanced strategy honors a detected long_context capability.
	long := models.QueryComplexity{TokenCount: 1500, ComplexityScore: 0.9}

	got := newSelector(t, StrategyQualityFirst).Select(long)
	assert.Equal(t, "gpt-4", got.Name)

	got = newSelector(t, StrategyCostOptimized).Select(long)
	assert.Equal(t, "gpt-4", got.Name)

	long.RequiredCapabilities = []models.Capability{models.CapabilityLongContext}
	got = newSelector(t, StrategyBalanced).Select(long)
	assert.Equal(t, "claude-3-haiku", got.Name)
}

func TestLadderValidation(t *testing.T) {
	cat := catalog.New(zap.NewNop())

	t.Run("shape mismatch", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Balanced = Ladder{Cuts: []float64{0.4}, Models: []string{"gpt-4"}}
		_, err := New(cat, StrategyBalanced, cfg, zap.NewNop())
		require.Error(t, err)
		assert.Equal(t, services.ErrorTypeConfiguration, services.TypeOf(err))
	})

	t.Run("cuts not ascending", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.CostOptimized.Cuts = []float64{0.5, 0.3, 0.7, 0.85}
		_, err := New(cat, StrategyCostOptimized, cfg, zap.NewNop())
		require.Error(t, err)
	})

	t.Run("unknown model", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.QualityFirst.Models = []string{"gpt-3.5-turbo", "nope", "gpt-4"}
		_, err := New(cat, StrategyQualityFirst, cfg, zap.NewNop())
		require.Error(t, err)
	})

	t.Run("tier order is not price order", func(t *testing.T) {
		// gemini-pro is cheaper per input token than gpt-3.5-turbo yet
		// sits a tier above it. That is valid: ladders rank complexity
		// fit, not price.
		cfg := DefaultConfig()
		require.Equal(t, []string{"mistral-7b", "claude-3-haiku", "gpt-3.5-turbo", "gemini-pro", "gpt-4"},
			cfg.CostOptimized.Models)
		_, err := New(cat, StrategyCostOptimized, cfg, zap.NewNop())
		require.NoError(t, err)
	})
}
