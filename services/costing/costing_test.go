package costing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/juyterman1000/smartllm-router/services/catalog"
)

func TestCost(t *testing.T) {
	cat := catalog.New(zap.NewNop())
	calc := New(cat)

	gpt35, err := cat.Get("gpt-3.5-turbo")
	require.NoError(t, err)

	// 1000 in at 0.0005 + 500 out at 0.0015
	got := calc.Cost(gpt35, 1000, 500)
	assert.InDelta(t, 0.0005+0.00075, got, 1e-9)

	assert.Zero(t, calc.Cost(gpt35, 0, 0))
}

func TestSavings(t *testing.T) {
	cat := catalog.New(zap.NewNop())
	calc := New(cat)

	t.Run("cheap model saves against baseline", func(t *testing.T) {
		mistral, err := cat.Get("mistral-7b")
		require.NoError(t, err)

		baselineCost := calc.Cost(cat.Baseline(), 1000, 500)
		actualCost := calc.Cost(mistral, 1000, 500)

		got := calc.Savings(mistral, 1000, 500)
		assert.InDelta(t, baselineCost-actualCost, got, 1e-9)
		assert.Greater(t, got, 0.0)
	})

	t.Run("baseline model saves nothing", func(t *testing.T) {
		assert.Zero(t, calc.Savings(cat.Baseline(), 1000, 500))
	})

	t.Run("never negative", func(t *testing.T) {
		opus, err := cat.Get("claude-3-opus")
		require.NoError(t, err)
		// opus output tokens are pricier than gpt-4 input-heavy mixes can offset
		got := calc.Savings(opus, 10, 5000)
		assert.GreaterOrEqual(t, got, 0.0)
	})
}
