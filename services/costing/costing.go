// Package costing computes request cost and baseline savings.
package costing

import (
	"github.com/juyterman1000/smartllm-router/models"
	"github.com/juyterman1000/smartllm-router/services/catalog"
)

// Calculator prices token usage against catalog rates. Prices are per 1000
// tokens, input and output billed separately.
type Calculator struct {
	catalog *catalog.Catalog
}

// New creates a calculator over the given catalog.
func New(cat *catalog.Catalog) *Calculator {
	return &Calculator{catalog: cat}
}

// Cost returns the dollar cost of a completed invocation.
func (c *Calculator) Cost(m models.Model, inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1000*m.CostPer1KInput +
		float64(outputTokens)/1000*m.CostPer1KOutput
}

// Savings returns how much cheaper the invocation was than running the same
// token usage through the baseline model. Never negative: a model pricier
// than the baseline reports zero savings, not a penalty.
func (c *Calculator) Savings(m models.Model, inputTokens, outputTokens int) float64 {
	baseline := c.catalog.Baseline()
	if baseline.Name == m.Name {
		return 0
	}
	diff := c.Cost(baseline, inputTokens, outputTokens) - c.Cost(m, inputTokens, outputTokens)
	if diff < 0 {
		return 0
	}
	return diff
}
