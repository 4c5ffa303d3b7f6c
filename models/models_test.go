package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModel_HasCapability(t *testing.T) {
	t.Run("declared capability", func(t *testing.T) {
		m := Model{Capabilities: []Capability{CapabilityGeneral, CapabilityCodeGeneration}}
		assert.True(t, m.HasCapability(CapabilityCodeGeneration))
		assert.False(t, m.HasCapability(CapabilityLongContext))
	})

	t.Run("wildcard satisfies everything", func(t *testing.T) {
		m := Model{Capabilities: []Capability{CapabilityAll}}
		assert.True(t, m.HasCapability(CapabilityCodeGeneration))
		assert.True(t, m.HasCapability(CapabilityMathReasoning))
		assert.True(t, m.HasCapability(CapabilityStructuredOutput))
	})

	t.Run("no capabilities", func(t *testing.T) {
		m := Model{}
		assert.False(t, m.HasCapability(CapabilityGeneral))
	})
}

func TestQueryComplexity_RequiresCapability(t *testing.T) {
	q := QueryComplexity{RequiredCapabilities: []Capability{CapabilityCodeGeneration}}
	assert.True(t, q.RequiresCapability(CapabilityCodeGeneration))
	assert.False(t, q.RequiresCapability(CapabilityMathReasoning))
}
