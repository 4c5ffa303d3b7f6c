// Package models defines the shared domain types for the smart router.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Provider identifies an LLM backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
	ProviderMistral   Provider = "mistral"
)

// TaskType classifies what kind of work a query is asking for.
type TaskType string

const (
	TaskSimpleQA      TaskType = "simple_qa"
	TaskSummarization TaskType = "summarization"
	TaskCode          TaskType = "code"
	TaskAnalysis      TaskType = "analysis"
	TaskCreative      TaskType = "creative"
	TaskMath          TaskType = "math"
	TaskReasoning     TaskType = "reasoning"
	TaskGeneral       TaskType = "general"
)

// Capability is a tag describing a special requirement a model must support.
type Capability string

const (
	// CapabilityAll marks a model as supporting every capability.
	CapabilityAll Capability = "all"

	CapabilityGeneral          Capability = "general"
	CapabilityCodeGeneration   Capability = "code_generation"
	CapabilityMathReasoning    Capability = "mathematical_reasoning"
	CapabilityComplexReasoning Capability = "complex_reasoning"
	CapabilityLongContext      Capability = "long_context"
	CapabilityStructuredOutput Capability = "structured_output"
	CapabilitySummarization    Capability = "summarization"
	CapabilityReasoning        Capability = "reasoning"
)

// Model is a catalog entry describing one backend model. Entries are
// immutable once the catalog is built.
type Model struct {
	Name            string       `json:"name" yaml:"name"`
	Provider        Provider     `json:"provider" yaml:"provider"`
	CostPer1KInput  float64      `json:"cost_per_1k_input" yaml:"cost_per_1k_input"`
	CostPer1KOutput float64      `json:"cost_per_1k_output" yaml:"cost_per_1k_output"`
	MaxTokens       int          `json:"max_tokens" yaml:"max_tokens"`
	SpeedScore      float64      `json:"speed_score" yaml:"speed_score"`
	QualityScore    float64      `json:"quality_score" yaml:"quality_score"`
	Capabilities    []Capability `json:"capabilities" yaml:"capabilities"`
}

// HasCapability reports whether the model declares the given capability.
// The wildcard CapabilityAll satisfies every requirement.
func (m Model) HasCapability(c Capability) bool {
	for _, have := range m.Capabilities {
		if have == CapabilityAll || have == c {
			return true
		}
	}
	return false
}

// QueryComplexity is the immutable, per-request descriptor produced by the
// analyzer. It is created fresh for every request and never mutated.
type QueryComplexity struct {
	TokenCount            int          `json:"token_count"`
	VocabularyComplexity  float64      `json:"vocabulary_complexity"`
	TaskType              TaskType     `json:"task_type"`
	EstimatedOutputTokens int          `json:"estimated_output_tokens"`
	RequiredCapabilities  []Capability `json:"required_capabilities"`
	ComplexityScore       float64      `json:"complexity_score"`
}

// RequiresCapability reports whether the descriptor demands the capability.
func (q QueryComplexity) RequiresCapability(c Capability) bool {
	for _, have := range q.RequiredCapabilities {
		if have == c {
			return true
		}
	}
	return false
}

// Message is a single conversation message in the unified chat format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UsageRecord is an append-only fact about one completed request.
// Records are owned by the usage tracker and are never deleted.
type UsageRecord struct {
	ID           uuid.UUID     `json:"id"`
	Timestamp    time.Time     `json:"timestamp"`
	Model        string        `json:"model"`
	Provider     Provider      `json:"provider"`
	InputTokens  int           `json:"input_tokens"`
	OutputTokens int           `json:"output_tokens"`
	Cost         float64       `json:"cost"`
	Savings      float64       `json:"savings"`
	Latency      time.Duration `json:"latency"`
}

// RouterResponse is the result returned to the caller for one routed request.
type RouterResponse struct {
	ID           uuid.UUID `json:"id"`
	Content      string    `json:"content"`
	Model        string    `json:"model"`
	Provider     Provider  `json:"provider"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	Cost         float64   `json:"cost"`
	Savings      float64   `json:"savings"`
	LatencyMs    int64     `json:"latency_ms"`
	Cached       bool      `json:"cached"`
}
