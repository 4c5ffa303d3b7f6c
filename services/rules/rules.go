// Package rules implements user-defined routing overrides.
//
// A rule's predicate is a restricted expression (field, comparator,
// constant) rather than an arbitrary closure, so rules can be serialized,
// validated and evaluated without executing untrusted code.
package rules

import (
	"fmt"

	"github.com/juyterman1000/smartllm-router/models"
	"github.com/juyterman1000/smartllm-router/services"
)

// Field names a QueryComplexity attribute a condition can test.
type Field string

const (
	FieldTaskType              Field = "task_type"
	FieldComplexityScore       Field = "complexity_score"
	FieldTokenCount            Field = "token_count"
	FieldVocabularyComplexity  Field = "vocabulary_complexity"
	FieldEstimatedOutputTokens Field = "estimated_output_tokens"
	FieldCapability            Field = "capability"
)

// Op is a comparison operator.
type Op string

const (
	OpEq  Op = "eq"
	OpNe  Op = "ne"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"

	// OpHas tests membership of a capability tag.
	OpHas Op = "has"
)

// Match selects how a rule combines its conditions.
type Match string

const (
	MatchAll Match = "all"
	MatchAny Match = "any"
)

// DefaultPriority is used when a rule does not set one.
const DefaultPriority = 50

// Condition is one field/comparator/constant predicate. Numeric fields use
// Number; task_type and capability use Text.
type Condition struct {
	Field  Field    `json:"field" validate:"required"`
	Op     Op       `json:"op" validate:"required"`
	Number *float64 `json:"number,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// Rule is a user-defined routing override. Higher priority rules are
// evaluated first; equal priorities are broken by insertion order (the rule
// added first wins). A nil Priority takes DefaultPriority on Add, so an
// explicit priority of 0 is distinct from leaving it unset.
type Rule struct {
	Name       string      `json:"name" validate:"required"`
	Model      string      `json:"model" validate:"required"`
	Priority   *int        `json:"priority,omitempty"`
	Match      Match       `json:"match,omitempty"`
	Conditions []Condition `json:"conditions" validate:"required,min=1,dive"`

	// seq is the insertion sequence assigned by the engine, used as the
	// stable tie-break for equal priorities.
	seq int
}

// Validate checks the rule's expression is well formed.
func (r Rule) Validate() error {
	if r.Name == "" {
		return services.NewDomainError(services.ErrorTypeConfiguration, "rule: name is required", nil)
	}
	if r.Model == "" {
		return services.NewDomainError(services.ErrorTypeConfiguration,
			fmt.Sprintf("rule %q: target model is required", r.Name), nil)
	}
	if len(r.Conditions) == 0 {
		return services.NewDomainError(services.ErrorTypeConfiguration,
			fmt.Sprintf("rule %q: at least one condition is required", r.Name), nil)
	}
	if r.Match != "" && r.Match != MatchAll && r.Match != MatchAny {
		return services.NewDomainError(services.ErrorTypeConfiguration,
			fmt.Sprintf("rule %q: match must be %q or %q", r.Name, MatchAll, MatchAny), nil)
	}
	for i, cond := range r.Conditions {
		if err := cond.validate(); err != nil {
			return services.NewDomainError(services.ErrorTypeConfiguration,
				fmt.Sprintf("rule %q: condition %d", r.Name, i), err)
		}
	}
	return nil
}

func (c Condition) validate() error {
	switch c.Field {
	case FieldComplexityScore, FieldTokenCount, FieldVocabularyComplexity, FieldEstimatedOutputTokens:
		switch c.Op {
		case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte:
		default:
			return fmt.Errorf("operator %q not valid for numeric field %q", c.Op, c.Field)
		}
		if c.Number == nil {
			return fmt.Errorf("numeric field %q requires a number", c.Field)
		}
	case FieldTaskType:
		if c.Op != OpEq && c.Op != OpNe {
			return fmt.Errorf("operator %q not valid for field %q", c.Op, c.Field)
		}
		if c.Text == "" {
			return fmt.Errorf("field %q requires text", c.Field)
		}
	case FieldCapability:
		if c.Op != OpHas {
			return fmt.Errorf("operator %q not valid for field %q (use %q)", c.Op, c.Field, OpHas)
		}
		if c.Text == "" {
			return fmt.Errorf("field %q requires text", c.Field)
		}
	default:
		return fmt.Errorf("unknown field %q", c.Field)
	}
	return nil
}

// Matches evaluates the rule's expression against a complexity descriptor.
func (r Rule) Matches(c models.QueryComplexity) bool {
	match := r.Match
	if match == "" {
		match = MatchAll
	}

	for _, cond := range r.Conditions {
		ok := cond.matches(c)
		if match == MatchAll && !ok {
			return false
		}
		if match == MatchAny && ok {
			return true
		}
	}
	return match == MatchAll
}

func (c Condition) matches(q models.QueryComplexity) bool {
	switch c.Field {
	case FieldTaskType:
		eq := string(q.TaskType) == c.Text
		if c.Op == OpNe {
			return !eq
		}
		return eq
	case FieldCapability:
		return q.RequiresCapability(models.Capability(c.Text))
	case FieldComplexityScore:
		return compare(q.ComplexityScore, c.Op, *c.Number)
	case FieldTokenCount:
		return compare(float64(q.TokenCount), c.Op, *c.Number)
	case FieldVocabularyComplexity:
		return compare(q.VocabularyComplexity, c.Op, *c.Number)
	case FieldEstimatedOutputTokens:
		return compare(float64(q.EstimatedOutputTokens), c.Op, *c.Number)
	default:
		return false
	}
}

func compare(have float64, op Op, want float64) bool {
	switch op {
	case OpEq:
		return have == want
	case OpNe:
		return have != want
	case OpGt:
		return have > want
	case OpGte:
		return have >= want
	case OpLt:
		return have < want
	case OpLte:
		return have <= want
	default:
		return false
	}
}

// TaskIs is a convenience constructor for the common task-equality rule.
func TaskIs(name string, task models.TaskType, model string, priority int) Rule {
	return Rule{
		Name:     name,
		Model:    model,
		Priority: &priority,
		Conditions: []Condition{
			{Field: FieldTaskType, Op: OpEq, Text: string(task)},
		},
	}
}

// ScoreAbove is a convenience constructor for a complexity-threshold rule.
func ScoreAbove(name string, threshold float64, model string, priority int) Rule {
	return Rule{
		Name:     name,
		Model:    model,
		Priority: &priority,
		Conditions: []Condition{
			{Field: FieldComplexityScore, Op: OpGt, Number: &threshold},
		},
	}
}
