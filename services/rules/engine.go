package rules

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/juyterman1000/smartllm-router/models"
	"github.com/juyterman1000/smartllm-router/services"
)

// Engine holds the ordered rule set and evaluates it before strategy-based
// selection. Safe for concurrent use.
type Engine struct {
	mu     sync.RWMutex
	rules  []Rule
	nextID int
	logger *zap.Logger
}

// NewEngine creates an empty rule engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Add validates and appends a rule. An unset priority takes
// DefaultPriority; an explicit 0 is kept as 0.
func (e *Engine) Add(rule Rule) error {
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("add rule: %w", err)
	}
	if rule.Priority == nil {
		p := DefaultPriority
		rule.Priority = &p
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, existing := range e.rules {
		if existing.Name == rule.Name {
			return services.NewDomainError(services.ErrorTypeConfiguration,
				fmt.Sprintf("add rule: duplicate rule name %q", rule.Name), nil)
		}
	}

	rule.seq = e.nextID
	e.nextID++
	e.rules = append(e.rules, rule)

	e.logger.Info("routing rule added",
		zap.String("rule", rule.Name),
		zap.String("model", rule.Model),
		zap.Int("priority", *rule.Priority),
	)
	return nil
}

// Remove deletes a rule by name. It reports whether the rule existed.
func (e *Engine) Remove(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, rule := range e.rules {
		if rule.Name == name {
			e.rules = append(e.rules[:i], e.rules[i+1:]...)
			e.logger.Info("routing rule removed", zap.String("rule", name))
			return true
		}
	}
	return false
}

// Clear removes all rules.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = nil
}

// List returns the rules ordered by descending priority, insertion order
// breaking ties.
func (e *Engine) List() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	sortByPriority(out)
	return out
}

// Len returns the number of registered rules.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rules)
}

// Evaluate walks the rules in priority order and returns the target model of
// the first rule that matches. Rules whose target model fails the exists
// check are skipped so a stale rule cannot route to a model that has left
// the catalog.
func (e *Engine) Evaluate(c models.QueryComplexity, exists func(model string) bool) (string, bool) {
	e.mu.RLock()
	ordered := make([]Rule, len(e.rules))
	copy(ordered, e.rules)
	e.mu.RUnlock()

	sortByPriority(ordered)

	for _, rule := range ordered {
		if !rule.Matches(c) {
			continue
		}
		if exists != nil && !exists(rule.Model) {
			e.logger.Warn("rule matched but target model is not in the catalog, skipping",
				zap.String("rule", rule.Name),
				zap.String("model", rule.Model),
			)
			continue
		}
		return rule.Model, true
	}
	return "", false
}

// sortByPriority orders engine-held rules, whose Priority is always set.
func sortByPriority(rs []Rule) {
	sort.SliceStable(rs, func(i, j int) bool {
		if *rs[i].Priority != *rs[j].Priority {
			return *rs[i].Priority > *rs[j].Priority
		}
		return rs[i].seq < rs[j].seq
	})
}
