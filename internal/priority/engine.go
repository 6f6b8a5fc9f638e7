// Package priority computes a ticket's final priority from an ordered
// chain of escalation rules. The first rule that changes the priority
// wins and no later rule is consulted, so a ticket moves at most one step.
package priority

import (
	"time"

	"github.com/spec-kit/ticket-escalation/internal/clock"
	"github.com/spec-kit/ticket-escalation/internal/domain"
)

// Config parameterizes the default rule chain.
type Config struct {
	AgeThreshold time.Duration
	Keywords     []string
}

// Evaluation is the outcome of running the chain. Rule is empty when nothing escalated.
type Evaluation struct {
	Priority domain.Priority
	Rule     string
}

// Escalated reports whether a rule fired.
func (e Evaluation) Escalated() bool {
	return e.Rule != ""
}

// Engine runs rules in a fixed order. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	rules []Rule
}

// NewEngine builds an engine over rules in the given order.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: append([]Rule(nil), rules...)}
}

// NewDefaultEngine builds the standard chain: age first, then keywords.
func NewDefaultEngine(clk clock.Clock, cfg Config) *Engine {
	keywords := cfg.Keywords
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	return NewEngine(
		AgeRule(clk, cfg.AgeThreshold),
		KeywordRule(keywords),
	)
}

// Rules returns the rule names in evaluation order.
func (e *Engine) Rules() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

// Evaluate runs the chain against initial and reports which rule, if any, escalated.
func (e *Engine) Evaluate(title string, initial domain.Priority, createdAt time.Time) Evaluation {
	for _, rule := range e.rules {
		if result := rule.Apply(title, initial, createdAt); result != initial {
			return Evaluation{Priority: result, Rule: rule.Name}
		}
	}
	return Evaluation{Priority: initial}
}

// Calculate returns the final priority.
func (e *Engine) Calculate(title string, initial domain.Priority, createdAt time.Time) domain.Priority {
	return e.Evaluate(title, initial, createdAt).Priority
}
