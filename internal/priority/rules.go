package priority

import (
	"strings"
	"time"

	"github.com/spec-kit/ticket-escalation/internal/clock"
	"github.com/spec-kit/ticket-escalation/internal/domain"
)

// Rule names, as reported in Evaluation.Rule.
const (
	RuleAge     = "age"
	RuleKeyword = "keyword"
)

// DefaultAgeThreshold is how old a ticket must be before the age rule escalates it.
const DefaultAgeThreshold = time.Hour

// DefaultKeywords escalate a ticket whose title contains any of them.
var DefaultKeywords = []string{"Crash", "Important", "Failure"}

// ApplyFunc maps the current priority to a possibly escalated one. It must be pure.
type ApplyFunc func(title string, current domain.Priority, createdAt time.Time) domain.Priority

// Rule is one named link in the escalation chain.
type Rule struct {
	Name  string
	Apply ApplyFunc
}

// AgeRule escalates tickets created more than threshold before clk.Now().
func AgeRule(clk clock.Clock, threshold time.Duration) Rule {
	if threshold <= 0 {
		threshold = DefaultAgeThreshold
	}
	return Rule{
		Name: RuleAge,
		Apply: func(_ string, current domain.Priority, createdAt time.Time) domain.Priority {
			if createdAt.Before(clk.Now().Add(-threshold)) {
				return current.Escalate()
			}
			return current
		},
	}
}

// KeywordRule escalates tickets whose title contains a keyword, ignoring case.
func KeywordRule(keywords []string) Rule {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		lowered = append(lowered, k)
	}
	return Rule{
		Name: RuleKeyword,
		Apply: func(title string, current domain.Priority, _ time.Time) domain.Priority {
			title = strings.ToLower(title)
			for _, k := range lowered {
				if strings.Contains(title, k) {
					return current.Escalate()
				}
			}
			return current
		},
	}
}
