package dmn

import (
	"fmt"
	"strings"
)

// HitPolicy determines how many rules of a decision may match, and how the
// results of matching rules are combined.
type HitPolicy int

const (
	// Unique allows at most one matching rule; more than one is an error.
	Unique HitPolicy = iota
	// First returns the first matching rule in declaration order.
	First
	// Priority is not supported by the Evaluator.
	Priority
	// Any returns one matching rule.
	Any
	// Collect returns all matching rules in declaration order.
	// No aggregation is applied.
	Collect
	// RuleOrder returns all matching rules in declaration order.
	RuleOrder
	// OutputOrder is not supported by the Evaluator.
	OutputOrder
)

var hitPolicyNames = map[HitPolicy]string{
	Unique:      "UNIQUE",
	First:       "FIRST",
	Priority:    "PRIORITY",
	Any:         "ANY",
	Collect:     "COLLECT",
	RuleOrder:   "RULE ORDER",
	OutputOrder: "OUTPUT ORDER",
}

func (p HitPolicy) String() string {
	if s, ok := hitPolicyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("HitPolicy(%d)", int(p))
}

// ParseHitPolicy accepts the names used in DMN files ("UNIQUE", "RULE ORDER", ...),
// case-insensitively and with "_" or "-" in place of the space.
// An empty name is Unique.
func ParseHitPolicy(name string) (HitPolicy, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = strings.NewReplacer("_", " ", "-", " ").Replace(n)
	if n == "" {
		return Unique, nil
	}
	for p, s := range hitPolicyNames {
		if s == n {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown hit policy %q", name)
}

func (p HitPolicy) supported() bool {
	switch p {
	case Unique, First, Any, Collect, RuleOrder:
		return true
	}
	return false
}

// singleResult reports whether evaluation stops at the first matching rule.
func (p HitPolicy) singleResult() bool {
	return p == First || p == Any
}
