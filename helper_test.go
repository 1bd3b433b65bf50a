package dmn_test

import (
	"fmt"
	"testing"

	"github.com/tablekit/dmn"
)

// --------------------------------------------------
// Functions to build decisions and compare
// evaluation results to expected results

// mockDecision builds a decision with one input "x" computed by a mock
// expression and one string output "out". Each condition becomes a rule
// whose output is the rule ID.
func mockDecision(t *testing.T, policy dmn.HitPolicy, conditions ...string) *dmn.Decision {
	t.Helper()
	inputs := []dmn.Input{
		{Name: "x", Type: dmn.String{}, Expression: mock("x")},
	}
	outputs := []dmn.Output{
		{Name: "out", Type: dmn.String{}},
	}
	rules := make([]dmn.Rule, 0, len(conditions))
	for i, c := range conditions {
		id := fmt.Sprintf("r%d", i+1)
		rules = append(rules, dmn.Rule{
			ID:            id,
			InputEntries:  []*dmn.InputEntry{when(c)},
			OutputEntries: []dmn.OutputEntry{then(id)},
		})
	}
	d, err := dmn.NewDecision("mock", "Mock decision", policy, inputs, outputs, rules)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return d
}

// ruleIDs flattens a result to the IDs of the matching rules, in order.
func ruleIDs(res *dmn.DecisionResult) []string {
	ids := []string{}
	for _, r := range res.RuleResults {
		ids = append(ids, r.RuleID)
	}
	return ids
}

func noVariables() *dmn.Variables {
	return dmn.NewVariables(nil)
}
