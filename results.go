package dmn

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// EntryResult is the value of one output produced by a matching rule.
type EntryResult struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// RuleResult holds the output values of one matching rule, in output declaration order.
type RuleResult struct {
	RuleID  string        `json:"rule_id"`
	Entries []EntryResult `json:"entries"`
}

// Entry returns the result for the output with the name.
func (r RuleResult) Entry(name string) (EntryResult, bool) {
	for _, e := range r.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return EntryResult{}, false
}

// Map returns the output values by output name.
func (r RuleResult) Map() map[string]any {
	m := make(map[string]any, len(r.Entries))
	for _, e := range r.Entries {
		m[e.Name] = e.Value
	}
	return m
}

// DecisionResult holds the results of all matching rules, in rule declaration order.
// An empty result means no rule matched.
type DecisionResult struct {
	RuleResults []RuleResult `json:"rule_results"`
}

// IsSingleRuleResult reports whether exactly one rule matched.
func (d *DecisionResult) IsSingleRuleResult() bool {
	return len(d.RuleResults) == 1
}

// SingleRuleResult returns the only rule result. It returns false if zero or
// more than one rule matched.
func (d *DecisionResult) SingleRuleResult() (RuleResult, bool) {
	if !d.IsSingleRuleResult() {
		return RuleResult{}, false
	}
	return d.RuleResults[0], true
}

// IsSingleEntryResult reports whether exactly one rule with exactly one output value matched.
func (d *DecisionResult) IsSingleEntryResult() bool {
	return d.IsSingleRuleResult() && len(d.RuleResults[0].Entries) == 1
}

// SingleEntryResult returns the only output value, if IsSingleEntryResult.
func (d *DecisionResult) SingleEntryResult() (EntryResult, bool) {
	if !d.IsSingleEntryResult() {
		return EntryResult{}, false
	}
	return d.RuleResults[0].Entries[0], true
}

// Values collects the values of the output with the name from every rule result.
func (d *DecisionResult) Values(output string) []any {
	vs := []any{}
	for _, r := range d.RuleResults {
		if e, ok := r.Entry(output); ok {
			vs = append(vs, e.Value)
		}
	}
	return vs
}

// String produces a table with one row per output value of each matching rule.
func (d *DecisionResult) String() string {
	tw := table.NewWriter()
	tw.SetTitle("\nDECISION RESULT\n")
	tw.AppendHeader(table.Row{"Rule", "Output", "Value"})
	for _, r := range d.RuleResults {
		for _, e := range r.Entries {
			tw.AppendRow(table.Row{r.RuleID, e.Name, fmt.Sprintf("%v", e.Value)})
		}
	}
	if len(d.RuleResults) == 0 {
		tw.AppendRow(table.Row{"-", "-", "no rule matched"})
	}
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render()
}
