package dmn

import "fmt"

// ruleEvaluator evaluates a single rule of a decision.
type ruleEvaluator struct {
	modes map[ExpressionType]EvaluationMode
}

// evaluate returns the rule's result if every input entry is positive, and nil
// if the rule does not match.
func (re *ruleEvaluator) evaluate(rule Rule, inputs []Input, outputs []Output, c *evalContext) (*RuleResult, error) {
	for i, entry := range rule.InputEntries {
		if entry == nil {
			continue
		}
		in := inputs[i]

		actual, err := c.inputValue(in)
		if err != nil {
			return nil, err
		}

		target := fmt.Sprintf("rule %s input entry %s", rule.ID, in.Name)
		raw, err := c.evaluate(target, entry.Expression)
		if err != nil {
			return nil, err
		}
		cond, err := entryValueOf(in.Type, raw)
		if err != nil {
			return nil, evaluationError(target, entry.Expression, err)
		}

		mode, err := re.mode(entry)
		if err != nil {
			return nil, evaluationError(target, entry.Expression, err)
		}
		positive, err := mode.IsPositive(in.Type, cond, actual)
		if err != nil {
			return nil, evaluationError(target, entry.Expression, err)
		}
		if !positive {
			return nil, nil
		}
	}

	res := &RuleResult{
		RuleID:  rule.ID,
		Entries: make([]EntryResult, 0, len(outputs)),
	}
	for i, entry := range rule.OutputEntries {
		out := outputs[i]
		target := fmt.Sprintf("rule %s output %s", rule.ID, out.Name)
		raw, err := c.evaluate(target, entry.Expression)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			res.Entries = append(res.Entries, EntryResult{Name: out.Name})
			continue
		}
		v, err := ValueOf(out.Type, raw)
		if err != nil {
			return nil, evaluationError(target, entry.Expression, err)
		}
		res.Entries = append(res.Entries, EntryResult{Name: out.Name, Value: plain(v)})
	}
	return res, nil
}

func (re *ruleEvaluator) mode(entry *InputEntry) (EvaluationMode, error) {
	if entry.Mode != nil {
		return entry.Mode, nil
	}
	m, ok := re.modes[entry.Expression.Type]
	if !ok {
		return nil, fmt.Errorf("no evaluation mode for expression type %q", entry.Expression.Type)
	}
	return m, nil
}

// plain unwraps a typed output value: the single value, or the collection as a slice.
func plain(v *TypedValue) any {
	if v.IsSingleValue() {
		return v.Value()
	}
	return v.Values()
}
