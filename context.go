package dmn

import (
	"context"
	"maps"
)

// evalContext is the state of one Evaluate call. It is never shared between
// calls: it holds the bindings visible to expressions and the input values
// computed so far.
type evalContext struct {
	ctx       context.Context
	variables *Variables
	resolve   func(ExpressionType) (ExpressionEvaluator, error)

	bindings map[string]any
	// snapshot is handed to expression evaluators; nil after a new binding.
	snapshot map[string]any
	inputs   map[string]*TypedValue
}

func newEvalContext(ctx context.Context, vars *Variables, resolve func(ExpressionType) (ExpressionEvaluator, error)) *evalContext {
	return &evalContext{
		ctx:       ctx,
		variables: vars,
		resolve:   resolve,
		bindings:  maps.Clone(vars.values),
		inputs:    map[string]*TypedValue{},
	}
}

func (c *evalContext) bind(name string, v any) {
	if name == "" {
		return
	}
	c.bindings[name] = v
	c.snapshot = nil
}

func (c *evalContext) currentBindings() map[string]any {
	if c.snapshot == nil {
		c.snapshot = maps.Clone(c.bindings)
	}
	return c.snapshot
}

// evaluate runs the expression with the evaluator registered for its type.
func (c *evalContext) evaluate(target string, x Expression) (any, error) {
	ev, err := c.resolve(x.Type)
	if err != nil {
		return nil, evaluationError(target, x, err)
	}
	v, err := ev.Evaluate(c.ctx, x, c.currentBindings())
	if err != nil {
		return nil, evaluationError(target, x, err)
	}
	return v, nil
}

// inputValue returns the actual value of the input, computing it on first use.
// A variable with the input's name replaces overridable expressions.
// The value is bound under the input's name and alias for later expressions.
func (c *evalContext) inputValue(in Input) (*TypedValue, error) {
	if v, ok := c.inputs[in.Name]; ok {
		return v, nil
	}

	target := "input " + in.Name
	var raw any
	if override, ok := c.variables.Get(in.Name); ok && in.Expression.Type.IsOverridable() {
		raw = override
	} else {
		v, err := c.evaluate(target, in.Expression)
		if err != nil {
			return nil, err
		}
		raw = v
	}

	tv, err := ValueOf(in.Type, raw)
	if err != nil {
		return nil, evaluationError(target, in.Expression, err)
	}

	c.inputs[in.Name] = tv
	bound := tv.Value()
	if !tv.IsSingleValue() {
		bound = tv.Values()
	}
	c.bind(in.Name, bound)
	c.bind(in.Alias, bound)
	return tv, nil
}
