package dmn

import "context"

// ExpressionEvaluator is the interface implemented by types that can evaluate
// expressions of one ExpressionType.
//
// Evaluate computes the expression against the bindings and returns the raw
// result. The bindings map is shared and must not be modified. Implementations
// must be deterministic for a given expression and bindings, and safe for
// concurrent use. Any failure (syntax, runtime, unresolved name) is returned as
// an error; the Evaluator classifies it as ErrEvaluation.
type ExpressionEvaluator interface {
	Evaluate(ctx context.Context, x Expression, bindings map[string]any) (any, error)
}

// ExpressionEvaluatorFunc adapts a function to the ExpressionEvaluator interface.
type ExpressionEvaluatorFunc func(ctx context.Context, x Expression, bindings map[string]any) (any, error)

func (f ExpressionEvaluatorFunc) Evaluate(ctx context.Context, x Expression, bindings map[string]any) (any, error) {
	return f(ctx, x, bindings)
}

// LiteralEvaluator returns the value of literal expressions as-is.
type LiteralEvaluator struct{}

func (LiteralEvaluator) Evaluate(_ context.Context, x Expression, _ map[string]any) (any, error) {
	return x.Value, nil
}
