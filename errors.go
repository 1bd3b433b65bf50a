package dmn

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when Evaluate receives a nil decision or nil variables.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedHitPolicy is returned for hit policies that need aggregation or
	// output ordering (Priority, Output Order).
	ErrUnsupportedHitPolicy = errors.New("unsupported hit policy")

	// ErrInvalidVariables is returned when a variable overrides an input whose
	// expression is not a literal or FEEL expression.
	ErrInvalidVariables = errors.New("invalid decision variables")

	// ErrNotUnique is returned when a decision with the Unique hit policy
	// matches more than one rule.
	ErrNotUnique = errors.New("unique result expected")

	// ErrEvaluation classifies every failure raised while evaluating an expression.
	// The concrete error is an *EvaluationError.
	ErrEvaluation = errors.New("evaluation failed")

	ErrDecisionNotFound      = errors.New("decision not found")
	ErrInvalidDecision       = errors.New("invalid decision")
	ErrInvalidTypedValue     = errors.New("invalid typed value")
	ErrConversion            = errors.New("value conversion failed")
	ErrNotBoolean            = errors.New("boolean result expected")
	ErrNoExpressionEvaluator = errors.New("no expression evaluator registered")
)

// EvaluationError wraps a failure of an expression evaluator, or of the
// conversion of its result, together with the expression that caused it.
type EvaluationError struct {
	// Where the expression is used, e.g. "input age" or "rule r1 output category"
	Target     string
	Expression Expression
	Err        error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluating %s (%s %v): %v", e.Target, e.Expression.Type, e.Expression.Value, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// Is reports ErrEvaluation for every EvaluationError, so callers can classify
// the failure without knowing the cause.
func (e *EvaluationError) Is(target error) bool {
	return target == ErrEvaluation
}

func evaluationError(target string, x Expression, err error) error {
	var ee *EvaluationError
	if errors.As(err, &ee) {
		return err
	}
	return &EvaluationError{Target: target, Expression: x, Err: err}
}
