// Package dmn provides a decision table engine. An Evaluator determines which
// rules of a decision table match a set of variables, and returns the output
// values of the matching rules according to the decision's hit policy.
//
// The engine does not specify a language for conditions and output values,
// relying instead on ExpressionEvaluators registered per ExpressionType.
// Literal expressions are always available; the cel and expr packages provide
// evaluators for CEL and expr-lang.
//
// Typical use is as follows:
//
//  1. Build a decision with NewDecision (or read one with the reader package)
//  2. Create an Evaluator, registering the expression evaluators you need
//  3. Evaluate the decision against the variables
//  4. Inspect the results
//
// Decision Tables
//
// A decision has ordered inputs, outputs and rules. Each rule has one input entry
// per input and one output entry per output. An input entry is a condition on the
// input's actual value; a nil input entry means the input is not checked by the rule.
//
//	Hit policy: UNIQUE
//	+------+---------------+--------------------+
//	| Rule | IN age        | OUT category       |
//	+------+---------------+--------------------+
//	| r1   | age < 18      | "minor"            |
//	| r2   | age >= 18     | "adult"            |
//	+------+---------------+--------------------+
//
// The actual value of an input is computed by the input's expression. If the
// expression is a literal or FEEL expression, a variable with the input's name
// replaces the computed value. Supplying a variable for an input computed by any
// other expression type is an error (ErrInvalidVariables).
//
// Hit Policies
//
//	Unique       at most one rule may match; more matches return ErrNotUnique
//	First, Any   the first matching rule is returned, later rules are not evaluated
//	Collect      all matching rules are returned, in declaration order
//	Rule Order   all matching rules are returned, in declaration order
//
// Priority and Output Order require ordering by output values, and Collect with
// an aggregation function (sum, min, max, count) requires aggregation. Neither is
// supported: Priority and Output Order return ErrUnsupportedHitPolicy, and Collect
// never aggregates.
//
// Evaluation Modes
//
// After an input entry is evaluated, an EvaluationMode decides whether it holds.
// InputComparison accepts either a boolean verdict, or a value (or list of values)
// the input must be drawn from: with an input "category", the literal entry
// []any{"gold", "silver"} matches the categories gold and silver. BooleanResult
// requires a boolean verdict. The mode is selected by the entry's expression type,
// unless the InputEntry sets one.
//
// Values
//
// Every input and output has a Type. Values produced by expressions are converted
// to the declared type, as a single value or as a collection (TypedValue), before
// they are compared or returned.
//
// Concurrency
//
// Decisions are immutable once created, and an Evaluator is safe for concurrent
// use: many goroutines may evaluate the same decision with different variables.
// Each call to Evaluate evaluates rules sequentially on the calling goroutine.
// Use a Vault to swap sets of decisions without blocking evaluations.
package dmn
