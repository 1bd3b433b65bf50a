// Package cel provides an implementation of the dmn ExpressionEvaluator interface backed by Google's cel-go.
//
// See https://github.com/google/cel-go and https://opensource.google/projects/cel for more information
// about CEL.
//
// Expressions use the CEL language: https://github.com/google/cel-spec.
//
// Registering the Evaluator
//
// Register the evaluator for CEL expressions when creating the dmn Evaluator:
//
//	ev := dmn.NewEvaluator(dmn.WithExpressionEvaluator(dmn.CEL, cel.NewEvaluator()))
//
// Variables
//
// CEL requires every variable to be declared. The Evaluator declares each decision
// variable, and the value of each decision input (under its name and alias), as a
// dynamically typed variable. Names that are not valid CEL identifiers, such as
// "credit-score", are not declared and can not be used in expressions.
//
// An input entry condition usually refers to the input by name:
//
//	age < 18
//	category in ["gold", "silver"]
//
// With the default evaluation mode for CEL (dmn.BooleanResult), a condition must
// return a boolean. Register dmn.InputComparison for dmn.CEL to let conditions
// return admissible values instead.
//
// Values
//
// Integers are int64, doubles float64, timestamps time.Time, lists []any and
// maps map[string]any. Comparisons between ints and doubles are allowed, so
// an input declared as double can be compared with integer literals.
//
// Program Cache
//
// Compiled programs are cached per expression text and set of declared names.
// The cache grows with the number of distinct expressions; decision tables
// usually have a small, fixed set of expressions.
package cel
