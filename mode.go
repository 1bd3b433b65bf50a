package dmn

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// EvaluationMode decides whether an input entry (a rule's condition for one input)
// is satisfied by the actual input value.
//
// entry is the evaluated condition, input the actual value of the input.
// Both are required; passing nil is a programming error and panics.
type EvaluationMode interface {
	IsPositive(inputType Type, entry, input *TypedValue) (bool, error)
}

// InputComparison treats the evaluated condition either as a boolean verdict or
// as the set of admissible input values.
//
// If the input is not of type Boolean and the condition is a single value,
// a condition of true is positive and false is negative. Otherwise both values are
// treated as collections, and the condition is positive if every input value is
// contained in the condition values. An empty input never satisfies a non-empty
// condition.
type InputComparison struct{}

func (InputComparison) IsPositive(inputType Type, entry, input *TypedValue) (bool, error) {
	mustHaveValues(entry, input)

	if !isBoolean(inputType) && entry.IsSingleValue() {
		switch entry.Value() {
		case true:
			return true, nil
		case false:
			return false, nil
		}
	}
	return isSubset(entry.asCollection(), input.asCollection()), nil
}

// isSubset reports whether all of sub is contained in set.
func isSubset(set, sub []any) bool {
	if len(sub) == 0 && len(set) > 0 {
		return false
	}
	for _, s := range sub {
		if !contains(set, s) {
			return false
		}
	}
	return true
}

func contains(set []any, v any) bool {
	for _, s := range set {
		if equal(s, v) {
			return true
		}
	}
	return false
}

func equal(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if a == nil || b == nil {
		return a == b
	}
	if reflect.TypeOf(a).Comparable() && reflect.TypeOf(b).Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// BooleanResult requires the condition to evaluate to a single boolean, which is
// the verdict. It is the default mode for scripted conditions (CEL, Expr).
type BooleanResult struct{}

func (BooleanResult) IsPositive(inputType Type, entry, input *TypedValue) (bool, error) {
	mustHaveValues(entry, input)

	if entry.IsSingleValue() {
		if b, ok := entry.Value().(bool); ok {
			return b, nil
		}
	}
	return false, fmt.Errorf("%w: condition returned %v", ErrNotBoolean, entry)
}

func mustHaveValues(entry, input *TypedValue) {
	if entry == nil {
		panic("dmn: input entry value can not be nil")
	}
	if input == nil {
		panic("dmn: input value can not be nil")
	}
}

// ParseEvaluationMode returns the EvaluationMode with the given name:
// "input-comparison" or "boolean".
func ParseEvaluationMode(name string) (EvaluationMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "input-comparison", "input_comparison", "comparison":
		return InputComparison{}, nil
	case "boolean", "bool":
		return BooleanResult{}, nil
	}
	return nil, fmt.Errorf("unknown evaluation mode %q", name)
}

// defaultModes maps expression types to the mode used for their input entries.
func defaultModes() map[ExpressionType]EvaluationMode {
	return map[ExpressionType]EvaluationMode{
		Literal: InputComparison{},
		FEEL:    InputComparison{},
		CEL:     BooleanResult{},
		Expr:    BooleanResult{},
	}
}
