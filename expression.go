package dmn

import (
	"fmt"
	"reflect"
	"strings"
)

// ExpressionType identifies the language of an expression. It selects both the
// ExpressionEvaluator that computes the expression and, for input entries, the
// EvaluationMode that decides whether a condition holds.
type ExpressionType string

const (
	// Literal expressions carry their value directly.
	Literal ExpressionType = "literal"
	// FEEL is the declarative DMN expression language. No FEEL evaluator is
	// registered by default.
	FEEL ExpressionType = "feel"
	// CEL expressions are evaluated by github.com/tablekit/dmn/cel.
	CEL ExpressionType = "cel"
	// Expr expressions are evaluated by github.com/tablekit/dmn/expr.
	Expr ExpressionType = "expr"
)

// ParseExpressionType returns the ExpressionType with the given name.
// An empty name is a Literal.
func ParseExpressionType(name string) (ExpressionType, error) {
	switch t := ExpressionType(strings.ToLower(strings.TrimSpace(name))); t {
	case "":
		return Literal, nil
	case Literal, FEEL, CEL, Expr:
		return t, nil
	}
	return "", fmt.Errorf("unknown expression type %q", name)
}

// IsOverridable reports whether decision variables may replace the value of an
// input computed by an expression of this type.
func (t ExpressionType) IsOverridable() bool {
	return t == Literal || t == FEEL
}

// Expression is a typed piece of decision logic.
//
// For Literal expressions Value is the value itself (any scalar or slice).
// For every other type Value holds the source text as a string.
type Expression struct {
	Type  ExpressionType `json:"type"`
	Value any            `json:"value,omitempty"`
}

// NewLiteral returns a literal expression holding v.
func NewLiteral(v any) Expression {
	return Expression{Type: Literal, Value: v}
}

// NewExpression returns an expression of type t with source text src.
func NewExpression(t ExpressionType, src string) Expression {
	return Expression{Type: t, Value: src}
}

// clone copies the expression, including slices and maps held by a literal value.
func (x Expression) clone() Expression {
	x.Value = cloneValue(x.Value)
	return x
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		c := make([]any, len(t))
		for i, e := range t {
			c[i] = cloneValue(e)
		}
		return c
	case map[string]any:
		c := make(map[string]any, len(t))
		for k, e := range t {
			c[k] = cloneValue(e)
		}
		return c
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		c := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(c, rv)
		return c.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		c := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			c.SetMapIndex(iter.Key(), iter.Value())
		}
		return c.Interface()
	}
	return v
}

// Text returns the source text of the expression.
func (x Expression) Text() (string, error) {
	s, ok := x.Value.(string)
	if !ok {
		return "", fmt.Errorf("%s expression must be a string, got %T", x.Type, x.Value)
	}
	return s, nil
}

func (x Expression) String() string {
	if x.Type == Literal {
		return fmt.Sprintf("%v", x.Value)
	}
	return fmt.Sprintf("%s: %v", x.Type, x.Value)
}
