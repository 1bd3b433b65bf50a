package dmn

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Type defines a value kind in the decision type system.
// Inputs and outputs declare a Type; values produced by expressions are
// converted to the declared Type before they are compared or returned.
//
// The set of types is closed: String, Integer, Long, Double, Boolean and Date.
type Type interface {
	String() string

	// convert normalises a single raw value to the Go representation of the type.
	convert(v any) (any, error)
}

type String struct{}
type Integer struct{}
type Long struct{}
type Double struct{}
type Boolean struct{}
type Date struct{}

func (t String) String() string  { return "string" }
func (t Integer) String() string { return "integer" }
func (t Long) String() string    { return "long" }
func (t Double) String() string  { return "double" }
func (t Boolean) String() string { return "boolean" }
func (t Date) String() string    { return "date" }

func (t String) convert(v any) (any, error)  { return cast.ToStringE(v) }
func (t Integer) convert(v any) (any, error) { return cast.ToIntE(v) }
func (t Long) convert(v any) (any, error)    { return cast.ToInt64E(v) }
func (t Double) convert(v any) (any, error)  { return cast.ToFloat64E(v) }
func (t Boolean) convert(v any) (any, error) { return cast.ToBoolE(v) }

func (t Date) convert(v any) (any, error) {
	if d, ok := v.(time.Time); ok {
		return d, nil
	}
	return cast.ToTimeE(v)
}

// ParseType returns the Type with the given name.
// Names are case-insensitive; "int" and "bool" are accepted as aliases.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "string", "":
		return String{}, nil
	case "integer", "int":
		return Integer{}, nil
	case "long":
		return Long{}, nil
	case "double", "number", "float":
		return Double{}, nil
	case "boolean", "bool":
		return Boolean{}, nil
	case "date", "datetime", "timestamp":
		return Date{}, nil
	}
	return nil, fmt.Errorf("unknown value type %q", name)
}

func isBoolean(t Type) bool {
	_, ok := t.(Boolean)
	return ok
}
