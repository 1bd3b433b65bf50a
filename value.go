package dmn

import (
	"fmt"
	"reflect"
	"slices"
)

// TypedValue is the single-or-collection value wrapper used between expression
// evaluation and the evaluation modes. It carries the declared Type and either
// exactly one value or an ordered collection of values.
//
// A TypedValue is immutable.
type TypedValue struct {
	typ    Type
	value  any
	values []any
	single bool
}

// NewSingleValue returns a TypedValue holding one value.
// It panics if t is nil.
func NewSingleValue(t Type, v any) *TypedValue {
	tv, err := newTypedValue(t, v, nil, true, false)
	if err != nil {
		panic(err)
	}
	return tv
}

// NewCollectionValue returns a TypedValue holding the values, in order.
// A nil or empty slice yields an empty collection. It panics if t is nil.
func NewCollectionValue(t Type, vs []any) *TypedValue {
	tv, err := newTypedValue(t, nil, vs, false, true)
	if err != nil {
		panic(err)
	}
	return tv
}

// newTypedValue rejects a value marked both single and collection, and one that is neither.
func newTypedValue(t Type, v any, vs []any, single, collection bool) (*TypedValue, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: missing type", ErrInvalidTypedValue)
	}
	if single == collection {
		return nil, fmt.Errorf("%w: value must be either single or a collection", ErrInvalidTypedValue)
	}
	tv := &TypedValue{typ: t, single: single}
	if single {
		tv.value = v
	} else {
		tv.values = slices.Clone(vs)
		if tv.values == nil {
			tv.values = []any{}
		}
	}
	return tv, nil
}

// Type is the declared type of the value.
func (v *TypedValue) Type() Type {
	return v.typ
}

// IsSingleValue reports whether the value holds exactly one value.
func (v *TypedValue) IsSingleValue() bool {
	return v.single
}

// Value returns the single value. It is nil for collections.
func (v *TypedValue) Value() any {
	return v.value
}

// Values returns a copy of the collection. It is nil for single values.
func (v *TypedValue) Values() []any {
	if v.single {
		return nil
	}
	return slices.Clone(v.values)
}

// asCollection returns the values as a collection without copying;
// a single value becomes a one-element collection.
func (v *TypedValue) asCollection() []any {
	if v.single {
		return []any{v.value}
	}
	return v.values
}

func (v *TypedValue) String() string {
	if v.single {
		return fmt.Sprintf("%v (%s)", v.value, v.typ)
	}
	return fmt.Sprintf("%v (list of %s)", v.values, v.typ)
}

// ValueOf converts a raw value produced by an expression evaluator to a
// TypedValue of type t.
//
//	nil                 -> empty collection
//	slice or array      -> collection, each element converted
//	anything else       -> single value, converted
func ValueOf(t Type, raw any) (*TypedValue, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: missing type", ErrInvalidTypedValue)
	}
	if raw == nil {
		return NewCollectionValue(t, nil), nil
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if _, isBytes := raw.([]byte); isBytes {
			break
		}
		vs := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			c, err := convertOne(t, rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			vs = append(vs, c)
		}
		return NewCollectionValue(t, vs), nil
	}

	c, err := convertOne(t, raw)
	if err != nil {
		return nil, err
	}
	return NewSingleValue(t, c), nil
}

func convertOne(t Type, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	c, err := t.convert(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v (%T) to %s: %v", ErrConversion, v, v, t, err)
	}
	return c, nil
}

// entryValueOf converts the result of an input entry expression. Boolean
// results stay booleans regardless of the input type, so that an expression
// can return a verdict instead of an admissible value.
func entryValueOf(inputType Type, raw any) (*TypedValue, error) {
	if b, ok := raw.(bool); ok {
		return NewSingleValue(Boolean{}, b), nil
	}
	return ValueOf(inputType, raw)
}
