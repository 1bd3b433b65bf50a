package cel

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/tablekit/dmn"
)

// BinaryFunction is a Go function callable from CEL expressions with two
// arguments. The arguments are converted to LHS and RHS before the call, and
// the return value must convert to Return.
type BinaryFunction struct {
	LHS    dmn.Type
	RHS    dmn.Type
	Return dmn.Type
	Func   func(lhs, rhs any) (any, error)
}

// Function adds a binary function to every environment created by the Evaluator.
// The option panics if the function is incomplete.
func Function(name string, f BinaryFunction) EvaluatorOption {
	opt, err := binaryFunction(name, f)
	if err != nil {
		panic(err)
	}
	return EnvOptions(opt)
}

// binaryFunction creates a CEL declaration for a binary function.
func binaryFunction(name string, f BinaryFunction) (celgo.EnvOption, error) {
	if f.Func == nil {
		return nil, fmt.Errorf("%q missing function", name)
	}

	lhs, err := celType(f.LHS)
	if err != nil {
		return nil, fmt.Errorf("function %q: %w", name, err)
	}
	rhs, err := celType(f.RHS)
	if err != nil {
		return nil, fmt.Errorf("function %q: %w", name, err)
	}
	ret, err := celType(f.Return)
	if err != nil {
		return nil, fmt.Errorf("function %q: %w", name, err)
	}

	return celgo.Function(name,
		celgo.Overload(fmt.Sprintf("%s_%s_%s", name, f.LHS, f.RHS),
			[]*celgo.Type{lhs, rhs},
			ret,
			celgo.BinaryBinding(binaryWrapper(name, f)))), nil
}

// binaryWrapper converts the arguments to the declared Go types, calls the
// function and checks its result against the declared return type.
func binaryWrapper(name string, f BinaryFunction) func(lhs, rhs ref.Val) ref.Val {
	return func(lhs, rhs ref.Val) ref.Val {
		l, err := dmn.ValueOf(f.LHS, lhs.Value())
		if err != nil {
			return types.NewErr("function %s, first argument: %v", name, err)
		}
		r, err := dmn.ValueOf(f.RHS, rhs.Value())
		if err != nil {
			return types.NewErr("function %s, second argument: %v", name, err)
		}

		x, err := f.Func(l.Value(), r.Value())
		if err != nil {
			return types.NewErr("function %s: %v", name, err)
		}

		v, err := dmn.ValueOf(f.Return, x)
		if err != nil || !v.IsSingleValue() {
			return types.NewErr("function %s, wanted a %s, got %v (%T)", name, f.Return, x, x)
		}
		return types.DefaultTypeAdapter.NativeToValue(v.Value())
	}
}

func celType(t dmn.Type) (*celgo.Type, error) {
	switch t.(type) {
	case dmn.String:
		return celgo.StringType, nil
	case dmn.Integer, dmn.Long:
		return celgo.IntType, nil
	case dmn.Double:
		return celgo.DoubleType, nil
	case dmn.Boolean:
		return celgo.BoolType, nil
	case dmn.Date:
		return celgo.TimestampType, nil
	}
	return nil, fmt.Errorf("unsupported type %v", t)
}
