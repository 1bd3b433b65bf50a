// Package expr provides an implementation of the dmn ExpressionEvaluator interface
// backed by github.com/expr-lang/expr.
//
// Expressions see every decision variable and every computed decision input by name:
//
//	age >= 18 && country in ["DE", "AT"]
//
// Names that are not bound evaluate to nil.
package expr

import (
	"context"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/tablekit/dmn"
)

// Evaluator compiles expr-lang expressions once and runs them against the
// bindings of each evaluation. It is safe for concurrent use.
type Evaluator struct {
	options  []expr.Option
	programs sync.Map // source -> *vm.Program
}

// NewEvaluator returns an Evaluator. The options are passed to expr.Compile,
// for example to add functions with expr.Function.
func NewEvaluator(options ...expr.Option) *Evaluator {
	return &Evaluator{options: options}
}

func (e *Evaluator) Evaluate(ctx context.Context, x dmn.Expression, bindings map[string]any) (any, error) {
	src, err := x.Text()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prg, err := e.program(src)
	if err != nil {
		return nil, err
	}

	out, err := expr.Run(prg, bindings)
	if err != nil {
		return nil, fmt.Errorf("running expression %q: %w", src, err)
	}
	return out, nil
}

func (e *Evaluator) program(src string) (*vm.Program, error) {
	if p, ok := e.programs.Load(src); ok {
		return p.(*vm.Program), nil
	}
	prg, err := expr.Compile(src, e.options...)
	if err != nil {
		return nil, fmt.Errorf("compiling expression %q: %w", src, err)
	}
	p, _ := e.programs.LoadOrStore(src, prg)
	return p.(*vm.Program), nil
}
