package cel

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
	"github.com/google/cel-go/ext"

	"github.com/tablekit/dmn"
)

// Evaluator evaluates CEL expressions for the dmn Evaluator.
//
// Every binding passed to Evaluate is declared as a dynamically typed CEL
// variable. Compiled programs are cached by expression text and the set of
// binding names, so an expression is compiled once per distinct set of bindings.
// An Evaluator is safe for concurrent use.
type Evaluator struct {
	costLimit  uint64
	envOptions []celgo.EnvOption

	envs     sync.Map // uint64 -> *envEntry
	programs sync.Map // uint64 -> *programEntry
}

type envEntry struct {
	names []string
	env   *celgo.Env
}

type programEntry struct {
	src   string
	names []string
	prg   celgo.Program
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(e *Evaluator)

// NewEvaluator returns a CEL Evaluator.
func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		costLimit: defaultCostLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// defaultCostLimit stops runaway expressions.
const defaultCostLimit = 1_000_000

// CostLimit sets the maximum evaluation cost of an expression.
// Zero disables the limit.
func CostLimit(limit uint64) EvaluatorOption {
	return func(e *Evaluator) {
		e.costLimit = limit
	}
}

// EnvOptions adds CEL environment options, such as custom functions,
// to every environment created by the Evaluator.
func EnvOptions(opts ...celgo.EnvOption) EvaluatorOption {
	return func(e *Evaluator) {
		e.envOptions = append(e.envOptions, opts...)
	}
}

// Evaluate compiles (or reuses) the program for the expression and evaluates
// it against the bindings.
func (e *Evaluator) Evaluate(ctx context.Context, x dmn.Expression, bindings map[string]any) (any, error) {
	src, err := x.Text()
	if err != nil {
		return nil, err
	}

	names := declarable(bindings)
	prg, err := e.program(src, names)
	if err != nil {
		return nil, err
	}

	out, _, err := prg.ContextEval(ctx, bindings)
	if err != nil {
		return nil, fmt.Errorf("evaluating CEL expression: %w", err)
	}
	return native(out)
}

func (e *Evaluator) program(src string, names []string) (celgo.Program, error) {
	key := programKey(src, names)
	if v, ok := e.programs.Load(key); ok {
		pe := v.(*programEntry)
		if pe.src == src && slices.Equal(pe.names, names) {
			return pe.prg, nil
		}
	}

	env, err := e.env(names)
	if err != nil {
		return nil, err
	}

	ast, iss := env.Compile(src)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compiling CEL expression %q: %w", src, iss.Err())
	}

	opts := []celgo.ProgramOption{celgo.InterruptCheckFrequency(interruptCheckFrequency)}
	if e.costLimit > 0 {
		opts = append(opts, celgo.CostLimit(e.costLimit))
	}
	prg, err := env.Program(ast, opts...)
	if err != nil {
		return nil, fmt.Errorf("generating program for %q: %w", src, err)
	}

	// On a key collision the entry of the other expression is kept.
	e.programs.LoadOrStore(key, &programEntry{src: src, names: names, prg: prg})
	return prg, nil
}

const interruptCheckFrequency = 100

func (e *Evaluator) env(names []string) (*celgo.Env, error) {
	key := xxhash.Sum64String(strings.Join(names, "\x00"))
	if v, ok := e.envs.Load(key); ok {
		ee := v.(*envEntry)
		if slices.Equal(ee.names, names) {
			return ee.env, nil
		}
	}

	opts := []celgo.EnvOption{
		celgo.CrossTypeNumericComparisons(true),
		ext.Strings(),
	}
	for _, n := range names {
		opts = append(opts, celgo.Variable(n, celgo.DynType))
	}
	opts = append(opts, e.envOptions...)

	env, err := celgo.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating CEL environment: %w", err)
	}
	e.envs.LoadOrStore(key, &envEntry{names: names, env: env})
	return env, nil
}

func programKey(src string, names []string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(src)
	for _, n := range names {
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(n)
	}
	return d.Sum64()
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var reserved = map[string]bool{
	"true": true, "false": true, "null": true, "in": true,
	"as": true, "break": true, "const": true, "continue": true, "else": true,
	"for": true, "function": true, "if": true, "import": true, "let": true,
	"loop": true, "package": true, "namespace": true, "return": true,
	"var": true, "void": true, "while": true,
}

// declarable returns the sorted binding names that are valid CEL identifiers.
// Other bindings can not be referenced in an expression.
func declarable(bindings map[string]any) []string {
	names := make([]string, 0, len(bindings))
	for n := range bindings {
		if identifier.MatchString(n) && !reserved[n] {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names
}

var (
	listType = reflect.TypeOf([]any{})
	mapType  = reflect.TypeOf(map[string]any{})
)

// native converts a CEL value to a plain Go value. Lists become []any, maps
// become map[string]any, null becomes nil.
func native(v ref.Val) (any, error) {
	switch t := v.(type) {
	case types.Null:
		return nil, nil
	case traits.Lister:
		return t.ConvertToNative(listType)
	case traits.Mapper:
		return t.ConvertToNative(mapType)
	}
	return v.Value(), nil
}
