package dmn_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/tablekit/dmn"
)

// -------------------------------------------------- MOCK EVALUATOR
// mockEvaluator is used for testing.
// It provides minimal evaluation of expressions and captures
// which expressions were evaluated, in order.
//
// It understands:
//
//	true, false   the boolean
//	error         fails with errMock
//	$name         the value bound to name
//	anything else the text itself
type mockEvaluator struct {
	mu        sync.Mutex
	evaluated []string
}

const mockType dmn.ExpressionType = "mock"

var errMock = errors.New("mock failure")

func newMockEvaluator() *mockEvaluator {
	return &mockEvaluator{}
}

func (m *mockEvaluator) Evaluate(_ context.Context, x dmn.Expression, bindings map[string]any) (any, error) {
	src, err := x.Text()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.evaluated = append(m.evaluated, src)
	m.mu.Unlock()

	switch {
	case src == "true":
		return true, nil
	case src == "false":
		return false, nil
	case src == "error":
		return nil, errMock
	case strings.HasPrefix(src, "$"):
		return bindings[strings.TrimPrefix(src, "$")], nil
	}
	return src, nil
}

// Evaluated returns the expressions evaluated so far.
func (m *mockEvaluator) Evaluated() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.evaluated...)
}

// count returns how often the expression was evaluated.
func (m *mockEvaluator) count(src string) int {
	n := 0
	for _, e := range m.Evaluated() {
		if e == src {
			n++
		}
	}
	return n
}

// newMockDMN returns an Evaluator with the mock registered for mockType.
func newMockDMN(m *mockEvaluator, opts ...dmn.Option) *dmn.Evaluator {
	opts = append([]dmn.Option{
		dmn.WithExpressionEvaluator(mockType, m),
		dmn.WithEvaluationMode(mockType, dmn.BooleanResult{}),
	}, opts...)
	return dmn.NewEvaluator(opts...)
}

func mock(src string) dmn.Expression {
	return dmn.NewExpression(mockType, src)
}

func when(src string) *dmn.InputEntry {
	return &dmn.InputEntry{Expression: mock(src)}
}

func then(v any) dmn.OutputEntry {
	return dmn.OutputEntry{Expression: dmn.NewLiteral(v)}
}
