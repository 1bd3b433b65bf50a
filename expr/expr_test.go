package expr_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	exprlang "github.com/expr-lang/expr"
	"github.com/matryer/is"

	"github.com/tablekit/dmn"
	"github.com/tablekit/dmn/expr"
)

func TestDiscountDecision(t *testing.T) {
	is := is.New(t)
	e := dmn.NewEvaluator(dmn.WithExpressionEvaluator(dmn.Expr, expr.NewEvaluator()))

	inputs := []dmn.Input{
		{Name: "total", Type: dmn.Double{}, Expression: dmn.NewLiteral(nil)},
		{Name: "country", Type: dmn.String{}, Expression: dmn.NewLiteral(nil)},
	}
	outputs := []dmn.Output{{Name: "discount", Type: dmn.Double{}}}
	rules := []dmn.Rule{
		{
			ID: "large-eu",
			InputEntries: []*dmn.InputEntry{
				{Expression: dmn.NewExpression(dmn.Expr, "total >= 1000")},
				{Expression: dmn.NewExpression(dmn.Expr, `country in ["DE", "FR", "IT"]`)},
			},
			OutputEntries: []dmn.OutputEntry{{Expression: dmn.NewExpression(dmn.Expr, "total * 0.1")}},
		},
		{
			ID:            "large",
			InputEntries:  []*dmn.InputEntry{{Expression: dmn.NewExpression(dmn.Expr, "total >= 1000")}, nil},
			OutputEntries: []dmn.OutputEntry{{Expression: dmn.NewLiteral(50)}},
		},
		{
			ID:            "default",
			InputEntries:  []*dmn.InputEntry{nil, nil},
			OutputEntries: []dmn.OutputEntry{{Expression: dmn.NewLiteral(0)}},
		},
	}
	d, err := dmn.NewDecision("discount", "Discount", dmn.First, inputs, outputs, rules)
	is.NoErr(err)

	for _, c := range []struct {
		total   any
		country string
		want    float64
	}{
		{2000, "DE", 200.0},
		{"2000", "US", 50.0},
		{10.5, "DE", 0.0},
	} {
		res, err := e.Evaluate(context.Background(), d, dmn.NewVariables(map[string]any{"total": c.total, "country": c.country}))
		is.NoErr(err)
		is.Equal(res.Values("discount"), []any{c.want})
	}
}

func TestEvaluate(t *testing.T) {
	ev := expr.NewEvaluator(exprlang.Function("double", func(params ...any) (any, error) {
		return params[0].(int) * 2, nil
	}))

	cases := []struct {
		src      string
		bindings map[string]any
		want     any
	}{
		{"1 + 2", nil, 3},
		{"a > b", map[string]any{"a": 2, "b": 1}, true},
		{"missing == nil", map[string]any{}, true},
		{`upper(name)`, map[string]any{"name": "gold"}, "GOLD"},
		{"double(x)", map[string]any{"x": 21}, 42},
		{"[1, 2]", nil, []any{1, 2}},
	}

	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			is := is.New(t)
			got, err := ev.Evaluate(context.Background(), dmn.NewExpression(dmn.Expr, c.src), c.bindings)
			is.NoErr(err)
			is.Equal(got, c.want)
		})
	}
}

func TestErrors(t *testing.T) {
	is := is.New(t)
	ev := expr.NewEvaluator()

	_, err := ev.Evaluate(context.Background(), dmn.NewExpression(dmn.Expr, "a +"), nil)
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "compiling expression"))

	_, err = ev.Evaluate(context.Background(), dmn.NewExpression(dmn.Expr, "a.b.c"), map[string]any{"a": 1})
	is.True(err != nil)

	_, err = ev.Evaluate(context.Background(), dmn.NewLiteral(true), nil)
	is.True(err != nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ev.Evaluate(ctx, dmn.NewExpression(dmn.Expr, "1"), nil)
	is.True(errors.Is(err, context.Canceled))
}
