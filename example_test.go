package dmn_test

import (
	"context"
	"fmt"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/tablekit/dmn"
	"github.com/tablekit/dmn/cel"
)

// Example showing basic use of the decision engine with literal entries
func Example() {

	// Step 1: Define the decision table
	inputs := []dmn.Input{
		{Name: "tier", Type: dmn.String{}, Expression: dmn.NewLiteral(nil)},
	}
	outputs := []dmn.Output{
		{Name: "discount", Type: dmn.Double{}},
	}
	rules := []dmn.Rule{
		{
			ID:            "premium",
			InputEntries:  []*dmn.InputEntry{{Expression: dmn.NewLiteral([]any{"gold", "platinum"})}},
			OutputEntries: []dmn.OutputEntry{{Expression: dmn.NewLiteral(0.2)}},
		},
		{
			ID:            "standard",
			InputEntries:  []*dmn.InputEntry{nil},
			OutputEntries: []dmn.OutputEntry{{Expression: dmn.NewLiteral(0.0)}},
		},
	}

	// Step 2: Create the decision
	d, err := dmn.NewDecision("discount", "Discount", dmn.First, inputs, outputs, rules)
	if err != nil {
		fmt.Println(err)
		return
	}

	// Step 3: Create an Evaluator; literal expressions need no registration
	ev := dmn.NewEvaluator()

	// Step 4: Evaluate and check the results
	for _, tier := range []string{"gold", "bronze"} {
		res, err := ev.Evaluate(context.Background(), d, dmn.NewVariables(map[string]any{"tier": tier}))
		if err != nil {
			fmt.Println(err)
			return
		}
		e, _ := res.SingleEntryResult()
		fmt.Println(tier, e.Value)
	}
	// Output:
	// gold 0.2
	// bronze 0
}

// Example showing CEL conditions and a custom CEL function
func Example_cel() {
	shout := celgo.Function("shout",
		celgo.MemberOverload("string_shout", []*celgo.Type{celgo.StringType}, celgo.StringType,
			celgo.UnaryBinding(func(v ref.Val) ref.Val {
				return types.String(fmt.Sprintf("%v!", v.Value()))
			}),
		),
	)

	ev := dmn.NewEvaluator(
		dmn.WithExpressionEvaluator(dmn.CEL, cel.NewEvaluator(cel.EnvOptions(shout))),
	)

	d, err := dmn.NewDecision("greeting", "Greeting", dmn.Unique,
		[]dmn.Input{{Name: "age", Type: dmn.Integer{}, Expression: dmn.NewLiteral(nil)}},
		[]dmn.Output{{Name: "greeting", Type: dmn.String{}}},
		[]dmn.Rule{
			{
				ID:            "young",
				InputEntries:  []*dmn.InputEntry{{Expression: dmn.NewExpression(dmn.CEL, "age < 30")}},
				OutputEntries: []dmn.OutputEntry{{Expression: dmn.NewExpression(dmn.CEL, `"hey".shout()`)}},
			},
			{
				ID:            "old",
				InputEntries:  []*dmn.InputEntry{{Expression: dmn.NewExpression(dmn.CEL, "age >= 30")}},
				OutputEntries: []dmn.OutputEntry{{Expression: dmn.NewLiteral("good day")}},
			},
		})
	if err != nil {
		fmt.Println(err)
		return
	}

	res, err := ev.Evaluate(context.Background(), d, dmn.NewVariables(map[string]any{"age": 21}))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(res.Values("greeting"))
	// Output: [hey!]
}

// Example showing a Vault holding the decisions that are evaluated
func Example_vault() {
	decision := func(id string) *dmn.Decision {
		d, _ := dmn.NewDecision(id, id, dmn.Collect,
			[]dmn.Input{{Name: "x", Type: dmn.Integer{}, Expression: dmn.NewLiteral(1)}},
			[]dmn.Output{{Name: "id", Type: dmn.String{}}},
			[]dmn.Rule{{ID: "always", InputEntries: []*dmn.InputEntry{nil}, OutputEntries: []dmn.OutputEntry{{Expression: dmn.NewLiteral(id)}}}},
		)
		return d
	}

	v, err := dmn.NewVault(decision("a"), decision("b"))
	if err != nil {
		fmt.Println(err)
		return
	}

	err = v.ApplyMutations([]dmn.DecisionMutation{
		{ID: "a"}, // nil Decision deletes
		{ID: "c", Decision: decision("c")},
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(v.IDs())
	// Output: [b c]
}
