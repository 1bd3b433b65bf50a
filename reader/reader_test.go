package reader_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/tablekit/dmn"
	"github.com/tablekit/dmn/cel"
	"github.com/tablekit/dmn/reader"
)

const ageCategory = `
id: age-category
name: Age category
expressionType: cel
inputs:
  - name: age
    label: Age of the customer
    type: integer
outputs:
  - name: category
    type: string
rules:
  - id: minor
    when: ["age < 18"]
    then: [{type: literal, value: minor}]
  - id: adult
    when: ["age >= 18"]
    then: [{type: literal, value: adult}]
`

const discount = `
id: discount
hitPolicy: rule order
inputs:
  - label: Customer tier
    type: string
  - label: Order total
    alias: total
    type: double
    expression: {type: cel, value: "price * quantity"}
outputs:
  - label: Discount
    type: double
  - name: reason
rules:
  - when: [[gold, platinum], "-"]
    then: [0.1, tier]
  - when: [~, {type: cel, value: "total > 1000.0"}]
    then: [0.05, {type: cel, value: '"large order"'}]
  - description: everybody
    when: ["", null]
    then: [0, none]
`

func TestRead(t *testing.T) {
	is := is.New(t)

	d, err := reader.Read(strings.NewReader(ageCategory))
	is.NoErr(err)
	is.Equal(d.ID(), "age-category")
	is.Equal(d.Name(), "Age category")
	is.Equal(d.HitPolicy(), dmn.Unique) // default

	age, ok := d.Input("age")
	is.True(ok)
	is.Equal(age.Type, dmn.Integer{})
	is.Equal(age.Label, "Age of the customer")
	is.Equal(age.Expression, dmn.NewLiteral(nil))

	rules := d.Rules()
	is.Equal(len(rules), 2)
	is.Equal(rules[0].InputEntries[0].Expression, dmn.NewExpression(dmn.CEL, "age < 18"))
	is.Equal(rules[1].OutputEntries[0].Expression, dmn.NewLiteral("adult"))

	ev := dmn.NewEvaluator(dmn.WithExpressionEvaluator(dmn.CEL, cel.NewEvaluator()))
	res, err := ev.Evaluate(context.Background(), d, dmn.NewVariables(map[string]any{"age": 12}))
	is.NoErr(err)
	is.Equal(res.Values("category"), []any{"minor"})
}

func TestReadDefaultsAndNames(t *testing.T) {
	is := is.New(t)

	d, err := reader.Read(strings.NewReader(discount))
	is.NoErr(err)
	is.Equal(d.HitPolicy(), dmn.RuleOrder)

	inputs := d.Inputs()
	is.Equal(inputs[0].Name, "Customer_tier")
	is.Equal(inputs[0].Type, dmn.String{})
	is.Equal(inputs[1].Name, "Order_total")
	is.Equal(inputs[1].Alias, "total")
	is.Equal(inputs[1].Expression, dmn.NewExpression(dmn.CEL, "price * quantity"))

	outputs := d.Outputs()
	is.Equal(outputs[0].Name, "Discount")
	is.Equal(outputs[1].Name, "reason")
	is.Equal(outputs[1].Type, dmn.String{}) // default

	rules := d.Rules()
	is.Equal(len(rules), 3)
	is.Equal(rules[0].InputEntries[0].Expression, dmn.NewLiteral([]any{"gold", "platinum"}))
	is.Equal(rules[0].InputEntries[1], nil) // "-"
	is.Equal(rules[1].InputEntries[0], nil) // null
	is.Equal(rules[1].InputEntries[1].Expression, dmn.NewExpression(dmn.CEL, "total > 1000.0"))
	is.Equal(rules[2].InputEntries, []*dmn.InputEntry{nil, nil})
	is.Equal(rules[2].Description, "everybody")
	is.Equal(rules[2].OutputEntries[0].Expression, dmn.NewLiteral(0))

	// generated ids
	is.True(rules[0].ID != "")
	is.True(rules[0].ID != rules[1].ID)
}

func TestGeneratedNames(t *testing.T) {
	is := is.New(t)

	doc := `
id: names
inputs:
  - type: string
  - label: a b
  - label: a-b
  - label: a?b
  - name: input_1
outputs:
  - name: out
  - name: out
`
	d, err := reader.Read(strings.NewReader(doc))
	is.NoErr(err)

	names := []string{}
	for _, in := range d.Inputs() {
		names = append(names, in.Name)
	}
	is.Equal(names, []string{"input_0", "a_b", "a-b", "input_1", "input_2"})
	is.Equal(d.Outputs()[1].Name, "output_0")
}

func TestEntryModes(t *testing.T) {
	is := is.New(t)

	doc := `
id: modes
expressionType: cel
inputs:
  - name: country
outputs:
  - name: region
rules:
  - id: dach
    when: [{type: cel, value: '["DE", "AT", "CH"]', mode: input-comparison}]
    then: [{type: literal, value: DACH}]
  - id: other
    when: ['!(country in ["DE", "AT", "CH"])']
    then: [{type: literal, value: other}]
`
	d, err := reader.Read(strings.NewReader(doc))
	is.NoErr(err)
	is.Equal(d.Rules()[0].InputEntries[0].Mode, dmn.InputComparison{})
	is.Equal(d.Rules()[1].InputEntries[0].Mode, nil)

	ev := dmn.NewEvaluator(dmn.WithExpressionEvaluator(dmn.CEL, cel.NewEvaluator()))
	res, err := ev.Evaluate(context.Background(), d, dmn.NewVariables(map[string]any{"country": "CH"}))
	is.NoErr(err)
	is.Equal(res.Values("region"), []any{"DACH"})
}

func TestReadAll(t *testing.T) {
	is := is.New(t)
	stream := ageCategory + "\n---\n" + discount

	ds, err := reader.ReadAll(strings.NewReader(stream))
	is.NoErr(err)
	is.Equal(len(ds), 2)
	is.Equal(ds[1].ID(), "discount")

	d, err := reader.ReadByID(strings.NewReader(stream), "discount")
	is.NoErr(err)
	is.Equal(d.ID(), "discount")

	_, err = reader.ReadByID(strings.NewReader(stream), "missing")
	is.True(errors.Is(err, dmn.ErrDecisionNotFound))

	_, err = reader.Read(strings.NewReader(""))
	is.True(errors.Is(err, dmn.ErrDecisionNotFound))

	_, err = reader.ReadAll(strings.NewReader(ageCategory + "\n---\n" + ageCategory))
	is.True(errors.Is(err, reader.ErrRead)) // duplicate id
}

func TestReadErrors(t *testing.T) {
	cases := map[string]string{
		"syntax":          "id: [unclosed",
		"missing id":      "inputs: [{name: a}]\noutputs: [{name: b}]",
		"no inputs":       "id: x\noutputs: [{name: b}]",
		"no outputs":      "id: x\ninputs: [{name: a}]",
		"hit policy":      "id: x\nhitPolicy: sum\ninputs: [{name: a}]\noutputs: [{name: b}]",
		"type":            "id: x\ninputs: [{name: a, type: decimal}]\noutputs: [{name: b}]",
		"expression type": "id: x\nexpressionType: groovy\ninputs: [{name: a}]\noutputs: [{name: b}]",
		"entry count":     "id: x\ninputs: [{name: a}]\noutputs: [{name: b}]\nrules: [{when: [1, 2], then: [1]}]",
		"mode":            "id: x\ninputs: [{name: a}]\noutputs: [{name: b}]\nrules: [{when: [{type: cel, value: a, mode: fuzzy}], then: [1]}]",
		"script list":     "id: x\ninputs: [{name: a}]\noutputs: [{name: b}]\nrules: [{when: [{type: cel, value: [1]}], then: [1]}]",
		"empty mapping":   "id: x\ninputs: [{name: a}]\noutputs: [{name: b}]\nrules: [{when: [{value: 1}], then: [1]}]",
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			_, err := reader.Read(strings.NewReader(doc))
			is.True(errors.Is(err, reader.ErrRead))
		})
	}
}
