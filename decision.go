package dmn

import (
	"fmt"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Input is a named, typed column of a decision table tested by the rules.
type Input struct {
	// Unique name of the input within the decision. (required)
	Name string `json:"name"`

	// Optional second name under which the input value is visible to expressions.
	Alias string `json:"alias,omitempty"`

	// Optional user-friendly label.
	Label string `json:"label,omitempty"`

	// Type of the input value. (required)
	Type Type `json:"-"`

	// Expression computing the input value from the variables.
	// If the expression is a literal or FEEL expression, a variable with the
	// input's name replaces the computed value.
	Expression Expression `json:"expression"`
}

// Output is a named, typed column of a decision table produced by matching rules.
type Output struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
	Type  Type   `json:"-"`
}

// InputEntry is a rule's condition for one input.
type InputEntry struct {
	Expression Expression `json:"expression"`

	// Mode decides whether the condition holds. If nil, the mode registered
	// for the expression type is used.
	Mode EvaluationMode `json:"-"`
}

// OutputEntry is a rule's value for one output.
type OutputEntry struct {
	Expression Expression `json:"expression"`
}

// A Rule is one row of a decision table.
//
// InputEntries and OutputEntries are aligned with the decision's inputs and
// outputs. A nil input entry places no constraint on that input.
type Rule struct {
	ID            string        `json:"id"`
	Description   string        `json:"description,omitempty"`
	InputEntries  []*InputEntry `json:"input_entries"`
	OutputEntries []OutputEntry `json:"output_entries"`
}

// clone copies the rule deeply, so that no entry or literal value is shared.
func (r Rule) clone() Rule {
	c := r
	c.InputEntries = make([]*InputEntry, len(r.InputEntries))
	for i, e := range r.InputEntries {
		if e != nil {
			ec := *e
			ec.Expression = e.Expression.clone()
			c.InputEntries[i] = &ec
		}
	}
	c.OutputEntries = make([]OutputEntry, len(r.OutputEntries))
	for i, e := range r.OutputEntries {
		c.OutputEntries[i] = OutputEntry{Expression: e.Expression.clone()}
	}
	return c
}

func (in Input) clone() Input {
	in.Expression = in.Expression.clone()
	return in
}

func cloneInputs(inputs []Input) []Input {
	c := make([]Input, len(inputs))
	for i, in := range inputs {
		c[i] = in.clone()
	}
	return c
}

// A Decision is an immutable decision table: a hit policy, ordered inputs,
// outputs and rules. Create decisions with NewDecision.
// A Decision is safe for concurrent evaluation.
type Decision struct {
	id        string
	name      string
	hitPolicy HitPolicy
	inputs    []Input
	outputs   []Output
	rules     []Rule

	// positions of inputs and outputs by name
	inputIndex  map[string]int
	outputIndex map[string]int
}

// NewDecision validates the definition and returns a Decision owning copies of
// the inputs, outputs and rules.
//
// Input names and output names must be non-empty and unique, every input and
// output must have a type, and every rule must have one input entry per input
// and one output entry per output.
func NewDecision(id, name string, hitPolicy HitPolicy, inputs []Input, outputs []Output, rules []Rule) (*Decision, error) {
	inputIndex := make(map[string]int, len(inputs))
	for i, in := range inputs {
		if in.Name == "" {
			return nil, fmt.Errorf("%w: decision %s: input %d has no name", ErrInvalidDecision, id, i)
		}
		if _, ok := inputIndex[in.Name]; ok {
			return nil, fmt.Errorf("%w: decision %s: duplicate input name %s", ErrInvalidDecision, id, in.Name)
		}
		if in.Type == nil {
			return nil, fmt.Errorf("%w: decision %s: input %s has no type", ErrInvalidDecision, id, in.Name)
		}
		inputIndex[in.Name] = i
	}

	outputIndex := make(map[string]int, len(outputs))
	for i, out := range outputs {
		if out.Name == "" {
			return nil, fmt.Errorf("%w: decision %s: output %d has no name", ErrInvalidDecision, id, i)
		}
		if _, ok := outputIndex[out.Name]; ok {
			return nil, fmt.Errorf("%w: decision %s: duplicate output name %s", ErrInvalidDecision, id, out.Name)
		}
		if out.Type == nil {
			return nil, fmt.Errorf("%w: decision %s: output %s has no type", ErrInvalidDecision, id, out.Name)
		}
		outputIndex[out.Name] = i
	}

	d := &Decision{
		id:          id,
		name:        name,
		hitPolicy:   hitPolicy,
		inputs:      cloneInputs(inputs),
		outputs:     slices.Clone(outputs),
		rules:       make([]Rule, 0, len(rules)),
		inputIndex:  inputIndex,
		outputIndex: outputIndex,
	}

	for i, r := range rules {
		if len(r.InputEntries) != len(inputs) {
			return nil, fmt.Errorf("%w: decision %s: rule %d (%s) has %d input entries, want %d",
				ErrInvalidDecision, id, i, r.ID, len(r.InputEntries), len(inputs))
		}
		if len(r.OutputEntries) != len(outputs) {
			return nil, fmt.Errorf("%w: decision %s: rule %d (%s) has %d output entries, want %d",
				ErrInvalidDecision, id, i, r.ID, len(r.OutputEntries), len(outputs))
		}
		d.rules = append(d.rules, r.clone())
	}
	return d, nil
}

func (d *Decision) ID() string           { return d.id }
func (d *Decision) Name() string         { return d.name }
func (d *Decision) HitPolicy() HitPolicy { return d.hitPolicy }

// Inputs returns a copy of the inputs in declaration order.
func (d *Decision) Inputs() []Input { return cloneInputs(d.inputs) }

// Outputs returns a copy of the outputs in declaration order.
func (d *Decision) Outputs() []Output { return slices.Clone(d.outputs) }

// Rules returns a copy of the rules in declaration order.
func (d *Decision) Rules() []Rule {
	rs := make([]Rule, len(d.rules))
	for i, r := range d.rules {
		rs[i] = r.clone()
	}
	return rs
}

// Input returns the input with the name.
func (d *Decision) Input(name string) (Input, bool) {
	i, ok := d.inputIndex[name]
	if !ok {
		return Input{}, false
	}
	return d.inputs[i].clone(), true
}

// Output returns the output with the name.
func (d *Decision) Output(name string) (Output, bool) {
	i, ok := d.outputIndex[name]
	if !ok {
		return Output{}, false
	}
	return d.outputs[i], true
}

// String renders the decision table, one row per rule.
func (d *Decision) String() string {
	tw := table.NewWriter()
	tw.SetTitle(fmt.Sprintf("%s (%s)\n%s", d.name, d.id, d.hitPolicy))

	header := table.Row{"\nRule"}
	for _, in := range d.inputs {
		header = append(header, fmt.Sprintf("IN\n%s: %s", in.Name, in.Type))
	}
	for _, out := range d.outputs {
		header = append(header, fmt.Sprintf("OUT\n%s: %s", out.Name, out.Type))
	}
	tw.AppendHeader(header)

	for _, r := range d.rules {
		row := table.Row{r.ID}
		for _, e := range r.InputEntries {
			if e == nil {
				row = append(row, "-")
				continue
			}
			row = append(row, e.Expression.String())
		}
		for _, e := range r.OutputEntries {
			row = append(row, e.Expression.String())
		}
		tw.AppendRow(row)
	}

	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render()
}
