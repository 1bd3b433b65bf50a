package server

import "github.com/tablekit/dmn"

// decisionView is the JSON form of a decision definition.
type decisionView struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	HitPolicy string       `json:"hit_policy"`
	Inputs    []columnView `json:"inputs"`
	Outputs   []columnView `json:"outputs"`
	Rules     []dmn.Rule   `json:"rules"`
}

type columnView struct {
	Name       string          `json:"name"`
	Alias      string          `json:"alias,omitempty"`
	Label      string          `json:"label,omitempty"`
	Type       string          `json:"type"`
	Expression *dmn.Expression `json:"expression,omitempty"`
}

func newDecisionView(d *dmn.Decision) decisionView {
	v := decisionView{
		ID:        d.ID(),
		Name:      d.Name(),
		HitPolicy: d.HitPolicy().String(),
		Rules:     d.Rules(),
	}
	for _, in := range d.Inputs() {
		x := in.Expression
		v.Inputs = append(v.Inputs, columnView{Name: in.Name, Alias: in.Alias, Label: in.Label, Type: in.Type.String(), Expression: &x})
	}
	for _, out := range d.Outputs() {
		v.Outputs = append(v.Outputs, columnView{Name: out.Name, Label: out.Label, Type: out.Type.String()})
	}
	return v
}
