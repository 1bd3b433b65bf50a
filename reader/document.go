package reader

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// document is the YAML form of one decision.
type document struct {
	ID        string `yaml:"id" validate:"required"`
	Name      string `yaml:"name"`
	HitPolicy string `yaml:"hitPolicy"`

	// ExpressionType is the type of rule entries that do not name one.
	ExpressionType string `yaml:"expressionType"`

	Inputs  []inputDoc  `yaml:"inputs" validate:"required,min=1,dive"`
	Outputs []outputDoc `yaml:"outputs" validate:"required,min=1,dive"`
	Rules   []ruleDoc   `yaml:"rules" validate:"dive"`
}

type inputDoc struct {
	Name       string    `yaml:"name"`
	Label      string    `yaml:"label"`
	Alias      string    `yaml:"alias"`
	Type       string    `yaml:"type"`
	Expression *entryDoc `yaml:"expression"`
}

type outputDoc struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
	Type  string `yaml:"type"`
}

type ruleDoc struct {
	ID          string     `yaml:"id"`
	Description string     `yaml:"description"`
	When        []entryDoc `yaml:"when"`
	Then        []entryDoc `yaml:"then"`
}

// entryDoc is an expression written either as a plain value, which has the
// document's expression type, or as a mapping naming its type:
//
//	age < 18
//	[gold, silver]
//	{type: cel, value: "age < 18", mode: input-comparison}
type entryDoc struct {
	Type  string
	Value any
	Mode  string
}

func (e *entryDoc) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return n.Decode(&e.Value)
	}

	var m struct {
		Type  string `yaml:"type"`
		Value any    `yaml:"value"`
		Mode  string `yaml:"mode"`
	}
	if err := n.Decode(&m); err != nil {
		return err
	}
	if m.Type == "" && m.Mode == "" {
		return fmt.Errorf("line %d: expression mapping needs a type or a mode", n.Line)
	}
	e.Type, e.Value, e.Mode = m.Type, m.Value, m.Mode
	return nil
}
