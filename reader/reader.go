// Package reader reads decisions from YAML documents.
//
// A stream may hold any number of decisions, separated by "---":
//
//	id: age-category
//	name: Age category
//	hitPolicy: UNIQUE
//	expressionType: cel
//	inputs:
//	  - name: age
//	    type: integer
//	outputs:
//	  - name: category
//	    type: string
//	rules:
//	  - id: minor
//	    when: ["age < 18"]
//	    then: [{type: literal, value: minor}]
//	  - id: adult
//	    when: ["age >= 18"]
//	    then: [{type: literal, value: adult}]
//
// The hit policy defaults to UNIQUE, and rule entries without an explicit type
// have the document's expressionType (literal if omitted). An input entry that is
// empty, null or "-" places no constraint on its input. An input without an
// expression is a literal nil, so its value is supplied by a variable.
//
// Inputs and outputs without a name are named after their label, with every
// character other than letters, digits and "-" replaced by "_". If there is no
// label, or the name is taken, a name from the sequence input_0, input_1, ...
// (output_0, ...) is used. Rules without an id get a random UUID.
package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/tablekit/dmn"
)

// ErrRead is returned for documents that are not valid decisions.
var ErrRead = errors.New("reading decision")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Read returns the first decision of the stream.
// It returns dmn.ErrDecisionNotFound if the stream holds no decision.
func Read(r io.Reader) (*dmn.Decision, error) {
	ds, err := ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(ds) == 0 {
		return nil, fmt.Errorf("%w: stream holds no decision", dmn.ErrDecisionNotFound)
	}
	return ds[0], nil
}

// ReadByID returns the decision with the id.
// It returns dmn.ErrDecisionNotFound if the stream holds no such decision.
func ReadByID(r io.Reader, id string) (*dmn.Decision, error) {
	ds, err := ReadAll(r)
	if err != nil {
		return nil, err
	}
	for _, d := range ds {
		if d.ID() == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", dmn.ErrDecisionNotFound, id)
}

// ReadAll returns every decision of the stream, in order.
func ReadAll(r io.Reader) ([]*dmn.Decision, error) {
	dec := yaml.NewDecoder(r)
	ds := []*dmn.Decision{}
	ids := map[string]bool{}

	for i := 0; ; i++ {
		var doc document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return ds, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: document %d: %w", ErrRead, i, err)
		}

		d, err := convert(&doc)
		if err != nil {
			return nil, fmt.Errorf("%w: document %d: %w", ErrRead, i, err)
		}
		if ids[d.ID()] {
			return nil, fmt.Errorf("%w: duplicate decision id %s", ErrRead, d.ID())
		}
		ids[d.ID()] = true
		ds = append(ds, d)
	}
}

// ReadFile returns every decision of the file.
func ReadFile(path string) ([]*dmn.Decision, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ds, err := ReadAll(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

func convert(doc *document) (*dmn.Decision, error) {
	if err := validate.Struct(doc); err != nil {
		return nil, formatValidationErrors(err)
	}

	policy, err := dmn.ParseHitPolicy(doc.HitPolicy)
	if err != nil {
		return nil, err
	}
	entryType, err := dmn.ParseExpressionType(doc.ExpressionType)
	if err != nil {
		return nil, err
	}

	inputNames := newNames("input_")
	inputs := make([]dmn.Input, 0, len(doc.Inputs))
	for _, in := range doc.Inputs {
		t, err := dmn.ParseType(in.Type)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", in.Name, err)
		}
		x := dmn.NewLiteral(nil)
		if in.Expression != nil {
			if x, err = expression(in.Expression, dmn.Literal); err != nil {
				return nil, fmt.Errorf("input %s: %w", in.Name, err)
			}
		}
		inputs = append(inputs, dmn.Input{
			Name:       inputNames.unique(in.Name, in.Label),
			Alias:      in.Alias,
			Label:      in.Label,
			Type:       t,
			Expression: x,
		})
	}

	outputNames := newNames("output_")
	outputs := make([]dmn.Output, 0, len(doc.Outputs))
	for _, out := range doc.Outputs {
		t, err := dmn.ParseType(out.Type)
		if err != nil {
			return nil, fmt.Errorf("output %s: %w", out.Name, err)
		}
		outputs = append(outputs, dmn.Output{
			Name:  outputNames.unique(out.Name, out.Label),
			Label: out.Label,
			Type:  t,
		})
	}

	rules := make([]dmn.Rule, 0, len(doc.Rules))
	for i, r := range doc.Rules {
		rule, err := convertRule(r, entryType)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, rule)
	}

	return dmn.NewDecision(doc.ID, doc.Name, policy, inputs, outputs, rules)
}

func convertRule(r ruleDoc, entryType dmn.ExpressionType) (dmn.Rule, error) {
	rule := dmn.Rule{
		ID:            r.ID,
		Description:   r.Description,
		InputEntries:  make([]*dmn.InputEntry, 0, len(r.When)),
		OutputEntries: make([]dmn.OutputEntry, 0, len(r.Then)),
	}
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}

	for _, e := range r.When {
		if isEmpty(e) {
			rule.InputEntries = append(rule.InputEntries, nil)
			continue
		}
		x, err := expression(&e, entryType)
		if err != nil {
			return rule, err
		}
		entry := &dmn.InputEntry{Expression: x}
		if e.Mode != "" {
			if entry.Mode, err = dmn.ParseEvaluationMode(e.Mode); err != nil {
				return rule, err
			}
		}
		rule.InputEntries = append(rule.InputEntries, entry)
	}

	for _, e := range r.Then {
		x, err := expression(&e, entryType)
		if err != nil {
			return rule, err
		}
		rule.OutputEntries = append(rule.OutputEntries, dmn.OutputEntry{Expression: x})
	}
	return rule, nil
}

// expression converts an entry, using def if the entry does not name a type.
func expression(e *entryDoc, def dmn.ExpressionType) (dmn.Expression, error) {
	t := def
	if e.Type != "" {
		var err error
		if t, err = dmn.ParseExpressionType(e.Type); err != nil {
			return dmn.Expression{}, err
		}
	}
	if t == dmn.Literal {
		return dmn.NewLiteral(e.Value), nil
	}
	src, ok := e.Value.(string)
	if !ok {
		// scalars such as true or 42 are valid sources in every language
		if e.Value == nil || isCollection(e.Value) {
			return dmn.Expression{}, fmt.Errorf("%s expression must be text, got %v", t, e.Value)
		}
		src = fmt.Sprint(e.Value)
	}
	return dmn.NewExpression(t, src), nil
}

func isCollection(v any) bool {
	switch v.(type) {
	case []any, map[string]any:
		return true
	}
	return false
}

func isEmpty(e entryDoc) bool {
	if e.Value == nil {
		return true
	}
	s, ok := e.Value.(string)
	return ok && (strings.TrimSpace(s) == "" || strings.TrimSpace(s) == "-")
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// names hands out unique input or output names.
type names struct {
	prefix string
	next   int
	used   map[string]bool
}

func newNames(prefix string) *names {
	return &names{prefix: prefix, used: map[string]bool{}}
}

// unique returns name, else the sanitised label, else the next free name of the
// sequence. A taken name or label is replaced by a name of the sequence.
func (n *names) unique(name, label string) string {
	candidate := strings.Join(strings.Fields(name), "_")
	if candidate == "" && label != "" {
		candidate = unsafeName.ReplaceAllString(label, "_")
	}
	if candidate != "" && n.used[candidate] {
		log.Warn().Str("name", candidate).Msg("name already used, using one from the sequence")
		candidate = ""
	}
	for candidate == "" || n.used[candidate] {
		candidate = fmt.Sprintf("%s%d", n.prefix, n.next)
		n.next++
	}
	n.used[candidate] = true
	return candidate
}

func formatValidationErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
