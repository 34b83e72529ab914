package view

import (
	"encoding/json"
	"time"

	fhirview "github.com/reoring/fhirview"
	"github.com/reoring/fhirview/node"
	"github.com/reoring/fhirview/schema"
)

// Choice is the present member of a choice group (value[x]).
type Choice struct {
	Group  string
	Suffix string
	Field  schema.Field
	Node   *node.Node

	parent View
}

// Name is the member name, Group+Suffix.
func (c Choice) Name() string { return c.Field.Name }

// View projects a complex member (valuePeriod, valueQuantity, ...).
func (c Choice) View() (View, error) {
	v, _, err := c.parent.Child(c.Field.Name)
	return v, err
}

// Text reads a string-valued primitive member.
func (c Choice) Text() (string, error) {
	s, _, err := c.parent.String(c.Field.Name)
	return s, err
}

// Bool reads a boolean member.
func (c Choice) Bool() (bool, error) {
	b, _, err := c.parent.Bool(c.Field.Name)
	return b, err
}

// Decimal reads a numeric member.
func (c Choice) Decimal() (json.Number, error) {
	d, _, err := c.parent.Decimal(c.Field.Name)
	return d, err
}

// Time reads a temporal member.
func (c Choice) Time() (time.Time, error) {
	t, _, err := c.parent.Time(c.Field.Name)
	return t, err
}

// Choice resolves a choice group: the members are checked in declaration
// order and the first present one is returned. Null members are absent. Other present members are
// ignored here; ChoiceMembers lists all of them.
func (v View) Choice(group string) (Choice, bool, error) {
	members, err := v.choiceFields(group)
	if err != nil {
		return Choice{}, false, err
	}
	for _, f := range members {
		if n := member(v.n, f.Name); n != nil {
			return Choice{Group: group, Suffix: f.Suffix, Field: f, Node: n, parent: v}, true, nil
		}
	}
	return Choice{}, false, nil
}

// ChoiceMembers returns every present member of group in declaration order.
// Exclusivity is not enforced by the engine; rules.ExclusiveChoices reports
// groups with more than one member.
func (v View) ChoiceMembers(group string) ([]Choice, error) {
	members, err := v.choiceFields(group)
	if err != nil {
		return nil, err
	}
	var out []Choice
	for _, f := range members {
		if n := member(v.n, f.Name); n != nil {
			out = append(out, Choice{Group: group, Suffix: f.Suffix, Field: f, Node: n, parent: v})
		}
	}
	return out, nil
}

func (v View) choiceFields(group string) ([]schema.Field, error) {
	members := v.typ.Choice(group)
	if len(members) == 0 {
		return nil, issues(v.Pointer(group), fhirview.CodeUnknownField, map[string]string{"type": v.typeName(), "field": group + "[x]"})
	}
	return members, nil
}
