package schema

import (
	"sort"
	"strings"

	fhirview "github.com/reoring/fhirview"
	js "github.com/reoring/fhirview/jsonschema"
)

var (
	one  = 1
	zero = 0
)

// JSONSchema projects a registered type into a JSON Schema document. Every
// complex type reachable from it is emitted under $defs and referenced by
// name, so recursive types (Extension, Identifier.assigner) stay finite.
// Primitive fields also get their "_field" extension property.
func JSONSchema(reg *Registry, typeName string) (*js.Schema, error) {
	t, ok := reg.Lookup(typeName)
	if !ok {
		return nil, fhirview.Issues{fhirview.NewIssue("/", fhirview.CodeUnknownField, map[string]string{"type": "registry", "field": typeName})}
	}
	defs := map[string]*js.Schema{}
	var visit func(t *Type)
	visit = func(t *Type) {
		if _, ok := defs[t.Name]; ok {
			return
		}
		s := &js.Schema{}
		defs[t.Name] = s
		*s = *objectSchema(t)
		for _, f := range t.Fields {
			if f.IsPrimitive() {
				if el, ok := reg.Lookup("Element"); ok {
					visit(el)
				}
				continue
			}
			if ft, ok := reg.Lookup(f.TypeName); ok {
				visit(ft)
			}
		}
	}
	visit(t)

	root := &js.Schema{Schema: js.Draft, Ref: js.DefRef(t.Name), Title: t.Name, Defs: defs}
	return root, nil
}

func objectSchema(t *Type) *js.Schema {
	s := &js.Schema{Type: "object", Description: t.Short, Properties: map[string]*js.Schema{}}
	if t.IsResource() {
		s.Properties["resourceType"] = &js.Schema{Const: t.Name}
		s.Required = append(s.Required, "resourceType")
	}
	for _, f := range t.Fields {
		s.Properties[f.Name] = fieldSchema(f)
		if f.IsPrimitive() {
			ext := &js.Schema{Ref: js.DefRef("Element")}
			if f.Many {
				ext = &js.Schema{Type: "array", Items: &js.Schema{AnyOf: []*js.Schema{ext, {Type: "null"}}}}
			}
			s.Properties["_"+f.Name] = ext
		}
		if f.Required {
			s.Required = append(s.Required, f.Name)
		}
	}
	for _, g := range t.ChoiceGroups() {
		members := t.Choice(g)
		names := make([]string, len(members))
		for i, m := range members {
			names[i] = m.Name
		}
		note := g + "[x]: at most one of " + strings.Join(names, ", ")
		for _, n := range names {
			p := s.Properties[n]
			if p.Description == "" {
				p.Description = note
			} else {
				p.Description += " (" + note + ")"
			}
		}
	}
	sort.Strings(s.Required)
	s.AdditionalProperties = false
	return s
}

func fieldSchema(f Field) *js.Schema {
	var s *js.Schema
	if f.IsPrimitive() {
		s = primitiveSchema(f.Primitive)
		for _, c := range f.Codes {
			s.Enum = append(s.Enum, c)
		}
	} else {
		s = &js.Schema{Ref: js.DefRef(f.TypeName)}
	}
	if f.Short != "" && f.Choice == "" {
		s.Description = f.Short
	}
	if f.Many {
		arr := &js.Schema{Type: "array", Items: s, Description: s.Description}
		s.Description = ""
		if f.Required {
			arr.MinItems = &one
		}
		return arr
	}
	return s
}

func primitiveSchema(p Primitive) *js.Schema {
	switch p {
	case Boolean:
		return &js.Schema{Type: "boolean"}
	case Integer:
		return &js.Schema{Type: "integer"}
	case PositiveInt:
		return &js.Schema{Type: "integer", Minimum: &one}
	case UnsignedInt:
		return &js.Schema{Type: "integer", Minimum: &zero}
	case Decimal:
		return &js.Schema{Type: "number"}
	case URI, URL, Canonical:
		return &js.Schema{Type: "string", Format: "uri"}
	case UUID:
		return &js.Schema{Type: "string", Pattern: `^urn:uuid:[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`}
	case ID:
		return &js.Schema{Type: "string", Pattern: `^[A-Za-z0-9\-\.]{1,64}$`}
	case Date:
		return &js.Schema{Type: "string", Pattern: `^\d{4}(-\d{2}(-\d{2})?)?$`}
	case DateTime:
		return &js.Schema{Type: "string", Pattern: `^\d{4}(-\d{2}(-\d{2}(T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2}))?)?)?$`}
	case Instant:
		return &js.Schema{Type: "string", Format: "date-time"}
	case Time:
		return &js.Schema{Type: "string", Pattern: `^\d{2}:\d{2}:\d{2}(\.\d+)?$`}
	default:
		return &js.Schema{Type: "string"}
	}
}
