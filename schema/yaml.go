package schema

import (
	"bytes"
	"errors"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	fhirview "github.com/reoring/fhirview"
)

// yamlTable is the on-disk shape of a schema table:
//
//	types:
//	  - name: Observation
//	    kind: resource
//	    base: DomainResource
//	    fields:
//	      - {name: status, type: code, min: 1, codes: [final, amended]}
//	      - {name: category, type: CodeableConcept, max: "*"}
//	      - {name: effective, choice: [dateTime, Period]}
//	      - name: component
//	        max: "*"
//	        fields:
//	          - {name: code, type: CodeableConcept, min: 1}
//
// A field with nested fields defines a backbone element named
// Parent.field whose base is BackboneElement.
type yamlTable struct {
	Types []yamlType `yaml:"types"`
}

type yamlType struct {
	Name   string      `yaml:"name"`
	Kind   string      `yaml:"kind"`
	Base   string      `yaml:"base"`
	Short  string      `yaml:"short"`
	Fields []yamlField `yaml:"fields"`
}

type yamlField struct {
	Name     string      `yaml:"name"`
	Type     string      `yaml:"type"`
	Min      int         `yaml:"min"`
	Max      string      `yaml:"max"`
	Required bool        `yaml:"required"`
	Many     bool        `yaml:"many"`
	Codes    []string    `yaml:"codes"`
	Choice   []string    `yaml:"choice"`
	Short    string      `yaml:"short"`
	Base     string      `yaml:"base"`
	Fields   []yamlField `yaml:"fields"`
}

// BackboneBase is the default base of backbone elements declared inline.
const BackboneBase = "BackboneElement"

// LoadYAML reads a schema table, registers every type in a new Registry and
// resolves it. Problems are returned as Issues whose paths name the type and
// field.
func LoadYAML(data []byte, opts ...Option) (*Registry, error) {
	var tbl yamlTable
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tbl); err != nil && !errors.Is(err, io.EOF) {
		return nil, fhirview.Issues{schemaIssue("/", err.Error())}
	}
	reg := NewRegistry(opts...)
	var (
		types []*Type
		iss   fhirview.Issues
	)
	for _, yt := range tbl.Types {
		kind, ok := parseKind(yt.Kind)
		if !ok {
			iss = fhirview.AppendIssues(iss, schemaIssue("/"+yt.Name, "unknown kind "+yt.Kind))
			continue
		}
		b := Define(yt.Name).Base(yt.Base).Short(yt.Short)
		b.kind = kind
		nested := addYAMLFields(b, yt.Name, yt.Fields)
		for _, nb := range append([]*typeBuilder{b}, nested...) {
			t, err := nb.Build()
			if err != nil {
				iss = append(iss, fhirview.ToIssues(err)...)
				continue
			}
			types = append(types, t)
		}
	}
	if err := reg.Register(types...); err != nil {
		iss = append(iss, fhirview.ToIssues(err)...)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	reg.log.Debug().Int("types", len(types)).Msg("schema table loaded")
	if err := reg.Resolve(); err != nil {
		return nil, err
	}
	return reg, nil
}

// addYAMLFields adds fields to b and returns builders for inline backbone
// elements, depth first.
func addYAMLFields(b *typeBuilder, owner string, fields []yamlField) []*typeBuilder {
	var nested []*typeBuilder
	for _, yf := range fields {
		if len(yf.Choice) > 0 {
			specs := make([]TypeSpec, len(yf.Choice))
			for i, v := range yf.Choice {
				specs[i] = Variant(v)
			}
			b.Choice(yf.Name, specs...).Short(yf.Short)
			continue
		}
		typeName := yf.Type
		if len(yf.Fields) > 0 {
			if typeName == "" {
				typeName = owner + "." + yf.Name
			}
			base := yf.Base
			if base == "" {
				base = BackboneBase
			}
			nb := Define(typeName).Backbone().Base(base).Short(yf.Short)
			nested = append(nested, nb)
			nested = append(nested, addYAMLFields(nb, typeName, yf.Fields)...)
		}
		var spec TypeSpec
		switch {
		case len(yf.Codes) > 0:
			spec = Codes(yf.Codes...)
		case typeName == "":
			b.fail("/"+yf.Name, "field "+yf.Name+" has no type")
			continue
		default:
			spec = Variant(typeName)
		}
		step := b.Field(yf.Name, spec).Short(yf.Short)
		if yf.Required || yf.Min > 0 {
			step.Required()
		}
		if yf.Many || isMany(yf.Max) {
			step.Many()
		}
	}
	return nested
}

func isMany(max string) bool {
	if max == "*" {
		return true
	}
	n, err := strconv.Atoi(max)
	return err == nil && n > 1
}

func parseKind(s string) (TypeKind, bool) {
	switch s {
	case "", "datatype":
		return Datatype, true
	case "resource":
		return Resource, true
	case "backbone":
		return Backbone, true
	}
	return Datatype, false
}
