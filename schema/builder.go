package schema

import (
	"slices"

	fhirview "github.com/reoring/fhirview"
	"github.com/reoring/fhirview/i18n"
)

// TypeSpec names what a field holds: a primitive (optionally with an
// enumerated code list) or a complex type.
type TypeSpec struct {
	prim     Primitive
	typeName string
	codes    []string
}

// Prim returns the TypeSpec of a primitive.
func Prim(p Primitive) TypeSpec { return TypeSpec{prim: p} }

// Codes returns a code TypeSpec restricted to the given values.
func Codes(codes ...string) TypeSpec { return TypeSpec{prim: Code, codes: slices.Clone(codes)} }

// Ref returns the TypeSpec of a complex type, resolved through the registry.
func Ref(typeName string) TypeSpec { return TypeSpec{typeName: typeName} }

// Variant returns the TypeSpec for a choice member: a primitive name such as
// "dateTime" or a complex type name such as "Period".
func Variant(name string) TypeSpec {
	if p, ok := ParsePrimitive(name); ok {
		return Prim(p)
	}
	return Ref(name)
}

func (s TypeSpec) label() string {
	if s.prim != NotPrimitive {
		return s.prim.String()
	}
	return s.typeName
}

type typeBuilder struct {
	name   string
	kind   TypeKind
	base   string
	short  string
	fields []Field
	seen   map[string]struct{}
	errs   fhirview.Issues
}

type fieldStep struct {
	b *typeBuilder
	i int
}

type choiceStep struct {
	b       *typeBuilder
	members []int
}

// Define starts the description of a type. The type is a datatype unless
// Resource or Backbone is called.
func Define(name string) *typeBuilder {
	b := &typeBuilder{name: name, seen: map[string]struct{}{}}
	if name == "" {
		b.fail("/", "type name must not be empty")
	}
	return b
}

// Resource marks the type as a resource.
func (b *typeBuilder) Resource() *typeBuilder { b.kind = Resource; return b }

// Backbone marks the type as a backbone element nested in another type.
func (b *typeBuilder) Backbone() *typeBuilder { b.kind = Backbone; return b }

// Base sets the type whose fields are inherited when the registry resolves.
func (b *typeBuilder) Base(name string) *typeBuilder { b.base = name; return b }

// Short sets a one-line description.
func (b *typeBuilder) Short(text string) *typeBuilder { b.short = text; return b }

// Field registers a field and returns a step for its cardinality.
func (b *typeBuilder) Field(name string, spec TypeSpec) *fieldStep {
	i := b.add(Field{Name: name, Primitive: spec.prim, TypeName: spec.typeName, Codes: spec.codes})
	return &fieldStep{b: b, i: i}
}

// Choice registers a choice group. Each variant becomes a member named
// group+Suffix (effective + dateTime -> effectiveDateTime).
func (b *typeBuilder) Choice(group string, variants ...TypeSpec) *choiceStep {
	c := &choiceStep{b: b}
	if len(variants) == 0 {
		b.fail("/"+group, "choice group "+group+" has no variants")
		return c
	}
	for _, v := range variants {
		suffix := ChoiceSuffix(v.label())
		i := b.add(Field{Name: group + suffix, Primitive: v.prim, TypeName: v.typeName, Codes: v.codes, Choice: group, Suffix: suffix})
		if i >= 0 {
			c.members = append(c.members, i)
		}
	}
	return c
}

func (b *typeBuilder) add(f Field) int {
	if f.Name == "" {
		b.fail("/", "field name must not be empty")
		return -1
	}
	if f.Primitive == NotPrimitive && f.TypeName == "" {
		b.fail("/"+f.Name, "field "+f.Name+" has no type")
		return -1
	}
	if f.Primitive != NotPrimitive && f.TypeName != "" {
		b.fail("/"+f.Name, "field "+f.Name+" is both primitive and complex")
		return -1
	}
	if _, dup := b.seen[f.Name]; dup {
		b.fail("/"+f.Name, "field "+f.Name+" defined twice")
		return -1
	}
	b.seen[f.Name] = struct{}{}
	b.fields = append(b.fields, f)
	return len(b.fields) - 1
}

func (b *typeBuilder) fail(path, hint string) {
	b.errs = fhirview.AppendIssues(b.errs, fhirview.Issue{
		Path:    "/" + b.name + pathSuffix(path),
		Code:    fhirview.CodeParseError,
		Message: i18n.T(fhirview.CodeParseError, nil),
		Hint:    hint,
	})
}

func pathSuffix(p string) string {
	if p == "/" {
		return ""
	}
	return p
}

// Build validates the description and returns the Type.
func (b *typeBuilder) Build() (*Type, error) {
	if len(b.errs) > 0 {
		return nil, b.errs
	}
	return newType(b.name, b.kind, b.base, b.short, slices.Clone(b.fields)), nil
}

// MustBuild is like Build but panics on error.
func (b *typeBuilder) MustBuild() *Type {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}

func (f *fieldStep) field() *Field {
	if f.i < 0 {
		return &Field{}
	}
	return &f.b.fields[f.i]
}

// Required marks the field as required.
func (f *fieldStep) Required() *fieldStep { f.field().Required = true; return f }

// Many marks the field as repeating (a JSON array).
func (f *fieldStep) Many() *fieldStep { f.field().Many = true; return f }

// Short sets a one-line description of the field.
func (f *fieldStep) Short(text string) *fieldStep { f.field().Short = text; return f }

func (f *fieldStep) Field(name string, spec TypeSpec) *fieldStep { return f.b.Field(name, spec) }
func (f *fieldStep) Choice(group string, variants ...TypeSpec) *choiceStep {
	return f.b.Choice(group, variants...)
}
func (f *fieldStep) Build() (*Type, error) { return f.b.Build() }
func (f *fieldStep) MustBuild() *Type      { return f.b.MustBuild() }

// Short sets the description on every member of the group.
func (c *choiceStep) Short(text string) *choiceStep {
	for _, i := range c.members {
		c.b.fields[i].Short = text
	}
	return c
}

func (c *choiceStep) Field(name string, spec TypeSpec) *fieldStep { return c.b.Field(name, spec) }
func (c *choiceStep) Choice(group string, variants ...TypeSpec) *choiceStep {
	return c.b.Choice(group, variants...)
}
func (c *choiceStep) Build() (*Type, error) { return c.b.Build() }
func (c *choiceStep) MustBuild() *Type      { return c.b.MustBuild() }
