package schema

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TypeKind distinguishes datatypes, resources and backbone elements.
type TypeKind int

const (
	Datatype TypeKind = iota
	Resource
	Backbone
)

func (k TypeKind) String() string {
	switch k {
	case Resource:
		return "resource"
	case Backbone:
		return "backbone"
	}
	return "datatype"
}

// AbstractResource names the type whose fields hold any resource. Values are
// dispatched on their resourceType.
const AbstractResource = "Resource"

// Field describes one member of a type. Exactly one of Primitive and TypeName
// is set. Choice members carry the group name and type suffix; their Name is
// Choice+Suffix (value[x] -> valueQuantity).
type Field struct {
	Name      string
	Primitive Primitive
	TypeName  string
	Many      bool
	Required  bool
	Choice    string
	Suffix    string
	Codes     []string
	Short     string
}

// IsPrimitive reports whether the field holds a primitive value.
func (f Field) IsPrimitive() bool { return f.Primitive != NotPrimitive }

// TypeLabel is the primitive name or the complex type name.
func (f Field) TypeLabel() string {
	if f.IsPrimitive() {
		return f.Primitive.String()
	}
	return f.TypeName
}

// AllowsCode reports whether c is acceptable for the field. Fields without an
// enumerated code list accept any code.
func (f Field) AllowsCode(c string) bool {
	return len(f.Codes) == 0 || slices.Contains(f.Codes, c)
}

// Type is the descriptor of one datatype, resource or backbone element.
// Fields keep declaration order. A Type is immutable once built.
type Type struct {
	Name   string
	Kind   TypeKind
	Base   string
	Short  string
	Fields []Field

	index   map[string]int
	choices map[string][]int
	groups  []string
}

func newType(name string, kind TypeKind, base, short string, fields []Field) *Type {
	t := &Type{Name: name, Kind: kind, Base: base, Short: short, Fields: fields}
	t.index = make(map[string]int, len(fields))
	for i, f := range fields {
		t.index[f.Name] = i
		if f.Choice != "" {
			if _, ok := t.choices[f.Choice]; !ok {
				if t.choices == nil {
					t.choices = map[string][]int{}
				}
				t.groups = append(t.groups, f.Choice)
			}
			t.choices[f.Choice] = append(t.choices[f.Choice], i)
		}
	}
	return t
}

// IsResource reports whether the type is a resource.
func (t *Type) IsResource() bool { return t != nil && t.Kind == Resource }

// Field returns the field descriptor for name.
func (t *Type) Field(name string) (Field, bool) {
	if t == nil {
		return Field{}, false
	}
	i, ok := t.index[name]
	if !ok {
		return Field{}, false
	}
	return t.Fields[i], true
}

// Choice returns the members of a choice group in declaration order.
func (t *Type) Choice(group string) []Field {
	if t == nil {
		return nil
	}
	idx := t.choices[group]
	if len(idx) == 0 {
		return nil
	}
	out := make([]Field, len(idx))
	for i, j := range idx {
		out[i] = t.Fields[j]
	}
	return out
}

// ChoiceMember returns the member of group with the given type suffix.
func (t *Type) ChoiceMember(group, suffix string) (Field, bool) {
	return t.Field(group + ChoiceSuffix(suffix))
}

// ChoiceGroups lists the choice group names in declaration order.
func (t *Type) ChoiceGroups() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.groups)
}

// RequiredFields lists the fields marked required.
func (t *Type) RequiredFields() []Field {
	if t == nil {
		return nil
	}
	var out []Field
	for _, f := range t.Fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

// IsPrimitiveField reports whether name is a primitive field, which may carry
// an extension side-channel under "_"+name.
func (t *Type) IsPrimitiveField(name string) bool {
	f, ok := t.Field(name)
	return ok && f.IsPrimitive()
}

// KnownKey reports whether key is a field, the extension side-channel of a
// primitive field, or resourceType on a resource.
func (t *Type) KnownKey(key string) bool {
	if _, ok := t.Field(key); ok {
		return true
	}
	if t.IsResource() && key == "resourceType" {
		return true
	}
	if rest, ok := strings.CutPrefix(key, "_"); ok {
		return t.IsPrimitiveField(rest)
	}
	return false
}

// ChoiceSuffix turns a type name into the suffix used by choice members:
// the first letter upper-cased (dateTime -> DateTime).
func ChoiceSuffix(typeName string) string {
	r, size := utf8.DecodeRuneInString(typeName)
	if r == utf8.RuneError {
		return typeName
	}
	return string(unicode.ToUpper(r)) + typeName[size:]
}
