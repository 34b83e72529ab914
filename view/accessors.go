package view

import (
	"encoding/json"
	"strings"
	"time"

	fhirview "github.com/reoring/fhirview"
	"github.com/reoring/fhirview/codec"
	"github.com/reoring/fhirview/node"
	"github.com/reoring/fhirview/schema"
)

// Every accessor returns (value, present, err). An absent or null member is
// (zero, false, nil); a member whose JSON shape disagrees with its descriptor
// is an invalid_type issue; a name the type does not define is an
// unknown_field issue. Issues carry the member's JSON Pointer.

func (v View) typeName() string {
	if v.typ == nil {
		return ""
	}
	return v.typ.Name
}

func (v View) lookup(name string) (schema.Field, *node.Node, error) {
	f, ok := v.typ.Field(name)
	if !ok {
		return f, nil, issues(v.Pointer(name), fhirview.CodeUnknownField, map[string]string{"type": v.typeName(), "field": name})
	}
	return f, member(v.n, name), nil
}

func mismatch(path, want, got string) error {
	return issues(path, fhirview.CodeInvalidType, map[string]string{"want": want, "got": got})
}

// primitive resolves a primitive member and checks the descriptor agrees
// with the accessor: kind is the JSON kind the accessor reads.
func (v View) primitive(name string, kind node.Kind, many bool) (schema.Field, *node.Node, error) {
	f, n, err := v.lookup(name)
	if err != nil {
		return f, nil, err
	}
	path := v.Pointer(name)
	switch {
	case !f.IsPrimitive():
		return f, nil, mismatch(path, f.TypeLabel(), "primitive accessor")
	case f.Many != many:
		if f.Many {
			return f, nil, mismatch(path, "repeating "+f.TypeLabel(), "single value accessor")
		}
		return f, nil, mismatch(path, f.TypeLabel(), "list accessor")
	case f.Primitive.Kind() != kind:
		return f, nil, mismatch(path, f.TypeLabel(), kind.String()+" accessor")
	}
	if n == nil {
		return f, nil, nil
	}
	want := kind
	if many {
		want = node.KindArray
	}
	if n.Kind() != want {
		return f, nil, mismatch(path, f.TypeLabel(), n.Kind().String())
	}
	return f, n, nil
}

// String reads a single string-valued primitive (string, code, uri, date,
// ...) as its raw text.
func (v View) String(name string) (string, bool, error) {
	_, n, err := v.primitive(name, node.KindString, false)
	if err != nil || n == nil {
		return "", false, err
	}
	s, _ := n.AsString()
	return s, true, nil
}

// Bool reads a boolean primitive.
func (v View) Bool(name string) (bool, bool, error) {
	_, n, err := v.primitive(name, node.KindBool, false)
	if err != nil || n == nil {
		return false, false, err
	}
	b, _ := n.AsBool()
	return b, true, nil
}

// Decimal reads a numeric primitive keeping its exact text.
func (v View) Decimal(name string) (json.Number, bool, error) {
	_, n, err := v.primitive(name, node.KindNumber, false)
	if err != nil || n == nil {
		return "", false, err
	}
	d, _ := n.AsNumber()
	return d, true, nil
}

// Integer reads integer, positiveInt or unsignedInt. Fractions and values
// outside the primitive's range are invalid_format issues.
func (v View) Integer(name string) (int64, bool, error) {
	f, n, err := v.primitive(name, node.KindNumber, false)
	if err != nil || n == nil {
		return 0, false, err
	}
	i, err := integerValue(f.Primitive, n, v.Pointer(name))
	if err != nil {
		return 0, false, err
	}
	return i, true, nil
}

func integerValue(p schema.Primitive, n *node.Node, path string) (int64, error) {
	text, _ := n.AsNumber()
	i, ok := n.AsInt64()
	switch {
	case !p.IsInteger():
		return 0, mismatch(path, p.String(), "integer accessor")
	case !ok:
		return 0, issues(path, fhirview.CodeInvalidFormat, map[string]string{"want": p.String(), "got": string(text)})
	case p == schema.PositiveInt && i < 1, p == schema.UnsignedInt && i < 0:
		return 0, issues(path, fhirview.CodeInvalidFormat, map[string]string{"want": p.String(), "got": string(text)})
	}
	return i, nil
}

// Code reads a code primitive. A value outside the field's enumerated codes
// is an invalid_enum issue; the raw text is still returned.
func (v View) Code(name string) (string, bool, error) {
	f, n, err := v.primitive(name, node.KindString, false)
	if err != nil || n == nil {
		return "", false, err
	}
	if f.Primitive != schema.Code {
		return "", false, mismatch(v.Pointer(name), f.TypeLabel(), "code accessor")
	}
	s, _ := n.AsString()
	if !f.AllowsCode(s) {
		return s, true, enumIssue(v.Pointer(name), f, s)
	}
	return s, true, nil
}

func enumIssue(path string, f schema.Field, got string) fhirview.Issues {
	iss := fhirview.NewIssue(path, fhirview.CodeInvalidEnum, map[string]string{"got": got})
	iss.Hint = strings.Join(f.Codes, "|")
	return fhirview.Issues{iss}
}

// Time reads a date, dateTime, instant or time primitive. Partial dates
// resolve to the start of the period in UTC.
func (v View) Time(name string) (time.Time, bool, error) {
	f, n, err := v.primitive(name, node.KindString, false)
	if err != nil || n == nil {
		return time.Time{}, false, err
	}
	t, err := temporalValue(f, n, v.Pointer(name))
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func temporalValue(f schema.Field, n *node.Node, path string) (time.Time, error) {
	if !f.Primitive.IsTemporal() {
		return time.Time{}, mismatch(path, f.TypeLabel(), "time accessor")
	}
	s, _ := n.AsString()
	t, _, err := codec.Parse(f.Primitive.String(), s)
	if err != nil {
		return time.Time{}, fhirview.ToIssues(err).Rebase(path)
	}
	return t, nil
}

// Strings reads a repeating string-valued primitive. Entries that are null
// (present only through the extension side-channel) read as "".
func (v View) Strings(name string) ([]string, bool, error) {
	_, n, err := v.primitive(name, node.KindString, true)
	if err != nil || n == nil {
		return nil, false, err
	}
	out := make([]string, 0, n.Len())
	var iss fhirview.Issues
	for i, it := range n.Items() {
		switch it.Kind() {
		case node.KindString:
			s, _ := it.AsString()
			out = append(out, s)
		case node.KindNull:
			out = append(out, "")
		default:
			iss = append(iss, fhirview.NewIssue(v.at().Field(name).Index(i).Pointer(), fhirview.CodeInvalidType, map[string]string{"want": "string", "got": it.Kind().String()}))
		}
	}
	if len(iss) > 0 {
		return nil, true, iss
	}
	return out, true, nil
}

// Child reads a single complex member as a View of its declared type.
// Members typed as Resource are projected by their resourceType.
func (v View) Child(name string) (View, bool, error) {
	f, n, err := v.lookup(name)
	if err != nil {
		return View{}, false, err
	}
	path := v.Pointer(name)
	if f.IsPrimitive() {
		return View{}, false, mismatch(path, f.TypeLabel(), "complex accessor")
	}
	if f.Many {
		return View{}, false, mismatch(path, "repeating "+f.TypeLabel(), "single value accessor")
	}
	if n == nil {
		return View{}, false, nil
	}
	c, err := v.project(f, n, v.at().Field(name))
	if err != nil {
		return View{}, false, err
	}
	return c, true, nil
}

// Children reads a repeating complex member. Source order is kept; a present
// empty array yields an empty, non-nil slice.
func (v View) Children(name string) ([]View, bool, error) {
	f, n, err := v.lookup(name)
	if err != nil {
		return nil, false, err
	}
	path := v.Pointer(name)
	if f.IsPrimitive() {
		return nil, false, mismatch(path, f.TypeLabel(), "complex accessor")
	}
	if !f.Many {
		return nil, false, mismatch(path, f.TypeLabel(), "list accessor")
	}
	if n == nil {
		return nil, false, nil
	}
	if n.Kind() != node.KindArray {
		return nil, false, mismatch(path, "array", n.Kind().String())
	}
	out := make([]View, 0, n.Len())
	var iss fhirview.Issues
	for i, it := range n.Items() {
		c, err := v.project(f, it, v.at().Field(name).Index(i))
		if err != nil {
			iss = append(iss, fhirview.ToIssues(err)...)
			continue
		}
		out = append(out, c)
	}
	if len(iss) > 0 {
		return nil, true, iss
	}
	return out, true, nil
}

// project wraps a complex member node as a View of the field's type.
func (v View) project(f schema.Field, n *node.Node, at fhirview.PathRef) (View, error) {
	if f.TypeName == schema.AbstractResource {
		return resourceAt(v.reg, n, at)
	}
	if n.Kind() != node.KindObject {
		return View{}, mismatch(at.Pointer(), f.TypeName, n.Kind().String())
	}
	t, ok := v.reg.Lookup(f.TypeName)
	if !ok {
		return View{}, issues(at.Pointer(), fhirview.CodeUnknownField, map[string]string{"type": "registry", "field": f.TypeName})
	}
	return v.child(t, n, at), nil
}

// Raw returns the member node without shape checks. The name must still be
// a field of the type.
func (v View) Raw(name string) (*node.Node, bool, error) {
	_, n, err := v.lookup(name)
	if err != nil {
		return nil, false, err
	}
	return n, n != nil, nil
}
