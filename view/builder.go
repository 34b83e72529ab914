package view

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	fhirview "github.com/reoring/fhirview"
	"github.com/reoring/fhirview/codec"
	"github.com/reoring/fhirview/node"
	"github.com/reoring/fhirview/schema"
)

// Builder assembles a typed object with copy-on-write semantics.
//
// The builder shares its seed (the source view of With, or the last Build
// result) until the first mutation, which copies only the top-level object.
// Subtrees are shared and never written to, so views handed out earlier stay
// unchanged. Setters overwrite silently, including other members of the same
// choice group. Setter errors are kept and returned from Build.
//
// A Builder must not be shared between goroutines.
type Builder struct {
	reg      *schema.Registry
	typ      *schema.Type
	ed       *node.Editor
	required []string
	iss      fhirview.Issues
}

// NewBuilder starts an empty object of type t with the given required
// members. Build reports every required field of t that is still missing.
func NewBuilder(reg *schema.Registry, t *schema.Type, required ...node.Member) *Builder {
	b := &Builder{reg: reg, typ: t, ed: node.Edit(nil)}
	if t == nil {
		b.fail(issues("/", fhirview.CodeUnknownField, map[string]string{"type": "registry", "field": "<nil>"}))
		return b
	}
	if t.IsResource() {
		b.ed.Set("resourceType", node.String(t.Name))
	}
	for _, f := range t.RequiredFields() {
		b.required = append(b.required, f.Name)
	}
	for _, m := range required {
		b.Set(m.Key, m.Value)
	}
	return b
}

// NewBuilderFor is NewBuilder for a registered type name. An unknown name is
// reported by Build.
func NewBuilderFor(reg *schema.Registry, name string, required ...node.Member) *Builder {
	t, ok := reg.Lookup(name)
	if !ok {
		b := &Builder{reg: reg, ed: node.Edit(nil)}
		b.fail(issues("/", fhirview.CodeUnknownField, map[string]string{"type": "registry", "field": name}))
		return b
	}
	return NewBuilder(reg, t, required...)
}

// With seeds a builder from an existing view in O(1). Required fields present
// in the seed are checked again by Build, so unsetting one is reported.
func With(v View) *Builder {
	b := &Builder{reg: v.reg, typ: v.typ, ed: node.Edit(v.n)}
	if v.n == nil || v.typ == nil {
		b.fail(issues("/", fhirview.CodeInvalidType, map[string]string{"want": "object", "got": "absent"}))
		return b
	}
	for _, f := range v.typ.RequiredFields() {
		if member(v.n, f.Name) != nil {
			b.required = append(b.required, f.Name)
		}
	}
	return b
}

func (b *Builder) fail(iss fhirview.Issues) {
	b.iss = append(b.iss, iss...)
}

func (b *Builder) field(name string) (schema.Field, bool) {
	f, ok := b.typ.Field(name)
	if !ok {
		if b.typ != nil {
			b.fail(issues(pointer(name), fhirview.CodeUnknownField, map[string]string{"type": b.typ.Name, "field": name}))
		}
		return f, false
	}
	return f, true
}

func pointer(name string) string { return fhirview.Root().Field(name).Pointer() }

// check reports whether n fits one value slot of f (an array item when f
// repeats). Complex values are checked for shape only; Validate the result
// for a deep check.
func (b *Builder) check(f schema.Field, n *node.Node, path string) bool {
	if f.IsPrimitive() {
		if iss := checkPrimitive(f, n, path, true); len(iss) > 0 {
			b.fail(iss)
			return false
		}
		return true
	}
	if n.Kind() != node.KindObject {
		b.fail(issues(path, fhirview.CodeInvalidType, map[string]string{"want": f.TypeName, "got": n.Kind().String()}))
		return false
	}
	if f.TypeName == schema.AbstractResource {
		if _, err := Resource(b.reg, n); err != nil {
			b.fail(fhirview.ToIssues(err).Rebase(path))
			return false
		}
	}
	return true
}

// Set binds member name to n. For repeating fields n must be an array. A nil
// n removes the member.
func (b *Builder) Set(name string, n *node.Node) *Builder {
	if n == nil {
		return b.Unset(name)
	}
	f, ok := b.field(name)
	if !ok {
		return b
	}
	path := pointer(name)
	if f.Many {
		if n.Kind() != node.KindArray {
			b.fail(issues(path, fhirview.CodeInvalidType, map[string]string{"want": "array of " + f.TypeLabel(), "got": n.Kind().String()}))
			return b
		}
		for i, it := range n.Items() {
			if it.IsNull() && f.IsPrimitive() {
				continue
			}
			if !b.check(f, it, fhirview.At(path).Index(i).Pointer()) {
				return b
			}
		}
	} else if !b.check(f, n, path) {
		return b
	}
	b.ed.Set(name, n)
	return b
}

// SetString sets a string-valued primitive. Temporal and code fields are
// format-checked.
func (b *Builder) SetString(name, s string) *Builder { return b.Set(name, node.String(s)) }

// SetBool sets a boolean primitive.
func (b *Builder) SetBool(name string, v bool) *Builder { return b.Set(name, node.Bool(v)) }

// SetDecimal sets a numeric primitive from its exact text.
func (b *Builder) SetDecimal(name string, d json.Number) *Builder {
	return b.Set(name, node.Number(d))
}

// SetInt sets an integer primitive.
func (b *Builder) SetInt(name string, i int64) *Builder { return b.Set(name, node.Int(i)) }

// SetCode sets a code primitive. Codes outside the field's list are reported
// as invalid_enum by Build.
func (b *Builder) SetCode(name, code string) *Builder {
	f, ok := b.field(name)
	if !ok {
		return b
	}
	if f.Primitive != schema.Code {
		b.fail(issues(pointer(name), fhirview.CodeInvalidType, map[string]string{"want": f.TypeLabel(), "got": "code"}))
		return b
	}
	return b.Set(name, node.String(code))
}

// SetTime formats t at precision p and sets a temporal primitive.
func (b *Builder) SetTime(name string, t time.Time, p codec.Precision) *Builder {
	f, ok := b.field(name)
	if !ok {
		return b
	}
	if !f.Primitive.IsTemporal() {
		b.fail(issues(pointer(name), fhirview.CodeInvalidType, map[string]string{"want": f.TypeLabel(), "got": "time"}))
		return b
	}
	return b.Set(name, node.String(codec.Format(t, p)))
}

// SetView sets a complex member from a view of the declared type.
func (b *Builder) SetView(name string, v View) *Builder {
	f, ok := b.field(name)
	if !ok {
		return b
	}
	if !b.viewFits(f, v, pointer(name)) {
		return b
	}
	if f.Many {
		return b.Set(name, node.Array(v.n))
	}
	return b.Set(name, v.n)
}

func (b *Builder) viewFits(f schema.Field, v View, path string) bool {
	switch {
	case v.n == nil:
		b.fail(issues(path, fhirview.CodeInvalidType, map[string]string{"want": f.TypeLabel(), "got": "absent"}))
		return false
	case f.IsPrimitive():
		b.fail(issues(path, fhirview.CodeInvalidType, map[string]string{"want": f.TypeLabel(), "got": v.typeName()}))
		return false
	case f.TypeName == schema.AbstractResource && v.typ.IsResource():
		return true
	case v.typeName() != f.TypeName:
		b.fail(issues(path, fhirview.CodeInvalidType, map[string]string{"want": f.TypeName, "got": v.typeName()}))
		return false
	}
	return true
}

// Append adds one item to a repeating member, creating the array when needed.
func (b *Builder) Append(name string, n *node.Node) *Builder {
	f, ok := b.field(name)
	if !ok {
		return b
	}
	path := pointer(name)
	if !f.Many {
		b.fail(issues(path, fhirview.CodeInvalidType, map[string]string{"want": f.TypeLabel(), "got": "array"}))
		return b
	}
	if n == nil {
		n = node.Null()
	}
	at := fhirview.At(path).Index(b.ed.Get(name).Len()).Pointer()
	if !(n.IsNull() && f.IsPrimitive()) && !b.check(f, n, at) {
		return b
	}
	b.ed.Append(name, n)
	return b
}

// AppendView adds a view to a repeating complex member.
func (b *Builder) AppendView(name string, v View) *Builder {
	f, ok := b.field(name)
	if !ok {
		return b
	}
	if !f.Many {
		b.fail(issues(pointer(name), fhirview.CodeInvalidType, map[string]string{"want": f.TypeLabel(), "got": "array"}))
		return b
	}
	if !b.viewFits(f, v, pointer(name)) {
		return b
	}
	b.ed.Append(name, v.n)
	return b
}

// SetChoice sets the member of group whose type suffix is suffix
// (SetChoice("value", "Quantity", q) sets valueQuantity). Other members of
// the group are left as they are.
func (b *Builder) SetChoice(group, suffix string, n *node.Node) *Builder {
	f, ok := b.typ.ChoiceMember(group, suffix)
	if !ok || f.Choice != group {
		if b.typ != nil {
			b.fail(issues(pointer(group+schema.ChoiceSuffix(suffix)), fhirview.CodeUnknownField, map[string]string{"type": b.typ.Name, "field": group + "[x]"}))
		}
		return b
	}
	return b.Set(f.Name, n)
}

// SetExtension sets the side-channel of a single primitive field. It does not
// touch the primitive value. An absent ext removes the side-channel.
func (b *Builder) SetExtension(name string, ext View) *Builder {
	f, ok := b.sidechannel(name, false)
	if !ok {
		return b
	}
	if ext.n == nil {
		b.ed.Delete(sideKey(f.Name))
		return b
	}
	if ext.n.Kind() != node.KindObject {
		b.fail(issues(pointer(sideKey(name)), fhirview.CodeInvalidType, map[string]string{"want": ElementType, "got": ext.n.Kind().String()}))
		return b
	}
	b.ed.Set(sideKey(name), ext.n)
	return b
}

// SetExtensions sets the side-channel of a repeating primitive. exts must be
// aligned with the primitive array; absent views are written as null.
func (b *Builder) SetExtensions(name string, exts []View) *Builder {
	if _, ok := b.sidechannel(name, true); !ok {
		return b
	}
	items := make([]*node.Node, len(exts))
	for i, e := range exts {
		if e.n == nil {
			items[i] = node.Null()
			continue
		}
		if e.n.Kind() != node.KindObject {
			b.fail(issues(fhirview.At(pointer(sideKey(name))).Index(i).Pointer(), fhirview.CodeInvalidType, map[string]string{"want": ElementType, "got": e.n.Kind().String()}))
			return b
		}
		items[i] = e.n
	}
	b.ed.Set(sideKey(name), node.Array(items...))
	return b
}

func (b *Builder) sidechannel(name string, many bool) (schema.Field, bool) {
	f, ok := b.field(name)
	if !ok {
		return f, false
	}
	path := pointer(sideKey(name))
	switch {
	case !f.IsPrimitive():
		b.fail(issues(path, fhirview.CodeInvalidType, map[string]string{"want": "primitive field", "got": f.TypeLabel()}))
		return f, false
	case f.Many != many:
		b.fail(issues(path, fhirview.CodeInvalidType, map[string]string{"want": f.TypeLabel(), "got": "mismatched repetition"}))
		return f, false
	}
	return f, true
}

// Unset removes a member. name may also be the side-channel key "_"+field.
func (b *Builder) Unset(name string) *Builder {
	if field, ok := cutSide(name); ok && b.typ.IsPrimitiveField(field) {
		b.ed.Delete(name)
		return b
	}
	if _, ok := b.field(name); ok {
		b.ed.Delete(name)
	}
	return b
}

// NewID sets the id member to a random UUID and returns it.
func (b *Builder) NewID() string {
	id := uuid.NewString()
	b.SetString("id", id)
	return id
}

// Patch applies an RFC 6902 JSON Patch to the current state. Patched members
// are not shape-checked; Validate the built view. A failing patch is a
// patch_failed issue and leaves the state as it was.
func (b *Builder) Patch(patch []byte) *Builder {
	out, err := fhirview.ApplyPatch(b.ed.Peek(), patch)
	if err != nil {
		b.fail(fhirview.ToIssues(err))
		return b
	}
	if out.Kind() != node.KindObject {
		b.fail(issues("/", fhirview.CodePatchFailed, map[string]string{"want": "object", "got": out.Kind().String()}))
		return b
	}
	b.ed = node.Edit(out)
	return b
}

// Build returns a snapshot of the current state. Deferred setter errors and
// missing required fields are returned as Issues. Build may be called again;
// later mutations never affect earlier snapshots.
func (b *Builder) Build() (View, error) {
	iss := append(fhirview.Issues(nil), b.iss...)
	cur := b.ed.Freeze()
	for _, name := range b.required {
		if v := cur.Get(name); v == nil || v.IsNull() {
			iss = append(iss, fhirview.NewIssue(pointer(name), fhirview.CodeRequired, map[string]string{"field": name}))
		}
	}
	if len(iss) > 0 {
		return View{}, iss
	}
	return Of(b.typ, b.reg, cur), nil
}

// MustBuild is Build that panics on error.
func (b *Builder) MustBuild() View {
	v, err := b.Build()
	if err != nil {
		panic(err)
	}
	return v
}
