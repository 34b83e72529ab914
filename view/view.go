package view

import (
	fhirview "github.com/reoring/fhirview"
	"github.com/reoring/fhirview/node"
	"github.com/reoring/fhirview/schema"
)

// View is a read-only typed projection of an object Node. It borrows the
// Node; nothing is copied on construction. The zero View is absent.
type View struct {
	n   *node.Node
	typ *schema.Type
	reg *schema.Registry
	ref fhirview.PathRef
}

// New projects n as the registered type typeName.
func New(reg *schema.Registry, typeName string, n *node.Node) (View, error) {
	t, ok := reg.Lookup(typeName)
	if !ok {
		return View{}, issues("/", fhirview.CodeUnknownField, map[string]string{"type": "registry", "field": typeName})
	}
	if n.Kind() != node.KindObject {
		return View{}, issues("/", fhirview.CodeInvalidType, map[string]string{"want": "object", "got": n.Kind().String()})
	}
	return Of(t, reg, n), nil
}

// Of projects n as t without checks. n should be an object.
func Of(t *schema.Type, reg *schema.Registry, n *node.Node) View {
	return View{n: n, typ: t, reg: reg, ref: fhirview.Root()}
}

// Resource projects n as the resource named by its resourceType member.
func Resource(reg *schema.Registry, n *node.Node) (View, error) {
	return resourceAt(reg, n, fhirview.Root())
}

func resourceAt(reg *schema.Registry, n *node.Node, at fhirview.PathRef) (View, error) {
	if n.Kind() != node.KindObject {
		return View{}, issues(at.Pointer(), fhirview.CodeInvalidType, map[string]string{"want": "object", "got": n.Kind().String()})
	}
	rt, _ := n.Get("resourceType").AsString()
	t, ok := reg.Lookup(rt)
	if !ok || !t.IsResource() || t.Name == schema.AbstractResource {
		return View{}, issues(at.Field("resourceType").Pointer(), fhirview.CodeResourceType, map[string]string{"want": "a resource type", "got": quote(rt)})
	}
	return View{n: n, typ: t, reg: reg, ref: at}, nil
}

// Exists reports whether the view refers to a node. Zero views and the
// placeholders for null extension entries do not.
func (v View) Exists() bool { return v.n != nil }

// Node returns the borrowed Node. Callers must not rely on mutating it; Nodes
// are immutable.
func (v View) Node() *node.Node { return v.n }

// ToNode returns a deep copy of the underlying tree.
func (v View) ToNode() *node.Node { return v.n.Clone() }

// Type returns the type descriptor.
func (v View) Type() *schema.Type { return v.typ }

// Registry returns the registry the view resolves types against.
func (v View) Registry() *schema.Registry { return v.reg }

// Path returns the JSON Pointer of the view in the document it was taken
// from ("/" for a root view).
func (v View) Path() string { return v.at().Pointer() }

// Pointer returns the JSON Pointer of member name of this view.
func (v View) Pointer(name string) string { return v.at().Field(name).Pointer() }

func (v View) at() fhirview.PathRef {
	if v.ref == nil {
		return fhirview.Root()
	}
	return v.ref
}

// Has reports whether member name is present. A JSON null member reads as
// absent.
func (v View) Has(name string) bool { return member(v.n, name) != nil }

// member returns the value of key, treating JSON null as absent.
func member(n *node.Node, key string) *node.Node {
	m := n.Get(key)
	if m.IsNull() {
		return nil
	}
	return m
}

// MarshalJSON encodes the underlying Node, keeping member order.
func (v View) MarshalJSON() ([]byte, error) {
	if v.n == nil {
		return []byte("null"), nil
	}
	return v.n.MarshalJSON()
}

func (v View) child(t *schema.Type, n *node.Node, at fhirview.PathRef) View {
	return View{n: n, typ: t, reg: v.reg, ref: at}
}

func issues(path, code string, data map[string]string) fhirview.Issues {
	return fhirview.Issues{fhirview.NewIssue(path, code, data)}
}

func quote(s string) string { return `"` + s + `"` }
