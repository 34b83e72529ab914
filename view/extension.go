package view

import (
	fhirview "github.com/reoring/fhirview"
	"github.com/reoring/fhirview/node"
	"github.com/reoring/fhirview/schema"
)

// ElementType is the type of extension side-channel values.
const ElementType = "Element"

func sideKey(name string) string { return "_" + name }

func (v View) sideField(name string, many bool) (schema.Field, *node.Node, error) {
	f, _, err := v.lookup(name)
	if err != nil {
		return f, nil, err
	}
	path := v.Pointer(sideKey(name))
	if !f.IsPrimitive() {
		return f, nil, mismatch(path, "primitive field", f.TypeLabel())
	}
	if f.Many != many {
		if f.Many {
			return f, nil, mismatch(path, "repeating "+f.TypeLabel(), "single value accessor")
		}
		return f, nil, mismatch(path, f.TypeLabel(), "list accessor")
	}
	return f, member(v.n, sideKey(name)), nil
}

func (v View) elementType() *schema.Type {
	t, ok := v.reg.Lookup(ElementType)
	if !ok {
		return schema.Define(ElementType).MustBuild()
	}
	return t
}

// Extension reads the side-channel of a primitive field: the Element stored
// under "_"+name (id and extensions of the primitive). It is independent of
// the primitive value; either may be present without the other.
func (v View) Extension(name string) (View, bool, error) {
	_, n, err := v.sideField(name, false)
	if err != nil || n == nil {
		return View{}, false, err
	}
	at := v.at().Field(sideKey(name))
	if n.Kind() != node.KindObject {
		return View{}, false, mismatch(at.Pointer(), ElementType, n.Kind().String())
	}
	return v.child(v.elementType(), n, at), true, nil
}

// Extensions reads the side-channel of a repeating primitive. The result is
// aligned with the primitive array; null entries are absent Views.
func (v View) Extensions(name string) ([]View, bool, error) {
	_, n, err := v.sideField(name, true)
	if err != nil || n == nil {
		return nil, false, err
	}
	at := v.at().Field(sideKey(name))
	if n.Kind() != node.KindArray {
		return nil, false, mismatch(at.Pointer(), "array", n.Kind().String())
	}
	el := v.elementType()
	out := make([]View, n.Len())
	var iss fhirview.Issues
	for i, it := range n.Items() {
		switch it.Kind() {
		case node.KindNull:
		case node.KindObject:
			out[i] = v.child(el, it, at.Index(i))
		default:
			iss = append(iss, fhirview.NewIssue(at.Index(i).Pointer(), fhirview.CodeInvalidType, map[string]string{"want": ElementType, "got": it.Kind().String()}))
		}
	}
	if len(iss) > 0 {
		return nil, true, iss
	}
	return out, true, nil
}
