package fhirview

import (
	"context"

	jsonpatch "github.com/evanphx/json-patch"

	"github.com/reoring/fhirview/node"
)

// ApplyPatch applies an RFC 6902 JSON Patch document to doc and returns the
// patched tree. doc is never mutated. Keys that survive the patch keep their
// original order; added keys follow them.
func ApplyPatch(doc *node.Node, patch []byte) (*node.Node, error) {
	ops, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return nil, patchIssue("decode json patch", err)
	}
	d, err := doc.MarshalJSON()
	if err != nil {
		return nil, patchIssue("encode document", err)
	}
	out, err := ops.Apply(d)
	if err != nil {
		return nil, patchIssue("apply json patch", err)
	}
	return reparse(doc, out)
}

// ApplyMergePatch applies an RFC 7386 JSON Merge Patch to doc.
func ApplyMergePatch(doc *node.Node, patch []byte) (*node.Node, error) {
	d, err := doc.MarshalJSON()
	if err != nil {
		return nil, patchIssue("encode document", err)
	}
	out, err := jsonpatch.MergePatch(d, patch)
	if err != nil {
		return nil, patchIssue("apply merge patch", err)
	}
	return reparse(doc, out)
}

// CreateMergePatch returns the RFC 7386 merge patch turning from into to.
func CreateMergePatch(from, to *node.Node) ([]byte, error) {
	a, err := from.MarshalJSON()
	if err != nil {
		return nil, patchIssue("encode document", err)
	}
	b, err := to.MarshalJSON()
	if err != nil {
		return nil, patchIssue("encode document", err)
	}
	p, err := jsonpatch.CreateMergePatch(a, b)
	if err != nil {
		return nil, patchIssue("create merge patch", err)
	}
	return p, nil
}

func reparse(orig *node.Node, out []byte) (*node.Node, error) {
	n, err := ParseBytes(context.Background(), out)
	if err != nil {
		return nil, err
	}
	return keepOrder(orig, n), nil
}

// keepOrder reorders object members of patched so keys also present in orig
// appear in orig's order. Unchanged subtrees are taken from orig.
func keepOrder(orig, patched *node.Node) *node.Node {
	if node.Equal(orig, patched) {
		return orig
	}
	switch {
	case orig.Kind() == node.KindObject && patched.Kind() == node.KindObject:
		members := make([]node.Member, 0, patched.Len())
		for _, k := range orig.Keys() {
			if patched.Has(k) {
				members = append(members, node.M(k, keepOrder(orig.Get(k), patched.Get(k))))
			}
		}
		for _, m := range patched.Members() {
			if !orig.Has(m.Key) {
				members = append(members, m)
			}
		}
		return node.Object(members...)
	case orig.Kind() == node.KindArray && patched.Kind() == node.KindArray:
		items := append([]*node.Node(nil), patched.Items()...)
		for i := range items {
			if i < orig.Len() {
				items[i] = keepOrder(orig.Index(i), items[i])
			}
		}
		return node.Array(items...)
	}
	return patched
}

func patchIssue(msg string, err error) Issues {
	return AppendIssues(nil, Issue{Path: "/", Code: CodePatchFailed, Message: msg + ": " + err.Error(), Cause: err})
}
