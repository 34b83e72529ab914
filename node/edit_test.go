package node_test

import (
	"testing"

	"github.com/reoring/fhirview/node"
)

func TestEditor_NeverMutatesSeed(t *testing.T) {
	seed := node.Object(node.M("status", node.String("draft")))
	e := node.Edit(seed)
	if !e.Shared() {
		t.Fatalf("fresh editor must share its seed")
	}
	e.Set("status", node.String("active")).Set("intent", node.String("order"))
	if e.Shared() {
		t.Fatalf("editor must own its copy after a write")
	}
	if s, _ := seed.Get("status").AsString(); s != "draft" || seed.Has("intent") {
		t.Fatalf("seed mutated: %s", seed)
	}
	if s, _ := e.Get("status").AsString(); s != "active" {
		t.Fatalf("editor lost write")
	}
}

func TestEditor_SnapshotsAreIndependent(t *testing.T) {
	e := node.Edit(nil)
	e.Set("a", node.Int(1))
	first := e.Freeze()
	e.Set("b", node.Int(2))
	second := e.Freeze()
	e.Delete("a")

	if first.Has("b") {
		t.Fatalf("first snapshot changed by later write: %s", first)
	}
	if !second.Has("a") || !second.Has("b") {
		t.Fatalf("second snapshot changed by later delete: %s", second)
	}
	if e.Peek().Has("a") {
		t.Fatalf("delete lost")
	}
}

func TestEditor_Append(t *testing.T) {
	e := node.Edit(node.Object(node.M("given", node.String("scalar"))))
	e.Append("given", node.String("a")).Append("given", node.String("b"))
	got := e.Get("given")
	if got.Kind() != node.KindArray || got.Len() != 2 {
		t.Fatalf("expected 2-item array replacing scalar, got %s", got)
	}
}
