package node_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/fhirview/node"
)

func TestObject_PreservesInsertionOrder(t *testing.T) {
	n := node.Object(
		node.M("resourceType", node.String("Observation")),
		node.M("status", node.String("final")),
		node.M("id", node.String("o1")),
	)
	got := n.Keys()
	want := []string{"resourceType", "status", "id"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	b, err := n.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"resourceType":"Observation","status":"final","id":"o1"}` {
		t.Fatalf("unexpected encoding: %s", b)
	}
}

func TestObject_DuplicateKeyLastWins(t *testing.T) {
	n := node.Object(node.M("a", node.Int(1)), node.M("b", node.Int(2)), node.M("a", node.Int(3)))
	if n.Len() != 2 {
		t.Fatalf("expected 2 members, got %d", n.Len())
	}
	if i, _ := n.Get("a").AsInt64(); i != 3 {
		t.Fatalf("expected last value to win, got %d", i)
	}
	if n.Keys()[0] != "a" {
		t.Fatalf("expected a to keep first position, got %v", n.Keys())
	}
}

func TestAbsent_ReadsAreNilSafe(t *testing.T) {
	var n *node.Node
	if n.Kind() != node.KindAbsent || !n.IsAbsent() {
		t.Fatalf("nil node must be absent")
	}
	if _, ok := n.Get("x").Get("y").Index(3).AsString(); ok {
		t.Fatalf("chained lookup on absent must not succeed")
	}
	if n.Len() != 0 || n.Keys() != nil {
		t.Fatalf("absent has no members")
	}
}

func TestScalarAccessors_MatchVariant(t *testing.T) {
	if _, ok := node.String("1").AsNumber(); ok {
		t.Fatalf("string must not read as number")
	}
	if _, ok := node.Int(1).AsString(); ok {
		t.Fatalf("number must not read as string")
	}
	if v, ok := node.Number(json.Number("12.50")).AsNumber(); !ok || v != "12.50" {
		t.Fatalf("number text must be kept verbatim, got %q", v)
	}
	if _, ok := node.Number("1.5").AsInt64(); ok {
		t.Fatalf("fractional number must not read as int64")
	}
	if f, ok := node.Number("1.5").AsFloat64(); !ok || f != 1.5 {
		t.Fatalf("unexpected float: %v", f)
	}
	if b, ok := node.Bool(true).AsBool(); !ok || !b {
		t.Fatalf("unexpected bool")
	}
}

func TestSet_SharesUnchangedSubtrees(t *testing.T) {
	code := node.Object(node.M("text", node.String("bp")))
	orig := node.Object(node.M("code", code), node.M("status", node.String("final")))
	next := orig.Set("status", node.String("amended"))

	if s, _ := orig.Get("status").AsString(); s != "final" {
		t.Fatalf("original mutated: %s", s)
	}
	if s, _ := next.Get("status").AsString(); s != "amended" {
		t.Fatalf("update lost: %s", s)
	}
	if next.Get("code") != code {
		t.Fatalf("unchanged subtree must be shared, not copied")
	}
	if del := next.Delete("code"); del.Has("code") || !next.Has("code") {
		t.Fatalf("delete must only affect the result")
	}
	if got := next.Set("status", nil); got.Has("status") {
		t.Fatalf("setting absent must delete the key")
	}
}

func TestArrayUpdates(t *testing.T) {
	a := node.Array(node.String("x"))
	b := a.Append(node.String("y"))
	if a.Len() != 1 || b.Len() != 2 {
		t.Fatalf("append must not touch the original: %d %d", a.Len(), b.Len())
	}
	c := b.SetIndex(0, node.String("z"))
	if s, _ := b.Index(0).AsString(); s != "x" {
		t.Fatalf("SetIndex mutated original")
	}
	if s, _ := c.Index(0).AsString(); s != "z" {
		t.Fatalf("SetIndex lost update")
	}
	if got := node.Array(nil, node.Int(1)); !got.Index(0).IsNull() {
		t.Fatalf("absent array items must become null")
	}
}

func TestLargeObject_UsesIndexConsistently(t *testing.T) {
	var members []node.Member
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		members = append(members, node.M(k, node.String(k)))
	}
	n := node.Object(members...)
	n = n.Delete("c").Set("z", node.String("z"))
	for _, k := range []string{"a", "b", "d", "j", "z"} {
		if s, _ := n.Get(k).AsString(); s != k {
			t.Fatalf("lookup %s failed after updates: %q", k, s)
		}
	}
	if n.Has("c") {
		t.Fatalf("deleted key still present")
	}
}

func TestEqual_IgnoresKeyOrderAndNumberSpelling(t *testing.T) {
	a := node.Object(node.M("x", node.Int(1)), node.M("y", node.Array(node.String("a"))))
	b := node.Object(node.M("y", node.Array(node.String("a"))), node.M("x", node.Number("1.0")))
	if !node.Equal(a, b) {
		t.Fatalf("expected equal: %s vs %s", a, b)
	}
	c := node.Object(node.M("y", node.Array(node.String("b"))), node.M("x", node.Int(1)))
	if node.Equal(a, c) {
		t.Fatalf("expected different array contents to differ")
	}
	if node.Equal(node.Null(), nil) {
		t.Fatalf("null and absent must differ")
	}
}

func TestClone_IsDeep(t *testing.T) {
	inner := node.Object(node.M("v", node.Int(1)))
	n := node.Object(node.M("inner", inner))
	c := n.Clone()
	if !node.Equal(n, c) {
		t.Fatalf("clone must be equal")
	}
	if c.Get("inner") == inner {
		t.Fatalf("clone must not share subtrees")
	}
}

func TestFromAny_ToAny(t *testing.T) {
	in := map[string]any{
		"b":    true,
		"a":    json.Number("3"),
		"list": []any{"x", nil, 2.5},
	}
	n, err := node.FromAny(in)
	if err != nil {
		t.Fatalf("FromAny: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "list"}, n.Keys()); diff != "" {
		t.Fatalf("map keys must be sorted (-want +got):\n%s", diff)
	}
	out := n.ToAny()
	want := map[string]any{"b": true, "a": json.Number("3"), "list": []any{"x", nil, json.Number("2.5")}}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("ToAny mismatch (-want +got):\n%s", diff)
	}
	if _, err := node.FromAny(struct{}{}); err == nil {
		t.Fatalf("expected unsupported type error")
	}
}

func TestWalk_Pointers(t *testing.T) {
	n := node.MustFromAny(map[string]any{"a/b": []any{"x"}})
	var got []string
	node.Walk(n, func(p string, _ *node.Node) bool {
		got = append(got, p)
		return true
	})
	want := []string{"", "/a~1b", "/a~1b/0"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("walk mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalIndent(t *testing.T) {
	n := node.Object(node.M("a", node.Array(node.Int(1))))
	b, err := node.MarshalIndent(n, "", "  ")
	if err != nil {
		t.Fatalf("indent: %v", err)
	}
	want := "{\n  \"a\": [\n    1\n  ]\n}"
	if string(b) != want {
		t.Fatalf("unexpected indent output:\n%s", b)
	}
	if _, err := node.Number("1.2.3").MarshalJSON(); err == nil {
		t.Fatalf("expected invalid number to fail encoding")
	}
}

func TestIsNumber(t *testing.T) {
	for s, want := range map[string]bool{
		"12": true, "-0.5": true, "1e10": true, "72.50": true,
		`"12"`: false, "[1]": false, "{}": false, "": false, " 1": false, "1 ": false,
		"-": false, "true": false, "NaN": false,
	} {
		if got := node.IsNumber(s); got != want {
			t.Errorf("IsNumber(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := node.Number(json.Number(`"12"`)).MarshalJSON(); err == nil {
		t.Fatal("a quoted string must not encode as a number")
	}
	obj := node.Object(node.M("value", node.Number("[1]")))
	if _, err := obj.MarshalJSON(); err == nil {
		t.Fatal("an array must not encode as a number")
	}
}

func TestItems_ReturnsCopy(t *testing.T) {
	arr := node.Array(node.String("a"), node.String("b"))
	items := arr.Items()
	items[0] = node.String("z")
	if s, _ := arr.Index(0).AsString(); s != "a" {
		t.Fatalf("mutating the returned slice changed the node: %s", arr)
	}
}
