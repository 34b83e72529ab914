package fhirview_test

import (
	"strings"
	"testing"

	fhirview "github.com/reoring/fhirview"
	"github.com/reoring/fhirview/node"
)

func TestParseYAML_OrderAndScalars(t *testing.T) {
	in := []byte(`
resourceType: Observation
status: final
effectiveDateTime: 2024-05-02
valueQuantity:
  value: 1.50
  unit: mmHg
issued: "true"
focus: ~
count: 0x10
flags: [yes, true]
`)
	n, err := fhirview.ParseYAML(in)
	if err != nil {
		t.Fatalf("parse yaml: %v", err)
	}
	want := `{"resourceType":"Observation","status":"final","effectiveDateTime":"2024-05-02","valueQuantity":{"value":1.50,"unit":"mmHg"},"issued":"true","focus":null,"count":16,"flags":["yes",true]}`
	if got := n.String(); got != want {
		t.Fatalf("unexpected tree:\n got %s\nwant %s", got, want)
	}
}

func TestParseYAML_RejectsNonStringKeys(t *testing.T) {
	_, err := fhirview.ParseYAML([]byte("a:\n  1: x\n"))
	iss, ok := fhirview.AsIssues(err)
	if !ok || iss[0].Path != "/a" || iss[0].Code != fhirview.CodeParseError {
		t.Fatalf("expected parse_error at /a, got %v", err)
	}
}

func TestApplyPatch_KeepsOrderAndInput(t *testing.T) {
	doc := node.Object(
		node.M("resourceType", node.String("Patient")),
		node.M("active", node.Bool(true)),
		node.M("name", node.Array(node.Object(node.M("family", node.String("Doe"))))),
	)
	before := doc.String()
	out, err := fhirview.ApplyPatch(doc, []byte(`[
		{"op":"replace","path":"/active","value":false},
		{"op":"add","path":"/name/0/given","value":["Jane"]},
		{"op":"add","path":"/gender","value":"female"}
	]`))
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	want := `{"resourceType":"Patient","active":false,"name":[{"family":"Doe","given":["Jane"]}],"gender":"female"}`
	if got := out.String(); got != want {
		t.Fatalf("unexpected result:\n got %s\nwant %s", got, want)
	}
	if doc.String() != before {
		t.Fatalf("input mutated")
	}
}

func TestApplyPatch_FailureIsIssue(t *testing.T) {
	_, err := fhirview.ApplyPatch(node.Object(), []byte(`[{"op":"test","path":"/status","value":"final"}]`))
	iss, ok := fhirview.AsIssues(err)
	if !ok || iss[0].Code != fhirview.CodePatchFailed {
		t.Fatalf("expected patch_failed, got %v", err)
	}
}

func TestMergePatch_RoundTrip(t *testing.T) {
	a := node.Object(node.M("status", node.String("draft")), node.M("note", node.String("x")))
	b := node.Object(node.M("status", node.String("active")))
	p, err := fhirview.CreateMergePatch(a, b)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := fhirview.ApplyMergePatch(a, p)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !node.Equal(got, b) {
		t.Fatalf("merge patch result %s, want %s", got, b)
	}
}

func TestUnifiedDiff(t *testing.T) {
	a := node.Object(node.M("status", node.String("draft")), node.M("intent", node.String("order")))
	b := node.Object(node.M("status", node.String("active")), node.M("intent", node.String("order")))
	lines, err := fhirview.Diff(a, b)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if !fhirview.Changed(lines) {
		t.Fatalf("expected a change")
	}
	out, err := fhirview.UnifiedDiff(a, b, 0)
	if err != nil {
		t.Fatalf("unified: %v", err)
	}
	want := "@@\n-  \"status\": \"draft\",\n+  \"status\": \"active\",\n"
	if !strings.HasPrefix(out, want) {
		t.Fatalf("unexpected diff:\n%s", out)
	}
	same, _ := fhirview.Diff(a, a)
	if fhirview.Changed(same) {
		t.Fatalf("identical documents must not differ")
	}
}
