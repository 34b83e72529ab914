package rules_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	fhirview "github.com/reoring/fhirview"
	"github.com/reoring/fhirview/r4"
	"github.com/reoring/fhirview/rules"
	"github.com/reoring/fhirview/view"
)

func resource(t *testing.T, s string) view.View {
	t.Helper()
	n, err := fhirview.ParseBytes(context.Background(), []byte(s))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	v, err := view.Resource(r4.Registry(), n)
	if err != nil {
		t.Fatalf("resource: %v", err)
	}
	return v
}

func validate(t *testing.T, v view.View, rs ...view.Rule) fhirview.Issues {
	t.Helper()
	err := v.Validate(context.Background(), view.ValidateOpt{Rules: rs})
	if err == nil {
		return nil
	}
	iss, ok := fhirview.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	return iss
}

func TestExclusiveChoices(t *testing.T) {
	v := resource(t, `{"resourceType":"FamilyMemberHistory","ageString":"60s","ageAge":{"value":62},
		"condition":[{"code":{"text":"x"},"onsetAge":{"value":40},"onsetString":"forties"}]}`)
	iss := validate(t, v, rules.ExclusiveChoices())
	var got []string
	for _, it := range iss {
		if it.Code != fhirview.CodeChoiceAmbiguous {
			t.Fatalf("unexpected issue %+v", it)
		}
		got = append(got, it.Path+" "+it.Hint)
	}
	want := []string{
		"/condition/0/onsetString onsetAge,onsetString",
		"/ageString ageAge,ageString",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestRequiredPresent(t *testing.T) {
	v := resource(t, `{"resourceType":"FamilyMemberHistory","_status":{"id":"s"},
		"relationship":{"text":"mother"},"condition":[{}]}`)
	iss := validate(t, v, rules.RequiredPresent())
	var paths []string
	for _, it := range iss {
		paths = append(paths, it.Path)
	}
	// status is carried by its side-channel; patient is missing at the root
	// and code inside the condition.
	if diff := cmp.Diff([]string{"/condition/0/code", "/patient"}, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestIfThen(t *testing.T) {
	finalNeedsValue := rules.For("Observation",
		rules.If("/status", rules.Eq, "final").Then(
			rules.Invariant("obs-final", `valueQuantity != nil || valueString != nil || dataAbsentReason != nil`),
		),
	)
	ok := resource(t, `{"resourceType":"Observation","status":"final","valueQuantity":{"value":1}}`)
	if iss := validate(t, ok, finalNeedsValue); len(iss) != 0 {
		t.Fatalf("unexpected issues %v", iss)
	}
	prelim := resource(t, `{"resourceType":"Observation","status":"preliminary"}`)
	if iss := validate(t, prelim, finalNeedsValue); len(iss) != 0 {
		t.Fatalf("condition must gate the rule: %v", iss)
	}
	bad := resource(t, `{"resourceType":"Observation","status":"final"}`)
	iss := validate(t, bad, finalNeedsValue)
	if len(iss) != 1 || iss[0].Code != fhirview.CodeRule || iss[0].Rule != "obs-final" || iss[0].Path != "/" {
		t.Fatalf("unexpected issues %v", iss)
	}
}

func TestIf_NumericAndComposite(t *testing.T) {
	old := rules.If("/ageAge/value", rules.Ge, 65)
	female := rules.If("/sex/text", rules.Eq, "female")
	flag := rules.For("FamilyMemberHistory",
		old.And(female).Then(rules.Invariant("needs-note", `note != nil`)))

	v := resource(t, `{"resourceType":"FamilyMemberHistory","ageAge":{"value":70},"sex":{"text":"female"}}`)
	if iss := validate(t, v, flag); len(iss) != 1 {
		t.Fatalf("expected one issue, got %v", iss)
	}
	v = resource(t, `{"resourceType":"FamilyMemberHistory","ageAge":{"value":40},"sex":{"text":"female"}}`)
	if iss := validate(t, v, flag); len(iss) != 0 {
		t.Fatalf("unexpected issues %v", iss)
	}
	either := rules.For("FamilyMemberHistory",
		rules.IfAny(old, rules.If("/estimatedAge", rules.Exists, nil)).Then(rules.Invariant("needs-note", `note != nil`)))
	v = resource(t, `{"resourceType":"FamilyMemberHistory","estimatedAge":false}`)
	if iss := validate(t, v, either); len(iss) != 1 {
		t.Fatalf("expected one issue, got %v", iss)
	}
}

func TestInvariant(t *testing.T) {
	fhs := rules.For("FamilyMemberHistory", rules.Invariant("fhs-1", `ageAge == nil || ageRange == nil`))
	v := resource(t, `{"resourceType":"FamilyMemberHistory","ageAge":{"value":62}}`)
	if iss := validate(t, v, fhs); len(iss) != 0 {
		t.Fatalf("unexpected issues %v", iss)
	}
	v = resource(t, `{"resourceType":"FamilyMemberHistory","ageAge":{"value":62},"ageRange":{"low":{"value":60}}}`)
	iss := validate(t, v, fhs)
	if len(iss) != 1 || iss[0].Rule != "fhs-1" || iss[0].Hint == "" {
		t.Fatalf("unexpected issues %v", iss)
	}

	numeric := rules.For("Quantity", rules.Invariant("positive", `value == nil || value > 0`))
	v = resource(t, `{"resourceType":"Observation","valueQuantity":{"value":-1}}`)
	iss = validate(t, v, numeric)
	if len(iss) != 1 || iss[0].Path != "/valueQuantity" {
		t.Fatalf("expected one issue at /valueQuantity, got %v", iss)
	}

	broken := rules.Invariant("broken", `status ==`)
	iss = validate(t, v, rules.For("Observation", broken))
	if len(iss) != 1 || iss[0].Cause == nil {
		t.Fatalf("compile errors must be reported with a cause, got %v", iss)
	}
}

func TestAtLeastOneAndUniqueBy(t *testing.T) {
	v := resource(t, `{"resourceType":"Patient","name":[],
		"identifier":[{"system":"urn:a","value":"1"},{"system":"urn:a","value":"2"},{"system":"urn:b","value":"1"}]}`)
	iss := validate(t, v, rules.For("Patient", rules.AtLeastOne("/name"), rules.UniqueBy("/identifier", "/value")))
	var got []string
	for _, it := range iss {
		got = append(got, it.Rule+" "+it.Path)
	}
	want := []string{"at-least-one /name", "unique-by /identifier/2/value"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestOr_ReturnsSmallestBranch(t *testing.T) {
	v := resource(t, `{"resourceType":"Observation"}`)
	a := rules.And(rules.Invariant("a1", `false`), rules.Invariant("a2", `false`))
	b := rules.Invariant("b", `false`)
	iss := validate(t, v, rules.For("Observation", rules.Or(a, b)))
	if len(iss) != 1 || iss[0].Rule != "b" {
		t.Fatalf("unexpected issues %v", iss)
	}
	iss = validate(t, v, rules.For("Observation", rules.Or(a, rules.Invariant("ok", `true`))))
	if len(iss) != 0 {
		t.Fatalf("unexpected issues %v", iss)
	}
}
