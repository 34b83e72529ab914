package fhirview_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	fhirview "github.com/reoring/fhirview"
	"github.com/reoring/fhirview/node"
)

func TestIssues_ErrorSummary(t *testing.T) {
	iss := fhirview.Issues{
		{Path: "/a", Code: fhirview.CodeInvalidType},
		{Path: "/b", Code: fhirview.CodeInvalidEnum},
		{Path: "/c", Code: fhirview.CodeRequired},
		{Path: "/d", Code: fhirview.CodeRule},
	}
	want := "invalid_type at /a; invalid_enum at /b; required at /c; ... (total 4)"
	if got := iss.Error(); got != want {
		t.Fatalf("unexpected summary:\n got %s\nwant %s", got, want)
	}
}

func TestAsIssues_ThroughWrapping(t *testing.T) {
	base := fhirview.Issues{{Path: "/status", Code: fhirview.CodeInvalidEnum}}
	err := fmt.Errorf("validate: %w", base)
	iss, ok := fhirview.AsIssues(err)
	if !ok || !iss.Has("/status", fhirview.CodeInvalidEnum) {
		t.Fatalf("expected issues through wrapping, got %v", err)
	}
	if _, ok := fhirview.AsIssues(errors.New("plain")); ok {
		t.Fatalf("plain errors are not issues")
	}
	if got := fhirview.ToIssues(errors.New("boom")); got[0].Code != fhirview.CodeParseError {
		t.Fatalf("expected parse_error, got %v", got)
	}
}

func TestIssues_RebaseAndSort(t *testing.T) {
	iss := fhirview.Issues{
		{Path: "/value", Code: fhirview.CodeInvalidType},
		{Path: "/", Code: fhirview.CodeResourceType},
	}
	got := iss.Rebase("/contained/0").Sort()
	want := []string{"/contained/0", "/contained/0/value"}
	paths := []string{got[0].Path, got[1].Path}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("rebase mismatch (-want +got):\n%s", diff)
	}
	if iss[0].Path != "/value" {
		t.Fatalf("rebase must not modify the receiver")
	}
	if diff := cmp.Diff([]string{"resource_type", "invalid_type"}, got.Codes()); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestPathRef_EscapesAndParses(t *testing.T) {
	p := fhirview.Root().Field("a/b").Index(2).Field("c~d")
	if got := p.Pointer(); got != "/a~1b/2/c~0d" {
		t.Fatalf("unexpected pointer %s", got)
	}
	toks, err := fhirview.ParsePointer(p.Pointer())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff([]string{"a/b", "2", "c~d"}, toks); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
	if _, err := fhirview.ParsePointer("a"); err == nil {
		t.Fatalf("expected error for pointer without leading slash")
	}
	if _, err := fhirview.ParsePointer("/a~2"); err == nil {
		t.Fatalf("expected error for bad escape")
	}
	if got := fhirview.At("/name/0").Field("given").Pointer(); got != "/name/0/given" {
		t.Fatalf("unexpected At pointer %s", got)
	}
}

func TestLookup(t *testing.T) {
	n := node.MustFromAny(map[string]any{"name": []any{map[string]any{"given": []any{"Ann"}}}})
	got, ok := fhirview.Lookup(n, "/name/0/given/0")
	if s, _ := got.AsString(); !ok || s != "Ann" {
		t.Fatalf("lookup failed: %v %v", got, ok)
	}
	for _, p := range []string{"/name/1", "/name/x", "/nope", "/name/0/given/0/deeper"} {
		if _, ok := fhirview.Lookup(n, p); ok {
			t.Fatalf("expected miss for %s", p)
		}
	}
	if root, ok := fhirview.Lookup(n, ""); !ok || root != n {
		t.Fatalf("empty pointer must resolve to root")
	}
}
