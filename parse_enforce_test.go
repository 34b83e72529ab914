package fhirview_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	fhirview "github.com/reoring/fhirview"
)

func TestStreamParse_DuplicateKey_Error(t *testing.T) {
	jsb := []byte(`{"a":1,"a":2}`)
	opt := fhirview.ParseOpt{Strictness: fhirview.Strictness{OnDuplicateKey: fhirview.Error}}
	_, err := fhirview.StreamParse(context.Background(), bytes.NewReader(jsb), opt)
	if err == nil {
		t.Fatalf("expected error for duplicate key")
	}
	if iss, ok := fhirview.AsIssues(err); ok {
		if len(iss) == 0 || iss[0].Code != fhirview.CodeDuplicateKey {
			t.Fatalf("expected duplicate_key issue, got: %v", iss)
		} else if iss[0].Path != "/a" {
			t.Fatalf("expected path=/a, got: %s", iss[0].Path)
		}
	} else {
		t.Fatalf("expected Issues error, got: %v", err)
	}
}

func TestStreamParse_DuplicateKey_NestedPath(t *testing.T) {
	jsb := []byte(`[{"a":1,"a":2}]`)
	opt := fhirview.ParseOpt{Strictness: fhirview.Strictness{OnDuplicateKey: fhirview.Error}}
	_, err := fhirview.StreamParse(context.Background(), bytes.NewReader(jsb), opt)
	iss, ok := fhirview.AsIssues(err)
	if !ok || len(iss) == 0 {
		t.Fatalf("expected Issues, got: %v", err)
	}
	if iss[0].Path != "/0/a" {
		t.Fatalf("expected path=/0/a, got: %s", iss[0].Path)
	}
}

func TestParse_DuplicateKey_WarnKeepsLastValue(t *testing.T) {
	var warnings fhirview.Issues
	opt := fhirview.ParseOpt{
		Strictness: fhirview.Strictness{OnDuplicateKey: fhirview.Warn},
		Warnings:   func(i fhirview.Issue) { warnings = append(warnings, i) },
	}
	n, err := fhirview.ParseBytes(context.Background(), []byte(`{"status":"draft","status":"final"}`), opt)
	if err != nil {
		t.Fatalf("warn mode must not fail: %v", err)
	}
	if s, _ := n.Get("status").AsString(); s != "final" {
		t.Fatalf("expected last value to win, got %q", s)
	}
	if !warnings.Has("/status", fhirview.CodeDuplicateKey) {
		t.Fatalf("expected duplicate warning, got %v", warnings)
	}
}

func TestStreamParse_MaxDepth_Exceeded(t *testing.T) {
	// depth = 3 for { a: { b: { c: 1 } } }
	jsb := []byte(`{"a":{"b":{"c":1}}}`)
	_, err := fhirview.StreamParse(context.Background(), bytes.NewReader(jsb), fhirview.ParseOpt{MaxDepth: 2})
	iss, ok := fhirview.AsIssues(err)
	if !ok || len(iss) == 0 || iss[0].Path != "/a/b" {
		t.Fatalf("expected path=/a/b for max depth, got: %v", err)
	}
}

func TestStreamParse_MaxBytes_Exceeded(t *testing.T) {
	data := append([]byte("{}"), bytes.Repeat([]byte("x"), 1024)...)
	_, err := fhirview.StreamParse(context.Background(), bytes.NewReader(data), fhirview.ParseOpt{MaxBytes: 2})
	iss, ok := fhirview.AsIssues(err)
	if !ok || len(iss) == 0 || iss[0].Code != fhirview.CodeTruncated {
		t.Fatalf("expected truncated issue, got: %v", err)
	}
	if iss[0].Path != "/" {
		t.Fatalf("expected root path, got: %s", iss[0].Path)
	}
}

func TestParse_KeepsOrderAndDecimalText(t *testing.T) {
	in := `{"resourceType":"Observation","valueQuantity":{"value":1.50,"unit":"mmHg"},"status":"final"}`
	n, err := fhirview.StreamParse(context.Background(), strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := n.String(); got != in {
		t.Fatalf("round trip changed document:\n got %s\nwant %s", got, in)
	}
}

func TestParse_SyntaxErrorIsIssue(t *testing.T) {
	_, err := fhirview.ParseBytes(context.Background(), []byte(`{"a":`))
	iss, ok := fhirview.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != fhirview.CodeParseError {
		t.Fatalf("expected parse_error issue, got %v", err)
	}
}
