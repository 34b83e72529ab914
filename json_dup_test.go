package fhirview

import (
	"strings"
	"testing"
)

func TestDetectJSONDuplicateKeysBytes_NoDup(t *testing.T) {
	js := []byte(`{"a":1,"b":2}`)
	iss, err := DetectJSONDuplicateKeysBytes(js, Strictness{OnDuplicateKey: Warn}, -1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(iss) != 0 {
		t.Fatalf("expected 0 issues, got %d: %v", len(iss), iss)
	}
}

func TestDetectJSONDuplicateKeysBytes_WithDup(t *testing.T) {
	js := []byte(`{"a":1,"a":2,"b":{"c":1,"c":2}}`)
	iss, err := DetectJSONDuplicateKeysBytes(js, Strictness{OnDuplicateKey: Warn}, -1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(iss) != 2 {
		t.Fatalf("expected 2 issues, got %v", iss)
	}
	if iss[0].Code != CodeDuplicateKey || iss[1].Path != "/b/c" {
		t.Fatalf("unexpected issues: %v", iss)
	}
}

func TestDetectJSONDuplicateKeysReader_ErrorStopsAtFirst(t *testing.T) {
	iss, err := DetectJSONDuplicateKeysReader(strings.NewReader(`{"a":1,"a":2,"a":3}`), Strictness{OnDuplicateKey: Error}, -1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(iss) != 1 {
		t.Fatalf("expected one issue in error mode, got %v", iss)
	}
}
