package gojson_test

import (
	"context"
	"testing"

	fhirview "github.com/reoring/fhirview"
	"github.com/reoring/fhirview/source/gojson"
)

func TestDriver_ParsesLikeEncodingJSON(t *testing.T) {
	in := []byte(`{"resourceType":"Patient","name":[{"given":["Ann","B."]}],"active":true,"multipleBirthInteger":2,"deceasedBoolean":null}`)

	fhirview.SetJSONDriver(gojson.Driver())
	defer fhirview.UseDefaultJSONDriver()
	if name := fhirview.CurrentJSONDriver().Name(); name != "go-json" {
		t.Fatalf("driver not installed: %s", name)
	}
	fast, err := fhirview.ParseBytes(context.Background(), in)
	if err != nil {
		t.Fatalf("go-json parse: %v", err)
	}

	fhirview.UseDefaultJSONDriver()
	std, err := fhirview.ParseBytes(context.Background(), in)
	if err != nil {
		t.Fatalf("encoding/json parse: %v", err)
	}
	if fast.String() != std.String() || fast.String() != string(in) {
		t.Fatalf("drivers disagree:\n go-json %s\n std     %s", fast, std)
	}
}

func TestDriver_DuplicateKeyPath(t *testing.T) {
	src := gojson.Driver().NewBytes([]byte(`{"a":[{"b":1,"b":2}]}`))
	_, err := fhirview.ParseFrom(context.Background(), src, fhirview.ParseOpt{Strictness: fhirview.Strictness{OnDuplicateKey: fhirview.Error}})
	iss, ok := fhirview.AsIssues(err)
	if !ok || !iss.Has("/a/0/b", fhirview.CodeDuplicateKey) {
		t.Fatalf("expected duplicate at /a/0/b, got %v", err)
	}
}
