package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(append([]string{"--color", "never", "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const observation = `{"resourceType":"Observation","status":"final",
	"code":{"coding":[{"system":"http://loinc.org","code":"8867-4"}]},
	"valueQuantity":{"value":72,"unit":"/min"}}`

func TestValidate(t *testing.T) {
	good := write(t, "good.json", observation)
	out, err := run(t, "", "validate", good)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, good+": ok") {
		t.Fatalf("unexpected output %q", out)
	}

	bad := write(t, "bad.json", `{"resourceType":"Observation","status":5,"code":{}}`)
	out, err = run(t, "", "validate", good, bad)
	if !errors.Is(err, errFailed) {
		t.Fatalf("expected errFailed, got %v", err)
	}
	if !strings.Contains(out, bad+": /status invalid_type:") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestValidate_YAMLAndStdin(t *testing.T) {
	y := write(t, "patient.yaml", "resourceType: Patient\nactive: true\nbirthDate: 1974-12\n")
	if out, err := run(t, "", "validate", y); err != nil {
		t.Fatalf("unexpected error: %v (%s)", err, out)
	}
	out, err := run(t, `{"resourceType":"Patient","gender":"robot"}`, "validate", "--codes", "-")
	if !errors.Is(err, errFailed) || !strings.Contains(out, "/gender invalid_enum") {
		t.Fatalf("expected invalid_enum, got %v %q", err, out)
	}
}

func TestValidate_StrictAndRules(t *testing.T) {
	f := write(t, "fmh.json", `{"resourceType":"FamilyMemberHistory","status":"completed","foo":1,
		"ageAge":{"value":60},"ageString":"sixty"}`)
	if _, err := run(t, "", "validate", f); err != nil {
		t.Fatalf("passthrough must accept unknown members: %v", err)
	}
	out, _ := run(t, "", "validate", "--strict", "--rules", "exclusive,required", f)
	for _, want := range []string{"/foo unknown_key", "/ageString choice_ambiguous", "/patient required"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
	if _, err := run(t, "", "validate", "--rules", "bogus", f); err == nil || errors.Is(err, errFailed) {
		t.Fatalf("expected a usage error, got %v", err)
	}
}

func TestGet(t *testing.T) {
	f := write(t, "obs.json", observation)
	out, err := run(t, "", "get", f, "/code/coding/0/code")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != `"8867-4"` {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := run(t, "", "get", f, "/nope"); err == nil {
		t.Fatal("expected error for a missing pointer")
	}
}

func TestBuild(t *testing.T) {
	out, err := run(t, "", "build", "Observation", "status=final", `code={"text":"heart rate"}`, "valueString=72")
	if err == nil {
		t.Fatalf("a JSON number must not fit a string field, got %q", out)
	}
	out, err = run(t, "", "build", "Observation", "status=final", `code={"text":"heart rate"}`, "valueString=seventy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), `{`) || !strings.Contains(out, `"resourceType": "Observation"`) {
		t.Fatalf("unexpected output %q", out)
	}
	out, err = run(t, "", "build", "Observation", "status=final")
	if !errors.Is(err, errFailed) || !strings.Contains(out, "/code required") {
		t.Fatalf("expected a missing code, got %v %q", err, out)
	}
}

func TestPatch(t *testing.T) {
	f := write(t, "obs.json", observation)
	p := write(t, "p.json", `[{"op":"replace","path":"/status","value":"amended"}]`)
	out, err := run(t, "", "patch", f, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"status": "amended"`) {
		t.Fatalf("unexpected output %q", out)
	}
	m := write(t, "m.json", `{"status":7}`)
	out, err = run(t, "", "patch", "--merge", f, m)
	if !errors.Is(err, errFailed) || !strings.Contains(out, "/status invalid_type") {
		t.Fatalf("expected the patched document to fail, got %v %q", err, out)
	}
}

func TestDiff(t *testing.T) {
	a := write(t, "a.json", observation)
	b := write(t, "b.json", strings.Replace(observation, `"final"`, `"amended"`, 1))
	if _, err := run(t, "", "diff", a, a); err != nil {
		t.Fatalf("equal documents must not fail: %v", err)
	}
	out, err := run(t, "", "diff", a, b)
	if !errors.Is(err, errFailed) {
		t.Fatalf("expected errFailed, got %v", err)
	}
	if !strings.Contains(out, `-  "status": "final"`) || !strings.Contains(out, `+  "status": "amended"`) {
		t.Fatalf("unexpected diff %q", out)
	}
}

func TestSchemaAndTypes(t *testing.T) {
	out, err := run(t, "", "schema", "Patient")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"$defs"`) || !strings.Contains(out, `"birthDate"`) {
		t.Fatalf("unexpected schema %q", out)
	}
	out, err = run(t, "", "types", "--resources")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Patient\n") || strings.Contains(out, "Coding\n") {
		t.Fatalf("unexpected types %q", out)
	}
}

func TestCustomSchema(t *testing.T) {
	s := write(t, "schema.yaml", `types:
  - name: Note
    kind: resource
    fields:
      - {name: text, type: string, min: 1}
`)
	d := write(t, "note.json", `{"resourceType":"Note","text":1}`)
	out, err := run(t, "", "--schema", s, "validate", d)
	if !errors.Is(err, errFailed) || !strings.Contains(out, "/text invalid_type") {
		t.Fatalf("expected invalid_type, got %v %q", err, out)
	}
}
