package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("invalid_type", map[string]string{"want": "string", "got": "number"}); msg != "expected string, got number" {
		t.Fatalf("unexpected message %q", msg)
	}

	SetLanguage("ja")
	if msg := T("invalid_enum", map[string]string{"got": "bogus"}); msg != "コード bogus は許可された値ではありません" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// unknown language falls back to en
	SetLanguage("fr")
	if msg := T("required", map[string]string{"field": "status"}); msg != "required field status missing" {
		t.Fatalf("unexpected fallback message %q", msg)
	}
}

func TestTranslator_UnknownCodeAndCustom(t *testing.T) {
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("unknown codes must echo the code, got %q", msg)
	}
	SetTranslator(fixed("x"))
	defer SetTranslator(nil)
	if msg := T("required", nil); msg != "x" {
		t.Fatalf("custom translator not used")
	}
}

type fixed string

func (f fixed) Message(string, map[string]string) string { return string(f) }
