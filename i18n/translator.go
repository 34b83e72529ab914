package i18n

import (
	"sort"
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data fills {placeholders} in the message (for example "want", "got",
// "field").
type Translator interface {
	Message(code string, data map[string]string) string
}

var catalogue = map[string]map[string]string{
	"en": {
		"invalid_type":     "expected {want}, got {got}",
		"invalid_enum":     "code {got} is not one of the allowed values",
		"invalid_format":   "value {got} is not a valid {want}",
		"required":         "required field {field} missing",
		"unknown_key":      "unknown key {field}",
		"unknown_field":    "type {type} has no field {field}",
		"duplicate_key":    "duplicate key",
		"choice_ambiguous": "more than one member of {field}[x] present",
		"resource_type":    "resourceType {got} does not match {want}",
		"parse_error":      "parse error",
		"truncated":        "truncated",
		"patch_failed":     "patch could not be applied",
		"rule":             "rule {rule} failed",
	},
	"ja": {
		"invalid_type":     "型が不正です ({want} が必要ですが {got} でした)",
		"invalid_enum":     "コード {got} は許可された値ではありません",
		"invalid_format":   "{got} は {want} の形式ではありません",
		"required":         "必須フィールド {field} が不足しています",
		"unknown_key":      "未知のキー {field} です",
		"unknown_field":    "型 {type} にフィールド {field} はありません",
		"duplicate_key":    "キーが重複しています",
		"choice_ambiguous": "{field}[x] に複数の値が存在します",
		"resource_type":    "resourceType {got} は {want} と一致しません",
		"parse_error":      "解析エラー",
		"truncated":        "打ち切られました",
		"patch_failed":     "パッチを適用できません",
		"rule":             "ルール {rule} を満たしていません",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := catalogue[t.lang][code]
	if !ok {
		return code
	}
	return fill(msg, data)
}

func fill(msg string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", data[k])
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := catalogue[lang]; !ok {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
