package fhirview

import "github.com/reoring/fhirview/i18n"

// IssueAt creates an Issue at the given path with provided code, message and params map.
// This is a convenience helper to improve readability at call sites with many parameters.
func IssueAt(p PathRef, code, msg string, params map[string]any) Issue {
	return Issue{Path: p.Pointer(), Code: code, Message: msg, Params: params}
}

// NewIssue creates an Issue at path whose message comes from the i18n
// catalogue. data fills the message placeholders and is kept as Params.
func NewIssue(path, code string, data map[string]string) Issue {
	if path == "" {
		path = "/"
	}
	var params map[string]any
	if len(data) > 0 {
		params = make(map[string]any, len(data))
		for k, v := range data {
			params[k] = v
		}
	}
	return Issue{Path: path, Code: code, Message: i18n.T(code, data), Params: params}
}
