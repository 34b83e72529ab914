package fhirview

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Issue codes.
const (
	CodeInvalidType     = "invalid_type"
	CodeInvalidEnum     = "invalid_enum"
	CodeInvalidFormat   = "invalid_format"
	CodeRequired        = "required"
	CodeUnknownKey      = "unknown_key"
	CodeUnknownField    = "unknown_field"
	CodeDuplicateKey    = "duplicate_key"
	CodeChoiceAmbiguous = "choice_ambiguous"
	CodeResourceType    = "resource_type"
	CodeParseError      = "parse_error"
	CodeTruncated       = "truncated"
	CodePatchFailed     = "patch_failed"
	// CodeRule is reported by user supplied rules and invariants.
	CodeRule = "rule"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /name/0/given/1).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: expected type, allowed codes, etc.
	Cause   error  // Optional: underlying error.
	Offset  int64  // Byte offset in the input source (0 when unknown).
	// Params carries structured parameters (e.g., {"want":"string","got":"number"})
	// for i18n and logging.
	Params map[string]any
	// Rule optionally records the rule name that produced this issue.
	Rule string
}

func (i Issue) Unwrap() error { return i.Cause }

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Rebase re-roots every issue under prefix. A root path ("/" or "") maps to
// the prefix itself.
func (iss Issues) Rebase(prefix string) Issues {
	if len(iss) == 0 || prefix == "" || prefix == "/" {
		return iss
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		if it.Path == "" || it.Path == "/" {
			it.Path = prefix
		} else {
			it.Path = prefix + it.Path
		}
		out[i] = it
	}
	return out
}

// Sort orders issues by path then code, keeping the relative order of equal
// entries.
func (iss Issues) Sort() Issues {
	sort.SliceStable(iss, func(i, j int) bool {
		if iss[i].Path != iss[j].Path {
			return iss[i].Path < iss[j].Path
		}
		return iss[i].Code < iss[j].Code
	})
	return iss
}

// Codes lists the issue codes in order.
func (iss Issues) Codes() []string {
	if len(iss) == 0 {
		return nil
	}
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.Code
	}
	return out
}

// Has reports whether an issue with the code exists at path.
func (iss Issues) Has(path, code string) bool {
	for _, it := range iss {
		if it.Path == path && it.Code == code {
			return true
		}
	}
	return false
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ToIssues converts any error into Issues. Errors that are not already Issues
// become a single parse_error entry.
func ToIssues(err error) Issues {
	if err == nil {
		return nil
	}
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	return AppendIssues(nil, Issue{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err})
}

func singleIssue(code, msg string) Issues {
	return AppendIssues(nil, Issue{Path: "/", Code: code, Message: msg})
}
