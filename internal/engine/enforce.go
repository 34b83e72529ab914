package engine

import (
	"errors"
	"io"
	"strconv"
	"strings"
)

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// SimpleIssue is a minimal issue representation used by internal helpers.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	MaxBytes    int64
	// IssueSink receives non-fatal issues (duplicate keys under DupWarn).
	IssueSink func(SimpleIssue)
	// FailFast turns every reported issue into an error.
	FailFast bool
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind      containerKind
	path      string
	keys      map[string]struct{}
	wantKey   bool
	key       string
	nextIndex int
}

// WrapWithEnforcement returns a TokenSource that enforces duplicate key policy,
// maximum nesting depth, and maximum consumed bytes while tracking the JSON
// Pointer of the current token.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcingSource{inner: inner, opt: opt}
}

type enforcingSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []frame
}

func (e *enforcingSource) Location() int64 { return e.inner.Location() }

func (e *enforcingSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	path := e.pathOf(tok)

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		f := frame{kind: kindArray, path: path}
		if tok.Kind == KindBeginObject {
			f = frame{kind: kindObject, path: path, keys: map[string]struct{}{}, wantKey: true}
		}
		e.stack = append(e.stack, f)
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, e.fatal(SimpleIssue{Code: "parse_error", Path: pointer(path), Message: "max depth exceeded"})
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		e.valueDone()
	case KindKey:
		if top := e.top(); top != nil && top.kind == kindObject && top.wantKey {
			if _, dup := top.keys[tok.String]; dup && e.opt.OnDuplicate != DupIgnore {
				si := SimpleIssue{Code: "duplicate_key", Path: pointer(path), Message: "key '" + tok.String + "' duplicated"}
				if e.opt.OnDuplicate == DupError || e.opt.FailFast {
					return Token{}, e.fatal(si)
				}
				e.report(si)
			}
			top.keys[tok.String] = struct{}{}
			top.wantKey = false
			top.key = tok.String
		}
	default:
		e.valueDone()
	}

	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off >= 0 && off > e.opt.MaxBytes {
			return Token{}, e.fatal(SimpleIssue{Code: "truncated", Path: pointer(path), Message: "max bytes exceeded"})
		}
	}
	return tok, nil
}

func (e *enforcingSource) top() *frame {
	if len(e.stack) == 0 {
		return nil
	}
	return &e.stack[len(e.stack)-1]
}

// valueDone marks the pending member of the enclosing object as consumed.
func (e *enforcingSource) valueDone() {
	if top := e.top(); top != nil && top.kind == kindObject && !top.wantKey {
		top.wantKey = true
		top.key = ""
	}
}

func (e *enforcingSource) pathOf(tok Token) string {
	top := e.top()
	if top == nil {
		return ""
	}
	switch tok.Kind {
	case KindKey:
		return joinPointer(top.path, tok.String)
	case KindEndObject, KindEndArray:
		return top.path
	}
	if top.kind == kindArray {
		p := joinPointer(top.path, strconv.Itoa(top.nextIndex))
		top.nextIndex++
		return p
	}
	if !top.wantKey {
		return joinPointer(top.path, top.key)
	}
	return top.path
}

func (e *enforcingSource) report(si SimpleIssue) {
	if e.opt.IssueSink != nil {
		e.opt.IssueSink(si)
	}
}

func (e *enforcingSource) fatal(si SimpleIssue) error {
	e.report(si)
	return IssueError{si}
}

// DetectDuplicateKeys drains src and returns every duplicate key found.
// maxIssues < 0 means unlimited, 0 disables collection, and a positive value
// stops after that many issues with a trailing "truncated" entry.
func DetectDuplicateKeys(src TokenSource, onDup DuplicateStrictness, maxIssues int) ([]SimpleIssue, error) {
	if onDup == DupIgnore || maxIssues == 0 {
		return nil, nil
	}
	var issues []SimpleIssue
	stopped := false
	sink := func(si SimpleIssue) {
		if stopped {
			return
		}
		issues = append(issues, si)
		if maxIssues > 0 && len(issues) >= maxIssues {
			issues = append(issues, SimpleIssue{Code: "truncated", Path: "/", Message: "max issues reached"})
			stopped = true
		}
	}
	// DupWarn keeps scanning after a hit; DupError stops at the first one.
	enforced := WrapWithEnforcement(src, EnforceOptions{OnDuplicate: onDup, IssueSink: sink})
	for !stopped {
		if _, err := enforced.NextToken(); err != nil {
			var ie IssueError
			switch {
			case errors.Is(err, io.EOF), errors.As(err, &ie):
				return issues, nil
			default:
				return issues, err
			}
		}
	}
	return issues, nil
}

func pointer(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinPointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}
