package fhirview

import (
	"context"
	"errors"
	"io"

	eng "github.com/reoring/fhirview/internal/engine"
	"github.com/reoring/fhirview/node"
)

// ParseFrom consumes tokens from the Source and builds a Node tree. Object
// members keep their input order and numbers keep their text. Duplicate keys,
// nesting depth and input size are enforced per the last ParseOpt given.
// Failures are returned as Issues.
func ParseFrom(ctx context.Context, src Source, opts ...ParseOpt) (*node.Node, error) {
	if src == nil {
		return nil, singleIssue(CodeParseError, "nil source")
	}
	var opt ParseOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if IsFailFast(ctx) {
		opt.FailFast = true
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sink func(eng.SimpleIssue)
	if opt.Warnings != nil {
		sink = func(si eng.SimpleIssue) {
			opt.Warnings(Issue{Path: si.Path, Code: si.Code, Message: si.Message, Offset: src.Location()})
		}
	}
	enforced := eng.WrapWithEnforcement(engineTokenSource(src), eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
		IssueSink:   sink,
		FailFast:    opt.FailFast,
	})
	n, err := eng.DecodeNode(enforced)
	if err != nil {
		return nil, toParseIssues(err, src.Location())
	}
	return n, nil
}

// ParseBytes is ParseFrom over a JSON byte slice using the current driver.
func ParseBytes(ctx context.Context, data []byte, opts ...ParseOpt) (*node.Node, error) {
	return ParseFrom(ctx, JSONBytes(data), opts...)
}

// StreamParse parses a JSON document from an io.Reader.
// When MaxBytes is set it enforces the size cap up front, otherwise it
// delegates directly to ParseFrom via the Source driver.
func StreamParse(ctx context.Context, r io.Reader, opts ...ParseOpt) (*node.Node, error) {
	if len(opts) > 0 && opts[len(opts)-1].MaxBytes > 0 {
		maxBytes := opts[len(opts)-1].MaxBytes
		data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
		if err != nil {
			return nil, singleIssue(CodeParseError, err.Error())
		}
		if int64(len(data)) > maxBytes {
			return nil, singleIssue(CodeTruncated, "max bytes exceeded")
		}
		return ParseFrom(ctx, JSONBytes(data), opts...)
	}
	return ParseFrom(ctx, JSONReader(r), opts...)
}

func toParseIssues(err error, offset int64) Issues {
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return AppendIssues(nil, Issue{Code: ie.Code, Path: ie.Path, Message: ie.Message, Offset: offset})
	}
	return AppendIssues(nil, Issue{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err, Offset: offset})
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Error:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}
