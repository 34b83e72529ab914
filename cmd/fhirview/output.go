package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	fhirview "github.com/reoring/fhirview"
	"github.com/reoring/fhirview/node"
)

type printer struct {
	w io.Writer

	path  func(string, ...any) string
	code  func(string, ...any) string
	ok    func(string, ...any) string
	added func(string, ...any) string
	gone  func(string, ...any) string
	hunk  func(string, ...any) string
}

func newPrinter(w io.Writer, mode string) *printer {
	enabled := false
	switch mode {
	case "always":
		enabled = true
	case "auto":
		if f, ok := w.(*os.File); ok {
			enabled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
	}
	p := &printer{w: w}
	if !enabled {
		plain := fmt.Sprintf
		p.path, p.code, p.ok, p.added, p.gone, p.hunk = plain, plain, plain, plain, plain, plain
		return p
	}
	paint := func(attrs ...color.Attribute) func(string, ...any) string {
		c := color.New(attrs...)
		c.EnableColor()
		return c.SprintfFunc()
	}
	p.path = paint(color.FgCyan)
	p.code = paint(color.FgRed, color.Bold)
	p.ok = paint(color.FgGreen)
	p.added = paint(color.FgGreen)
	p.gone = paint(color.FgRed)
	p.hunk = paint(color.FgMagenta)
	return p
}

func (p *printer) json(n *node.Node) error {
	b, err := node.MarshalIndent(n, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.w, string(b))
	return err
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) valid(name string) {
	p.line("%s: %s", name, p.ok("ok"))
}

// issues prints one line per issue: "file: /path code: message (hint)".
func (p *printer) issues(name string, err error) {
	for _, it := range fhirview.ToIssues(err) {
		msg := it.Message
		if it.Hint != "" {
			msg += " (" + it.Hint + ")"
		}
		p.line("%s: %s %s %s", name, p.path("%s", it.Path), p.code("%s:", it.Code), msg)
	}
}

func (p *printer) diff(text string) {
	for _, l := range strings.SplitAfter(text, "\n") {
		if l == "" {
			continue
		}
		switch {
		case strings.HasPrefix(l, "@@"):
			fmt.Fprint(p.w, p.hunk("%s", l))
		case strings.HasPrefix(l, "+"):
			fmt.Fprint(p.w, p.added("%s", l))
		case strings.HasPrefix(l, "-"):
			fmt.Fprint(p.w, p.gone("%s", l))
		default:
			fmt.Fprint(p.w, l)
		}
	}
}
